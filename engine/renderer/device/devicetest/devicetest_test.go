package devicetest

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceRecordsFrameProtocol(t *testing.T) {
	d := NewDevice()

	assert.ErrorIs(t, d.EndFrame(), device.ErrNoFrame)

	require.NoError(t, d.BeginFrame())
	assert.Equal(t, device.Fence(1), d.CurrentFrame())
	require.NoError(t, d.EndFrame())
	d.Present()

	require.NoError(t, d.WaitFence(1))
	assert.Equal(t, device.Fence(1), d.CompletedFrame())
	assert.Equal(t, []Op{OpBeginFrame, OpEndFrame, OpPresent, OpWaitFence}, d.Ops())
}

func TestDeviceBufferWrites(t *testing.T) {
	d := NewDevice()
	buf, err := d.CreateBuffer("uniform", 32, device.BufferUsageUniform|device.BufferUsageCopyDst)
	require.NoError(t, err)

	require.NoError(t, d.WriteBuffer(buf, 16, []byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, buf.(*Buffer).Contents()[16:20])
	assert.Error(t, d.WriteBuffer(buf, 30, []byte{1, 2, 3, 4}))

	buf.Release()
	assert.ErrorIs(t, d.WriteBuffer(buf, 0, []byte{1}), device.ErrInvalidHandle)
	assert.Empty(t, d.Live())

	_, err = d.CreateBuffer("huge", 1<<20, device.BufferUsageUniform)
	assert.ErrorIs(t, err, device.ErrDeviceResourceExhausted)
}

func TestDeviceFailNext(t *testing.T) {
	d := NewDevice()
	boom := errors.New("boom")
	d.FailNext(OpCreateSampler, boom)

	_, err := d.CreateSampler(device.SamplerDescriptor{Label: "s"})
	assert.ErrorIs(t, err, boom)

	s, err := d.CreateSampler(device.SamplerDescriptor{Label: "s"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sampler:s"}, d.Live())

	d.Release()
	assert.Empty(t, d.Live())
	s.Release()
}

func TestDeviceImageLayers(t *testing.T) {
	d := NewDevice()
	img, err := d.CreateImage(device.ImageDescriptor{Label: "atlas", Width: 2, Height: 2, Layers: 3, Layered: true})
	require.NoError(t, err)

	px := make([]byte, 16)
	px[0] = 9
	require.NoError(t, d.WriteImage(img, 2, px))
	assert.Equal(t, px, img.(*Image).Layer(2))
	assert.Nil(t, img.(*Image).Layer(0))

	assert.Error(t, d.WriteImage(img, 3, px))
	assert.Error(t, d.WriteImage(img, 0, px[:8]))

	_, err = d.CreateImage(device.ImageDescriptor{Label: "deep", Width: 2, Height: 2, Layers: 1000, Layered: true})
	assert.ErrorIs(t, err, device.ErrDeviceResourceExhausted)
}

func TestDeviceDescriptorArraysNeedIndexing(t *testing.T) {
	caps := DefaultCapabilities()
	caps.NonUniformIndexing = false
	d := NewDevice(WithCapabilities(caps))

	_, err := d.AllocateDescriptorSet(device.DescriptorLayout{
		Label:   "array",
		Entries: []device.LayoutEntry{{Binding: 0, Kind: device.BindingKindTexture2D, Count: 4}},
	})
	assert.ErrorIs(t, err, device.ErrDeviceResourceExhausted)
}
