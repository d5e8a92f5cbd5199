package grid_renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectStrategy(t *testing.T) {
	full := devicetest.DefaultCapabilities()
	noIndexing := full
	noIndexing.NonUniformIndexing = false
	small := full
	small.MaxDescriptorArrayLength = 4
	small.MaxTextureArrayLayers = 8

	tests := []struct {
		name      string
		preferred pipeline.BindingStrategy
		caps      device.Capabilities
		count     int
		want      pipeline.BindingStrategy
		err       error
	}{
		{"auto picks array", pipeline.StrategyAuto, full, 3, pipeline.StrategyDescriptorArray, nil},
		{"auto falls back without indexing", pipeline.StrategyAuto, noIndexing, 3, pipeline.StrategyLayeredAtlas, nil},
		{"auto falls back when array too long", pipeline.StrategyAuto, small, 6, pipeline.StrategyLayeredAtlas, nil},
		{"auto exhausted", pipeline.StrategyAuto, small, 9, 0, device.ErrDeviceResourceExhausted},
		{"explicit array without indexing", pipeline.StrategyDescriptorArray, noIndexing, 3, 0, ErrUnsupportedStrategy},
		{"explicit array too long", pipeline.StrategyDescriptorArray, small, 5, 0, device.ErrDeviceResourceExhausted},
		{"explicit atlas", pipeline.StrategyLayeredAtlas, full, 3, pipeline.StrategyLayeredAtlas, nil},
		{"explicit atlas too many layers", pipeline.StrategyLayeredAtlas, small, 9, 0, device.ErrDeviceResourceExhausted},
		{"no textures", pipeline.StrategyAuto, full, 0, 0, device.ErrDeviceResourceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectStrategy(tt.preferred, tt.caps, tt.count)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptorLayout(t *testing.T) {
	array := DescriptorLayout(pipeline.StrategyDescriptorArray, 5, 64)
	require.NoError(t, array.Validate())
	tex, ok := array.Entry(2)
	require.True(t, ok)
	assert.Equal(t, device.BindingKindTexture2D, tex.Kind)
	assert.Equal(t, uint32(5), tex.Count)
	uni, ok := array.Entry(0)
	require.True(t, ok)
	assert.Equal(t, uint64(272), uni.MinSize)
	assert.Len(t, array.Expanded(), 7)

	atlas := DescriptorLayout(pipeline.StrategyLayeredAtlas, 5, 64)
	require.NoError(t, atlas.Validate())
	tex, ok = atlas.Entry(2)
	require.True(t, ok)
	assert.Equal(t, device.BindingKindTexture2DArray, tex.Kind)
	assert.Equal(t, uint32(1), tex.Count)
}
