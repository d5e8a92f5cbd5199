package grid_renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
)

// SelectStrategy resolves the binding strategy for a texture count on a device.
//
// StrategyAuto prefers the descriptor array when the device supports non-uniform indexing and the
// array fits, then the layered atlas when the layer count fits. An explicit strategy is checked
// against the same limits.
//
// Parameters:
//   - preferred: the requested strategy
//   - caps: the device capabilities
//   - textureCount: the number of textures to bind
//
// Returns:
//   - pipeline.BindingStrategy: a concrete strategy, never StrategyAuto
//   - error: ErrUnsupportedStrategy or device.ErrDeviceResourceExhausted (wrapped)
func SelectStrategy(preferred pipeline.BindingStrategy, caps device.Capabilities, textureCount int) (pipeline.BindingStrategy, error) {
	if textureCount <= 0 {
		return preferred, fmt.Errorf("%w: no textures to bind", device.ErrDeviceResourceExhausted)
	}
	n := uint32(textureCount)
	arrayFits := n <= caps.MaxDescriptorArrayLength
	atlasFits := n <= caps.MaxTextureArrayLayers

	switch preferred {
	case pipeline.StrategyAuto:
		if caps.NonUniformIndexing && arrayFits {
			return pipeline.StrategyDescriptorArray, nil
		}
		if atlasFits {
			return pipeline.StrategyLayeredAtlas, nil
		}
		return preferred, fmt.Errorf("%w: %d textures exceed both %d array elements and %d atlas layers",
			device.ErrDeviceResourceExhausted, textureCount, caps.MaxDescriptorArrayLength, caps.MaxTextureArrayLayers)
	case pipeline.StrategyDescriptorArray:
		if !caps.NonUniformIndexing {
			return preferred, fmt.Errorf("%w: %s needs non-uniform descriptor indexing", ErrUnsupportedStrategy, preferred)
		}
		if !arrayFits {
			return preferred, fmt.Errorf("%w: %d textures exceed %d array elements", device.ErrDeviceResourceExhausted, textureCount, caps.MaxDescriptorArrayLength)
		}
		return preferred, nil
	case pipeline.StrategyLayeredAtlas:
		if !atlasFits {
			return preferred, fmt.Errorf("%w: %d textures exceed %d atlas layers", device.ErrDeviceResourceExhausted, textureCount, caps.MaxTextureArrayLayers)
		}
		return preferred, nil
	default:
		return preferred, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, preferred)
	}
}

// DescriptorLayout returns the descriptor layout of a strategy: the frame uniform at binding 0,
// the sampler at binding 1 and the textures at binding 2.
//
// Parameters:
//   - strategy: a concrete binding strategy
//   - textureCount: the number of textures bound
//   - cellCount: the grid's cell count, which sizes the frame uniform
//
// Returns:
//   - device.DescriptorLayout: the layout
func DescriptorLayout(strategy pipeline.BindingStrategy, textureCount, cellCount int) device.DescriptorLayout {
	textures := device.LayoutEntry{Binding: 2, Kind: device.BindingKindTexture2D, Count: uint32(textureCount), Visibility: device.ShaderStageFragment}
	if strategy == pipeline.StrategyLayeredAtlas {
		textures.Kind = device.BindingKindTexture2DArray
		textures.Count = 1
	}
	return device.DescriptorLayout{
		Label: "grid " + strategy.String(),
		Entries: []device.LayoutEntry{
			{Binding: 0, Kind: device.BindingKindUniformBuffer, Count: 1, Visibility: device.ShaderStageFragment, MinSize: uint64(FrameUniformSize(cellCount))},
			{Binding: 1, Kind: device.BindingKindSampler, Count: 1, Visibility: device.ShaderStageFragment},
			textures,
		},
	}
}
