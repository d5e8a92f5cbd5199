package texture_registry

import "errors"

var (
	// ErrLayerSizeMismatch is returned when textures bound as one layered atlas differ in size and
	// resizing is disabled.
	ErrLayerSizeMismatch = errors.New("texture layer size mismatch")

	// ErrDuplicateName is returned when a texture name is registered twice.
	ErrDuplicateName = errors.New("duplicate texture name")

	// ErrEmptyRegistry is returned when textures are requested from a registry with none registered.
	ErrEmptyRegistry = errors.New("no textures registered")
)
