package device

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
)

var (
	// ErrDeviceResourceExhausted is returned when a buffer, image, descriptor set or pipeline cannot be
	// allocated, including requests that exceed the device's capabilities.
	ErrDeviceResourceExhausted = errors.New("device resource exhausted")

	// ErrShaderCompileFailure is returned when pipeline creation fails on shader source.
	// It is the same value as shader.ErrCompileFailure so errors.Is matches either name.
	ErrShaderCompileFailure = shader.ErrCompileFailure

	// ErrNoFrame is returned by RecordDraw and EndFrame when no frame was begun.
	ErrNoFrame = errors.New("no frame in progress")

	// ErrInvalidHandle is returned when a handle was released or belongs to another device.
	ErrInvalidHandle = errors.New("invalid device handle")

	// ErrInvalidLayout is returned when a descriptor layout or binding list is malformed.
	ErrInvalidLayout = errors.New("invalid descriptor layout")
)
