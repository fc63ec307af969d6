package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// Create compiles src into a shader module. The creation call is wrapped in a validation
// error scope, so a compile error the device would otherwise report later is returned here.
// A fallback source compiles the placeholder program.
//
// Compiling a non-fallback SPIR-V source is not implemented and panics.
//
// Parameters:
//   - device: the device to compile on
//   - src: the shader to compile
//
// Returns:
//   - *wgpu.ShaderModule: the compiled module
//   - error: the captured *backend.GPUError, or the creation error
func Create(device backend.Device, src *Source) (*wgpu.ShaderModule, error) {
	desc := src.descriptor()

	device.PushErrorScope(backend.ErrorFilterValidation)
	module, createErr := device.CreateShaderModule(desc)
	if scopeErr := device.PopErrorScope(); scopeErr != nil {
		return nil, scopeErr
	}
	if createErr != nil {
		return nil, createErr
	}
	return module, nil
}

// CreateOrFallback compiles src, and on failure switches src to the fallback state and
// compiles the placeholder program instead. It always returns a usable module. The error is
// non-nil only when the fallback was taken, and describes why the original shader failed.
//
// Parameters:
//   - device: the device to compile on
//   - src: the shader to compile; left in the fallback state if compilation failed
//
// Returns:
//   - *wgpu.ShaderModule: the compiled module or the placeholder
//   - error: the original compile error when the placeholder was used, otherwise nil
func CreateOrFallback(device backend.Device, src *Source) (*wgpu.ShaderModule, error) {
	module, err := Create(device, src)
	if err == nil {
		return module, nil
	}

	common.Logger().Warn("shader: compile failed, using fallback", "name", src.Name(), "error", err)
	src.MakeFallback()

	fallback, fallbackErr := Create(device, src)
	if fallbackErr != nil {
		panic(fmt.Sprintf("shader: placeholder program failed to compile for %q: %v", src.Name(), fallbackErr))
	}
	return fallback, err
}
