// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/cogentcore/webgpu/wgpu"

// PixelBuffer holds decoded RGBA pixel data pending GPU upload.
// Pixels is tightly packed: 4 bytes per pixel, row-major, no row padding, so len(Pixels) == Width*Height*4.
type PixelBuffer struct {
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
	// Pixels is the RGBA8 pixel data.
	Pixels []byte
}

// Valid reports whether the buffer length matches its dimensions.
//
// Returns:
//   - bool: true if len(Pixels) == Width*Height*4 and both dimensions are non-zero
func (p PixelBuffer) Valid() bool {
	return p.Width > 0 && p.Height > 0 && uint64(len(p.Pixels)) == uint64(p.Width)*uint64(p.Height)*4
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero-valued fields fall back to linear filtering with repeat addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
