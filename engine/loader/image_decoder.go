package loader

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Carmen-Shannon/oxy-frames/common"
	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// supportedImageTypes lists the sniffed extensions DecodeImage accepts. Each has a registered
// image decoder.
var supportedImageTypes = map[string]bool{
	"png": true,
	"jpg": true,
	"gif": true,
	"bmp": true,
	"tif": true,
}

// DecodeImage decodes PNG, JPEG, GIF, BMP or TIFF bytes into a tightly packed RGBA buffer with
// straight (non-premultiplied) alpha, the byte order the texture upload expects.
// The format is detected from the content, not from a file name.
//
// Parameters:
//   - data: the encoded image
//
// Returns:
//   - common.PixelBuffer: pixels with len(Pixels) == Width*Height*4
//   - error: a *DecodeError for unknown, unsupported or corrupt data
func DecodeImage(data []byte) (common.PixelBuffer, error) {
	if len(data) == 0 {
		return common.PixelBuffer{}, &DecodeError{Reason: "empty input"}
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return common.PixelBuffer{}, &DecodeError{Reason: "content sniffing failed", Err: err}
	}
	if kind == filetype.Unknown {
		return common.PixelBuffer{}, &DecodeError{Reason: "unrecognized image format"}
	}
	if !supportedImageTypes[kind.Extension] {
		return common.PixelBuffer{}, &DecodeError{Reason: "unsupported content type " + kind.MIME.Value}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return common.PixelBuffer{}, &DecodeError{Reason: "corrupt " + kind.Extension + " data", Err: err}
	}

	pix, b := straightRGBA(img)
	pb := common.PixelBuffer{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Pixels: pix,
	}
	if !pb.Valid() {
		return common.PixelBuffer{}, &DecodeError{Reason: "image has no pixels"}
	}
	return pb, nil
}

// straightRGBA returns the image as tightly packed, non-premultiplied RGBA bytes. Opaque images
// go through bild's RGBA clone, where premultiplied and straight alpha coincide; anything with
// transparency is drawn into an NRGBA so color channels keep their encoded values.
func straightRGBA(img image.Image) ([]byte, image.Rectangle) {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		rgba := clone.AsRGBA(img)
		return rgba.Pix, rgba.Bounds()
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return nrgba.Pix, nrgba.Bounds()
}
