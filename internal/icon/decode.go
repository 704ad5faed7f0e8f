package icon

import (
	"bytes"
	"image"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	ico "github.com/sergeymakinen/go-ico"
	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// icoMagic is the ICONDIR header of a .ico container. The stdlib image
// registry has no ICO decoder, so the format is sniffed explicitly.
var icoMagic = []byte{0x00, 0x00, 0x01, 0x00}

// Decoded is the decoder gate's accepted result.
type Decoded struct {
	Kind   Kind
	Width  int
	Height int
	Data   []byte
}

// DecodeAndCheck runs raw bytes through the format-aware decoder gate.
// Vector parsing is attempted first: an SVG tree reports its intrinsic size
// from the declared viewport, which is cheaper and more reliable than
// rasterizing. A source that parses as a vector but measures under min is
// rejected outright; it does not fall through to raster decoding. Raster
// decoding is attempted only when vector parsing fails, with the format
// auto-detected from content, never trusted from a file extension.
//
// The second return value is false when the bytes do not qualify. That is a
// normal outcome, not an error: callers move on to the next source.
func DecodeAndCheck(data []byte, min int) (*Decoded, bool) {
	if sv, err := oksvg.ReadIconStream(bytes.NewReader(data)); err == nil {
		w := int(sv.ViewBox.W)
		h := int(sv.ViewBox.H)
		if w >= min && h >= min {
			return &Decoded{Kind: KindVector, Width: w, Height: h, Data: data}, true
		}
		return nil, false
	}

	w, h, err := rasterDimensions(data)
	if err != nil {
		return nil, false
	}
	if w < min || h < min {
		return nil, false
	}
	return &Decoded{Kind: KindRaster, Width: w, Height: h, Data: data}, true
}

// rasterDimensions reads the pixel dimensions of a raster image. ICO
// containers are decoded with the dedicated decoder; everything else goes
// through the stdlib registry, which only needs the header.
func rasterDimensions(data []byte) (width, height int, err error) {
	if bytes.HasPrefix(data, icoMagic) {
		img, err := ico.Decode(bytes.NewReader(data))
		if err != nil {
			return 0, 0, err
		}
		b := img.Bounds()
		return b.Dx(), b.Dy(), nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// decodeRaster fully decodes a raster image for re-encoding.
func decodeRaster(data []byte) (image.Image, error) {
	if bytes.HasPrefix(data, icoMagic) {
		return ico.Decode(bytes.NewReader(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
