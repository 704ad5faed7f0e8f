package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	ico "github.com/sergeymakinen/go-ico"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func icoBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test ICO: %v", err)
	}
	return buf.Bytes()
}

func svgBytes(w, h int) []byte {
	return fmt.Appendf(nil,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d"><rect width="%d" height="%d" fill="#369"/></svg>`,
		w, h, w, h, w, h)
}

func TestDecodeAndCheckRaster(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		min    int
		wantOK bool
		wantW  int
	}{
		{"large PNG passes", nil, 96, true, 128},
		{"exact threshold passes", nil, 128, true, 128},
		{"small PNG rejected", nil, 96, false, 0},
	}

	large := pngBytes(t, 128, 128)
	small := pngBytes(t, 32, 32)
	tests[0].data = large
	tests[1].data = large
	tests[2].data = small

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, ok := DecodeAndCheck(tt.data, tt.min)
			if ok != tt.wantOK {
				t.Fatalf("DecodeAndCheck ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if dec.Kind != KindRaster {
				t.Errorf("Kind = %v, want raster", dec.Kind)
			}
			if dec.Width != tt.wantW || dec.Height != tt.wantW {
				t.Errorf("dimensions = %dx%d, want %dx%d", dec.Width, dec.Height, tt.wantW, tt.wantW)
			}
		})
	}
}

func TestDecodeAndCheckVector(t *testing.T) {
	dec, ok := DecodeAndCheck(svgBytes(256, 256), 96)
	if !ok {
		t.Fatal("large vector rejected")
	}
	if dec.Kind != KindVector {
		t.Errorf("Kind = %v, want vector", dec.Kind)
	}
	if dec.Width != 256 || dec.Height != 256 {
		t.Errorf("dimensions = %dx%d, want 256x256", dec.Width, dec.Height)
	}
}

// A source that parses as a vector but measures under the threshold is
// rejected outright; it must not be retried as raster.
func TestDecodeAndCheckSmallVectorRejected(t *testing.T) {
	if _, ok := DecodeAndCheck(svgBytes(16, 16), 96); ok {
		t.Error("sub-threshold vector accepted")
	}
}

func TestDecodeAndCheckICO(t *testing.T) {
	dec, ok := DecodeAndCheck(icoBytes(t, 128, 128), 96)
	if !ok {
		t.Fatal("valid ICO rejected")
	}
	if dec.Kind != KindRaster {
		t.Errorf("Kind = %v, want raster", dec.Kind)
	}
	if dec.Width != 128 || dec.Height != 128 {
		t.Errorf("dimensions = %dx%d, want 128x128", dec.Width, dec.Height)
	}

	if _, ok := DecodeAndCheck(icoBytes(t, 48, 48), 96); ok {
		t.Error("small ICO accepted")
	}
}

func TestDecodeAndCheckGarbage(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("not an image at all"),
		[]byte("<html><body>404</body></html>"),
		{0x89, 0x50},
	} {
		if _, ok := DecodeAndCheck(data, 64); ok {
			t.Errorf("undecodable input accepted: %q", data)
		}
	}
}
