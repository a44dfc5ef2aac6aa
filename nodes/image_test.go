package nodes

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// testImage builds a w×h image from a row-major list of RGBA pixels.
func testImage(w, h int, pixels ...color.NRGBA) *Image {
	im := NewImage(w, h)
	for i, p := range pixels {
		im.SetNRGBA(i%w, i/w, p)
	}
	return im
}

func pixelAt(im *Image, x, y int) color.NRGBA {
	return im.NRGBAAt(x, y)
}

// --- Image tests ---

func TestImage_CloneIsIndependent(t *testing.T) {
	src := testImage(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	dup := src.Clone()
	dup.SetNRGBA(0, 0, color.NRGBA{R: 99, A: 255})

	if got := pixelAt(src, 0, 0); got.R != 10 {
		t.Fatalf("expected original untouched, got %+v", got)
	}
	if got := pixelAt(dup, 0, 0); got.R != 99 {
		t.Fatalf("expected clone modified, got %+v", got)
	}
}

func TestImage_FromImageConverts(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(0, 0, color.Gray{Y: 100})
	gray.SetGray(1, 0, color.Gray{Y: 200})

	im := FromImage(gray)
	if im.Width() != 2 || im.Height() != 1 {
		t.Fatalf("expected 2x1, got %dx%d", im.Width(), im.Height())
	}
	if got := pixelAt(im, 0, 0); got.R != 100 || got.G != 100 || got.B != 100 || got.A != 255 {
		t.Fatalf("expected gray 100, got %+v", got)
	}
}

func TestImage_PNGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pic.png")
	src := testImage(2, 2,
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{G: 255, A: 255},
		color.NRGBA{B: 255, A: 255},
		color.NRGBA{R: 1, G: 2, B: 3, A: 128},
	)
	if err := src.Encode(path); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Width() != 2 || got.Height() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", got.Width(), got.Height())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if pixelAt(got, x, y) != pixelAt(src, x, y) {
				t.Fatalf("pixel (%d,%d): expected %+v, got %+v", x, y, pixelAt(src, x, y), pixelAt(got, x, y))
			}
		}
	}
}

func TestImage_JPEGEncode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.jpg")
	src := testImage(4, 4)
	if err := src.Encode(path); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Width() != 4 || got.Height() != 4 {
		t.Fatalf("expected 4x4, got %dx%d", got.Width(), got.Height())
	}
}

func TestImage_EncodeUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.bmp")
	if err := testImage(1, 1).Encode(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestImage_DecodeMissingFile(t *testing.T) {
	if _, err := Decode(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
