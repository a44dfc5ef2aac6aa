package nodes

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// jpegQuality is used for every JPEG the pipeline writes.
const jpegQuality = 92

// Image is the pixel buffer exchanged between nodes. It embeds a
// non-premultiplied 8-bit RGBA raster, which keeps channel math simple and
// matches what the PNG and JPEG decoders produce after conversion.
type Image struct {
	*image.NRGBA
}

// NewImage allocates a zeroed w×h image.
func NewImage(w, h int) *Image {
	return &Image{NRGBA: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

// FromImage converts any decoded image into an Image, copying pixels when
// the source is not already NRGBA.
func FromImage(src image.Image) *Image {
	if n, ok := src.(*image.NRGBA); ok {
		return &Image{NRGBA: n}
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return &Image{NRGBA: dst}
}

// Clone returns a deep copy. Nodes that want to edit pixels in place must
// clone their input first; inputs are shared cached values.
func (im *Image) Clone() *Image {
	dst := image.NewNRGBA(im.Rect)
	copy(dst.Pix, im.Pix)
	return &Image{NRGBA: dst}
}

// Width returns the pixel width.
func (im *Image) Width() int { return im.Rect.Dx() }

// Height returns the pixel height.
func (im *Image) Height() int { return im.Rect.Dy() }

// Decode reads and decodes the image file at path. The format is chosen by
// extension (.png, .jpg, .jpeg); anything else falls back to content
// sniffing via image.Decode.
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		src, err = png.Decode(f)
	case ".jpg", ".jpeg":
		src, err = jpeg.Decode(f)
	default:
		src, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(src), nil
}

// Encode writes the image to path, creating parent directories as needed.
// The format is chosen by extension: .png or .jpg/.jpeg.
func (im *Image) Encode(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, im.NRGBA)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, im.NRGBA, &jpeg.Options{Quality: jpegQuality})
	default:
		err = fmt.Errorf("unsupported extension")
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// imageArg extracts input i as an *Image. The evaluator guarantees the
// slot is filled, so a type mismatch here means a foreign value type was
// wired in.
func imageArg(inputs []any, i int) (*Image, error) {
	if i >= len(inputs) {
		return nil, fmt.Errorf("missing input %d", i)
	}
	im, ok := inputs[i].(*Image)
	if !ok || im == nil {
		return nil, fmt.Errorf("input %d is %T, want *nodes.Image", i, inputs[i])
	}
	return im, nil
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp8f(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
