package nodes

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/kbukum/imageflow/graph"
)

// gaussianBlurType applies a separable Gaussian blur. Sigma is derived from
// the kernel size with the usual 0.3*((k-1)*0.5 - 1) + 0.8 heuristic, so
// users only pick an odd kernel size.
func gaussianBlurType() *graph.Type {
	return &graph.Type{
		Name:  TypeGaussianBlur,
		Label: "Gaussian Blur",
		Params: []graph.ParamSpec{
			{Name: "kernel_size", Kind: graph.ParamInt, Default: 5, Min: 1, Max: 31, Step: 2},
		},
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			k := gaussianKernel(params.Int("kernel_size"))
			tmp := convolve1D(src.NRGBA, k, true)
			return &Image{NRGBA: convolve1D(tmp, k, false)}, nil
		},
	}
}

// sharpenType runs the classic 3×3 sharpening kernel and blends the result
// with the original by strength. Strengths above 1 extrapolate past the
// filtered image for a harder effect.
func sharpenType() *graph.Type {
	return &graph.Type{
		Name:  TypeSharpen,
		Label: "Sharpen",
		Params: []graph.ParamSpec{
			{Name: "strength", Kind: graph.ParamFloat, Default: 1.0, Min: 0.1, Max: 5.0},
		},
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			strength := params.Float("strength")
			sharp := convolve3x3(src.NRGBA, &sharpenKernel)
			dst := NewImage(src.Width(), src.Height())
			for i := 0; i < len(src.Pix); i += 4 {
				for c := 0; c < 3; c++ {
					v := (1-strength)*float64(src.Pix[i+c]) + strength*float64(sharp.Pix[i+c])
					dst.Pix[i+c] = clamp8f(v)
				}
				dst.Pix[i+3] = src.Pix[i+3]
			}
			return dst, nil
		},
	}
}

// morphologyType applies erode, dilate, open, or close with a square
// structuring element. Open is erode-then-dilate, close the reverse.
func morphologyType() *graph.Type {
	return &graph.Type{
		Name:  TypeMorphology,
		Label: "Morphology",
		Params: []graph.ParamSpec{
			{Name: "op", Kind: graph.ParamEnum, Default: "erode", Options: []string{"erode", "dilate", "open", "close"}},
			{Name: "kernel_size", Kind: graph.ParamInt, Default: 3, Min: 1, Max: 15, Step: 2},
		},
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			radius := params.Int("kernel_size") / 2
			switch params.String("op") {
			case "erode":
				return morph(src, radius, false), nil
			case "dilate":
				return morph(src, radius, true), nil
			case "open":
				return morph(morph(src, radius, false), radius, true), nil
			case "close":
				return morph(morph(src, radius, true), radius, false), nil
			default:
				return nil, fmt.Errorf("unknown morphology op %q", params.String("op"))
			}
		},
	}
}

// sharpenKernel is the classic 3×3 Laplacian sharpening kernel.
var sharpenKernel = [9]float64{
	-1, -1, -1,
	-1, 9, -1,
	-1, -1, -1,
}

// gaussianKernel builds a normalized 1-D Gaussian for an odd kernel size.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	k := make([]float64, size)
	sum := 0.0
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// convolve1D filters one axis with a 1-D kernel, replicating edge pixels.
// All four channels are filtered so translucent images blur correctly.
func convolve1D(src *image.NRGBA, k []float64, horizontal bool) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	half := len(k) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for i, weight := range k {
				sx, sy := x, y
				if horizontal {
					sx = clampIndex(x+i-half, w)
				} else {
					sy = clampIndex(y+i-half, h)
				}
				o := sy*src.Stride + sx*4
				acc[0] += weight * float64(src.Pix[o])
				acc[1] += weight * float64(src.Pix[o+1])
				acc[2] += weight * float64(src.Pix[o+2])
				acc[3] += weight * float64(src.Pix[o+3])
			}
			o := y*dst.Stride + x*4
			dst.Pix[o] = clamp8f(acc[0])
			dst.Pix[o+1] = clamp8f(acc[1])
			dst.Pix[o+2] = clamp8f(acc[2])
			dst.Pix[o+3] = clamp8f(acc[3])
		}
	}
	return dst
}

// convolve3x3 filters the color channels with a 3×3 kernel, replicating
// edge pixels and copying alpha through.
func convolve3x3(src *image.NRGBA, k *[9]float64) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [3]float64
			ki := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					o := clampIndex(y+dy, h)*src.Stride + clampIndex(x+dx, w)*4
					weight := k[ki]
					ki++
					acc[0] += weight * float64(src.Pix[o])
					acc[1] += weight * float64(src.Pix[o+1])
					acc[2] += weight * float64(src.Pix[o+2])
				}
			}
			o := y*dst.Stride + x*4
			dst.Pix[o] = clamp8f(acc[0])
			dst.Pix[o+1] = clamp8f(acc[1])
			dst.Pix[o+2] = clamp8f(acc[2])
			dst.Pix[o+3] = src.Pix[y*src.Stride+x*4+3]
		}
	}
	return dst
}

// morph is a min (erode) or max (dilate) filter over a square window. The
// square separates into a horizontal and a vertical 1-D pass.
func morph(src *Image, radius int, dilate bool) *Image {
	if radius <= 0 {
		return src.Clone()
	}
	tmp := rankFilter1D(src.NRGBA, radius, dilate, true)
	return &Image{NRGBA: rankFilter1D(tmp, radius, dilate, false)}
}

func rankFilter1D(src *image.NRGBA, radius int, dilate, horizontal bool) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := [3]uint8{src.Pix[y*src.Stride+x*4], src.Pix[y*src.Stride+x*4+1], src.Pix[y*src.Stride+x*4+2]}
			for d := -radius; d <= radius; d++ {
				sx, sy := x, y
				if horizontal {
					sx = clampIndex(x+d, w)
				} else {
					sy = clampIndex(y+d, h)
				}
				o := sy*src.Stride + sx*4
				for c := 0; c < 3; c++ {
					v := src.Pix[o+c]
					if dilate {
						if v > best[c] {
							best[c] = v
						}
					} else if v < best[c] {
						best[c] = v
					}
				}
			}
			o := y*dst.Stride + x*4
			dst.Pix[o] = best[0]
			dst.Pix[o+1] = best[1]
			dst.Pix[o+2] = best[2]
			dst.Pix[o+3] = src.Pix[y*src.Stride+x*4+3]
		}
	}
	return dst
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
