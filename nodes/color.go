package nodes

import (
	"context"
	"image/color"
	"math"

	"github.com/kbukum/imageflow/graph"
)

// grayscaleType converts to grayscale with BT.601 luma weights. The result
// stays NRGBA with R=G=B so it composes with every other node.
func grayscaleType() *graph.Type {
	return &graph.Type{
		Name:   TypeGrayscale,
		Label:  "Grayscale",
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			dst := NewImage(src.Width(), src.Height())
			for i := 0; i < len(src.Pix); i += 4 {
				y := uint8((299*int(src.Pix[i]) + 587*int(src.Pix[i+1]) + 114*int(src.Pix[i+2]) + 500) / 1000)
				dst.Pix[i] = y
				dst.Pix[i+1] = y
				dst.Pix[i+2] = y
				dst.Pix[i+3] = src.Pix[i+3]
			}
			return dst, nil
		},
	}
}

// invertType inverts each color channel, leaving alpha alone.
func invertType() *graph.Type {
	return &graph.Type{
		Name:   TypeInvert,
		Label:  "Invert",
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			dst := NewImage(src.Width(), src.Height())
			for i := 0; i < len(src.Pix); i += 4 {
				dst.Pix[i] = 255 - src.Pix[i]
				dst.Pix[i+1] = 255 - src.Pix[i+1]
				dst.Pix[i+2] = 255 - src.Pix[i+2]
				dst.Pix[i+3] = src.Pix[i+3]
			}
			return dst, nil
		},
	}
}

// brightnessContrastType applies out = in*contrast + brightness per color
// channel, clamped to [0, 255].
func brightnessContrastType() *graph.Type {
	return &graph.Type{
		Name:  TypeBrightnessContrast,
		Label: "Brightness/Contrast",
		Params: []graph.ParamSpec{
			{Name: "brightness", Kind: graph.ParamInt, Default: 0, Min: -100, Max: 100},
			{Name: "contrast", Kind: graph.ParamFloat, Default: 1.0, Min: 0.1, Max: 3.0},
		},
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			brightness := float64(params.Int("brightness"))
			contrast := params.Float("contrast")
			dst := NewImage(src.Width(), src.Height())
			for i := 0; i < len(src.Pix); i += 4 {
				dst.Pix[i] = clamp8f(float64(src.Pix[i])*contrast + brightness)
				dst.Pix[i+1] = clamp8f(float64(src.Pix[i+1])*contrast + brightness)
				dst.Pix[i+2] = clamp8f(float64(src.Pix[i+2])*contrast + brightness)
				dst.Pix[i+3] = src.Pix[i+3]
			}
			return dst, nil
		},
	}
}

// hueSaturationType rotates hue by a degree offset and scales saturation in
// HSV space.
func hueSaturationType() *graph.Type {
	return &graph.Type{
		Name:  TypeHueSaturation,
		Label: "Hue/Saturation",
		Params: []graph.ParamSpec{
			{Name: "hue", Kind: graph.ParamInt, Default: 0, Min: -180, Max: 180},
			{Name: "saturation", Kind: graph.ParamFloat, Default: 1.0, Min: 0, Max: 2},
		},
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			hueShift := float64(params.Int("hue"))
			satScale := params.Float("saturation")
			dst := NewImage(src.Width(), src.Height())
			for i := 0; i < len(src.Pix); i += 4 {
				h, s, v := rgbToHSV(
					float64(src.Pix[i])/255,
					float64(src.Pix[i+1])/255,
					float64(src.Pix[i+2])/255,
				)
				h = math.Mod(h+hueShift+360, 360)
				s = math.Min(s*satScale, 1)
				r, g, b := hsvToRGB(h, s, v)
				dst.Pix[i] = clamp8f(r * 255)
				dst.Pix[i+1] = clamp8f(g * 255)
				dst.Pix[i+2] = clamp8f(b * 255)
				dst.Pix[i+3] = src.Pix[i+3]
			}
			return dst, nil
		},
	}
}

// thresholdType binarizes by luma: pixels brighter than the threshold
// become max_value, the rest become black.
func thresholdType() *graph.Type {
	return &graph.Type{
		Name:  TypeThreshold,
		Label: "Threshold",
		Params: []graph.ParamSpec{
			{Name: "threshold", Kind: graph.ParamInt, Default: 127, Min: 0, Max: 255},
			{Name: "max_value", Kind: graph.ParamInt, Default: 255, Min: 0, Max: 255},
		},
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			threshold := params.Int("threshold")
			maxValue := uint8(params.Int("max_value"))
			dst := NewImage(src.Width(), src.Height())
			for i := 0; i < len(src.Pix); i += 4 {
				y := (299*int(src.Pix[i]) + 587*int(src.Pix[i+1]) + 114*int(src.Pix[i+2]) + 500) / 1000
				var out uint8
				if y > threshold {
					out = maxValue
				}
				dst.Pix[i] = out
				dst.Pix[i+1] = out
				dst.Pix[i+2] = out
				dst.Pix[i+3] = src.Pix[i+3]
			}
			return dst, nil
		},
	}
}

// equalizeType stretches the luma histogram over the full range while
// preserving chroma, the standard cumulative-distribution equalization.
func equalizeType() *graph.Type {
	return &graph.Type{
		Name:   TypeEqualize,
		Label:  "Equalize",
		Inputs: []string{PortIn},
		Output: PortOut,
		Compute: func(ctx context.Context, inputs []any, params graph.Params) (any, error) {
			src, err := imageArg(inputs, 0)
			if err != nil {
				return nil, err
			}
			var hist [256]int
			total := 0
			for i := 0; i < len(src.Pix); i += 4 {
				y, _, _ := color.RGBToYCbCr(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
				hist[y]++
				total++
			}
			cdfMin := 0
			for _, n := range hist {
				if n > 0 {
					cdfMin = n
					break
				}
			}
			var lut [256]uint8
			denom := total - cdfMin
			cum := 0
			for y := range lut {
				cum += hist[y]
				if denom <= 0 {
					// Flat or empty histogram: identity mapping.
					lut[y] = uint8(y)
					continue
				}
				lut[y] = clamp8f(float64(cum-cdfMin) / float64(denom) * 255)
			}
			dst := NewImage(src.Width(), src.Height())
			for i := 0; i < len(src.Pix); i += 4 {
				y, cb, cr := color.RGBToYCbCr(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
				r, g, b := color.YCbCrToRGB(lut[y], cb, cr)
				dst.Pix[i] = r
				dst.Pix[i+1] = g
				dst.Pix[i+2] = b
				dst.Pix[i+3] = src.Pix[i+3]
			}
			return dst, nil
		},
	}
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	d := max - min
	if max > 0 {
		s = d / max
	}
	if d > 0 {
		switch max {
		case r:
			h = 60 * math.Mod((g-b)/d, 6)
		case g:
			h = 60 * ((b-r)/d + 2)
		default:
			h = 60 * ((r-g)/d + 4)
		}
		if h < 0 {
			h += 360
		}
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r1, g1, b1 float64
	switch {
	case hp < 1:
		r1, g1, b1 = c, x, 0
	case hp < 2:
		r1, g1, b1 = x, c, 0
	case hp < 3:
		r1, g1, b1 = 0, c, x
	case hp < 4:
		r1, g1, b1 = 0, x, c
	case hp < 5:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	m := v - c
	return r1 + m, g1 + m, b1 + m
}
