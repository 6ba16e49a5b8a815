package compositor

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"
)

// TestTintOpacityMatchesStraightAlphaBlend checks tintWithOpacity's
// per-channel multiplier against golang.org/x/image/draw's own Over
// compositing: the sprite batch applies Tint as a constant-color
// multiply feeding the same straight-alpha "over" blend draw.Draw
// performs here, so the two must agree (within integer rounding) on
// what a partially-opaque layer looks like once blended onto a
// background.
func TestTintOpacityMatchesStraightAlphaBlend(t *testing.T) {
	background := color.NRGBA{R: 40, G: 80, B: 120, A: 255}
	foreground := color.NRGBA{R: 200, G: 100, B: 50, A: 255}

	for _, opacity := range []float32{1, 0.5, 0.25, 0} {
		tint := tintWithOpacity(opacity)
		if tint[0] != opacity || tint[1] != opacity || tint[2] != opacity || tint[3] != opacity {
			t.Fatalf("tintWithOpacity(%v) = %+v, expected all four channels uniform", opacity, tint)
		}

		dst := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

		tintedAlpha := uint8(tint[3] * 255)
		src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		src.SetNRGBA(0, 0, color.NRGBA{R: foreground.R, G: foreground.G, B: foreground.B, A: tintedAlpha})

		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Over)

		want := straightAlphaOver(background, color.NRGBA{R: foreground.R, G: foreground.G, B: foreground.B, A: tintedAlpha})
		got := dst.NRGBAAt(0, 0)
		if !closeEnough(got, want) {
			t.Fatalf("opacity %v: draw.Over produced %+v, want ~%+v", opacity, got, want)
		}
	}
}

// straightAlphaOver computes the same "over" blend draw.Over performs,
// directly in straight (non-premultiplied) alpha, as a reference to
// compare draw.Draw's premultiplied-internally result against.
func straightAlphaOver(bg, fg color.NRGBA) color.NRGBA {
	a := float64(fg.A) / 255
	blend := func(b, f uint8) uint8 {
		v := float64(f)*a + float64(b)*(1-a)
		return uint8(v + 0.5)
	}
	return color.NRGBA{
		R: blend(bg.R, fg.R),
		G: blend(bg.G, fg.G),
		B: blend(bg.B, fg.B),
		A: 255,
	}
}

func closeEnough(a, b color.NRGBA) bool {
	const tolerance = 2
	diff := func(x, y uint8) bool {
		d := int(x) - int(y)
		if d < 0 {
			d = -d
		}
		return d <= tolerance
	}
	return diff(a.R, b.R) && diff(a.G, b.G) && diff(a.B, b.B) && diff(a.A, b.A)
}
