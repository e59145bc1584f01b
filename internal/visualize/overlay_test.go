package visualize

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/retina/internal/glimpse"
)

func TestRenderGlimpseOverlay_NilImage(t *testing.T) {
	assert.Nil(t, RenderGlimpseOverlay(nil, glimpse.Location{}, []int{4}, color.White))
}

func TestRenderGlimpseOverlay_DrawsCenteredRects(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	red := color.RGBA{R: 255, A: 255}

	out := RenderGlimpseOverlay(img, glimpse.Location{X: 0, Y: 0}, []int{8}, red)
	require.NotNil(t, out)
	assert.Equal(t, 32, out.Bounds().Dx())
	assert.Equal(t, 32, out.Bounds().Dy())

	// An 8-wide patch at the center of a 32px image spans [12, 20).
	assert.Equal(t, red, out.RGBAAt(12, 12))
	assert.Equal(t, red, out.RGBAAt(19, 19))
	assert.Equal(t, red, out.RGBAAt(15, 12))
	// Well outside any rectangle the background is untouched.
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(2, 25))
}

func TestRenderGlimpseOverlay_CornerLocationClipped(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	assert.NotPanics(t, func() {
		RenderGlimpseOverlay(img, glimpse.Location{X: -1, Y: -1}, []int{8, 16}, color.White)
	})
}

func TestRenderGlimpseOverlay_TinyPatchSkipsLabel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	assert.NotPanics(t, func() {
		RenderGlimpseOverlay(img, glimpse.Location{}, []int{2}, color.White)
	})
}
