package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawRect_Outline(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}

	DrawRect(dst, image.Rect(2, 2, 8, 8), red, 1)

	assert.Equal(t, red, dst.RGBAAt(2, 2))
	assert.Equal(t, red, dst.RGBAAt(7, 7))
	assert.Equal(t, red, dst.RGBAAt(4, 2))
	assert.Equal(t, red, dst.RGBAAt(2, 4))
	// Interior stays untouched.
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(4, 4))
	// Outside stays untouched.
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(1, 1))
}

func TestDrawRect_ClippedToBounds(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.NotPanics(t, func() {
		DrawRect(dst, image.Rect(-5, -5, 20, 20), color.White, 2)
	})
}

func TestDrawRect_EmptyIntersection(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.NotPanics(t, func() {
		DrawRect(dst, image.Rect(10, 10, 12, 12), color.White, 1)
	})
}
