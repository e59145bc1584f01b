package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/retina/internal/tensor"
)

func grayImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = uint8((y*w + x) % 256)
		}
	}
	return img
}

func TestToImageBatch_Grayscale(t *testing.T) {
	batch, err := ToImageBatch([]image.Image{grayImage(4, 4)}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.B)
	assert.Equal(t, 4, batch.H)
	assert.Equal(t, 4, batch.W)
	assert.Equal(t, 1, batch.C)

	// Pixel (1, 2) holds 1*4+2 = 6, scaled to 6/255.
	assert.InDelta(t, 6.0/255.0, batch.At(0, 1, 2, 0), 1e-6)
}

func TestToImageBatch_Color(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 128, B: 0, A: 255})

	batch, err := ToImageBatch([]image.Image{img}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.C)
	assert.InDelta(t, 1.0, batch.At(0, 0, 0, 0), 1e-6)
	assert.InDelta(t, 128.0/255.0, batch.At(0, 0, 0, 1), 1e-6)
	assert.InDelta(t, 0.0, batch.At(0, 0, 0, 2), 1e-6)
}

func TestToImageBatch_Errors(t *testing.T) {
	_, err := ToImageBatch(nil, true)
	assert.Error(t, err)

	_, err = ToImageBatch([]image.Image{nil}, true)
	assert.Error(t, err)

	_, err = ToImageBatch([]image.Image{grayImage(4, 4), grayImage(5, 4)}, true)
	assert.Error(t, err)
}

func TestPatchImage_Gray(t *testing.T) {
	ret, err := tensor.NewRetina(1, 1, 2, 1)
	require.NoError(t, err)
	copy(ret.Data, []float32{0, 0.5, 1.0, 2.0})

	img, err := PatchImage(ret, 0, 0)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(0), gray.Pix[0])
	assert.Equal(t, uint8(128), gray.Pix[1])
	assert.Equal(t, uint8(255), gray.Pix[gray.Stride])
	// Values above 1 clamp to 255.
	assert.Equal(t, uint8(255), gray.Pix[gray.Stride+1])
}

func TestPatchImage_Color(t *testing.T) {
	ret, err := tensor.NewRetina(1, 1, 1, 3)
	require.NoError(t, err)
	copy(ret.Data, []float32{1, 0, 0.5})

	img, err := PatchImage(ret, 0, 0)
	require.NoError(t, err)
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(255), nrgba.Pix[0])
	assert.Equal(t, uint8(0), nrgba.Pix[1])
	assert.Equal(t, uint8(128), nrgba.Pix[2])
	assert.Equal(t, uint8(255), nrgba.Pix[3])
}

func TestPatchImage_Errors(t *testing.T) {
	_, err := PatchImage(nil, 0, 0)
	assert.Error(t, err)

	ret, err := tensor.NewRetina(1, 1, 2, 1)
	require.NoError(t, err)
	_, err = PatchImage(ret, 1, 0)
	assert.Error(t, err)
	_, err = PatchImage(ret, 0, 2)
	assert.Error(t, err)

	twoChan, err := tensor.NewRetina(1, 1, 2, 2)
	require.NoError(t, err)
	_, err = PatchImage(twoChan, 0, 0)
	assert.Error(t, err)
}
