package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/retina/internal/tensor"
)

// GradientImage creates a grayscale image where pixel (x, y) has the value
// (x + y) mod 256. Useful for checking patch placement since every region
// of the image is distinguishable.
func GradientImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: byte((x + y) % 256)})
		}
	}
	return img
}

// CheckerImage creates a grayscale checkerboard with the given cell size.
func CheckerImage(width, height, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// GradientBatch creates an image batch where sample b has pixel value
// b*1000 + y*w + x in channel 0 and channel c adds c*0.1. Every element is
// unique, which makes misplaced reads show up in assertions.
func GradientBatch(b, h, w, c int) *tensor.ImageBatch {
	batch, err := tensor.NewImageBatch(b, h, w, c)
	if err != nil {
		panic(err)
	}
	for bi := 0; bi < b; bi++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for ci := 0; ci < c; ci++ {
					batch.Set(bi, y, x, ci, float32(bi*1000+y*w+x)+float32(ci)*0.1)
				}
			}
		}
	}
	return batch
}

// WritePNG writes an image to path, creating parent directories as needed.
func WritePNG(t *testing.T, img image.Image, path string) {
	t.Helper()

	require.NoError(t, EnsureDir(filepath.Dir(path)))

	file, err := os.Create(path) //nolint:gosec // test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	require.NoError(t, png.Encode(file, img))
}
