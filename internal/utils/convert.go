package utils

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/retina/internal/tensor"
)

// ToImageBatch converts decoded images into a float32 batch with pixel
// values scaled to [0, 1]. All images must share the same dimensions. With
// grayscale set, each image collapses to a single luminance channel (the
// sensor itself is channel-agnostic; this just shrinks the retina tensor).
func ToImageBatch(imgs []image.Image, grayscale bool) (*tensor.ImageBatch, error) {
	if len(imgs) == 0 {
		return nil, &ImageError{Operation: "convert", Err: errors.New("no images provided")}
	}

	channels := 3
	if grayscale {
		channels = 1
	}

	var batch *tensor.ImageBatch
	for i, img := range imgs {
		if img == nil {
			return nil, &ImageError{Operation: "convert", Err: fmt.Errorf("image %d is nil", i)}
		}
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w <= 0 || h <= 0 {
			return nil, &ImageError{Operation: "convert", Err: fmt.Errorf("image %d has zero area", i)}
		}
		if batch == nil {
			var err error
			batch, err = tensor.NewImageBatch(len(imgs), h, w, channels)
			if err != nil {
				return nil, &ImageError{Operation: "convert", Err: err}
			}
		} else if h != batch.H || w != batch.W {
			return nil, &ImageError{
				Operation: "convert",
				Err: fmt.Errorf("image %d is %dx%d, batch is %dx%d",
					i, w, h, batch.W, batch.H),
			}
		}

		if grayscale {
			gray := imaging.Grayscale(img)
			fillGray(batch, i, gray)
		} else {
			fillRGB(batch, i, imaging.Clone(img))
		}
	}
	return batch, nil
}

func fillGray(batch *tensor.ImageBatch, b int, img *image.NRGBA) {
	bounds := img.Bounds()
	for y := 0; y < batch.H; y++ {
		for x := 0; x < batch.W; x++ {
			// Grayscale output has R == G == B.
			r, _, _, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			batch.Set(b, y, x, 0, float32(r>>8)/255.0)
		}
	}
}

func fillRGB(batch *tensor.ImageBatch, b int, img *image.NRGBA) {
	bounds := img.Bounds()
	for y := 0; y < batch.H; y++ {
		for x := 0; x < batch.W; x++ {
			r, g, bl, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			batch.Set(b, y, x, 0, float32(r>>8)/255.0)
			batch.Set(b, y, x, 1, float32(g>>8)/255.0)
			batch.Set(b, y, x, 2, float32(bl>>8)/255.0)
		}
	}
}

// PatchImage renders patch i of sample b from a retina tensor as an image,
// mapping [0, 1] back to 8-bit. Values outside [0, 1] are clamped. One
// channel yields grayscale, three yield color; other counts are rejected.
func PatchImage(ret *tensor.Retina, b, i int) (image.Image, error) {
	if ret == nil {
		return nil, &ImageError{Operation: "render", Err: errors.New("nil retina tensor")}
	}
	if b < 0 || b >= ret.B || i < 0 || i >= ret.K {
		return nil, &ImageError{Operation: "render", Err: fmt.Errorf("patch (%d,%d) out of range", b, i)}
	}

	switch ret.C {
	case 1:
		img := image.NewGray(image.Rect(0, 0, ret.G, ret.G))
		for y := 0; y < ret.G; y++ {
			for x := 0; x < ret.G; x++ {
				img.Pix[y*img.Stride+x] = clamp8(ret.At(b, i, y, x, 0))
			}
		}
		return img, nil
	case 3:
		img := image.NewNRGBA(image.Rect(0, 0, ret.G, ret.G))
		for y := 0; y < ret.G; y++ {
			for x := 0; x < ret.G; x++ {
				off := y*img.Stride + x*4
				img.Pix[off] = clamp8(ret.At(b, i, y, x, 0))
				img.Pix[off+1] = clamp8(ret.At(b, i, y, x, 1))
				img.Pix[off+2] = clamp8(ret.At(b, i, y, x, 2))
				img.Pix[off+3] = 255
			}
		}
		return img, nil
	default:
		return nil, &ImageError{Operation: "render", Err: fmt.Errorf("unsupported channel count %d", ret.C)}
	}
}

func clamp8(v float32) uint8 {
	scaled := v * 255
	if scaled <= 0 {
		return 0
	}
	if scaled >= 255 {
		return 255
	}
	return uint8(scaled + 0.5)
}
