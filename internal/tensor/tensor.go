package tensor

import (
	"errors"
	"fmt"
)

// ImageBatch holds B images of identical extent as float32 pixel data.
// Layout is row-major HWC per image, images packed contiguously, so the
// element (b, y, x, c) lives at b*H*W*C + y*W*C + x*C + c.
type ImageBatch struct {
	Data []float32
	B    int
	H    int
	W    int
	C    int
}

// NewImageBatch allocates a zeroed batch with the given dimensions.
func NewImageBatch(b, h, w, c int) (*ImageBatch, error) {
	if b <= 0 || h <= 0 || w <= 0 || c <= 0 {
		return nil, fmt.Errorf("invalid batch dimensions (%d,%d,%d,%d)", b, h, w, c)
	}
	return &ImageBatch{
		Data: make([]float32, b*h*w*c),
		B:    b, H: h, W: w, C: c,
	}, nil
}

// NewImageBatchFrom wraps existing data as a batch. The data length must
// match b*h*w*c exactly.
func NewImageBatchFrom(data []float32, b, h, w, c int) (*ImageBatch, error) {
	if data == nil {
		return nil, errors.New("nil data")
	}
	expected := b * h * w * c
	if b <= 0 || h <= 0 || w <= 0 || c <= 0 {
		return nil, fmt.Errorf("invalid batch dimensions (%d,%d,%d,%d)", b, h, w, c)
	}
	if len(data) != expected {
		return nil, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	return &ImageBatch{Data: data, B: b, H: h, W: w, C: c}, nil
}

// At returns the element at (b, y, x, c). No bounds checking beyond the
// underlying slice; callers index within the declared shape.
func (ib *ImageBatch) At(b, y, x, c int) float32 {
	return ib.Data[((b*ib.H+y)*ib.W+x)*ib.C+c]
}

// Set stores v at (b, y, x, c).
func (ib *ImageBatch) Set(b, y, x, c int, v float32) {
	ib.Data[((b*ib.H+y)*ib.W+x)*ib.C+c] = v
}

// Image returns the sub-slice holding sample b (a view, not a copy).
func (ib *ImageBatch) Image(b int) []float32 {
	per := ib.H * ib.W * ib.C
	return ib.Data[b*per : (b+1)*per]
}

// Row returns the sub-slice for row y of sample b (W*C elements).
func (ib *ImageBatch) Row(b, y int) []float32 {
	stride := ib.W * ib.C
	off := b*ib.H*stride + y*stride
	return ib.Data[off : off+stride]
}

// Validate checks that the data length matches the declared shape.
func (ib *ImageBatch) Validate() error {
	if ib == nil {
		return errors.New("nil image batch")
	}
	if ib.B <= 0 || ib.H <= 0 || ib.W <= 0 || ib.C <= 0 {
		return fmt.Errorf("invalid batch dimensions (%d,%d,%d,%d)", ib.B, ib.H, ib.W, ib.C)
	}
	expected := ib.B * ib.H * ib.W * ib.C
	if len(ib.Data) != expected {
		return fmt.Errorf("data length %d != expected %d for shape (%d,%d,%d,%d)",
			len(ib.Data), expected, ib.B, ib.H, ib.W, ib.C)
	}
	return nil
}

// Retina is the glimpse output tensor of shape (B, K, G, G, C): K resampled
// patches of side G per sample, patch index ordered smallest extent first.
// Layout is row-major, each patch stored HWC.
type Retina struct {
	Data []float32
	B    int
	K    int
	G    int
	C    int
}

// NewRetina allocates a zeroed retina tensor.
func NewRetina(b, k, g, c int) (*Retina, error) {
	if b <= 0 || k <= 0 || g <= 0 || c <= 0 {
		return nil, fmt.Errorf("invalid retina dimensions (%d,%d,%d,%d,%d)", b, k, g, g, c)
	}
	return &Retina{
		Data: make([]float32, b*k*g*g*c),
		B:    b, K: k, G: g, C: c,
	}, nil
}

// Patch returns the sub-slice for patch i of sample b (G*G*C elements, a view).
func (r *Retina) Patch(b, i int) []float32 {
	per := r.G * r.G * r.C
	off := (b*r.K + i) * per
	return r.Data[off : off+per]
}

// At returns the element at (b, i, y, x, c).
func (r *Retina) At(b, i, y, x, c int) float32 {
	return r.Patch(b, i)[(y*r.G+x)*r.C+c]
}

// Flatten returns sample b as a single contiguous vector of K*G*G*C
// elements, the form consumed by downstream projection layers.
func (r *Retina) Flatten(b int) []float32 {
	per := r.K * r.G * r.G * r.C
	return r.Data[b*per : (b+1)*per]
}

// Len returns the per-sample flattened length K*G*G*C.
func (r *Retina) Len() int {
	return r.K * r.G * r.G * r.C
}

// Stats computes min, max and mean over a float32 slice for debug output.
func Stats(data []float32) (float32, float32, float32) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	minVal, maxVal := data[0], data[0]
	var sum float64
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += float64(v)
	}
	return minVal, maxVal, float32(sum / float64(len(data)))
}
