package glimpse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeBilinear_ConstantImage(t *testing.T) {
	src := make([]float32, 6*6)
	for i := range src {
		src[i] = 3.5
	}

	down := make([]float32, 3*3)
	resizeBilinear(src, 6, 6, 1, down, 3, 3)
	for i, v := range down {
		assert.InDelta(t, 3.5, v, 1e-6, "down idx %d", i)
	}

	up := make([]float32, 12*12)
	resizeBilinear(src, 6, 6, 1, up, 12, 12)
	for i, v := range up {
		assert.InDelta(t, 3.5, v, 1e-6, "up idx %d", i)
	}
}

func TestResizeBilinear_TwoByTwoToOne(t *testing.T) {
	src := []float32{1, 2, 3, 4}
	dst := make([]float32, 1)
	resizeBilinear(src, 2, 2, 1, dst, 1, 1)
	assert.InDelta(t, 2.5, dst[0], 1e-6)
}

func TestResizeBilinear_ExactHalfIsBlockMean(t *testing.T) {
	// 4x4 gradient: value = y*4 + x. Halving must produce 2x2 block means.
	src := make([]float32, 16)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src[y*4+x] = float32(y*4 + x)
		}
	}
	dst := make([]float32, 4)
	resizeBilinear(src, 4, 4, 1, dst, 2, 2)

	want := []float32{2.5, 4.5, 10.5, 12.5}
	for i := range want {
		assert.InDelta(t, want[i], dst[i], 1e-5, "idx %d", i)
	}
}

func TestResizeBilinear_MultiChannelIndependent(t *testing.T) {
	// Two channels with unrelated content; resampling must not mix them.
	src := make([]float32, 2*2*2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src[(y*2+x)*2] = float32(y*2 + x) // channel 0: gradient
			src[(y*2+x)*2+1] = 7              // channel 1: constant
		}
	}
	dst := make([]float32, 1*1*2)
	resizeBilinear(src, 2, 2, 2, dst, 1, 1)
	assert.InDelta(t, 1.5, dst[0], 1e-6)
	assert.InDelta(t, 7.0, dst[1], 1e-6)
}
