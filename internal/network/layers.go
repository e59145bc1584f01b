// Package network provides the forward-only layers that consume the glimpse
// sensor's retina tensor: dense projections, the recurrent core state update
// and the classification head. No training or gradient machinery lives here;
// weights are either seeded deterministically or loaded by the caller.
package network

import (
	"fmt"
	"math"
	"math/rand"
)

// Linear is a dense layer computing y = Wx + b.
type Linear struct {
	InSize  int
	OutSize int
	// weights is OutSize rows of InSize columns, row-major.
	weights []float32
	bias    []float32
}

// NewLinear creates a dense layer with weights drawn uniformly from
// [-1/sqrt(in), 1/sqrt(in)] using the given source, so identical seeds
// produce identical layers.
func NewLinear(in, out int, rng *rand.Rand) (*Linear, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("invalid linear dimensions %dx%d", in, out)
	}
	bound := 1.0 / math.Sqrt(float64(in))
	w := make([]float32, in*out)
	for i := range w {
		w[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	b := make([]float32, out)
	for i := range b {
		b[i] = float32((rng.Float64()*2 - 1) * bound)
	}
	return &Linear{InSize: in, OutSize: out, weights: w, bias: b}, nil
}

// SetWeights replaces the layer parameters. w must be OutSize*InSize
// elements row-major, b must be OutSize elements.
func (l *Linear) SetWeights(w, b []float32) error {
	if len(w) != l.InSize*l.OutSize {
		return fmt.Errorf("weight length %d != %d", len(w), l.InSize*l.OutSize)
	}
	if len(b) != l.OutSize {
		return fmt.Errorf("bias length %d != %d", len(b), l.OutSize)
	}
	copy(l.weights, w)
	copy(l.bias, b)
	return nil
}

// Forward applies the layer to a single input vector.
func (l *Linear) Forward(x []float32) ([]float32, error) {
	if len(x) != l.InSize {
		return nil, fmt.Errorf("input length %d != expected %d", len(x), l.InSize)
	}
	out := make([]float32, l.OutSize)
	for o := 0; o < l.OutSize; o++ {
		row := l.weights[o*l.InSize : (o+1)*l.InSize]
		sum := float64(l.bias[o])
		for i, v := range x {
			sum += float64(row[i]) * float64(v)
		}
		out[o] = float32(sum)
	}
	return out, nil
}

// ReLU rectifies xs in place and returns it.
func ReLU(xs []float32) []float32 {
	for i, v := range xs {
		if v < 0 {
			xs[i] = 0
		}
	}
	return xs
}

// Softmax converts logits to a probability distribution in place and
// returns it. The max is subtracted first for numeric stability.
func Softmax(xs []float32) []float32 {
	if len(xs) == 0 {
		return xs
	}
	maxV := xs[0]
	for _, v := range xs[1:] {
		if v > maxV {
			maxV = v
		}
	}
	var sum float64
	for i, v := range xs {
		e := math.Exp(float64(v - maxV))
		xs[i] = float32(e)
		sum += e
	}
	for i := range xs {
		xs[i] = float32(float64(xs[i]) / sum)
	}
	return xs
}
