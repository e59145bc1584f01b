// Package glimpse implements the retina-like glimpse sensor: a
// bandwidth-limited view of an image built from k nested square patches of
// increasing physical size around a focus point, each resampled to a common
// g-by-g resolution and stacked into a retina tensor of shape (B, k, g, g, C).
package glimpse

import (
	"runtime"
	"sync"

	"github.com/MeKo-Tech/retina/internal/mempool"
	"github.com/MeKo-Tech/retina/internal/tensor"
)

// Location is a normalized focus coordinate. Both components lie in [-1, 1]:
// (0,0) is the image center, (-1,-1) the top-left corner and (1,1) the
// bottom-right corner. X maps to the width (column) axis, Y to the height
// (row) axis. Values outside [-1, 1] are accepted; they push the patch
// toward or past the border, where the clamping policy below applies.
type Location struct {
	X float64
	Y float64
}

// Sensor extracts foveated glimpses. The configuration triple (g, k, s) is
// fixed at construction and never mutated, so a Sensor is safe for
// concurrent use.
//
// Boundary policy: patch rectangles are never padded or rejected. A
// requested region is intersected with the image bounds, which can yield a
// smaller patch near an edge; that patch is then resampled up to g-by-g. A
// region falling entirely outside the image clamps to the nearest 1-pixel
// strip at the border. Out-of-range coordinates therefore degrade
// gracefully instead of failing.
type Sensor struct {
	g     int
	k     int
	s     float64
	sizes []int
}

// NewSensor validates the configuration and precomputes the patch size
// schedule: size_0 = g, size_{i+1} = floor(s * size_i). Sizes are floored
// at 1 so a scale factor <= 1 degenerates but never breaks slicing.
func NewSensor(g, k int, s float64) (*Sensor, error) {
	if g <= 0 {
		return nil, invalidArg("configure", "patch size g must be positive, got %d", g)
	}
	if k <= 0 {
		return nil, invalidArg("configure", "patch count k must be positive, got %d", k)
	}
	if s <= 0 {
		return nil, invalidArg("configure", "scale factor s must be positive, got %g", s)
	}

	sizes := make([]int, k)
	size := g
	for i := 0; i < k; i++ {
		if size < 1 {
			size = 1
		}
		sizes[i] = size
		size = int(s * float64(size))
	}

	return &Sensor{g: g, k: k, s: s, sizes: sizes}, nil
}

// PatchSizes returns the precomputed side lengths of the k nested patches,
// smallest first. The returned slice is a copy.
func (s *Sensor) PatchSizes() []int {
	out := make([]int, len(s.sizes))
	copy(out, s.sizes)
	return out
}

// PatchSize returns g, the common output resolution.
func (s *Sensor) PatchSize() int { return s.g }

// NumPatches returns k.
func (s *Sensor) NumPatches() int { return s.k }

// ScaleFactor returns s.
func (s *Sensor) ScaleFactor() float64 { return s.s }

// Denormalize maps a coordinate c in [-1, 1] to pixel space for an axis of
// the given extent: pixel = c*(extent/2) + extent/2 with truncating integer
// division, so -1 -> 0, 0 -> extent/2 and 1 -> extent (up to truncation).
func Denormalize(extent int, c float64) int {
	half := extent / 2
	return int(c*float64(half)) + half
}

// Extract produces the retina tensor for a batch of images and one focus
// location per image. It is a pure function of its inputs and the sensor
// configuration: no shared state is touched, and repeated calls with the
// same inputs yield identical results. The call either fully succeeds or
// fails without partial output.
//
// Per-sample work is independent, so samples are spread over a bounded set
// of workers; the assembly order is fixed by the output layout, and
// parallelism does not alter numeric results.
func (s *Sensor) Extract(batch *tensor.ImageBatch, locs []Location) (*tensor.Retina, error) {
	if batch == nil {
		return nil, invalidArg("extract", "nil image batch")
	}
	if err := batch.Validate(); err != nil {
		return nil, &ExtractionError{Operation: "extract", Err: err}
	}
	if len(locs) != batch.B {
		return nil, invalidArg("extract", "location count %d does not match batch size %d",
			len(locs), batch.B)
	}

	ret, err := tensor.NewRetina(batch.B, s.k, s.g, batch.C)
	if err != nil {
		return nil, &ExtractionError{Operation: "extract", Err: err}
	}

	maxSize := s.sizes[len(s.sizes)-1]
	if s.g > maxSize {
		maxSize = s.g
	}
	bufLen := maxSize * maxSize * batch.C

	workers := runtime.NumCPU()
	if workers > batch.B {
		workers = batch.B
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for _i := 0; _i < workers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := mempool.GetFloat32(bufLen)
			defer mempool.PutFloat32(buf)
			for b := range indices {
				s.extractSample(batch, locs[b], ret, b, buf)
			}
		}()
	}
	for b := 0; b < batch.B; b++ {
		indices <- b
	}
	close(indices)
	wg.Wait()

	return ret, nil
}

// extractSample fills the k patch slots of sample b. buf is scratch space
// large enough for the largest patch at this batch's channel count.
func (s *Sensor) extractSample(batch *tensor.ImageBatch, loc Location, ret *tensor.Retina, b int, buf []float32) {
	px := Denormalize(batch.W, loc.X)
	py := Denormalize(batch.H, loc.Y)

	for i, size := range s.sizes {
		ph, pw := slicePatch(batch, b, px, py, size, buf)
		dst := ret.Patch(b, i)
		if ph == s.g && pw == s.g {
			// Already at output resolution: copy verbatim, no resample pass.
			copy(dst, buf[:s.g*s.g*batch.C])
			continue
		}
		resizeBilinear(buf[:ph*pw*batch.C], ph, pw, batch.C, dst, s.g, s.g)
	}
}

// slicePatch copies the size-by-size region centered at (px, py) of sample b
// into buf, clamped to the image bounds, and reports the resulting patch
// height and width.
func slicePatch(batch *tensor.ImageBatch, b, px, py, size int, buf []float32) (int, int) {
	x0, x1 := clampSpan(px-size/2, size, batch.W)
	y0, y1 := clampSpan(py-size/2, size, batch.H)

	pw := x1 - x0
	ph := y1 - y0
	c := batch.C
	for row := 0; row < ph; row++ {
		src := batch.Row(b, y0+row)
		copy(buf[row*pw*c:(row+1)*pw*c], src[x0*c:x1*c])
	}
	return ph, pw
}

// clampSpan intersects the half-open span [start, start+size) with [0, n).
// A span entirely outside the image clamps to the nearest 1-pixel strip.
func clampSpan(start, size, n int) (int, int) {
	end := start + size
	if end <= 0 {
		return 0, 1
	}
	if start >= n {
		return n - 1, n
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	return start, end
}
