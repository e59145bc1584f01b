package glimpse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/retina/internal/tensor"
)

// gradientBatch builds a single-channel batch where pixel (y, x) of every
// sample holds y*w + x, which keeps expected patch values hand-computable.
func gradientBatch(t *testing.T, b, h, w int) *tensor.ImageBatch {
	t.Helper()
	batch, err := tensor.NewImageBatch(b, h, w, 1)
	require.NoError(t, err)
	for bi := 0; bi < b; bi++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				batch.Set(bi, y, x, 0, float32(y*w+x))
			}
		}
	}
	return batch
}

func TestNewSensor_Validation(t *testing.T) {
	tests := []struct {
		name string
		g, k int
		s    float64
	}{
		{"zero g", 0, 2, 2},
		{"negative g", -4, 2, 2},
		{"zero k", 4, 0, 2},
		{"zero s", 4, 2, 0},
		{"negative s", 4, 2, -1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSensor(tt.g, tt.k, tt.s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestPatchSizes_Schedule(t *testing.T) {
	tests := []struct {
		name string
		g, k int
		s    float64
		want []int
	}{
		{"doubling", 4, 3, 2, []int{4, 8, 16}},
		{"fractional scale floors", 3, 3, 1.5, []int{3, 4, 6}},
		{"single patch", 8, 1, 2, []int{8}},
		{"shrinking scale floors at one", 4, 4, 0.5, []int{4, 2, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSensor(tt.g, tt.k, tt.s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.PatchSizes())
		})
	}
}

func TestPatchSizes_ReturnsCopy(t *testing.T) {
	s, err := NewSensor(4, 2, 2)
	require.NoError(t, err)
	sizes := s.PatchSizes()
	sizes[0] = 999
	assert.Equal(t, []int{4, 8}, s.PatchSizes())
}

func TestDenormalize(t *testing.T) {
	tests := []struct {
		extent int
		coord  float64
		want   int
	}{
		{8, 0, 4},
		{8, -1, 0},
		{8, 1, 8},
		{7, 0, 3},
		{7, -1, 0},
		{7, 1, 6},
		{28, 0, 14},
		{28, 0.5, 21},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Denormalize(tt.extent, tt.coord),
			"extent=%d coord=%g", tt.extent, tt.coord)
	}
}

func TestExtract_ShapeInvariant(t *testing.T) {
	s, err := NewSensor(3, 2, 2)
	require.NoError(t, err)

	batch, err := tensor.NewImageBatch(2, 10, 10, 3)
	require.NoError(t, err)

	ret, err := s.Extract(batch, []Location{{}, {}})
	require.NoError(t, err)
	assert.Equal(t, 2, ret.B)
	assert.Equal(t, 2, ret.K)
	assert.Equal(t, 3, ret.G)
	assert.Equal(t, 3, ret.C)
	assert.Len(t, ret.Data, 2*2*3*3*3)
}

func TestExtract_InvalidArguments(t *testing.T) {
	s, err := NewSensor(4, 2, 2)
	require.NoError(t, err)

	batch := gradientBatch(t, 2, 8, 8)

	_, err = s.Extract(nil, []Location{{}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Extract(batch, []Location{{}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Extract(batch, []Location{{}, {}, {}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// The reference scenario: g=4, k=2, s=2 over an 8x8 gradient at the center.
// Patch sizes are [4, 8]; the first patch is the untouched central 4x4 block
// and the second is the full image reduced 2x, i.e. 2x2 block means.
func TestExtract_CenterGradient(t *testing.T) {
	s, err := NewSensor(4, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 8}, s.PatchSizes())

	batch := gradientBatch(t, 1, 8, 8)
	ret, err := s.Extract(batch, []Location{{X: 0, Y: 0}})
	require.NoError(t, err)

	// First patch: rows 2..5, cols 2..5, copied bit-exact (no resample pass).
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := float32((y+2)*8 + (x + 2))
			assert.Equal(t, want, ret.At(0, 0, y, x, 0), "patch 0 at (%d,%d)", y, x)
		}
	}

	// Second patch: mean of each 2x2 block of the full image,
	// which works out to 16y + 2x + 4.5.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := 16*float32(y) + 2*float32(x) + 4.5
			assert.InDelta(t, want, ret.At(0, 1, y, x, 0), 1e-5, "patch 1 at (%d,%d)", y, x)
		}
	}
}

// With k=1 extraction reduces to a single centered crop reshaped to
// (B,1,g,g,C), with no resampling artifacts.
func TestExtract_SinglePatchIsCenteredCrop(t *testing.T) {
	s, err := NewSensor(4, 1, 2)
	require.NoError(t, err)

	batch := gradientBatch(t, 1, 8, 8)
	ret, err := s.Extract(batch, []Location{{X: 0, Y: 0}})
	require.NoError(t, err)

	require.Equal(t, 1, ret.K)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := batch.At(0, y+2, x+2, 0)
			assert.Equal(t, want, ret.At(0, 0, y, x, 0))
		}
	}
}

// Focus at the top-left corner: the requested 4x4 region extends past the
// image, the clamp policy truncates it to the 2x2 corner block, and the
// resampler scales it back up to 4x4. Bilinear upsampling of corner values
// {0, 1, 8, 9} gives tx + 8*ty with t in {0, 0.25, 0.75, 1}.
func TestExtract_TopLeftBoundaryClamped(t *testing.T) {
	s, err := NewSensor(4, 1, 2)
	require.NoError(t, err)

	batch := gradientBatch(t, 1, 8, 8)
	ret, err := s.Extract(batch, []Location{{X: -1, Y: -1}})
	require.NoError(t, err)

	tvals := []float32{0, 0.25, 0.75, 1}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := tvals[x] + 8*tvals[y]
			assert.InDelta(t, want, ret.At(0, 0, y, x, 0), 1e-5, "at (%d,%d)", y, x)
		}
	}
}

// A location far outside [-1, 1] must not panic; the region collapses to
// the nearest 1-pixel strip at the border.
func TestExtract_FarOutsideLocation(t *testing.T) {
	s, err := NewSensor(4, 1, 2)
	require.NoError(t, err)

	batch := gradientBatch(t, 1, 8, 8)
	ret, err := s.Extract(batch, []Location{{X: 5, Y: 5}})
	require.NoError(t, err)

	// Bottom-right pixel is 63; the whole patch is built from that strip.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.InDelta(t, 63, ret.At(0, 0, y, x, 0), 1e-5)
		}
	}
}

func TestExtract_NonSquareImage(t *testing.T) {
	s, err := NewSensor(2, 1, 2)
	require.NoError(t, err)

	// 6 rows, 10 cols: each axis denormalizes against its own extent.
	batch := gradientBatch(t, 1, 6, 10)
	ret, err := s.Extract(batch, []Location{{X: 0, Y: 0}})
	require.NoError(t, err)

	// Center (5, 3): rows 2..3, cols 4..5.
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want := float32((y+2)*10 + (x + 4))
			assert.Equal(t, want, ret.At(0, 0, y, x, 0))
		}
	}
}

func TestExtract_BatchIndependence(t *testing.T) {
	const b, h, w, c = 5, 12, 12, 2
	rng := rand.New(rand.NewSource(7))

	batch, err := tensor.NewImageBatch(b, h, w, c)
	require.NoError(t, err)
	for i := range batch.Data {
		batch.Data[i] = rng.Float32()
	}
	locs := make([]Location, b)
	for i := range locs {
		locs[i] = Location{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1}
	}

	s, err := NewSensor(4, 3, 1.7)
	require.NoError(t, err)

	batched, err := s.Extract(batch, locs)
	require.NoError(t, err)

	for i := 0; i < b; i++ {
		single, err := tensor.NewImageBatchFrom(batch.Image(i), 1, h, w, c)
		require.NoError(t, err)
		one, err := s.Extract(single, []Location{locs[i]})
		require.NoError(t, err)
		assert.Equal(t, one.Flatten(0), batched.Flatten(i), "sample %d", i)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	batch := gradientBatch(t, 3, 16, 16)
	locs := []Location{{X: -0.3, Y: 0.8}, {X: 0, Y: 0}, {X: 0.9, Y: -0.9}}

	s, err := NewSensor(5, 3, 2)
	require.NoError(t, err)

	first, err := s.Extract(batch, locs)
	require.NoError(t, err)
	second, err := s.Extract(batch, locs)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
}

func TestExtract_ShrinkingScaleDoesNotCrash(t *testing.T) {
	s, err := NewSensor(4, 3, 0.5)
	require.NoError(t, err)

	batch := gradientBatch(t, 1, 8, 8)
	ret, err := s.Extract(batch, []Location{{X: 0, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, 3, ret.K)
}

func TestClampSpan(t *testing.T) {
	tests := []struct {
		name        string
		start, size int
		n           int
		wantLo      int
		wantHi      int
	}{
		{"inside", 2, 4, 8, 2, 6},
		{"over left", -2, 4, 8, 0, 2},
		{"over right", 6, 4, 8, 6, 8},
		{"fully left", -9, 4, 8, 0, 1},
		{"fully right", 9, 4, 8, 7, 8},
		{"covers all", -2, 12, 8, 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := clampSpan(tt.start, tt.size, tt.n)
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
		})
	}
}
