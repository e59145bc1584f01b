package network

import (
	"fmt"
	"math/rand"

	"github.com/MeKo-Tech/retina/internal/glimpse"
)

// GlimpseNetwork combines the flattened retina tensor phi with the raw
// focus location into a single glimpse representation:
//
//	g_t = relu( relu(fc(phi)) ++ relu(fc(l)) )
//
// where ++ is concatenation. The sensor has no knowledge of this module;
// it only hands over the retina tensor and the location.
type GlimpseNetwork struct {
	fcPhi *Linear
	fcLoc *Linear
}

// NewGlimpseNetwork builds the two projections: phiSize -> hiddenGlimpse
// over the flattened retina, and 2 -> hiddenLocation over the location.
func NewGlimpseNetwork(phiSize, hiddenGlimpse, hiddenLocation int, seed int64) (*GlimpseNetwork, error) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic init, not crypto
	fcPhi, err := NewLinear(phiSize, hiddenGlimpse, rng)
	if err != nil {
		return nil, fmt.Errorf("glimpse projection: %w", err)
	}
	fcLoc, err := NewLinear(2, hiddenLocation, rng)
	if err != nil {
		return nil, fmt.Errorf("location projection: %w", err)
	}
	return &GlimpseNetwork{fcPhi: fcPhi, fcLoc: fcLoc}, nil
}

// OutputSize returns the length of the glimpse representation vector.
func (g *GlimpseNetwork) OutputSize() int {
	return g.fcPhi.OutSize + g.fcLoc.OutSize
}

// Forward produces the glimpse representation for one sample.
func (g *GlimpseNetwork) Forward(phi []float32, loc glimpse.Location) ([]float32, error) {
	phiOut, err := g.fcPhi.Forward(phi)
	if err != nil {
		return nil, fmt.Errorf("glimpse projection: %w", err)
	}
	locOut, err := g.fcLoc.Forward([]float32{float32(loc.X), float32(loc.Y)})
	if err != nil {
		return nil, fmt.Errorf("location projection: %w", err)
	}

	out := make([]float32, 0, len(phiOut)+len(locOut))
	out = append(out, ReLU(phiOut)...)
	out = append(out, ReLU(locOut)...)
	return ReLU(out), nil
}
