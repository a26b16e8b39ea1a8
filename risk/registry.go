package risk

import (
	"github.com/agrisense/biocat/gain"
)

// Strategy labels for the fixed six-entry registry.
const (
	StrategyExp        = "EXP"
	StrategySigmoid    = "SIGMOID"
	StrategyStep       = "STEP"
	StrategyTriangular = "TRIANGULAR"
	StrategyTrapezoid  = "TRAPEZOID"
	StrategyGaussian   = "GAUSSIAN"
)

// Trapezoid knots are fixed rather than anchor-derived: the high-risk plateau
// of the field data sits in a known band of the normalized index.
const (
	trapStart     = 0.4
	trapEnd       = 0.9
	trapFlatStart = 0.55
	trapFlatEnd   = 0.75
)

// Registry is the named binding of weighting strategy labels to configured
// gain curves for one training split. Construction is idempotent and
// side-effect-free: building twice from identical Anchors yields curves that
// produce bit-identical weight vectors.
type Registry struct {
	strategies map[string]gain.Function
	labels     []string
}

// BuildRegistry constructs the six-strategy registry from a training split's
// anchors:
//
//	EXP        Exponential(thresh=Q60)
//	SIGMOID    Sigmoid(midpoint=Median)
//	STEP       Step(low=Q40, high=Q80)
//	TRIANGULAR Triangular(a=Q40, b=Q80, peak=Median)
//	TRAPEZOID  Trapezoid(0.4, 0.9, 0.55, 0.75)  (fixed knots)
//	GAUSSIAN   Gaussian(mu=Median, sigma=HalfIQR)
//
// Degenerate anchors (zero HalfIQR, a median outside (Q40, Q80)) make one of
// the curves ill-defined; BuildRegistry fails fast with the underlying
// validation error instead of registering a curve that emits NaN weights.
func BuildRegistry(a Anchors) (*Registry, error) {
	triangular, err := gain.NewTriangular(a.Q40, a.Q80, a.Median,
		gain.DefaultMaxWeight, gain.DefaultMinWeight)
	if err != nil {
		return nil, err
	}

	trapezoid, err := gain.NewTrapezoid(trapStart, trapEnd, trapFlatStart, trapFlatEnd,
		gain.DefaultMaxWeight, gain.DefaultMinWeight)
	if err != nil {
		return nil, err
	}

	gaussian, err := gain.NewGaussian(a.Median, a.HalfIQR)
	if err != nil {
		return nil, err
	}

	return &Registry{
		strategies: map[string]gain.Function{
			StrategyExp:        gain.NewExponential(a.Q60, gain.DefaultExpScale),
			StrategySigmoid:    gain.NewSigmoid(a.Median, gain.DefaultSigmoidSlope),
			StrategyStep:       gain.NewStep(a.Q40, a.Q80, gain.DefaultLowWeight, gain.DefaultHighWeight, gain.DefaultMidWeight),
			StrategyTriangular: triangular,
			StrategyTrapezoid:  trapezoid,
			StrategyGaussian:   gaussian,
		},
		labels: []string{
			StrategyExp,
			StrategySigmoid,
			StrategyStep,
			StrategyTriangular,
			StrategyTrapezoid,
			StrategyGaussian,
		},
	}, nil
}

// Get returns the gain curve registered under label.
func (r *Registry) Get(label string) (gain.Function, bool) {
	f, ok := r.strategies[label]
	return f, ok
}

// Labels returns the strategy labels in their fixed evaluation order.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}
