// Package gain implements the parametrized curves that convert a biological
// risk index in [0,1] into a training sample weight.
//
// Six curve families are provided: Exponential, Sigmoid, Step, Triangular,
// Trapezoidal and Gaussian. Each is a small value object carrying its kind
// tag and parameters, so a configured curve can be inspected, compared and
// re-evaluated deterministically. Curves hold no state: identical parameters
// and input always yield the identical weight, and evaluating a vector equals
// evaluating element-wise.
//
// Parameters that would make a curve ill-defined (non-positive Gaussian
// sigma, a triangular peak outside its support, unordered trapezoid knots)
// are rejected at construction with a ValidationError rather than producing
// NaN or Inf weights at fit time.
package gain

import (
	"math"

	biocatErrors "github.com/agrisense/biocat/pkg/errors"
)

// Kind identifies a gain curve family.
type Kind string

// Curve families.
const (
	KindExponential Kind = "exponential"
	KindSigmoid     Kind = "sigmoid"
	KindStep        Kind = "step"
	KindTriangular  Kind = "triangular"
	KindTrapezoid   Kind = "trapezoid"
	KindGaussian    Kind = "gaussian"
)

// Default shape parameters used when a strategy only pins the anchor-derived
// parameters of a curve.
const (
	DefaultExpScale     = 5.0
	DefaultSigmoidSlope = 10.0
	DefaultLowWeight    = 0.5
	DefaultMidWeight    = 1.0
	DefaultHighWeight   = 2.0
	DefaultMaxWeight    = 2.0
	DefaultMinWeight    = 0.5
)

// Function is the uniform interface over all gain curves: a pure mapping
// from a risk value to a non-negative weight.
type Function interface {
	// Kind returns the curve family tag.
	Kind() Kind
	// Evaluate maps a single risk value to a weight.
	Evaluate(r float64) float64
}

// EvaluateAll applies f element-wise, preserving order and length.
func EvaluateAll(f Function, rs []float64) []float64 {
	weights := make([]float64, len(rs))
	for i, r := range rs {
		weights[i] = f.Evaluate(r)
	}
	return weights
}

// Curve samples f on an n-point evenly spaced grid over [lo, hi], returning
// the grid and the weights. Used to expose the raw series behind gain-curve
// charts.
func Curve(f Function, lo, hi float64, n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	xs = make([]float64, n)
	ys = make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		xs[i] = lo + float64(i)*step
		ys[i] = f.Evaluate(xs[i])
	}
	return xs, ys
}

// Exponential is weight = exp(Scale * (r - Thresh)): monotonically
// increasing in r for positive Scale, unbounded as r approaches 1.
type Exponential struct {
	Thresh float64
	Scale  float64
}

// NewExponential creates an exponential gain curve.
func NewExponential(thresh, scale float64) Exponential {
	return Exponential{Thresh: thresh, Scale: scale}
}

// Kind returns KindExponential.
func (g Exponential) Kind() Kind { return KindExponential }

// Evaluate returns exp(Scale * (r - Thresh)).
func (g Exponential) Evaluate(r float64) float64 {
	return math.Exp(g.Scale * (r - g.Thresh))
}

// Sigmoid is weight = 1 / (1 + exp(-Slope * (r - Midpoint))): bounded in
// (0,1), inflecting at Midpoint where it evaluates to exactly 0.5.
type Sigmoid struct {
	Midpoint float64
	Slope    float64
}

// NewSigmoid creates a sigmoid gain curve.
func NewSigmoid(midpoint, slope float64) Sigmoid {
	return Sigmoid{Midpoint: midpoint, Slope: slope}
}

// Kind returns KindSigmoid.
func (g Sigmoid) Kind() Kind { return KindSigmoid }

// Evaluate returns the logistic curve value at r.
func (g Sigmoid) Evaluate(r float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g.Slope*(r-g.Midpoint)))
}

// Step is a piecewise-constant curve: LowW below Low, HighW above High and
// MidW on the closed band [Low, High].
type Step struct {
	Low   float64
	High  float64
	LowW  float64
	HighW float64
	MidW  float64
}

// NewStep creates a step gain curve. Boundary points belong to the middle
// band: Evaluate(Low) == Evaluate(High) == midW.
func NewStep(low, high, lowW, highW, midW float64) Step {
	return Step{Low: low, High: high, LowW: lowW, HighW: highW, MidW: midW}
}

// Kind returns KindStep.
func (g Step) Kind() Kind { return KindStep }

// Evaluate returns the band weight for r.
func (g Step) Evaluate(r float64) float64 {
	switch {
	case r < g.Low:
		return g.LowW
	case r > g.High:
		return g.HighW
	default:
		return g.MidW
	}
}

// Triangular ramps linearly from MinW at A up to MaxW at Peak and back down
// to MinW at B; outside [A, B] the weight stays at MinW.
type Triangular struct {
	A    float64
	B    float64
	Peak float64
	MaxW float64
	MinW float64
}

// NewTriangular creates a triangular gain curve. Requires a < peak < b;
// anything else would divide by zero on one of the ramps.
func NewTriangular(a, b, peak, maxW, minW float64) (Triangular, error) {
	if !(a < peak && peak < b) {
		return Triangular{}, biocatErrors.NewValidationError(
			"triangular peak", "must satisfy a < peak < b", peak)
	}
	return Triangular{A: a, B: b, Peak: peak, MaxW: maxW, MinW: minW}, nil
}

// Kind returns KindTriangular.
func (g Triangular) Kind() Kind { return KindTriangular }

// Evaluate returns the ramp weight for r.
func (g Triangular) Evaluate(r float64) float64 {
	if r < g.A || r > g.B {
		return g.MinW
	}
	if r <= g.Peak {
		return g.MinW + (g.MaxW-g.MinW)*(r-g.A)/(g.Peak-g.A)
	}
	return g.MinW + (g.MaxW-g.MinW)*(g.B-r)/(g.B-g.Peak)
}

// Trapezoid ramps from MinW at Start up to MaxW at FlatStart, stays flat at
// MaxW through FlatEnd and ramps back down to MinW at End; outside
// [Start, End] the weight stays at MinW.
type Trapezoid struct {
	Start     float64
	End       float64
	FlatStart float64
	FlatEnd   float64
	MaxW      float64
	MinW      float64
}

// NewTrapezoid creates a trapezoidal gain curve. Requires
// start < flatStart < flatEnd < end.
func NewTrapezoid(start, end, flatStart, flatEnd, maxW, minW float64) (Trapezoid, error) {
	if !(start < flatStart && flatStart < flatEnd && flatEnd < end) {
		return Trapezoid{}, biocatErrors.NewValidationError(
			"trapezoid knots", "must satisfy start < flatStart < flatEnd < end",
			[4]float64{start, flatStart, flatEnd, end})
	}
	return Trapezoid{
		Start: start, End: end,
		FlatStart: flatStart, FlatEnd: flatEnd,
		MaxW: maxW, MinW: minW,
	}, nil
}

// Kind returns KindTrapezoid.
func (g Trapezoid) Kind() Kind { return KindTrapezoid }

// Evaluate returns the trapezoid weight for r.
func (g Trapezoid) Evaluate(r float64) float64 {
	switch {
	case r < g.Start || r > g.End:
		return g.MinW
	case r < g.FlatStart:
		return g.MinW + (g.MaxW-g.MinW)*(r-g.Start)/(g.FlatStart-g.Start)
	case r <= g.FlatEnd:
		return g.MaxW
	default:
		return g.MinW + (g.MaxW-g.MinW)*(g.End-r)/(g.End-g.FlatEnd)
	}
}

// Gaussian is the bell curve weight = exp(-(r-Mu)^2 / (2*Sigma^2)), peaking
// at exactly 1.0 when r == Mu and symmetric around Mu.
type Gaussian struct {
	Mu    float64
	Sigma float64
}

// NewGaussian creates a Gaussian gain curve. Sigma must be positive.
func NewGaussian(mu, sigma float64) (Gaussian, error) {
	if sigma <= 0 {
		return Gaussian{}, biocatErrors.NewValidationError(
			"gaussian sigma", "must be > 0", sigma)
	}
	return Gaussian{Mu: mu, Sigma: sigma}, nil
}

// Kind returns KindGaussian.
func (g Gaussian) Kind() Kind { return KindGaussian }

// Evaluate returns the bell curve value at r.
func (g Gaussian) Evaluate(r float64) float64 {
	d := r - g.Mu
	return math.Exp(-(d * d) / (2 * g.Sigma * g.Sigma))
}
