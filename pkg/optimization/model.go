package optimization

import "math"

// Model описывает параметрическую функцию y = f(x; p)
type Model interface {
	Name() string
	NumParams() int
	Eval(x float64, p []float64) float64
}

// JacobianModel is a Model that knows its partial derivatives.
// Gradient fills row with ∂f/∂p_k evaluated at x.
type JacobianModel interface {
	Model
	Gradient(x float64, p []float64, row []float64)
}

// Canonicalizer rewrites a parameter vector into an equivalent normalized form.
type Canonicalizer interface {
	Canonicalize(p []float64) []float64
}

// SineModel: A*sin(f*x + φ) + c, p = (A, f, φ, c).
type SineModel struct{}

func (SineModel) Name() string   { return "sine" }
func (SineModel) NumParams() int { return 4 }

func (SineModel) Eval(x float64, p []float64) float64 {
	return p[0]*math.Sin(p[1]*x+p[2]) + p[3]
}

func (SineModel) Gradient(x float64, p []float64, row []float64) {
	s, c := math.Sincos(p[1]*x + p[2])
	row[0] = s
	row[1] = p[0] * x * c
	row[2] = p[0] * c
	row[3] = 1
}

// Canonicalize makes amplitude and frequency non-negative and wraps the phase into (-π, π].
func (SineModel) Canonicalize(p []float64) []float64 {
	out := append([]float64(nil), p...)
	out[0], out[1], out[2] = canonicalSine(out[0], out[1], out[2])
	return out
}

// CompositeModel: a1*sin(f1*x + p1) + a2*cos(f2*x + p2) + c,
// p = (a1, f1, p1, a2, f2, p2, c).
type CompositeModel struct{}

func (CompositeModel) Name() string   { return "sine+cosine" }
func (CompositeModel) NumParams() int { return 7 }

func (CompositeModel) Eval(x float64, p []float64) float64 {
	return p[0]*math.Sin(p[1]*x+p[2]) + p[3]*math.Cos(p[4]*x+p[5]) + p[6]
}

func (CompositeModel) Gradient(x float64, p []float64, row []float64) {
	s1, c1 := math.Sincos(p[1]*x + p[2])
	s2, c2 := math.Sincos(p[4]*x + p[5])
	row[0] = s1
	row[1] = p[0] * x * c1
	row[2] = p[0] * c1
	row[3] = c2
	row[4] = -p[3] * x * s2
	row[5] = -p[3] * s2
	row[6] = 1
}

func (CompositeModel) Canonicalize(p []float64) []float64 {
	out := append([]float64(nil), p...)
	out[0], out[1], out[2] = canonicalSine(out[0], out[1], out[2])

	a, f, phi := out[3], out[4], out[5]
	// cos(-f*x + φ) = cos(f*x - φ)
	if f < 0 {
		f, phi = -f, -phi
	}
	if a < 0 {
		a, phi = -a, phi+math.Pi
	}
	out[3], out[4], out[5] = a, f, WrapPhase(phi)
	return out
}

// Canonicalize normalizes p when the model supports it and returns a copy otherwise.
func Canonicalize(model Model, p []float64) []float64 {
	if c, ok := model.(Canonicalizer); ok {
		return c.Canonicalize(p)
	}
	return append([]float64(nil), p...)
}

func canonicalSine(a, f, phi float64) (float64, float64, float64) {
	// A*sin(-f*x + φ) = -A*sin(f*x - φ)
	if f < 0 {
		a, f, phi = -a, -f, -phi
	}
	if a < 0 {
		a, phi = -a, phi+math.Pi
	}
	return a, f, WrapPhase(phi)
}

// WrapPhase maps phi into (-π, π].
func WrapPhase(phi float64) float64 {
	if math.IsNaN(phi) || math.IsInf(phi, 0) {
		return phi
	}
	r := math.Remainder(phi, 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
