package optimization

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sine-fitting/internal/domain"
)

// RSquared returns 1 - SS_res/SS_tot, or 0 for constant data.
func RSquared(y, predicted []float64) float64 {
	mean := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i := range y {
		r := y[i] - predicted[i]
		ssRes += r * r
		d := y[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// RMSE returns the root of the mean squared residual.
func RMSE(y, predicted []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	return floats.Distance(y, predicted, 2) / math.Sqrt(float64(len(y)))
}

// AIC = n*ln(SS_res/n) + 2k. A zero SS_res is floored so the value stays finite.
func AIC(ssRes float64, n, k int) float64 {
	if n == 0 {
		return math.NaN()
	}
	ratio := math.Max(ssRes/float64(n), math.SmallestNonzeroFloat64)
	return float64(n)*math.Log(ratio) + 2*float64(k)
}

// Candidate - оценённая модель-кандидат
type Candidate struct {
	Kind     domain.ModelKind
	Model    Model
	Params   []float64
	SSRes    float64
	RSquared float64
	RMSE     float64
	AIC      float64
}

// Evaluate computes the quality metrics of params on the cost function's samples.
func Evaluate(cost *CostFunction, kind domain.ModelKind, params []float64) Candidate {
	samples := cost.Samples()
	predicted := cost.Predict(params, samples.X)
	ssRes := cost.sse(params)

	return Candidate{
		Kind:     kind,
		Model:    cost.Model(),
		Params:   append([]float64(nil), params...),
		SSRes:    ssRes,
		RSquared: RSquared(samples.Y, predicted),
		RMSE:     RMSE(samples.Y, predicted),
		AIC:      AIC(ssRes, samples.Len(), cost.NumParams()),
	}
}

// SelectModel prefers the simpler model unless the composite one improves R²
// by more than margin.
func SelectModel(simple Candidate, composite *Candidate, margin float64) Candidate {
	if composite == nil || !isFinite(composite.RSquared) {
		return simple
	}
	if composite.RSquared-simple.RSquared > margin {
		return *composite
	}
	return simple
}

// Curve samples the model at n evenly spaced points over [lo, hi].
func Curve(model Model, params []float64, lo, hi float64, n int) ([]float64, []float64) {
	n = max(n, 2)
	xs := floats.Span(make([]float64, n), lo, hi)
	ys := make([]float64, n)
	for i, x := range xs {
		ys[i] = model.Eval(x, params)
	}
	return xs, ys
}
