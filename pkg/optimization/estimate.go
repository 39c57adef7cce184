package optimization

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"sine-fitting/internal/domain"
)

// SignalStats содержит простые статистики сигнала
type SignalStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	XSpan  float64
}

// Statistics computes the mean, population standard deviation and range of y.
func Statistics(s *domain.SampleSet) SignalStats {
	mean, variance := stat.MeanVariance(s.Y, nil)
	n := float64(s.Len())
	popVariance := 0.0
	if n > 1 {
		popVariance = variance * (n - 1) / n
	}
	lo, hi := s.YRange()

	return SignalStats{
		Mean:   mean,
		StdDev: math.Sqrt(popVariance),
		Min:    lo,
		Max:    hi,
		XSpan:  s.XSpan(),
	}
}

// EstimateFrequency returns the dominant angular frequency of the signal.
//
// The mean is removed, a Hann window is applied and the positive half of the
// spectrum is searched for the strongest non-DC bin. The sample spacing is the
// mean of consecutive x differences, so uneven sampling is tolerated. Whenever
// the spectrum cannot be used the estimate falls back to one full cycle over
// the x span.
func EstimateFrequency(s *domain.SampleSet) float64 {
	fallback := 2 * math.Pi / s.XSpan()

	n := s.Len()
	if n < 2 {
		return fallback
	}
	dt := math.Abs(s.X[n-1]-s.X[0]) / float64(n-1)
	if dt == 0 || !isFinite(dt) {
		return fallback
	}

	mean := stat.Mean(s.Y, nil)
	seq := make([]float64, n)
	for i, y := range s.Y {
		seq[i] = y - mean
	}
	window.Hann(seq)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	// только положительные частоты, как у fftfreq
	half := n / 2
	if half < 2 {
		return fallback
	}

	best, bestMag := 0, 0.0
	for k := 1; k < half; k++ {
		m := cmplx.Abs(coeffs[k])
		if !isFinite(m) {
			return fallback
		}
		if m > bestMag {
			best, bestMag = k, m
		}
	}
	if best == 0 {
		return fallback
	}

	freq := 2 * math.Pi * fft.Freq(best) / dt
	if !isFinite(freq) || freq <= 0 {
		return fallback
	}
	return freq
}

// PhaseEstimate - разложение y ≈ s*sin(f*x) + c*cos(f*x) + k
type PhaseEstimate struct {
	Phase     float64
	Amplitude float64
	Offset    float64
	OK        bool
}

// DecomposePhase solves the linear least-squares problem with columns
// [sin(f*x), cos(f*x), 1] for a fixed angular frequency f.
func DecomposePhase(s *domain.SampleSet, frequency float64) PhaseEstimate {
	n := s.Len()
	design := mat.NewDense(n, 3, nil)
	for i, x := range s.X {
		sn, cs := math.Sincos(frequency * x)
		design.Set(i, 0, sn)
		design.Set(i, 1, cs)
		design.Set(i, 2, 1)
	}
	target := mat.NewVecDense(n, append([]float64(nil), s.Y...))

	var coef mat.VecDense
	if err := coef.SolveVec(design, target); err != nil {
		return PhaseEstimate{}
	}

	sinCoeff, cosCoeff, offset := coef.AtVec(0), coef.AtVec(1), coef.AtVec(2)
	if !allFinite([]float64{sinCoeff, cosCoeff, offset}) {
		return PhaseEstimate{}
	}

	return PhaseEstimate{
		Phase:     phaseFromCoefficients(sinCoeff, cosCoeff),
		Amplitude: math.Hypot(sinCoeff, cosCoeff),
		Offset:    offset,
		OK:        true,
	}
}

// EstimatePhase returns the phase for the given frequency, or 0 when the
// regression is singular.
func EstimatePhase(s *domain.SampleSet, frequency float64) float64 {
	est := DecomposePhase(s, frequency)
	if !est.OK {
		return 0
	}
	return est.Phase
}

// A*sin(fx+φ) = A*cos(φ)*sin(fx) + A*sin(φ)*cos(fx)
func phaseFromCoefficients(sinCoeff, cosCoeff float64) float64 {
	phase := math.Atan2(cosCoeff, sinCoeff)
	if phase <= -math.Pi {
		phase = math.Pi
	}
	return phase
}

// EstimateInitial builds the starting vector (A, f, φ, c) for the simple model.
func EstimateInitial(s *domain.SampleSet) []float64 {
	st := Statistics(s)
	frequency := EstimateFrequency(s)
	phase := EstimatePhase(s, frequency)

	return []float64{
		2 * st.StdDev,
		frequency,
		phase,
		st.Mean,
	}
}

// frequencyInterval covers both the span-based range and the spectral estimate.
func frequencyInterval(s *domain.SampleSet, estimate float64) domain.Interval {
	xr := s.XSpan()
	low, high := 0.1/xr, 10/xr
	if isFinite(estimate) && estimate > 0 {
		low = math.Min(low, estimate/2)
		high = math.Max(high, 2*estimate)
	}
	return domain.Interval{Low: low, High: high}
}

// SimpleBounds derives the differential-evolution search box for (A, f, φ, c).
func SimpleBounds(s *domain.SampleSet, initial []float64) domain.Bounds {
	yr := s.YSpan()
	ymin, ymax := s.YRange()

	return domain.Bounds{
		{Low: -3 * yr, High: 3 * yr},
		frequencyInterval(s, initial[1]),
		{Low: -2 * math.Pi, High: 2 * math.Pi},
		{Low: ymin - yr, High: ymax + yr},
	}
}

// CompositeInitial seeds the sine+cosine model with the simple fit as its
// first component and a small second harmonic as its second.
func CompositeInitial(s *domain.SampleSet, simple []float64) []float64 {
	return []float64{
		simple[0], simple[1], simple[2],
		s.YSpan() / 10, 2 * simple[1], 0,
		simple[3],
	}
}

// CompositeBounds derives the search box for the composite model.
func CompositeBounds(s *domain.SampleSet, initial []float64) domain.Bounds {
	yr := s.YSpan()
	ymin, ymax := s.YRange()
	f1 := frequencyInterval(s, initial[1])
	f2 := frequencyInterval(s, initial[4])

	return domain.Bounds{
		{Low: -3 * yr, High: 3 * yr},
		f1,
		{Low: -2 * math.Pi, High: 2 * math.Pi},
		{Low: -3 * yr, High: 3 * yr},
		f2,
		{Low: -2 * math.Pi, High: 2 * math.Pi},
		{Low: ymin - yr, High: ymax + yr},
	}
}
