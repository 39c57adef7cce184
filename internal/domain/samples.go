package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinSamples is the smallest sample count for which a 4-parameter sinusoid is identifiable.
const MinSamples = 4

// SampleSet представляет входные точки (x, y); после создания не изменяется
type SampleSet struct {
	X []float64
	Y []float64
}

// NewSampleSet validates x and y and returns a set holding copies of them.
func NewSampleSet(x, y []float64) (*SampleSet, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, ErrEmptySamples
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: len(x)=%d, len(y)=%d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < MinSamples {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSamples, len(x))
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("%w: index %d", ErrNonFiniteSample, i)
		}
	}

	s := &SampleSet{
		X: make([]float64, len(x)),
		Y: make([]float64, len(y)),
	}
	copy(s.X, x)
	copy(s.Y, y)
	return s, nil
}

func (s *SampleSet) Len() int {
	return len(s.X)
}

// XRange returns min(x) and max(x).
func (s *SampleSet) XRange() (float64, float64) {
	return floats.Min(s.X), floats.Max(s.X)
}

// YRange returns min(y) and max(y).
func (s *SampleSet) YRange() (float64, float64) {
	return floats.Min(s.Y), floats.Max(s.Y)
}

// XSpan returns max(x)-min(x); a zero span is reported as 1 so callers can divide by it.
func (s *SampleSet) XSpan() float64 {
	lo, hi := s.XRange()
	return nonZero(hi - lo)
}

// YSpan returns max(y)-min(y), with zero replaced by 1.
func (s *SampleSet) YSpan() float64 {
	lo, hi := s.YRange()
	return nonZero(hi - lo)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Hist calculates the histogram of values within a specified range.
// When min == max the range is taken from the data.
func Hist(values []float64, min, max float64, n int) (Histogram, error) {
	if len(values) == 0 || n < 1 {
		return Histogram{}, ErrInvalidHistogram
	}

	if min == max {
		min = math.Inf(1)
		max = math.Inf(-1)
		for _, value := range values {
			if value < min {
				min = value
			}
			if value > max {
				max = value
			}
		}
	}

	// все значения совпадают - один столбец
	if min == max || n == 1 {
		return Histogram{
			Bins: []float64{min},
			Vals: []int{len(values)},
			Len:  1,
		}, nil
	}

	binWidth := (max - min) / float64(n-1)
	histogram := make([]int, n)
	bins := make([]float64, n)

	for i := 0; i < n; i++ {
		bins[i] = min + float64(i)*binWidth
	}

	for _, value := range values {
		if math.IsNaN(value) {
			continue
		}
		if value < min {
			value = min
		} else if value > max {
			value = max
		}
		binIndex := int((value - min) / binWidth)
		histogram[binIndex]++
	}

	return Histogram{
		Bins: bins,
		Vals: histogram,
		Len:  n,
	}, nil
}
