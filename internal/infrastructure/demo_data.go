package infrastructure

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"sine-fitting/internal/domain"
)

// Параметры демонстрационного сигнала
const (
	demoPoints    = 50
	demoAmplitude = 2.5
	demoFrequency = 1.2
	demoPhase     = 0.5
	demoOffset    = 1.0
	demoNoise     = 0.2
)

// DemoSamples generates 2.5*sin(1.2x+0.5)+1 with Gaussian noise on [0, 4π].
// It is used by the command line tool when no input files are given.
func DemoSamples(logger *zap.Logger, seed uint64) *domain.SampleSet {
	noise := distuv.Normal{Mu: 0, Sigma: demoNoise, Src: rand.NewSource(seed)}

	x := floats.Span(make([]float64, demoPoints), 0, 4*math.Pi)
	y := make([]float64, demoPoints)
	for i, xi := range x {
		y[i] = demoAmplitude*math.Sin(demoFrequency*xi+demoPhase) + demoOffset + noise.Rand()
	}

	logger.Info("Using demonstration data",
		zap.Int("points", demoPoints),
		zap.Uint64("seed", seed))

	samples, err := domain.NewSampleSet(x, y)
	if err != nil {
		// не может произойти для сгенерированных данных
		panic(err)
	}
	return samples
}
