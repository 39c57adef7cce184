package domain

import (
	"errors"
	"math"
	"runtime"
)

// Config представляет конфигурацию приложения
type Config struct {
	Method                string  `yaml:"method"`
	Seed                  int64   `yaml:"seed"`
	Population            int     `yaml:"population"`
	Generations           int     `yaml:"generations"`
	Mutation              float64 `yaml:"mutation"`
	Crossover             float64 `yaml:"crossover"`
	DEIncludeInitial      *bool   `yaml:"de_include_initial"`
	LMMaxIter             int     `yaml:"lm_max_iter"`
	LMLambda              float64 `yaml:"lm_lambda"`
	GDLearningRate        float64 `yaml:"gd_learning_rate"`
	GDMaxIter             int     `yaml:"gd_max_iter"`
	GDTolerance           float64 `yaml:"gd_tolerance"`
	CompositeLearningRate float64 `yaml:"composite_learning_rate"`
	CompositeMaxIter      int     `yaml:"composite_max_iter"`
	CompareComposite      *bool   `yaml:"compare_composite"`
	SelectionMargin       float64 `yaml:"selection_margin"`
	CurvePoints           int     `yaml:"curve_points"`
	Covariance            string  `yaml:"covariance"`
	HistogramBins         int     `yaml:"histogram_bins"`
	Workers               int     `yaml:"workers"`
	LogLevel              string  `yaml:"log_level"`
	LogFile               string  `yaml:"log_file"`
	Decimals              int     `yaml:"decimals"`
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() *Config {
	includeInitial := true
	compareComposite := true
	return &Config{
		Method:                "hybrid",
		Seed:                  42,
		Population:            40,
		Generations:           200,
		Mutation:              0.8,
		Crossover:             0.9,
		DEIncludeInitial:      &includeInitial,
		LMMaxIter:             100,
		LMLambda:              1e-3,
		GDLearningRate:        1e-3,
		GDMaxIter:             2000,
		GDTolerance:           1e-8,
		CompositeLearningRate: 5e-4,
		CompositeMaxIter:      3000,
		CompareComposite:      &compareComposite,
		SelectionMargin:       0.01,
		CurvePoints:           300,
		Covariance:            "auto",
		HistogramBins:         20,
		Workers:               1,
		LogLevel:              "info",
		Decimals:              6,
	}
}

// ApplyDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Method == "" {
		c.Method = d.Method
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	if c.Population == 0 {
		c.Population = d.Population
	}
	if c.Generations == 0 {
		c.Generations = d.Generations
	}
	if c.Mutation == 0 {
		c.Mutation = d.Mutation
	}
	if c.Crossover == 0 {
		c.Crossover = d.Crossover
	}
	if c.DEIncludeInitial == nil {
		c.DEIncludeInitial = d.DEIncludeInitial
	}
	if c.LMMaxIter == 0 {
		c.LMMaxIter = d.LMMaxIter
	}
	if c.LMLambda == 0 {
		c.LMLambda = d.LMLambda
	}
	if c.GDLearningRate == 0 {
		c.GDLearningRate = d.GDLearningRate
	}
	if c.GDMaxIter == 0 {
		c.GDMaxIter = d.GDMaxIter
	}
	if c.GDTolerance == 0 {
		c.GDTolerance = d.GDTolerance
	}
	if c.CompositeLearningRate == 0 {
		c.CompositeLearningRate = d.CompositeLearningRate
	}
	if c.CompositeMaxIter == 0 {
		c.CompositeMaxIter = d.CompositeMaxIter
	}
	if c.CompareComposite == nil {
		c.CompareComposite = d.CompareComposite
	}
	if c.SelectionMargin == 0 {
		c.SelectionMargin = d.SelectionMargin
	}
	if c.CurvePoints == 0 {
		c.CurvePoints = d.CurvePoints
	}
	if c.Covariance == "" {
		c.Covariance = d.Covariance
	}
	if c.HistogramBins == 0 {
		c.HistogramBins = d.HistogramBins
	}
	if c.Workers <= 0 {
		c.Workers = max(1, runtime.NumCPU()-1)
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Decimals == 0 {
		c.Decimals = d.Decimals
	}
}

func (c *Config) GetOptMethod() OptimizationMethod {
	switch c.Method {
	case "gradient":
		return MethodGradientDescent
	case "hybrid":
		return MethodHybrid
	default:
		return MethodHybrid
	}
}

// GetCovarianceMethod разрешает значение "auto" в зависимости от метода оптимизации.
func (c *Config) GetCovarianceMethod() CovarianceMethod {
	switch c.Covariance {
	case "jacobian":
		return CovarianceJacobian
	case "hessian":
		return CovarianceHessian
	}
	if c.GetOptMethod() == MethodGradientDescent {
		return CovarianceHessian
	}
	return CovarianceJacobian
}

func (c *Config) IncludeInitial() bool {
	return c.DEIncludeInitial == nil || *c.DEIncludeInitial
}

func (c *Config) CompareCompositeModel() bool {
	return c.CompareComposite == nil || *c.CompareComposite
}

// Interval задаёт допустимый диапазон одного параметра (границы включаются)
type Interval struct {
	Low, High float64
}

// Clamp returns v limited to [Low, High].
func (i Interval) Clamp(v float64) float64 {
	return math.Max(i.Low, math.Min(i.High, v))
}

// Bounds задаёт область поиска глобального оптимизатора
type Bounds []Interval

// Clamp returns a copy of x with every component limited to its interval.
func (b Bounds) Clamp(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if i < len(b) {
			out[i] = b[i].Clamp(v)
		} else {
			out[i] = v
		}
	}
	return out
}

// ModelKind определяет семейство синусоидальных моделей
type ModelKind int

const (
	ModelSimple ModelKind = iota
	ModelComposite
)

func (k ModelKind) String() string {
	switch k {
	case ModelComposite:
		return "composite"
	default:
		return "simple"
	}
}

// Metrics содержит показатели качества аппроксимации
type Metrics struct {
	RSquared    float64   `yaml:"r_squared"`
	RMSE        float64   `yaml:"rmse"`
	AIC         float64   `yaml:"aic"`
	ParamErrors []float64 `yaml:"param_errors"`
}

// FitResult представляет итог работы конвейера для одного набора данных
type FitResult struct {
	CurveX, CurveY []float64

	Model      ModelKind
	Params     []float64
	Initial    []float64
	Amplitude  float64
	Frequency  float64
	Phase      float64
	Offset     float64
	Metrics    Metrics
	Covariance string

	SimpleRSquared    float64
	CompositeRSquared float64
	Residuals         []float64
}

// Period returns 2π/frequency, or +Inf for zero frequency.
func (r *FitResult) Period() float64 {
	if r.Frequency == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / r.Frequency
}

type Histogram struct {
	Bins []float64
	Vals []int
	Len  int
}

// OptimizationMethod представляет метод оптимизации
type OptimizationMethod int

const (
	MethodHybrid OptimizationMethod = iota
	MethodGradientDescent
)

func (m OptimizationMethod) String() string {
	if m == MethodGradientDescent {
		return "gradient"
	}
	return "hybrid"
}

// CovarianceMethod выбирает способ оценки ковариации параметров
type CovarianceMethod int

const (
	CovarianceJacobian CovarianceMethod = iota
	CovarianceHessian
)

func (m CovarianceMethod) String() string {
	if m == CovarianceHessian {
		return "hessian"
	}
	return "jacobian"
}

var (
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrEmptySamples      = errors.New("empty data arrays")
	ErrLengthMismatch    = errors.New("x and y must have the same length")
	ErrTooFewSamples     = errors.New("need at least 4 data points for sine fitting")
	ErrNonFiniteSample   = errors.New("sample contains NaN or Inf")
	ErrInvalidHistogram  = errors.New("invalid histogram input")
)
