package infrastructure

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sine-fitting/internal/domain"
)

type FmtFunc func(float64) string

type TXTFileWriter struct {
	logger    *zap.Logger
	formatter FmtFunc
}

var _ domain.ResultWriter = (*TXTFileWriter)(nil)

func NewTXTFileWriter(logger *zap.Logger, formatter FmtFunc) *TXTFileWriter {
	return &TXTFileWriter{logger: logger, formatter: formatter}
}

// WriteCurve writes the reconstructed curve as two tab separated columns.
func (w *TXTFileWriter) WriteCurve(filename string, result *domain.FitResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	// Заголовок
	fmt.Fprintf(writer, "X\tY\n")
	for i := range result.CurveX {
		fmt.Fprintf(writer, "%s\t%s\n", w.formatter(result.CurveX[i]), w.formatter(result.CurveY[i]))
	}

	return writer.Flush()
}

func (w *TXTFileWriter) WriteHistogram(filename string, hist *domain.Histogram) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "X\tY\n")
	for i := 0; i < hist.Len; i++ {
		fmt.Fprintf(writer, "%.2e\t%10d\n", hist.Bins[i], hist.Vals[i])
	}

	return writer.Flush()
}

// fitReport - представление результата для YAML-отчёта
type fitReport struct {
	Model      string         `yaml:"model"`
	Covariance string         `yaml:"covariance"`
	Params     []float64      `yaml:"params"`
	Initial    []float64      `yaml:"initial"`
	Amplitude  float64        `yaml:"amplitude"`
	Frequency  float64        `yaml:"frequency"`
	FreqHz     float64        `yaml:"frequency_hz"`
	Period     float64        `yaml:"period"`
	Phase      float64        `yaml:"phase"`
	PhaseDeg   float64        `yaml:"phase_degrees"`
	Offset     float64        `yaml:"offset"`
	Metrics    domain.Metrics `yaml:"metrics"`
	SimpleR2   float64        `yaml:"simple_r_squared"`
	CompR2     float64        `yaml:"composite_r_squared"`
	CurvePoint int            `yaml:"curve_points"`
}

// WriteReport writes parameters, uncertainties and metrics as YAML.
func (w *TXTFileWriter) WriteReport(filename string, result *domain.FitResult) error {
	report := fitReport{
		Model:      result.Model.String(),
		Covariance: result.Covariance,
		Params:     result.Params,
		Initial:    result.Initial,
		Amplitude:  result.Amplitude,
		Frequency:  result.Frequency,
		FreqHz:     result.Frequency / (2 * math.Pi),
		Period:     result.Period(),
		Phase:      result.Phase,
		PhaseDeg:   result.Phase * 180 / math.Pi,
		Offset:     result.Offset,
		Metrics:    result.Metrics,
		SimpleR2:   result.SimpleRSquared,
		CompR2:     result.CompositeRSquared,
		CurvePoint: len(result.CurveX),
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
