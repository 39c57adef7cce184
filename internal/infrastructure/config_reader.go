package infrastructure

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sine-fitting/internal/domain"
)

type YAMLConfigReader struct {
	logger *zap.Logger
}

func NewYAMLConfigReader(logger *zap.Logger) *YAMLConfigReader {
	return &YAMLConfigReader{logger: logger}
}

// ReadConfig reads the YAML file, applies command-line overrides from args
// and fills in defaults. A missing file is not an error.
func (r *YAMLConfigReader) ReadConfig(path string, args []string) (*domain.Config, error) {
	var config domain.Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Warn("Config file not found, using defaults", zap.String("path", path))
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Применяем аргументы командной строки
	if err := r.applyCommandLineFlags(&config, args); err != nil {
		return nil, err
	}

	// Устанавливаем значения по умолчанию
	r.setDefaults(&config)

	return &config, nil
}

func (r *YAMLConfigReader) applyCommandLineFlags(config *domain.Config, args []string) error {
	flags := flag.NewFlagSet("config", flag.ContinueOnError)
	workers := flags.Int("workers", config.Workers, "Number of workers")
	seed := flags.Int64("seed", config.Seed, "Differential evolution seed")
	logLevel := flags.String("log-level", config.LogLevel, "Log level")
	method := flags.String("method", config.Method, "Optimization method (hybrid|gradient)")
	covariance := flags.String("covariance", config.Covariance, "Covariance estimator (auto|jacobian|hessian)")

	if err := flags.Parse(args); err != nil {
		return err
	}

	config.Workers = *workers
	config.Seed = *seed
	config.LogLevel = *logLevel
	config.Method = *method
	config.Covariance = *covariance
	return nil
}

func (r *YAMLConfigReader) setDefaults(config *domain.Config) {
	config.ApplyDefaults()
	r.logger.Debug("Configuration loaded",
		zap.String("method", config.Method),
		zap.Int64("seed", config.Seed),
		zap.Int("workers", config.Workers))
}
