package main

import (
	"flag"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sine-fitting/internal/app"
	"sine-fitting/internal/domain"
	"sine-fitting/internal/infrastructure"
)

// флаги, которые передаются в YAMLConfigReader как переопределения
var overrideFlags = []string{"workers", "seed", "log-level", "method", "covariance"}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	outDir := flag.String("out", ".", "Output directory")
	flag.Int("workers", 0, "Number of workers")
	flag.Int64("seed", 0, "Differential evolution seed")
	flag.String("log-level", "", "Log level")
	flag.String("method", "", "Optimization method (hybrid|gradient)")
	flag.String("covariance", "", "Covariance estimator (auto|jacobian|hessian)")
	flag.Parse()

	// Инициализация логгера
	logger := initLogger("info")
	defer logger.Sync()

	// Чтение конфигурации
	configReader := infrastructure.NewYAMLConfigReader(logger)
	config, err := configReader.ReadConfig(*configPath, overrideArgs())
	if err != nil {
		logger.Fatal("Failed to read config", zap.Error(err))
	}

	// Обновляем уровень логирования
	if config.LogFile != "" {
		logger = initLogger(config.LogLevel, config.LogFile)
	} else {
		logger = initLogger(config.LogLevel)
	}

	// Инициализация компонентов
	fileReader := infrastructure.NewTXTFileReader(logger)
	fileWriter := infrastructure.NewTXTFileWriter(logger, func(val float64) string {
		return strconv.FormatFloat(val, 'f', config.Decimals, 64)
	})
	fitter := app.NewSineFitter(logger, config)

	// Чтение входных данных
	inputs := make(map[string]*domain.SampleSet)
	for _, path := range flag.Args() {
		samples, err := fileReader.ReadSamples(path)
		if err != nil {
			logger.Error("Failed to read input", zap.String("file", path), zap.Error(err))
			continue
		}
		inputs[baseName(path)] = samples
	}
	if len(flag.Args()) == 0 {
		inputs["demo"] = infrastructure.DemoSamples(logger, uint64(config.Seed))
	}
	if len(inputs) == 0 {
		logger.Fatal("No valid input data")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	logger.Info("Starting sine fitting",
		zap.Int("inputs", len(inputs)),
		zap.String("method", config.Method),
		zap.Int("workers", config.Workers))

	// Обработка данных
	results := fitter.ProcessBatch(inputs)

	// Запись результатов
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		res := results[name]
		if res.Err != nil {
			continue
		}
		writeResults(logger, fileWriter, config, filepath.Join(*outDir, name), res.Result)
	}

	logger.Info("Sine fitting completed")
}

func writeResults(logger *zap.Logger, writer *infrastructure.TXTFileWriter, config *domain.Config,
	prefix string, result *domain.FitResult) {

	if err := writer.WriteCurve(prefix+"_fit.txt", result); err != nil {
		logger.Error("Failed to write curve", zap.String("file", prefix+"_fit.txt"), zap.Error(err))
	}

	if err := writer.WriteReport(prefix+"_report.yaml", result); err != nil {
		logger.Error("Failed to write report", zap.String("file", prefix+"_report.yaml"), zap.Error(err))
	}

	hist, err := domain.Hist(result.Residuals, 0, 0, config.HistogramBins)
	if err != nil {
		logger.Error("Failed to build residual histogram", zap.Error(err))
		return
	}
	if err := writer.WriteHistogram(prefix+"_residuals.txt", &hist); err != nil {
		logger.Error("Failed to write histogram", zap.String("file", prefix+"_residuals.txt"), zap.Error(err))
		return
	}

	logger.Info("Successfully written results", zap.String("prefix", prefix))
}

// overrideArgs возвращает только явно заданные флаги конфигурации.
func overrideArgs() []string {
	var args []string
	flag.Visit(func(f *flag.Flag) {
		if slices.Contains(overrideFlags, f.Name) {
			args = append(args, "-"+f.Name+"="+f.Value.String())
		}
	})
	return args
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// initLogger initializes the logger with the specified level and log file name.
func initLogger(level string, logfileName ...string) *zap.Logger {
	config := zap.NewProductionConfig()

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	outputPath := []string{"stderr"}
	outputPath = append(outputPath, logfileName...)

	config.OutputPaths = outputPath
	config.ErrorOutputPaths = outputPath
	config.EncoderConfig.TimeKey = "t"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	config.DisableCaller = false

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
