package infrastructure

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sine-fitting/internal/domain"
)

type TXTFileReader struct {
	logger *zap.Logger
}

func NewTXTFileReader(logger *zap.Logger) *TXTFileReader {
	return &TXTFileReader{logger: logger}
}

// ReadSamples reads a two-column (x y) whitespace separated file.
// Blank lines and lines starting with '#' are skipped; a non-numeric first
// data line is treated as a header.
func (r *TXTFileReader) ReadSamples(filename string) (*domain.SampleSet, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var x, y []float64
	lineNo := 0
	headerSeen := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d columns", domain.ErrInvalidFileFormat, lineNo, len(fields))
		}

		xv, errX := strconv.ParseFloat(fields[0], 64)
		yv, errY := strconv.ParseFloat(fields[1], 64)
		if errX != nil || errY != nil {
			// Первая строка может быть заголовком
			if !headerSeen && len(x) == 0 {
				headerSeen = true
				continue
			}
			return nil, fmt.Errorf("%w: line %d: %q", domain.ErrInvalidFileFormat, lineNo, line)
		}

		if math.IsNaN(xv) || math.IsInf(xv, 0) || math.IsNaN(yv) || math.IsInf(yv, 0) {
			r.logger.Warn("Non-finite value found, row skipped", zap.Int("line", lineNo))
			continue
		}

		x = append(x, xv)
		y = append(y, yv)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Samples read", zap.String("file", filename), zap.Int("points", len(x)))
	return domain.NewSampleSet(x, y)
}
