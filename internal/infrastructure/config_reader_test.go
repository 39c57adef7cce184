package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
method: gradient
seed: 7
generations: 25
compare_composite: false
covariance: jacobian
workers: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reader := NewYAMLConfigReader(zaptest.NewLogger(t))
	cfg, err := reader.ReadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "gradient", cfg.Method)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 25, cfg.Generations)
	assert.Equal(t, 3, cfg.Workers)
	assert.False(t, cfg.CompareCompositeModel())
	assert.Equal(t, "jacobian", cfg.Covariance)

	// незаданные поля получают значения по умолчанию
	assert.Equal(t, 40, cfg.Population)
	assert.Equal(t, 300, cfg.CurvePoints)
	assert.True(t, cfg.IncludeInitial())
}

func TestReadConfigCommandLineOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\nworkers: 3\n"), 0o644))

	reader := NewYAMLConfigReader(zaptest.NewLogger(t))
	cfg, err := reader.ReadConfig(path, []string{"-seed", "99", "-method", "gradient"})
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, "gradient", cfg.Method)
	assert.Equal(t, 3, cfg.Workers)
}

func TestReadConfigMissingFile(t *testing.T) {
	reader := NewYAMLConfigReader(zaptest.NewLogger(t))
	cfg, err := reader.ReadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "hybrid", cfg.Method)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
}

func TestReadConfigErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: [1, 2\n"), 0o644))

	reader := NewYAMLConfigReader(zaptest.NewLogger(t))
	_, err := reader.ReadConfig(path, nil)
	assert.Error(t, err)

	_, err = reader.ReadConfig(filepath.Join(t.TempDir(), "absent.yaml"), []string{"-unknown"})
	assert.Error(t, err)
}
