package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/kernprep/constants"
	"github.com/jsphweid/kernprep/logger"
	"github.com/jsphweid/kernprep/tonality"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("{1/4, 1/2, 3/4, 1, 3/2, 2, 3, 4}", cfg.Durations.String())
	assert.Equal(tonality.DefaultTargets(), cfg.Targets)
	assert.Equal(constants.KeyStrategyScan, cfg.KeyStrategy)
	assert.Equal([]string{".mid", ".midi"}, cfg.Extensions)
	assert.GreaterOrEqual(cfg.Workers, 1)
	assert.Equal(int64(constants.DefaultMaxUploadBytes), cfg.MaxUpload)

	reader, err := cfg.ExplicitKeyReader(logger.Discard())
	require.NoError(t, err)
	assert.Equal(tonality.ScanReader{}, reader)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KERNPREP_DURATIONS", "1/3,2/3, 1")
	t.Setenv("KERNPREP_TARGET_MINOR", "E")
	t.Setenv("KERNPREP_KEY_STRATEGY", "position")
	t.Setenv("KERNPREP_KEY_INDEX", "2")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "{1/3, 2/3, 1}", cfg.Durations.String())
	assert.Equal(t, "E", cfg.Targets.Minor.String())
	reader, err := cfg.ExplicitKeyReader(logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, tonality.PositionalReader{Index: 2}, reader)
}

func TestConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\ntarget-major: G\nmax-files: 10\n"), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 1, "")
	require.NoError(t, flags.Parse([]string{"--workers", "5"}))
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, 10, cfg.MaxFiles)
	assert.Equal(t, "G", cfg.Targets.Major.String())
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"durations":        "0",
		"target-major":     "H",
		"workers":          "0",
		"key-strategy":     "guess",
		"max-files":        "-1",
		"max-upload-bytes": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			v, err := NewViper("")
			require.NoError(t, err)
			v.Set(key, value)
			_, err = Load(v)
			assert.Error(t, err)
		})
	}

	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalogStrategyChainsScan(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	v.Set("key-strategy", "catalog")
	v.Set("catalog-endpoint", "http://localhost:8000")
	cfg, err := Load(v)
	require.NoError(t, err)

	reader, err := cfg.ExplicitKeyReader(logger.Discard())
	require.NoError(t, err)
	chain, ok := reader.(tonality.Chain)
	require.True(t, ok)
	assert.Len(t, chain, 2)
}
