package config

import (
	"runtime"
	"strings"

	"github.com/jsphweid/kernprep/constants"
	"github.com/jsphweid/kernprep/db"
	"github.com/jsphweid/kernprep/duration"
	"github.com/jsphweid/kernprep/estimate"
	"github.com/jsphweid/kernprep/logger"
	"github.com/jsphweid/kernprep/pitch"
	"github.com/jsphweid/kernprep/tonality"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Dataset     string
	Durations   duration.Whitelist
	Targets     tonality.Targets
	Workers     int
	Extensions  []string
	MaxFiles    int
	KeyStrategy string
	KeyIndex    int
	Catalog     db.CatalogConfig
	Addr        string
	MaxUpload   int64
	LogLevel    string
	LogJSON     bool
}

// NewViper wires env vars (KERNPREP_*) and an optional config file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config %s", configFile)
		}
	}
	return v, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("durations", constants.DefaultAcceptableDurations)
	v.SetDefault("target-major", constants.DefaultTargetMajor)
	v.SetDefault("target-minor", constants.DefaultTargetMinor)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("extensions", constants.DefaultExtensions)
	v.SetDefault("max-files", 0)
	v.SetDefault("key-strategy", constants.KeyStrategyScan)
	v.SetDefault("key-index", constants.DefaultExplicitKeyIndex)
	v.SetDefault("catalog-table", constants.DefaultCatalogTable)
	v.SetDefault("catalog-region", "us-east-1")
	v.SetDefault("catalog-endpoint", "")
	v.SetDefault("addr", constants.DefaultAddr)
	v.SetDefault("max-upload-bytes", constants.DefaultMaxUploadBytes)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-json", false)
}

// BindFlags lets command line flags win over env and file values.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr := v.BindPFlag(f.Name, f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

func Load(v *viper.Viper) (*Config, error) {
	whitelist, err := duration.ParseWhitelist(splitList(v.GetStringSlice("durations")))
	if err != nil {
		return nil, errors.Wrap(err, "invalid durations")
	}
	major, err := pitch.ParseName(v.GetString("target-major"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid target-major")
	}
	minor, err := pitch.ParseName(v.GetString("target-minor"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid target-minor")
	}

	cfg := &Config{
		Dataset:     v.GetString("dataset"),
		Durations:   whitelist,
		Targets:     tonality.Targets{Major: major, Minor: minor},
		Workers:     v.GetInt("workers"),
		Extensions:  splitList(v.GetStringSlice("extensions")),
		MaxFiles:    v.GetInt("max-files"),
		KeyStrategy: strings.ToLower(v.GetString("key-strategy")),
		KeyIndex:    v.GetInt("key-index"),
		Catalog: db.CatalogConfig{
			Table:    v.GetString("catalog-table"),
			Region:   v.GetString("catalog-region"),
			Endpoint: v.GetString("catalog-endpoint"),
		},
		Addr:      v.GetString("addr"),
		MaxUpload: v.GetInt64("max-upload-bytes"),
		LogLevel:  v.GetString("log-level"),
		LogJSON:   v.GetBool("log-json"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxFiles < 0 {
		return errors.Errorf("max-files must not be negative, got %d", c.MaxFiles)
	}
	if c.MaxUpload < 1 {
		return errors.Errorf("max-upload-bytes must be positive, got %d", c.MaxUpload)
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one extension is required")
	}
	switch c.KeyStrategy {
	case constants.KeyStrategyScan, constants.KeyStrategyCatalog:
	case constants.KeyStrategyPosition:
		if c.KeyIndex < 0 {
			return errors.Errorf("key-index must not be negative, got %d", c.KeyIndex)
		}
	default:
		return errors.Errorf("unknown key-strategy %q", c.KeyStrategy)
	}
	return nil
}

func (c *Config) Logger() logger.Logger {
	return logger.New(logger.Config{Level: c.LogLevel, JSON: c.LogJSON})
}

// ExplicitKeyReader picks the reader for the configured strategy. The
// catalog falls back to the score's own key signature.
func (c *Config) ExplicitKeyReader(log logger.Logger) (tonality.ExplicitKeyReader, error) {
	switch c.KeyStrategy {
	case constants.KeyStrategyPosition:
		return tonality.PositionalReader{Index: c.KeyIndex}, nil
	case constants.KeyStrategyCatalog:
		catalog, err := db.NewCatalog(c.Catalog, log)
		if err != nil {
			return nil, err
		}
		return tonality.Chain{catalog, tonality.ScanReader{}}, nil
	}
	return tonality.ScanReader{}, nil
}

func (c *Config) Normalizer(log logger.Logger) (*tonality.Normalizer, error) {
	reader, err := c.ExplicitKeyReader(log)
	if err != nil {
		return nil, err
	}
	return &tonality.Normalizer{
		Explicit:  reader,
		Estimator: estimate.KrumhanslKessler{},
		Targets:   c.Targets,
	}, nil
}

// splitList accepts both repeated values and comma separated env values.
func splitList(values []string) []string {
	var res []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				res = append(res, part)
			}
		}
	}
	return res
}
