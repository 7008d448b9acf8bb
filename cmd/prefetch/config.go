package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/prefetch"
	"github.com/hupe1980/prefetch/sketch"
)

// Config is the resolved command configuration. Values come from flags,
// PREFETCH_* environment variables and an optional config file, in that
// order of precedence.
type Config struct {
	Ksize               uint32   `mapstructure:"ksize"`
	Moltype             string   `mapstructure:"moltype"`
	DBFromFile          []string `mapstructure:"db-from-file"`
	ThresholdBP         uint64   `mapstructure:"threshold-bp"`
	Scaled              string   `mapstructure:"scaled"`
	Output              string   `mapstructure:"output"`
	SaveMatches         string   `mapstructure:"save-matches"`
	SaveMatchingHashes  string   `mapstructure:"save-matching-hashes"`
	SaveUnmatchedHashes string   `mapstructure:"save-unmatched-hashes"`
	ProgressEvery       int      `mapstructure:"progress-every"`
	Prefetch            int      `mapstructure:"prefetch"`
	MemoryLimit         int64    `mapstructure:"memory-limit"`
	IOLimit             int64    `mapstructure:"io-limit"`
	Strict              bool     `mapstructure:"strict"`
	Codec               string   `mapstructure:"codec"`
	LogLevel            string   `mapstructure:"log-level"`
	LogFormat           string   `mapstructure:"log-format"`
	MinioEndpoint       string   `mapstructure:"minio-endpoint"`
	MinioSecure         bool     `mapstructure:"minio-secure"`
}

func registerFlags(fs *pflag.FlagSet) {
	fs.Uint32P("ksize", "k", 0, "k-mer size to select from the query")
	fs.String("moltype", "", "molecule type to select: DNA, protein, dayhoff or hp")
	fs.StringArray("db-from-file", nil, "file listing candidate locations, one per line (repeatable)")
	fs.Uint64("threshold-bp", prefetch.DefaultThresholdBP, "minimum estimated overlap in base pairs")
	fs.String("scaled", "", "downsample the query to at least this scaled value (e.g. 10000 or 1e5)")
	fs.StringP("output", "o", "", "write a CSV row per match to this location ('-' for stdout)")
	fs.String("save-matches", "", "save matched signatures to this location")
	fs.String("save-matching-hashes", "", "save query hashes found in matches to this location")
	fs.String("save-unmatched-hashes", "", "save query hashes found in no match to this location")
	fs.Int("progress-every", prefetch.DefaultProgressEvery, "report progress every N matches (0 disables)")
	fs.Int("prefetch", 4, "number of candidate files loaded ahead")
	fs.Int64("memory-limit", 0, "estimated decoded bytes of candidate files held in flight (0 for no limit)")
	fs.Int64("io-limit", 0, "read throughput limit in bytes per second (0 for no limit)")
	fs.Bool("strict", false, "fail on unreadable candidate files instead of skipping them")
	fs.String("codec", "go-json", "JSON codec for signature files: go-json or json")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("minio-endpoint", "", "endpoint for minio:// locations (default $MINIO_ENDPOINT)")
	fs.Bool("minio-secure", true, "use TLS for minio:// locations")
}

// loadConfig merges flags, environment and the optional config file.
func loadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PREFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// selection returns the query selection.
func (c *Config) selection() (prefetch.Selection, error) {
	m, err := sketch.ParseMoltype(c.Moltype)
	if err != nil {
		return prefetch.Selection{}, err
	}
	return prefetch.Selection{Ksize: c.Ksize, Moltype: m}, nil
}

// scaled parses the scaled floor, accepting scientific notation.
func (c *Config) scaled() (uint64, error) {
	if c.Scaled == "" {
		return 0, nil
	}
	if n, err := strconv.ParseUint(c.Scaled, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(c.Scaled, 64)
	if err != nil || f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("invalid scaled value %q", c.Scaled)
	}
	return uint64(f), nil
}

func (c *Config) logLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}
