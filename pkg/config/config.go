// Package config loads decoder settings.
//
// Values are resolved in this order, later sources winning:
//   - Default()
//   - a YAML file: the path passed to Load, else NVHR_CONFIG, else the
//     first existing file of DefaultPaths
//   - NVHR_* environment variables (optionally seeded from a .env file)
//   - command-line flags, applied by the caller
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/falk/nvhr-go/pkg/nvhr"
)

// Environment variable names
const (
	EnvConfig     = "NVHR_CONFIG"
	EnvLogLevel   = "NVHR_LOG_LEVEL"
	EnvPreview    = "NVHR_PREVIEW"
	EnvTextMode   = "NVHR_TEXT_MODE"
	EnvMaxPayload = "NVHR_MAX_PAYLOAD"
	EnvAnalyze    = "NVHR_ANALYZE"
	EnvNoColor    = "NO_COLOR"
)

const DefaultPreview = 500

type Config struct {
	// LogLevel is the minimum level written to stderr: debug, info, warn
	// or error.
	LogLevel string `yaml:"log_level"`

	// Preview is the number of leading characters of decoded text printed
	// to stdout.
	Preview int `yaml:"preview"`

	// TextMode is "drop" or "replace" (see nvhr.TextMode).
	TextMode string `yaml:"text_mode"`

	// MaxPayloadSize caps the inflated payload. Accepts plain integers or
	// sizes such as "64MiB".
	MaxPayloadSize ByteSize `yaml:"max_payload_size"`

	// Analyze runs the keyword scan after decoding.
	Analyze bool `yaml:"analyze"`

	// Color enables styled terminal output.
	Color bool `yaml:"color"`
}

func Default() *Config {
	return &Config{
		LogLevel:       "warn",
		Preview:        DefaultPreview,
		TextMode:       nvhr.TextDrop.String(),
		MaxPayloadSize: nvhr.DefaultMaxPayloadSize,
		Color:          true,
	}
}

// DefaultPaths lists the config files probed when none is named.
func DefaultPaths() []string {
	paths := []string{"nvhr.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nvhr", "config.yaml"))
	}
	return paths
}

// Load resolves the configuration from defaults, an optional YAML file and
// the environment. It returns the file that was used, if any.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, "", err
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// LoadFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv seeds the process environment from .env files. Variables
// already set are not overridden and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays NVHR_* variables onto cfg. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvPreview); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPreview, err)
		}
		cfg.Preview = n
	}
	if v, ok := lookup(EnvTextMode); ok && v != "" {
		cfg.TextMode = v
	}
	if v, ok := lookup(EnvMaxPayload); ok && v != "" {
		if err := cfg.MaxPayloadSize.Set(v); err != nil {
			return fmt.Errorf("%s: %w", EnvMaxPayload, err)
		}
	}
	if v, ok := lookup(EnvAnalyze); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAnalyze, err)
		}
		cfg.Analyze = b
	}
	// https://no-color.org: any non-empty value disables color.
	if v, ok := lookup(EnvNoColor); ok && v != "" {
		cfg.Color = false
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := nvhr.ParseTextMode(c.TextMode); err != nil {
		return err
	}
	if c.MaxPayloadSize <= 0 {
		return fmt.Errorf("max_payload_size must be positive, got %d", c.MaxPayloadSize)
	}
	return nil
}

// TextModeValue returns the parsed TextMode. Call after Validate.
func (c *Config) TextModeValue() nvhr.TextMode {
	m, _ := nvhr.ParseTextMode(c.TextMode)
	return m
}

// ByteSize is a byte count that parses human-readable sizes. It satisfies
// pflag.Value and yaml.Unmarshaler.
type ByteSize int64

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

func (b *ByteSize) Set(s string) error {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*b = ByteSize(n)
	return nil
}

func (b *ByteSize) Type() string {
	return "bytes"
}

func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return b.Set(s)
}
