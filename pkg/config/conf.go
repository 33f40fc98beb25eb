package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mchmarny/revscore/pkg/corpus"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	envPrefix = "REVSCORE_"

	defaultWorkers = 4

	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents app config object.
type Config struct {
	Scale    corpus.Scale `yaml:"scale"`
	Fallback *float64     `yaml:"fallback,omitempty"`
	Strict   bool         `yaml:"strict"`
	Workers  int          `yaml:"workers"`
	Format   string       `yaml:"format"`
	LogLevel string       `yaml:"log_level"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Scale:    corpus.DefaultScale(),
		Workers:  defaultWorkers,
		Format:   FormatJSON,
		LogLevel: "info",
	}
}

// Validate checks that the configuration can drive scoring.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config required")
	}
	if err := c.Scale.Validate(); err != nil {
		return fmt.Errorf("invalid scale %s: %w", c.Scale, err)
	}
	if c.Fallback != nil && !c.Scale.ContainsValue(*c.Fallback) {
		return fmt.Errorf("fallback %v outside scale %s", *c.Fallback, c.Scale)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	switch c.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	return nil
}

// CorpusOptions returns the parse options implied by the configuration.
func (c *Config) CorpusOptions() corpus.Options {
	opts := corpus.Options{
		Policy: corpus.PolicySkip,
		Scale:  c.Scale,
	}
	if c.Strict {
		opts.Policy = corpus.PolicyStrict
	}
	return opts
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("creating dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("unmarshalling config file %s: %w", path, err)
	}
	return c, nil
}

// Load reads the config from dirPath, applies REVSCORE_* environment
// overrides (a .env file in the working directory is honored) and
// validates the result.
func Load(dirPath string) (*Config, error) {
	c, err := ReadOrCreate(dirPath)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides fields from REVSCORE_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "SCALE_MIN"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sSCALE_MIN: %w", envPrefix, err)
		}
		c.Scale.Min = n
	}
	if v, ok := lookup(envPrefix + "SCALE_MAX"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sSCALE_MAX: %w", envPrefix, err)
		}
		c.Scale.Max = n
	}
	if v, ok := lookup(envPrefix + "FALLBACK"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing %sFALLBACK: %w", envPrefix, err)
		}
		c.Fallback = &f
	}
	if v, ok := lookup(envPrefix + "STRICT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %sSTRICT: %w", envPrefix, err)
		}
		c.Strict = b
	}
	if v, ok := lookup(envPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %sWORKERS: %w", envPrefix, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(envPrefix + "FORMAT"); ok {
		c.Format = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("getting user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("creating dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
