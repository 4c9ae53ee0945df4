// Package config resolves modswap settings from defaults, an optional TOML
// file and MODSWAP_* environment variables. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/OpenGG/modswap/internal/modswap/paths"
)

// EnvConfigPath names the variable that points at a config file.
const EnvConfigPath = "MODSWAP_CONFIG"

// Config holds the resolved settings.
type Config struct {
	Root        string `toml:"root" env:"MODSWAP_ROOT"`
	Extension   string `toml:"extension" env:"MODSWAP_EXTENSION"`
	PointerFile string `toml:"pointer_file" env:"MODSWAP_POINTER_FILE"`
	LogLevel    string `toml:"log_level" env:"MODSWAP_LOG_LEVEL"`
	LogFormat   string `toml:"log_format" env:"MODSWAP_LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Extension:   paths.DefaultExtension,
		PointerFile: paths.PointerFileName,
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// Loader reads configuration through an afero filesystem so tests can use
// an in-memory one.
type Loader struct {
	fs      afero.Fs
	environ func() []string
}

// NewLoader creates a Loader that reads the process environment.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs, environ: os.Environ}
}

// SetEnviron overrides the environment source for testing.
func (l *Loader) SetEnviron(environ func() []string) {
	if environ == nil {
		l.environ = os.Environ
		return
	}
	l.environ = environ
}

// Load resolves configuration. path selects the config file; when empty,
// MODSWAP_CONFIG and then the user config directory are tried. Only an
// explicitly named file must exist.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default()
	vars := l.envMap()

	explicit := path != ""
	if !explicit {
		if p := vars[EnvConfigPath]; p != "" {
			path, explicit = p, true
		} else {
			path = DefaultPath()
		}
	}

	if path != "" {
		if err := l.loadFile(path, &cfg); err != nil {
			if !(errors.Is(err, os.ErrNotExist) && !explicit) {
				return Config{}, err
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (l *Loader) envMap() map[string]string {
	vars := make(map[string]string)
	for _, kv := range l.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars
}

// DefaultPath returns <user config dir>/modswap/config.toml, or "" when the
// user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "modswap", "config.toml")
}

// Normalize fills defaults for empty fields and checks the result.
// An empty root falls back to the working directory.
func (c *Config) Normalize() error {
	def := Default()
	if strings.TrimSpace(c.Root) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		c.Root = wd
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root %s: %w", c.Root, err)
	}
	c.Root = abs

	c.Extension = strings.TrimSpace(c.Extension)
	if c.Extension == "" {
		c.Extension = def.Extension
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.Extension == "." || strings.ContainsAny(c.Extension, `/\`) {
		return fmt.Errorf("invalid payload extension %q", c.Extension)
	}

	if c.PointerFile == "" {
		c.PointerFile = def.PointerFile
	}
	if strings.ContainsAny(c.PointerFile, `/\`) || c.PointerFile == "." || c.PointerFile == ".." {
		return fmt.Errorf("pointer file %q must be a plain file name", c.PointerFile)
	}
	if strings.HasSuffix(strings.ToLower(c.PointerFile), strings.ToLower(c.Extension)) {
		return fmt.Errorf("pointer file %q must not carry the payload extension %q", c.PointerFile, c.Extension)
	}

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	return nil
}
