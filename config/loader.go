package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix marks environment overrides. A double underscore separates
	// nesting levels: CODELOOP_PUBLISH__URL -> publish.url.
	EnvPrefix = "CODELOOP_"
)

// FileNames are the names searched, in order, inside a config directory.
var FileNames = []string{"codeloop.toml", "codeloop.yaml", "codeloop.yml"}

// DefaultDir returns ~/.codeloop.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".codeloop"), nil
}

// Load reads configuration from path, which may be a file or a directory
// containing one of FileNames. An empty path means DefaultDir. A missing
// file is not an error; defaults and environment overrides still apply.
//
// Precedence (highest first): environment, file, defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = dir
	}

	file, err := resolve(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := setDefaults(k); err != nil {
		return nil, err
	}

	if file != "" {
		if err := loadFile(k, file); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"record":     true,
		"max_tokens": 4096,
		"log.level":  "info",
		"log.format": "text",
	}
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}
	return nil
}

// resolve maps path to a config file. It returns "" when nothing exists.
func resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat config path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range FileNames {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func loadFile(k *koanf.Koanf, file string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		parser = TOMLParser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return fmt.Errorf("%w: unsupported config file %s", ErrInvalidConfig, file)
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return fmt.Errorf("config file too large (max %d bytes)", maxConfigFileSize)
	}

	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", file, err)
	}
	return nil
}

// envKey maps CODELOOP_PUBLISH__URL to publish.url and CODELOOP_MAX_TOKENS to
// max_tokens.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
