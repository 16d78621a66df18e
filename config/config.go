// Package config loads codeloop settings from a YAML or TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Provider types understood by the façade.
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
	TypeGollm     = "gollm"
)

// Config is the complete codeloop configuration.
type Config struct {
	Lang         string         `koanf:"lang"`
	Record       bool           `koanf:"record"`
	MaxTokens    int            `koanf:"max_tokens"`
	MaxRounds    int            `koanf:"max_rounds"`
	SystemPrompt string         `koanf:"system_prompt"`
	API          map[string]API `koanf:"api"`
	LLM          map[string]LLM `koanf:"llm"`
	Publish      Publish        `koanf:"publish"`
	Executor     Executor       `koanf:"executor"`
	Log          Log            `koanf:"log"`
}

// API describes a capability exposed to generated code. Env maps a variable
// name to a [value, description] pair.
type API struct {
	Env  map[string][]string `koanf:"env"`
	Desc string              `koanf:"desc"`
}

// LLM configures one named model provider.
type LLM struct {
	// Type selects the backend: openai (default), anthropic or gollm.
	Type        string  `koanf:"type"`
	Model       string  `koanf:"model"`
	APIKey      string  `koanf:"api_key"`
	BaseURL     string  `koanf:"base_url"`
	Temperature float64 `koanf:"temperature"`
	// Backend names the gollm provider (ollama, groq, ...).
	Backend string `koanf:"backend"`
	Default bool   `koanf:"default"`
	Enable  *bool  `koanf:"enable"`
}

// Enabled reports whether the provider should be registered.
func (l LLM) Enabled() bool { return l.Enable == nil || *l.Enable }

// Publish configures the upload endpoint.
type Publish struct {
	URL string `koanf:"url"`
	// Cert is the PEM client certificate and key.
	Cert     string `koanf:"cert"`
	CertPath string `koanf:"cert_path"`
}

// Enabled reports whether both the endpoint and the certificate are set.
func (p Publish) Enabled() bool { return p.URL != "" && p.Cert != "" }

// Executor configures the local code executor.
type Executor struct {
	Interpreter []string      `koanf:"interpreter"`
	WorkDir     string        `koanf:"work_dir"`
	Timeout     time.Duration `koanf:"timeout"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks the configuration for values the agent cannot work with.
func (c *Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidConfig, c.MaxTokens)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: max_rounds must not be negative, got %d", ErrInvalidConfig, c.MaxRounds)
	}

	defaults := 0
	for name, l := range c.LLM {
		switch l.Type {
		case "", TypeOpenAI, TypeAnthropic:
		case TypeGollm:
			if l.Backend == "" {
				return fmt.Errorf("%w: llm %q: gollm requires backend", ErrInvalidConfig, name)
			}
		default:
			return fmt.Errorf("%w: llm %q: unknown type %q", ErrInvalidConfig, name, l.Type)
		}
		if l.Default && l.Enabled() {
			defaults++
		}
	}
	if defaults > 1 {
		return fmt.Errorf("%w: more than one default llm", ErrInvalidConfig)
	}

	for name, api := range c.API {
		for env, pair := range api.Env {
			if len(pair) != 2 {
				return fmt.Errorf("%w: api %q: env %q must be [value, description]", ErrInvalidConfig, name, env)
			}
		}
	}

	if c.Publish.URL != "" {
		u, err := url.Parse(c.Publish.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: publish.url %q is not an absolute URL", ErrInvalidConfig, c.Publish.URL)
		}
	}
	return nil
}

// DefaultLLM returns the name of the provider marked default, or "".
func (c *Config) DefaultLLM() string {
	for name, l := range c.LLM {
		if l.Default && l.Enabled() {
			return name
		}
	}
	return ""
}
