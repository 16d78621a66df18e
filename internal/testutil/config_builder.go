package testutil

import "github.com/hupe1980/codeloop/config"

// ConfigBuilder helps construct configurations with fluent chaining for tests.
// Example:
//
//	cfg := NewConfigBuilder().SystemPrompt("You are helpful").Env("Weather", "KEY", "abc", "API key").Build()
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a builder with loader defaults applied.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: config.Config{Record: true, MaxTokens: 4096}}
}

// Lang sets the locale (chainable).
func (b *ConfigBuilder) Lang(l string) *ConfigBuilder { b.cfg.Lang = l; return b }

// SystemPrompt sets the base system prompt (chainable).
func (b *ConfigBuilder) SystemPrompt(p string) *ConfigBuilder { b.cfg.SystemPrompt = p; return b }

// MaxRounds sets the feedback round limit (chainable).
func (b *ConfigBuilder) MaxRounds(n int) *ConfigBuilder { b.cfg.MaxRounds = n; return b }

// API sets the description of a capability, creating it if needed (chainable).
func (b *ConfigBuilder) API(name, desc string) *ConfigBuilder {
	api := b.api(name)
	api.Desc = desc
	b.cfg.API[name] = api
	return b
}

// Env adds an environment variable to a capability (chainable).
func (b *ConfigBuilder) Env(api, name, value, desc string) *ConfigBuilder {
	a := b.api(api)
	if a.Env == nil {
		a.Env = map[string][]string{}
	}
	a.Env[name] = []string{value, desc}
	b.cfg.API[api] = a
	return b
}

// Publish sets the publish endpoint and certificate (chainable).
func (b *ConfigBuilder) Publish(url, cert string) *ConfigBuilder {
	b.cfg.Publish.URL = url
	b.cfg.Publish.Cert = cert
	return b
}

// Build returns a copy of the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	return &cfg
}

func (b *ConfigBuilder) api(name string) config.API {
	if b.cfg.API == nil {
		b.cfg.API = map[string]config.API{}
	}
	return b.cfg.API[name]
}
