package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
lang = "zh"
system_prompt = "You are helpful"
max_rounds = 5

[llm.gpt]
type = "openai"
model = "gpt-4o-mini"
api_key = "sk-test"
default = true

[llm.claude]
type = "anthropic"
model = "claude-3-5-sonnet-20241022"

[api.Weather]
desc = "Use it"
env = { KEY = ["abc", "API key"] }

[publish]
url = "https://example.com/api/articles"
cert = "PEM"

[executor]
interpreter = ["python3", "-"]
timeout = "30s"
`

const yamlConfig = `
record: false
max_tokens: 2048
llm:
  local:
    type: gollm
    backend: ollama
    model: llama3
api:
  Maps:
    env:
      TOKEN: ["t0k", "token"]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_TOMLDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "codeloop.toml", tomlConfig)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "zh", cfg.Lang)
	assert.True(t, cfg.Record, "record defaults to true")
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 5, cfg.MaxRounds)
	assert.Equal(t, "You are helpful", cfg.SystemPrompt)
	assert.Equal(t, "gpt", cfg.DefaultLLM())
	assert.Equal(t, TypeAnthropic, cfg.LLM["claude"].Type)
	assert.Equal(t, []string{"abc", "API key"}, cfg.API["Weather"].Env["KEY"])
	assert.Equal(t, "Use it", cfg.API["Weather"].Desc)
	assert.True(t, cfg.Publish.Enabled())
	assert.Equal(t, []string{"python3", "-"}, cfg.Executor.Interpreter)
	assert.Equal(t, 30*time.Second, cfg.Executor.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", yamlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Record)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, "ollama", cfg.LLM["local"].Backend)
	assert.True(t, cfg.LLM["local"].Enabled())
	assert.Equal(t, []string{"t0k", "token"}, cfg.API["Maps"].Env["TOKEN"])
	assert.False(t, cfg.Publish.Enabled())
	assert.Empty(t, cfg.DefaultLLM())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "codeloop.toml", tomlConfig)
	t.Setenv("CODELOOP_PUBLISH__URL", "https://override.example.com/upload")
	t.Setenv("CODELOOP_MAX_TOKENS", "1024")
	t.Setenv("CODELOOP_LANG", "en")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com/upload", cfg.Publish.URL)
	assert.Equal(t, "PEM", cfg.Publish.Cert)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, "en", cfg.Lang)
}

func TestLoad_MissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.True(t, cfg.Record)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Empty(t, cfg.LLM)
}

func TestLoad_DirectoryPrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "codeloop.yaml", "lang: fr\n")
	writeFile(t, dir, "codeloop.toml", "lang = \"zh\"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "zh", cfg.Lang)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codeloop.ini", "lang=en")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codeloop.toml", "lang = ")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{MaxTokens: 4096, LLM: map[string]LLM{"a": {Type: TypeOpenAI}}}
	}
	disabled := false

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, false},
		{"negative max rounds", func(c *Config) { c.MaxRounds = -1 }, false},
		{"unknown type", func(c *Config) { c.LLM["b"] = LLM{Type: "bard"} }, false},
		{"gollm without backend", func(c *Config) { c.LLM["b"] = LLM{Type: TypeGollm} }, false},
		{"two defaults", func(c *Config) {
			c.LLM["a"] = LLM{Default: true}
			c.LLM["b"] = LLM{Default: true}
		}, false},
		{"disabled default ignored", func(c *Config) {
			c.LLM["a"] = LLM{Default: true}
			c.LLM["b"] = LLM{Default: true, Enable: &disabled}
		}, true},
		{"bad env pair", func(c *Config) {
			c.API = map[string]API{"W": {Env: map[string][]string{"K": {"only value"}}}}
		}, false},
		{"relative publish url", func(c *Config) { c.Publish.URL = "/upload" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestTOMLParser_RoundTrip(t *testing.T) {
	p := TOMLParser()
	m, err := p.Unmarshal([]byte("[publish]\nurl = \"https://x\"\n"))
	require.NoError(t, err)

	out, err := p.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[publish]")
	assert.Contains(t, string(out), `url = "https://x"`)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "publish.url", envKey("CODELOOP_PUBLISH__URL"))
	assert.Equal(t, "max_tokens", envKey("CODELOOP_MAX_TOKENS"))
	assert.Equal(t, "executor.work_dir", envKey("CODELOOP_EXECUTOR__WORK_DIR"))
}
