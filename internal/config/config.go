// Package config loads service configuration from a TOML file with an
// environment overlay. Prompt templates live in the config file so they can
// be tuned without a rebuild.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LLMConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	MaxTokens int    `toml:"max_tokens"`
}

type StoreConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type QueueConfig struct {
	Path                string `toml:"path"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
}

type TranscriptConfig struct {
	BaseURL            string   `toml:"base_url"`
	PreferredLanguages []string `toml:"preferred_languages"`
}

type TaxonomyConfig struct {
	SeedPath string `toml:"seed_path"`
}

type PipelineConfig struct {
	HandlerTimeoutSeconds int `toml:"handler_timeout_seconds"`
}

// PromptTemplates are fmt templates for the prompt composers. Taxonomy takes
// the rendered tree, Transcript takes title/description/text, Format is
// emitted verbatim.
type PromptTemplates struct {
	Header     string `toml:"header"`
	Taxonomy   string `toml:"taxonomy"`
	Transcript string `toml:"transcript"`
	Format     string `toml:"format"`
}

type Config struct {
	LogLevel   string           `toml:"log_level"`
	Server     ServerConfig     `toml:"server"`
	LLM        LLMConfig        `toml:"llm"`
	Store      StoreConfig      `toml:"store"`
	Queue      QueueConfig      `toml:"queue"`
	Transcript TranscriptConfig `toml:"transcript"`
	Taxonomy   TaxonomyConfig   `toml:"taxonomy"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Prompts    PromptTemplates  `toml:"prompts"`
}

// Load reads the TOML file, overlays COBALT_-prefixed environment variables
// (double underscore separates sections: COBALT_LLM__API_KEY -> llm.api_key),
// applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	k := koanf.New(".")
	envProvider := env.Provider("COBALT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "COBALT_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment overlay: %w", err)
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "toml"}); err != nil {
		return nil, fmt.Errorf("apply environment overlay: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "http://localhost:11434"
		}
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.Queue.Path == "" {
		c.Queue.Path = "cobalt-queue.db"
	}
	if c.Queue.PollIntervalSeconds == 0 {
		c.Queue.PollIntervalSeconds = 5
	}
	if len(c.Transcript.PreferredLanguages) == 0 {
		c.Transcript.PreferredLanguages = []string{"en"}
	}
	if c.Pipeline.HandlerTimeoutSeconds == 0 {
		c.Pipeline.HandlerTimeoutSeconds = 30
	}
}

// validate fails fast on configuration the process cannot serve without.
func (c *Config) validate() error {
	if c.Store.URI == "" {
		return fmt.Errorf("store.uri is required: no taxonomy storage configured")
	}
	if c.Transcript.BaseURL == "" {
		return fmt.Errorf("transcript.base_url is required")
	}
	return nil
}
