package main

import (
	"fmt"
	"os"
	"time"

	"github.com/christian-word/bible-mcp/readers"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogFile          string          `yaml:"log"`
	Source           string          `yaml:"source"`
	Transport        string          `yaml:"transport"`
	ServerAddr       string          `yaml:"server_addr"`
	LoadTimeoutMs    int             `yaml:"load_timeout_ms"`
	PatternTimeoutMs int             `yaml:"pattern_timeout_ms"`
	Watch            bool            `yaml:"watch"`
	ReloadDebounceMs int             `yaml:"reload_debounce_ms"`
	Semantic         *SemanticConfig `yaml:"semantic"`
}

// SemanticConfig enables the vector index behind the semantic_search tool.
type SemanticConfig struct {
	ChromaAddr  string `yaml:"chroma_addr"`
	Collection  string `yaml:"collection"`
	Results     int    `yaml:"results"`
	RequestSize int    `yaml:"request_size"`
	Reset       bool   `yaml:"reset"`
	OpenAI      *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"open_ai"`
	Gemini *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"gemini"`
}

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	err = dec.Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogFile == "" {
		c.LogFile = "bible-mcp.log"
	}
	if c.Source == "" {
		c.Source = readers.DefaultSource
	}
	if c.Transport == "" {
		c.Transport = "sse"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = "localhost:8080"
	}
	if c.LoadTimeoutMs == 0 {
		c.LoadTimeoutMs = 30_000
	}
	if c.PatternTimeoutMs == 0 {
		c.PatternTimeoutMs = 1_000
	}
	if c.ReloadDebounceMs == 0 {
		c.ReloadDebounceMs = 500
	}

	if s := c.Semantic; s != nil {
		if s.Collection == "" {
			s.Collection = "verses"
		}
		if s.Results == 0 {
			s.Results = 5
		}
		if s.RequestSize == 0 {
			s.RequestSize = 100
		}
	}
}

func (c *Config) validate() error {
	if c.Transport != "sse" && c.Transport != "stdio" {
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if s := c.Semantic; s != nil {
		if s.ChromaAddr == "" {
			return fmt.Errorf("semantic.chroma_addr is required")
		}
		if s.OpenAI == nil && s.Gemini == nil {
			return fmt.Errorf("semantic search needs an open_ai or gemini embedding provider")
		}
	}

	return nil
}

func (c *Config) loadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutMs) * time.Millisecond
}

func (c *Config) patternTimeout() time.Duration {
	return time.Duration(c.PatternTimeoutMs) * time.Millisecond
}

func (c *Config) reloadDebounce() time.Duration {
	return time.Duration(c.ReloadDebounceMs) * time.Millisecond
}
