package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr        string `yaml:"addr"`
		AllowOrigin string `yaml:"allow_origin"`
	} `yaml:"server"`
	LLM struct {
		Provider       string  `yaml:"provider"` // OPENAI, GEMINI, or empty for noop
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	Cache struct {
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
	} `yaml:"cache"`
	Fetcher struct {
		BaseURL string `yaml:"base_url"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"fetcher"`
	Analysis struct {
		Concurrency           int `yaml:"concurrency"`
		MaxAttempts           int `yaml:"max_attempts"`
		BackoffInitialSeconds int `yaml:"backoff_initial_seconds"`
		Quarters              int `yaml:"quarters"`
	} `yaml:"analysis"`
	Companies struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"companies"`
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "", "OPENAI", "GEMINI":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'OPENAI' or 'GEMINI'", c.LLM.Provider)
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be >= 1, got %d", c.Analysis.Concurrency)
	}
	if c.Analysis.MaxAttempts < 1 {
		return fmt.Errorf("analysis.max_attempts must be >= 1, got %d", c.Analysis.MaxAttempts)
	}
	if c.Analysis.Quarters < 1 || c.Analysis.Quarters > 12 {
		return fmt.Errorf("analysis.quarters must be between 1 and 12, got %d", c.Analysis.Quarters)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "GEMINI":
			c.LLM.Model = "gemini-2.0-flash"
		default:
			c.LLM.Model = "gpt-4o"
		}
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 120
	}
	if c.Cache.Database == "" {
		c.Cache.Database = "callpulsedb"
	}
	if c.Cache.Collection == "" {
		c.Cache.Collection = "callpulsecollection"
	}
	if c.Fetcher.BaseURL == "" {
		c.Fetcher.BaseURL = "https://api.api-ninjas.com/v1/earningstranscript"
	}
	if c.Fetcher.DataDir == "" {
		c.Fetcher.DataDir = "./data/transcripts"
	}
	if c.Analysis.Concurrency == 0 {
		c.Analysis.Concurrency = 2
	}
	if c.Analysis.MaxAttempts == 0 {
		c.Analysis.MaxAttempts = 3
	}
	if c.Analysis.BackoffInitialSeconds == 0 {
		c.Analysis.BackoffInitialSeconds = 1
	}
	if c.Analysis.Quarters == 0 {
		c.Analysis.Quarters = 4
	}
	if c.Companies.CSVPath == "" {
		c.Companies.CSVPath = "stock-tickers.csv"
	}
}
