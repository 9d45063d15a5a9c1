package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/provider"
)

type Config struct {
	InPath     string
	OutPath    string
	ArrayField string
	ConfigPath string
	EnvFile    string
	RunLogPath string

	Provider    string
	Model       string
	APIKey      string
	Brand       string
	Temperature float64
	MaxTokens   int
	Concurrency int

	Debug bool

	// explicit holds the names of flags given on the command line; they win over settings.
	explicit map[string]bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	switch strings.ToLower(c.Provider) {
	case provider.OpenAI, provider.Anthropic:
	default:
		return errors.New("provider must be openai or anthropic")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("temperature must be in [0,2]")
	}
	if c.MaxTokens < 0 {
		return errors.New("max-tokens must be >= 0")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InPath:      filepath.FromSlash("data/posts.json"),
		OutPath:     filepath.FromSlash("data/classified_posts.json"),
		EnvFile:     ".env",
		Provider:    provider.OpenAI,
		Brand:       sentiment.DefaultBrand,
		MaxTokens:   provider.DefaultMaxTokens,
		Concurrency: 1,
	}
}

// withSettings fills fields from the settings file and environment unless the matching flag
// was given explicitly.
func (c Config) withSettings(s config.Settings) Config {
	set := func(name string) bool { return c.explicit[name] }

	if s.Provider != "" && !set("provider") {
		c.Provider = strings.ToLower(s.Provider)
	}
	if m := s.ModelFor(c.Provider); m != "" && !set("model") {
		c.Model = m
	}
	if s.Brand != "" && !set("brand") {
		c.Brand = s.Brand
	}
	if s.Temperature != nil && !set("temperature") {
		c.Temperature = *s.Temperature
	}
	if s.MaxTokens > 0 && !set("max-tokens") {
		c.MaxTokens = s.MaxTokens
	}
	if c.APIKey == "" {
		c.APIKey = s.APIKey(c.Provider)
	}
	return c
}

// runLogPath is the run history file; "off" disables it.
func (c Config) runLogPath() string {
	switch c.RunLogPath {
	case "off":
		return ""
	case "":
		return filepath.Join(filepath.Dir(c.OutPath), "runs.jsonl")
	default:
		return c.RunLogPath
	}
}
