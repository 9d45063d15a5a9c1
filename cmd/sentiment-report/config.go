package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
)

type Config struct {
	InPath     string
	OutPath    string
	ConfigPath string
	EnvFile    string
	Brand      string
	StopWords  []string
	Pretty     bool
	Debug      bool

	explicit map[string]bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.OutPath == "" {
		return errors.New("missing -out")
	}
	if strings.TrimSpace(c.Brand) == "" {
		return errors.New("missing -brand")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InPath:  filepath.FromSlash("data/classified_posts.json"),
		OutPath: filepath.FromSlash("data/sentiment_report.json"),
		EnvFile: ".env",
		Brand:   sentiment.DefaultBrand,
		Pretty:  true,
	}
}

func (c Config) withSettings(s config.Settings) Config {
	if s.Brand != "" && !c.explicit["brand"] {
		c.Brand = s.Brand
	}
	if len(s.StopWords) > 0 && !c.explicit["stop-words"] {
		c.StopWords = s.StopWords
	}
	return c
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
