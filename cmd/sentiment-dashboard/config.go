package main

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
)

type Config struct {
	DataFile    string
	DataDir     string
	Port        string
	ConfigPath  string
	EnvFile     string
	Brand       string
	StopWords   []string
	CorsOrigins []string
	Debug       bool

	explicit map[string]bool
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return errors.New("missing -data")
	}
	n, err := strconv.Atoi(c.Port)
	if err != nil || n <= 0 || n > 65535 {
		return errors.New("port must be a number in 1..65535")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		DataFile:    filepath.FromSlash("static/data/sample_data.json"),
		DataDir:     filepath.FromSlash("static/data"),
		Port:        "8080",
		EnvFile:     ".env",
		Brand:       sentiment.DefaultBrand,
		CorsOrigins: []string{"*"},
	}
}

func (c Config) withSettings(s config.Settings) Config {
	if s.DataFile != "" && !c.explicit["data"] {
		c.DataFile = s.DataFile
	}
	if s.Port != "" && !c.explicit["port"] {
		c.Port = s.Port
	}
	if s.Brand != "" && !c.explicit["brand"] {
		c.Brand = s.Brand
	}
	if len(s.StopWords) > 0 && !c.explicit["stop-words"] {
		c.StopWords = s.StopWords
	}
	return c
}
