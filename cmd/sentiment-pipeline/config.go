package main

import (
	"errors"
	"path/filepath"
	"slices"
)

var allStages = []string{"classify", "report"}

type Config struct {
	PostsPath  string
	BaseDir    string
	ConfigPath string

	Provider    string
	Model       string
	Brand       string
	Concurrency int

	FromStage string
	OnlyStage string

	Overwrite bool
	Debug     bool
}

func (c Config) Validate() error {
	if c.PostsPath == "" {
		return errors.New("missing -posts")
	}
	if c.BaseDir == "" {
		return errors.New("missing -base-dir")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if c.OnlyStage != "" && c.FromStage != "" {
		return errors.New("use only one of -only-stage or -from-stage")
	}
	for _, s := range []string{c.OnlyStage, c.FromStage} {
		if s != "" && !slices.Contains(allStages, s) {
			return errors.New("unknown stage " + s + " (want classify|report)")
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		PostsPath:   filepath.FromSlash("data/posts.json"),
		BaseDir:     filepath.FromSlash("data"),
		Concurrency: 1,
	}
}

func (c Config) recordsPath() string { return filepath.Join(c.BaseDir, "classified_posts.json") }
func (c Config) reportPath() string  { return filepath.Join(c.BaseDir, "sentiment_report.json") }
