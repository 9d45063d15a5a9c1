package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("post-classifier", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath == "" || cfg.OutPath == "" {
		t.Fatalf("expected default paths, got in=%q out=%q", cfg.InPath, cfg.OutPath)
	}
	if cfg.Provider != "openai" {
		t.Fatalf("Provider=%q, want openai", cfg.Provider)
	}
	if cfg.Brand != "Nestle" {
		t.Fatalf("Brand=%q, want Nestle", cfg.Brand)
	}
	if cfg.MaxTokens != 150 || cfg.Temperature != 0 || cfg.Concurrency != 1 {
		t.Fatalf("MaxTokens=%d Temperature=%v Concurrency=%d", cfg.MaxTokens, cfg.Temperature, cfg.Concurrency)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("post-classifier", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "a/posts.json",
		"-out", "b/out.json",
		"-provider", "anthropic",
		"-brand", "Acme",
		"-temperature", "0.3",
		"-max-tokens", "200",
		"-concurrency", "4",
		"-array-field", "items",
		"-debug",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath != filepath.Clean("a/posts.json") || cfg.OutPath != filepath.Clean("b/out.json") {
		t.Fatalf("paths in=%q out=%q", cfg.InPath, cfg.OutPath)
	}
	if cfg.Provider != "anthropic" || cfg.Brand != "Acme" || cfg.ArrayField != "items" {
		t.Fatalf("Provider=%q Brand=%q ArrayField=%q", cfg.Provider, cfg.Brand, cfg.ArrayField)
	}
	if cfg.Temperature != 0.3 || cfg.MaxTokens != 200 || cfg.Concurrency != 4 || !cfg.Debug {
		t.Fatalf("Temperature=%v MaxTokens=%d Concurrency=%d Debug=%v", cfg.Temperature, cfg.MaxTokens, cfg.Concurrency, cfg.Debug)
	}
	if !cfg.explicit["brand"] || cfg.explicit["model"] {
		t.Fatalf("explicit=%v", cfg.explicit)
	}
}

func TestWithSettings_FlagsWin(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("post-classifier", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-brand", "Acme"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	temp := 0.4
	cfg = cfg.withSettings(config.Settings{
		Brand:           "FromFile",
		Provider:        "Anthropic",
		Model:           "claude-x",
		Temperature:     &temp,
		AnthropicAPIKey: "sk-ant",
		OpenAIAPIKey:    "sk-oai",
	})
	if cfg.Brand != "Acme" {
		t.Fatalf("Brand=%q, want flag value Acme", cfg.Brand)
	}
	if cfg.Provider != "anthropic" || cfg.Model != "claude-x" || cfg.Temperature != 0.4 {
		t.Fatalf("Provider=%q Model=%q Temperature=%v", cfg.Provider, cfg.Model, cfg.Temperature)
	}
	if cfg.APIKey != "sk-ant" {
		t.Fatalf("APIKey=%q, want anthropic key", cfg.APIKey)
	}
}

func TestParseFlags_EmptyPathsFailValidation(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-in", ""}, {"-out", ""}} {
		fs := flag.NewFlagSet("post-classifier", flag.ContinueOnError)
		cfg, err := parseFlags(fs, args)
		if err != nil {
			t.Fatalf("parseFlags(%v): %v", args, err)
		}
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "missing") {
			t.Fatalf("args=%v InPath=%q OutPath=%q err=%v, want missing path error", args, cfg.InPath, cfg.OutPath, err)
		}
	}
}

func TestWithSettings_OpenAIModelIgnoredForAnthropic(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("post-classifier", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	cfg = cfg.withSettings(config.Settings{Provider: "anthropic", OpenAIModel: "gpt-4o-mini"})
	if cfg.Provider != "anthropic" || cfg.Model != "" {
		t.Fatalf("Provider=%q Model=%q, want anthropic with provider default model", cfg.Provider, cfg.Model)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	good := defaultConfig()
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := good
	bad.Provider = "mistral"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	bad = good
	bad.Concurrency = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for negative concurrency")
	}
}

func TestRun_WritesRecordsAndTally(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "posts.json")
	out := filepath.Join(dir, "out", "classified.json")
	posts := `{"posts":[
		{"text":"Boycott Nestle now!","timestamp":"2025-08-10T12:00:00.000Z","rawTimestamp":"Aug 10"},
		{"text":"kitkat is fine","timestamp":"2025-08-11T12:00:00.000Z","rawTimestamp":"Aug 11"},
		{"text":"love nestle coffee","timestamp":"2025-08-12T12:00:00.000Z","rawTimestamp":"Aug 12"}
	]}`
	if err := os.WriteFile(in, []byte(posts), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	classify := func(ctx context.Context, text string) (string, error) {
		switch {
		case strings.Contains(text, "Boycott"):
			return "The author wants a boycott.", nil
		case strings.Contains(text, "kitkat"):
			return "", errors.New("upstream timeout")
		default:
			return `Sure: {"tweet": "x", "confidence_score": 0.92, "reasoning": "praise"}`, nil
		}
	}

	cfg := defaultConfig()
	cfg.InPath, cfg.OutPath = in, out
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), cfg, classify, zap.NewNop(), &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	records, err := sentiment.LoadRecords(out)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records)=%d, want 3", len(records))
	}
	if records[0].ConfidenceScore != 0.7 || records[0].Reasoning != sentiment.ReasoningUnstructured {
		t.Fatalf("records[0]=%+v", records[0])
	}
	if records[1].ConfidenceScore != 0.5 || !strings.Contains(records[1].Reasoning, "Error during processing") {
		t.Fatalf("records[1]=%+v", records[1])
	}
	if records[2].Text != "love nestle coffee" || records[2].ConfidenceScore != 0.92 || records[2].RawTimestamp != "Aug 12" {
		t.Fatalf("records[2]=%+v", records[2])
	}

	if !strings.HasPrefix(stdout.String(), "records_written=3 errors=1 ") {
		t.Fatalf("stdout=%q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Total posts processed: 3") {
		t.Fatalf("stderr missing total: %q", stderr.String())
	}

	runs, err := sentiment.ReadRunLog(filepath.Join(dir, "out", "runs.jsonl"))
	if err != nil {
		t.Fatalf("ReadRunLog: %v", err)
	}
	if len(runs) != 1 || runs[0].Records != 3 || runs[0].Errors != 1 || runs[0].Input != in {
		t.Fatalf("runs=%+v", runs)
	}
}

func TestConfig_RunLogPath(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.OutPath = filepath.Join("x", "out.json")
	if got := cfg.runLogPath(); got != filepath.Join("x", "runs.jsonl") {
		t.Fatalf("runLogPath=%q", got)
	}
	cfg.RunLogPath = "off"
	if got := cfg.runLogPath(); got != "" {
		t.Fatalf("runLogPath=%q, want disabled", got)
	}
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.InPath = filepath.Join(t.TempDir(), "missing.json")
	cfg.OutPath = filepath.Join(t.TempDir(), "out.json")
	noop := func(context.Context, string) (string, error) { return "", nil }
	if err := run(context.Background(), cfg, noop, zap.NewNop(), &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for missing input")
	}
}
