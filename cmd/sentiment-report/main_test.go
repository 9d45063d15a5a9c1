package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
)

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("sentiment-report", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-in", "r.json", "-out", "o.json", "-brand", "Acme", "-stop-words", "acme, widget,,", "-pretty=false"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InPath != "r.json" || cfg.OutPath != "o.json" || cfg.Brand != "Acme" || cfg.Pretty {
		t.Fatalf("cfg=%+v", cfg)
	}
	if !reflect.DeepEqual(cfg.StopWords, []string{"acme", "widget"}) {
		t.Fatalf("StopWords=%v", cfg.StopWords)
	}

	cfg = cfg.withSettings(config.Settings{Brand: "Other", StopWords: []string{"x"}})
	if cfg.Brand != "Acme" || len(cfg.StopWords) != 2 {
		t.Fatalf("explicit flags should win: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseFlags_EmptyInFailsValidation(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("sentiment-report", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-in", ""})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "missing -in") {
		t.Fatalf("InPath=%q err=%v, want missing -in", cfg.InPath, err)
	}
}

func TestRun_WritesReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "classified.json")
	out := filepath.Join(dir, "report.json")
	records := []sentiment.Record{
		{Text: "boycott nestle boycott", ConfidenceScore: 0.05, Reasoning: "r", Timestamp: "2025-08-01T10:00:00.000Z"},
		{Text: "boycott again", ConfidenceScore: 0.2, Reasoning: "r", Timestamp: "2025-08-02T10:00:00Z"},
		{Text: "love my coffee", ConfidenceScore: 0.95, Reasoning: "r", Timestamp: "2025-09-01T10:00:00Z"},
		{Text: "when?", ConfidenceScore: 0.5, Reasoning: "r", Timestamp: "Unknown"},
	}
	if err := sentiment.SaveRecords(in, records); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}

	cfg := defaultConfig()
	cfg.InPath, cfg.OutPath = in, out
	var stdout, stderr bytes.Buffer
	if err := run(cfg, nil, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var report sentiment.Report
	if err := json.Unmarshal(b, &report); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if report.Summary.TotalPosts != 3 {
		t.Fatalf("TotalPosts=%d, want 3 (unparseable timestamp dropped)", report.Summary.TotalPosts)
	}
	if report.Summary.DateRange != "2025-08-01 to 2025-09-01" {
		t.Fatalf("DateRange=%q", report.Summary.DateRange)
	}
	if len(report.Words.Negative) == 0 || report.Words.Negative[0].Word != "boycott" || report.Words.Negative[0].Count != 3 {
		t.Fatalf("Words.Negative=%v", report.Words.Negative)
	}
	if len(report.Monthly) != 2 {
		t.Fatalf("len(Monthly)=%d, want 2", len(report.Monthly))
	}

	if !strings.HasPrefix(stdout.String(), "records_loaded=4 total_posts=3 ") {
		t.Fatalf("stdout=%q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Negative toward Nestle") {
		t.Fatalf("stderr=%q", stderr.String())
	}
}
