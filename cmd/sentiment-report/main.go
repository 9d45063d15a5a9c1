package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/logging"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := config.LoadDotEnv(cfg.EnvFile); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	settings, err := config.Load(cfg.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	cfg = cfg.withSettings(settings)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(cfg Config, logger *zap.Logger, stdout, stderr io.Writer) error {
	logger = logging.OrNop(logger)

	records, err := sentiment.LoadRecords(cfg.InPath)
	if err != nil {
		return err
	}
	report := sentiment.Aggregate(records, sentiment.AggregateOptions{
		Brand:          cfg.Brand,
		ExtraStopWords: cfg.StopWords,
	})
	logger.Debug("aggregated records",
		zap.Int("records", len(records)),
		zap.Int("days", len(report.Daily)),
		zap.Int("months", len(report.Monthly)))

	if err := fileutils.WriteJSONFileAtomic(cfg.OutPath, report, cfg.Pretty); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printSummary(stderr, report)
	s := report.Summary
	fmt.Fprintf(stdout, "records_loaded=%d total_posts=%d avg_confidence=%.3f date_range=%q out=%s\n",
		len(records), s.TotalPosts, s.AvgConfidence, s.DateRange, cfg.OutPath)
	return nil
}

func printSummary(w io.Writer, r sentiment.Report) {
	s := r.Summary
	fmt.Fprintf(w, "%s sentiment report\n", r.Brand)
	fmt.Fprintf(w, "Total posts analyzed: %d\n", s.TotalPosts)
	fmt.Fprintf(w, "Date range: %s\n", s.DateRange)
	fmt.Fprintf(w, "Average confidence score: %.3f\n", s.AvgConfidence)
	for _, b := range s.Broads {
		fmt.Fprintf(w, "  %-28s %5d (%.1f%%)\n", b.Label, b.Count, b.Percentage)
	}
	if len(r.Words.Negative) > 0 {
		fmt.Fprintln(w, "Top words in negative posts:")
		for _, wc := range r.Words.Negative {
			fmt.Fprintf(w, "  %s: %d\n", wc.Word, wc.Count)
		}
	}
	if len(r.Words.Positive) > 0 {
		fmt.Fprintln(w, "Top words in positive posts:")
		for _, wc := range r.Words.Positive {
			fmt.Fprintf(w, "  %s: %d\n", wc.Word, wc.Count)
		}
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	var stopWords string

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Classified records JSON written by post-classifier")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Path to write the aggregated report JSON")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML settings file")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "dotenv file to load if present")
	fs.StringVar(&cfg.Brand, "brand", cfg.Brand, "Brand used in category labels and stop words")
	fs.StringVar(&stopWords, "stop-words", "", "Extra comma-separated stop words for word frequency")
	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Pretty-print the report JSON")
	fs.BoolVar(&cfg.Debug, "debug", false, "Debug logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/sentiment-report -in data/classified_posts.json -out data/sentiment_report.json")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.explicit = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { cfg.explicit[f.Name] = true })

	cfg.StopWords = splitList(stopWords)
	if cfg.InPath != "" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	if cfg.OutPath != "" {
		cfg.OutPath = filepath.Clean(cfg.OutPath)
	}
	return cfg, nil
}
