package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/logging"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/provider"
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

	classify, err := provider.New(provider.Options{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Brand:       cfg.Brand,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, classify, logger, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, classify sentiment.ClassifyFunc, logger *zap.Logger, stdout, stderr io.Writer) error {
	posts, err := sentiment.LoadPosts(ctx, cfg.InPath, sentiment.LoadOptions{ArrayField: cfg.ArrayField})
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Loaded %d posts from %s\n", len(posts), cfg.InPath)

	res, err := sentiment.Driver{
		Classify:    classify,
		Logger:      logger,
		Concurrency: cfg.Concurrency,
	}.Run(ctx, posts)
	if err != nil {
		return err
	}
	if err := sentiment.SaveRecords(cfg.OutPath, res.Records); err != nil {
		return err
	}

	batch := sentiment.TallyBatch(res.Records, cfg.Brand)
	if path := cfg.runLogPath(); path != "" {
		entry := sentiment.NewRunLogEntry(res, batch, cfg.Brand)
		entry.Input, entry.Output = cfg.InPath, cfg.OutPath
		entry.Provider, entry.Model = cfg.Provider, cfg.Model
		if err := sentiment.AppendRunLog(path, entry); err != nil {
			logger.Warn("run log not written", zap.String("path", path), zap.Error(err))
		}
	}
	printTally(stderr, batch, res)
	fmt.Fprintf(stdout, "records_written=%d errors=%d avg_confidence=%.3f elapsed=%s run_id=%s out=%s\n",
		len(res.Records), batch.Errors, batch.AvgConfidence, res.Elapsed.Round(time.Millisecond), res.RunID, cfg.OutPath)
	return nil
}

// printTally writes the human-readable batch summary.
func printTally(w io.Writer, b sentiment.BatchSummary, res sentiment.BatchResult) {
	fmt.Fprintf(w, "\nClassification complete in %.2fs (run %s)\n", res.Elapsed.Seconds(), res.RunID)
	fmt.Fprintf(w, "Total posts processed: %d\n", b.TotalPosts)
	fmt.Fprintf(w, "Errors: %d\n", b.Errors)
	fmt.Fprintf(w, "Average confidence score: %.3f\n", b.AvgConfidence)
	fmt.Fprintln(w, "\nSentiment breakdown:")
	for _, bc := range b.Bins {
		if bc.Bin == sentiment.InvalidScore && bc.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-20s %5d (%.1f%%)\n", bc.Bin, bc.Count, bc.Percentage)
	}
	for _, bc := range b.Broads {
		fmt.Fprintf(w, "  %-28s %5d (%.1f%%)\n", bc.Label, bc.Count, bc.Percentage)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Scraped posts JSON ({\"posts\": [...]} or a top-level array)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Path to write classified records JSON")
	fs.StringVar(&cfg.ArrayField, "array-field", "", "If top-level JSON is an object, name of field containing the posts array")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML settings file")
	fs.StringVar(&cfg.RunLogPath, "run-log", "", "JSONL run history (default: runs.jsonl next to -out; \"off\" disables)")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "dotenv file to load if present")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "LLM provider: openai or anthropic")
	fs.StringVar(&cfg.Model, "model", "", "Model name (default depends on provider)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "API key (defaults to OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	fs.StringVar(&cfg.Brand, "brand", cfg.Brand, "Brand the sentiment scale refers to")
	fs.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	fs.IntVar(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "Max output tokens per classification")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Classification calls in flight (1 = sequential)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Debug logging (per-post raw responses)")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/post-classifier -in data/posts.json -out data/classified_posts.json")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/post-classifier -provider anthropic -brand Nestle -concurrency 4")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.explicit = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { cfg.explicit[f.Name] = true })

	if cfg.InPath != "" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	if cfg.OutPath != "" {
		cfg.OutPath = filepath.Clean(cfg.OutPath)
	}
	return cfg, nil
}
