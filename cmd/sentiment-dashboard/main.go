package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment"
	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/config"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg Config, logger *zap.Logger) error {
	source := recordSource{location: cfg.DataFile, dataDir: cfg.DataDir}
	handler := newRouter(source, sentiment.AggregateOptions{
		Brand:          cfg.Brand,
		ExtraStopWords: cfg.StopWords,
	}, cfg.CorsOrigins, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", zap.String("addr", srv.Addr), zap.String("data", source.String()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("dashboard stopped")
	return nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	var stopWords, origins string

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Classified records JSON: local path or http(s) URL (env DATA_FILE)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory searched for the data file's base name when the path does not exist")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "Listen port (env PORT)")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML settings file")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "dotenv file to load if present")
	fs.StringVar(&cfg.Brand, "brand", cfg.Brand, "Brand used in category labels and stop words")
	fs.StringVar(&stopWords, "stop-words", "", "Extra comma-separated stop words for word frequency")
	fs.StringVar(&origins, "cors-origins", strings.Join(cfg.CorsOrigins, ","), "Comma-separated allowed CORS origins")
	fs.BoolVar(&cfg.Debug, "debug", false, "Debug logging")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/sentiment-dashboard -data data/classified_posts.json -port 8080")
		fmt.Fprintln(fs.Output(), "  DATA_FILE=https://example.com/classified.json go run ./cmd/sentiment-dashboard")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.explicit = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { cfg.explicit[f.Name] = true })

	cfg.StopWords = splitList(stopWords)
	cfg.CorsOrigins = splitList(origins)
	return cfg, nil
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
