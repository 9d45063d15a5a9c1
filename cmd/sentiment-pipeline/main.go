package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theimaginaryfoundation/brand-sentiment/sentiment/fileutils"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, stage := range selectStages(cfg) {
		if stage == "classify" && !cfg.Overwrite && fileutils.FileExists(cfg.recordsPath()) {
			fmt.Fprintln(os.Stdout, "skip classify: records already exist")
			continue
		}
		if err := runGo(ctx, os.Stdout, os.Stderr, stageArgs(cfg, stage)...); err != nil {
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stdout, "records=%s report=%s\n", cfg.recordsPath(), cfg.reportPath())
}

func selectStages(cfg Config) []string {
	if cfg.OnlyStage != "" {
		return []string{cfg.OnlyStage}
	}
	if cfg.FromStage != "" {
		return stagesFrom(allStages, cfg.FromStage)
	}
	return allStages
}

// stageArgs builds the `go run` invocation for one stage.
func stageArgs(cfg Config, stage string) []string {
	var args []string
	switch stage {
	case "classify":
		args = []string{
			"run", "./cmd/post-classifier",
			"-in", cfg.PostsPath,
			"-out", cfg.recordsPath(),
			"-concurrency", fmt.Sprintf("%d", cfg.Concurrency),
		}
		if cfg.Provider != "" {
			args = append(args, "-provider", cfg.Provider)
		}
		if cfg.Model != "" {
			args = append(args, "-model", cfg.Model)
		}
	case "report":
		args = []string{
			"run", "./cmd/sentiment-report",
			"-in", cfg.recordsPath(),
			"-out", cfg.reportPath(),
		}
	default:
		return nil
	}
	if cfg.Brand != "" {
		args = append(args, "-brand", cfg.Brand)
	}
	if cfg.ConfigPath != "" {
		args = append(args, "-config", cfg.ConfigPath)
	}
	if cfg.Debug {
		args = append(args, "-debug")
	}
	return args
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.PostsPath, "posts", cfg.PostsPath, "Scraped posts JSON")
	fs.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "Directory for classified records and the report")
	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML settings file passed to every stage")
	fs.StringVar(&cfg.Provider, "provider", "", "LLM provider override for classify: openai|anthropic")
	fs.StringVar(&cfg.Model, "model", "", "Model override for classify")
	fs.StringVar(&cfg.Brand, "brand", "", "Brand override for every stage")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Classification calls in flight")
	fs.StringVar(&cfg.FromStage, "from-stage", "", "Start at stage: classify|report")
	fs.StringVar(&cfg.OnlyStage, "only-stage", "", "Run only one stage: classify|report")
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Re-classify even if records already exist")
	fs.BoolVar(&cfg.Debug, "debug", false, "Debug logging in every stage")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.FromStage = strings.ToLower(strings.TrimSpace(cfg.FromStage))
	cfg.OnlyStage = strings.ToLower(strings.TrimSpace(cfg.OnlyStage))
	if cfg.PostsPath != "" {
		cfg.PostsPath = filepath.Clean(cfg.PostsPath)
	}
	if cfg.BaseDir != "" {
		cfg.BaseDir = filepath.Clean(cfg.BaseDir)
	}
	if cfg.ConfigPath != "" {
		cfg.ConfigPath = filepath.Clean(cfg.ConfigPath)
	}
	return cfg, nil
}

func runGo(ctx context.Context, stdout, stderr io.Writer, args ...string) error {
	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = os.Environ()

	start := time.Now()
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(stderr, "command failed:", "go "+strings.Join(args, " "))
		fmt.Fprintln(stderr, "error:", err.Error())
		return err
	}
	fmt.Fprintln(stdout, "ok:", "go "+strings.Join(args, " "), "(", time.Since(start).Round(time.Millisecond).String()+")")
	return nil
}

func stagesFrom(stages []string, from string) []string {
	from = strings.ToLower(strings.TrimSpace(from))
	for i, s := range stages {
		if s == from {
			return stages[i:]
		}
	}
	return stages
}
