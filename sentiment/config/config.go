// Package config loads shared settings for the sentiment commands: an optional YAML file,
// a .env file, and environment overrides. Command-line flags are applied by each command on
// top of the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Brand       string   `yaml:"brand"`
	Provider    string   `yaml:"llm_provider"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	StopWords   []string `yaml:"stop_words"`

	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	// Per-provider models win over Model for their provider only.
	OpenAIModel    string `yaml:"openai_model"`
	AnthropicModel string `yaml:"anthropic_model"`

	DataFile string `yaml:"data_file"`
	Port     string `yaml:"port"`
}

// Load reads the YAML file at path (skipped when path is empty) and applies environment
// overrides.
func Load(path string) (Settings, error) {
	s, err := LoadFile(path)
	if err != nil {
		return Settings{}, err
	}
	if err := s.applyEnv(os.Getenv); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadFile reads settings from a YAML file. An empty path yields zero Settings.
func LoadFile(path string) (Settings, error) {
	var s Settings
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" if none) into the process
// environment without overwriting variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// APIKey returns the key for provider ("openai" when empty).
func (s Settings) APIKey(provider string) string {
	if strings.EqualFold(strings.TrimSpace(provider), "anthropic") {
		return s.AnthropicAPIKey
	}
	return s.OpenAIAPIKey
}

// ModelFor returns the model configured for provider, falling back to Model.
func (s Settings) ModelFor(provider string) string {
	specific := s.OpenAIModel
	if strings.EqualFold(strings.TrimSpace(provider), "anthropic") {
		specific = s.AnthropicModel
	}
	if specific != "" {
		return specific
	}
	return s.Model
}

func (s *Settings) applyEnv(getenv func(string) string) error {
	envOverride(getenv, &s.Brand, "BRAND")
	envOverride(getenv, &s.Provider, "LLM_PROVIDER")
	envOverride(getenv, &s.OpenAIModel, "OPENAI_MODEL")
	envOverride(getenv, &s.AnthropicModel, "ANTHROPIC_MODEL")
	envOverride(getenv, &s.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(getenv, &s.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(getenv, &s.DataFile, "DATA_FILE")
	envOverride(getenv, &s.Port, "PORT")
	if err := envOverrideInt(getenv, &s.MaxTokens, "LLM_MAX_TOKENS"); err != nil {
		return err
	}
	if err := envOverrideFloat(getenv, &s.Temperature, "OPENAI_TEMPERATURE"); err != nil {
		return err
	}
	if v := getenv("STOP_WORDS"); v != "" {
		s.StopWords = nil
		for _, w := range strings.Split(v, ",") {
			if w = strings.TrimSpace(w); w != "" {
				s.StopWords = append(s.StopWords, w)
			}
		}
	}
	return nil
}

func envOverride(getenv func(string) string, field *string, envKey string) {
	if val := getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(getenv func(string) string, field *int, envKey string) error {
	val := getenv(envKey)
	if val == "" {
		return nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", envKey, val, err)
	}
	*field = parsed
	return nil
}

func envOverrideFloat(getenv func(string) string, field **float64, envKey string) error {
	val := getenv(envKey)
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", envKey, val, err)
	}
	*field = &parsed
	return nil
}
