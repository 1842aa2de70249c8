package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values (Groq's OpenAI-compatible endpoint).
const (
	defaultBaseURL       = "https://api.groq.com/openai/v1"
	defaultModel         = "llama-3.1-70b-versatile"
	defaultProvider      = "groq"
	defaultContextWindow = 8000
)

// configFileName is looked up in the working directory; absence is fine.
const configFileName = "config.json"

// runConfig holds the per-process configuration. Built once at startup and
// passed by reference into the gateway.
type runConfig struct {
	APIKey   string `json:"api_key,omitempty"`
	Provider string `json:"provider,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	Model    string `json:"model,omitempty"`
	// ContextWindow is informational only; it is logged but not enforced.
	ContextWindow int `json:"context_window,omitempty"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Provider:      defaultProvider,
		BaseURL:       defaultBaseURL,
		Model:         defaultModel,
		ContextWindow: defaultContextWindow,
	}
}

// loadConfig builds the configuration from defaults, an optional JSON
// config file, and environment overrides, in that order of precedence.
func loadConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()

	if _, err := os.Stat(path); err == nil {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
			return runConfig{}, fmt.Errorf("load config: %w", err)
		}
		if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
			return runConfig{}, fmt.Errorf("unmarshal config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return runConfig{}, fmt.Errorf("stat config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return runConfig{}, err
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return runConfig{}, errors.New("missing API key (set API_KEY in .env or api_key in config.json)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaultContextWindow
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. godotenv has already
// folded any .env file into the process environment by the time this runs.
func applyEnv(cfg *runConfig) error {
	if v := strings.TrimSpace(os.Getenv("API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PROVIDER")); v != "" {
		cfg.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MODEL_ID")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("CONTEXT_WINDOW")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CONTEXT_WINDOW %q: %w", v, err)
		}
		cfg.ContextWindow = n
	}
	return nil
}
