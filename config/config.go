// Package config loads the facultyhub application configuration from YAML
// and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/facultyhub/ai"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "facultyhub.yaml"

// SourcesConfig locates the scraped per-institution JSON files.
type SourcesConfig struct {
	Dir     string `yaml:"dir"`
	Workers int    `yaml:"workers"`
	// Colleges overrides the built-in source id to college name table.
	Colleges map[string]string `yaml:"colleges,omitempty"`
}

// IndexConfig configures the persisted embedding index.
type IndexConfig struct {
	Path         string `yaml:"path"`
	InMemory     bool   `yaml:"in_memory"`
	BatchSize    int    `yaml:"batch_size"`
	Workers      int    `yaml:"workers"`
	MaxRetries   int    `yaml:"max_retries"`
	RetryDelayMs int    `yaml:"retry_delay_ms"`
}

// AIConfig selects the embedding and generation backend.
type AIConfig struct {
	Provider          string  `yaml:"provider"`
	EmbeddingHost     string  `yaml:"embedding_host,omitempty"`
	GenerationHost    string  `yaml:"generation_host,omitempty"`
	EmbeddingModel    string  `yaml:"embedding_model,omitempty"`
	GenerationModel   string  `yaml:"generation_model,omitempty"`
	APIKeyEnv         string  `yaml:"api_key_env,omitempty"`
	Temperature       float64 `yaml:"temperature"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// RetrievalConfig tunes recommendation queries.
type RetrievalConfig struct {
	TopK        int `yaml:"top_k"`
	TimeoutSecs int `yaml:"timeout_secs"`
}

// OutreachConfig configures email planning and the interaction log.
type OutreachConfig struct {
	LogPath          string `yaml:"log_path"`
	FollowupDays     int    `yaml:"followup_days"`
	ReminderInterval string `yaml:"reminder_interval"`
}

// WatchConfig tunes the source directory watcher.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Sources   SourcesConfig   `yaml:"sources"`
	Index     IndexConfig     `yaml:"index"`
	AI        AIConfig        `yaml:"ai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Outreach  OutreachConfig  `yaml:"outreach"`
	Watch     WatchConfig     `yaml:"watch"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./facultyhub.yaml first, then ~/.config/facultyhub/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnv loads variables from .env files into the process environment.
// Missing files are ignored; existing variables are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "facultyhub", "config.yaml"), nil
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	cfg := &AppConfig{
		Sources: SourcesConfig{Dir: "data"},
		Index:   IndexConfig{Path: ".facultyhub_index"},
		AI:      AIConfig{Provider: ai.ProviderTFIDF},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Sources.Dir == "" {
		cfg.Sources.Dir = "data"
	}
	if cfg.Sources.Workers <= 0 {
		cfg.Sources.Workers = 4
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = ".facultyhub_index"
	}
	if cfg.Index.BatchSize <= 0 {
		cfg.Index.BatchSize = 32
	}
	if cfg.Index.Workers <= 0 {
		cfg.Index.Workers = 4
	}
	if cfg.Index.MaxRetries <= 0 {
		cfg.Index.MaxRetries = 3
	}
	if cfg.Index.RetryDelayMs <= 0 {
		cfg.Index.RetryDelayMs = 500
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ai.ProviderTFIDF
	}
	if cfg.AI.APIKeyEnv == "" {
		switch cfg.AI.Provider {
		case ai.ProviderGemini:
			cfg.AI.APIKeyEnv = "GEMINI_API_KEY"
		case ai.ProviderOpenAI:
			cfg.AI.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.TimeoutSecs <= 0 {
		cfg.AI.TimeoutSecs = 30
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.TimeoutSecs <= 0 {
		cfg.Retrieval.TimeoutSecs = 10
	}
	if cfg.Outreach.LogPath == "" {
		cfg.Outreach.LogPath = ".facultyhub_outreach"
	}
	if cfg.Outreach.FollowupDays <= 0 {
		cfg.Outreach.FollowupDays = 5
	}
	if cfg.Outreach.ReminderInterval == "" {
		cfg.Outreach.ReminderInterval = "1h"
	}
	if cfg.Watch.DebounceMs <= 0 {
		cfg.Watch.DebounceMs = 500
	}
}

// AIOptions translates the AI section into ai.Config options. The API key is
// read from the environment variable named by APIKeyEnv.
func (c *AIConfig) AIOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithProvider(c.Provider),
		ai.WithTemperature(c.Temperature),
		ai.WithTimeout(time.Duration(c.TimeoutSecs) * time.Second),
		ai.WithRequestsPerMinute(c.RequestsPerMinute),
	}
	if c.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(c.EmbeddingHost))
	}
	if c.GenerationHost != "" {
		opts = append(opts, ai.WithGenerationHost(c.GenerationHost))
	}
	if c.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(c.EmbeddingModel))
	}
	if c.GenerationModel != "" {
		opts = append(opts, ai.WithGenerationModel(c.GenerationModel))
	}
	if c.APIKeyEnv != "" {
		if key := os.Getenv(c.APIKeyEnv); key != "" {
			opts = append(opts, ai.WithAPIKey(key))
		}
	}
	return opts
}

// ReminderEvery parses the reminder interval, falling back to one hour.
func (c *OutreachConfig) ReminderEvery() time.Duration {
	d, err := time.ParseDuration(c.ReminderInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}
