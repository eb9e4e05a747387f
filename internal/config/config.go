// Package config provides configuration loading and validation for the
// comment service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Default pipeline constants. The historical service shipped with several
// inconsistent threshold sets; this is the one consistent set used here.
const (
	// DefaultMaxContentLen is the platform-independent admission ceiling.
	DefaultMaxContentLen = 25000
	// DefaultShortContentMax routes shorter posts to the lightweight strategy.
	DefaultShortContentMax = 600
	// DefaultLongContentMin routes longer posts to the long-form strategy.
	DefaultLongContentMin = 2000
	// DefaultMinCommentLen / DefaultMaxCommentLen bound accepted drafts.
	DefaultMinCommentLen = 200
	DefaultMaxCommentLen = 800
	// DefaultMaxSentences bounds accepted drafts.
	DefaultMaxSentences = 5
	// DefaultMaxRetries is the per-model retry budget.
	DefaultMaxRetries = 2
	// DefaultEmbedBatchLimit is the maximum texts per embedding call.
	DefaultEmbedBatchLimit = 20
	// DefaultRecentWindow is the size of the recent-comment ring buffer.
	DefaultRecentWindow = 50
	// DefaultFetchTextCap caps extracted page text.
	DefaultFetchTextCap = 8000
)

// Config holds all tunable settings for the service. All fields are optional
// in the JSON file; zero values are filled from defaults.
type Config struct {
	// Server
	Port int `json:"port,omitempty"`

	// Backends
	APIKey     string `json:"api_key,omitempty"`
	EmbedModel string `json:"embed_model,omitempty"`
	// ModelChain is the ordered generative model list: primary first, then
	// fallbacks tried on failure.
	ModelChain []string `json:"model_chain,omitempty"`

	// Corpora
	IndexDir string `json:"index_dir,omitempty"`

	// Brand
	BrandName string `json:"brand_name,omitempty"`

	// Admission and routing thresholds
	MaxContentLen   int `json:"max_content_len,omitempty"`
	ShortContentMax int `json:"short_content_max,omitempty"`
	LongContentMin  int `json:"long_content_min,omitempty"`

	// Quality bounds
	MinCommentLen int `json:"min_comment_len,omitempty"`
	MaxCommentLen int `json:"max_comment_len,omitempty"`
	MaxSentences  int `json:"max_sentences,omitempty"`

	// Generation budgets
	MaxRetries    int           `json:"max_retries,omitempty"`
	BackoffBase   time.Duration `json:"-"`
	BackoffBaseMS int           `json:"backoff_base_ms,omitempty"`

	// Retrieval
	TopKStyle       int `json:"top_k_style,omitempty"`
	TopKDocs        int `json:"top_k_docs,omitempty"`
	EmbedBatchLimit int `json:"embed_batch_limit,omitempty"`

	// Anti-repetition
	RecentWindow int `json:"recent_window,omitempty"`

	// Fetching
	FetchTextCap int `json:"fetch_text_cap,omitempty"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Port:            8080,
		EmbedModel:      "text-embedding-004",
		ModelChain:      []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"},
		IndexDir:        "data",
		BrandName:       "KiloCode",
		MaxContentLen:   DefaultMaxContentLen,
		ShortContentMax: DefaultShortContentMax,
		LongContentMin:  DefaultLongContentMin,
		MinCommentLen:   DefaultMinCommentLen,
		MaxCommentLen:   DefaultMaxCommentLen,
		MaxSentences:    DefaultMaxSentences,
		MaxRetries:      DefaultMaxRetries,
		BackoffBase:     500 * time.Millisecond,
		TopKStyle:       5,
		TopKDocs:        5,
		EmbedBatchLimit: DefaultEmbedBatchLimit,
		RecentWindow:    DefaultRecentWindow,
		FetchTextCap:    DefaultFetchTextCap,
	}
}

// Load reads configuration from a JSON file, fills missing values from
// defaults, and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		cfg.merge(&fileCfg)
	}

	cfg.applyEnv()

	if cfg.BackoffBaseMS > 0 {
		cfg.BackoffBase = time.Duration(cfg.BackoffBaseMS) * time.Millisecond
	}

	return cfg, nil
}

// merge overlays non-zero values from other onto c.
func (c *Config) merge(other *Config) {
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.APIKey != "" {
		c.APIKey = other.APIKey
	}
	if other.EmbedModel != "" {
		c.EmbedModel = other.EmbedModel
	}
	if len(other.ModelChain) > 0 {
		c.ModelChain = other.ModelChain
	}
	if other.IndexDir != "" {
		c.IndexDir = other.IndexDir
	}
	if other.BrandName != "" {
		c.BrandName = other.BrandName
	}
	if other.MaxContentLen != 0 {
		c.MaxContentLen = other.MaxContentLen
	}
	if other.ShortContentMax != 0 {
		c.ShortContentMax = other.ShortContentMax
	}
	if other.LongContentMin != 0 {
		c.LongContentMin = other.LongContentMin
	}
	if other.MinCommentLen != 0 {
		c.MinCommentLen = other.MinCommentLen
	}
	if other.MaxCommentLen != 0 {
		c.MaxCommentLen = other.MaxCommentLen
	}
	if other.MaxSentences != 0 {
		c.MaxSentences = other.MaxSentences
	}
	if other.MaxRetries != 0 {
		c.MaxRetries = other.MaxRetries
	}
	if other.BackoffBaseMS != 0 {
		c.BackoffBaseMS = other.BackoffBaseMS
	}
	if other.TopKStyle != 0 {
		c.TopKStyle = other.TopKStyle
	}
	if other.TopKDocs != 0 {
		c.TopKDocs = other.TopKDocs
	}
	if other.EmbedBatchLimit != 0 {
		c.EmbedBatchLimit = other.EmbedBatchLimit
	}
	if other.RecentWindow != 0 {
		c.RecentWindow = other.RecentWindow
	}
	if other.FetchTextCap != 0 {
		c.FetchTextCap = other.FetchTextCap
	}
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("GEMINI_GEN_MODEL"); v != "" {
		c.ModelChain = append([]string{v}, c.ModelChain...)
	}
	if v := os.Getenv("ML_INDEX_DIR"); v != "" {
		c.IndexDir = v
	}
	if v := os.Getenv("ML_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

// Validate checks that the configuration has a consistent value set.
func (c *Config) Validate() error {
	if c.MaxContentLen <= 0 {
		return fmt.Errorf("config error: 'max_content_len' must be positive")
	}
	if c.ShortContentMax >= c.LongContentMin {
		return fmt.Errorf("config error: 'short_content_max' must be below 'long_content_min'")
	}
	if c.MinCommentLen >= c.MaxCommentLen {
		return fmt.Errorf("config error: 'min_comment_len' must be below 'max_comment_len'")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if len(c.ModelChain) == 0 {
		return fmt.Errorf("config error: 'model_chain' must name at least one model")
	}
	if c.BrandName == "" {
		return fmt.Errorf("config error: 'brand_name' is required")
	}
	return nil
}
