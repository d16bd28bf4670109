// Package config loads application configuration from environment
// variables (TERMITRAN_ prefix) and an optional YAML config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CompletionConfig configures one text-completion backend.
type CompletionConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	FallbackModel string        `mapstructure:"fallback_model"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Temperature   float64       `mapstructure:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// TerminologyConfig configures the remote knowledge-base source and the
// in-process terminology cache.
type TerminologyConfig struct {
	AppID      string            `mapstructure:"app_id"`
	AppSecret  string            `mapstructure:"app_secret"`
	BaseURL    string            `mapstructure:"base_url"`
	Nodes      map[string]string `mapstructure:"nodes"`
	CacheTTL   time.Duration     `mapstructure:"cache_ttl"`
	MaxEntries int               `mapstructure:"max_entries"`
}

// ExtractionConfig configures the document-structure extraction service.
type ExtractionConfig struct {
	AppID      string        `mapstructure:"app_id"`
	SecretCode string        `mapstructure:"secret_code"`
	BaseURL    string        `mapstructure:"base_url"`
	DPI        int           `mapstructure:"dpi"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// SessionConfig tunes the translation workflow orchestration.
type SessionConfig struct {
	ChunkThreshold int           `mapstructure:"chunk_threshold"`
	ChunkSize      int           `mapstructure:"chunk_size"`
	ChunkDelay     time.Duration `mapstructure:"chunk_delay"`
	TTL            time.Duration `mapstructure:"ttl"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
}

// LayoutConfig tunes the layout-preserving document renderer. The source
// coordinate resolution comes from ExtractionConfig.DPI so the geometry
// always matches what the extraction service reported.
type LayoutConfig struct {
	TargetDPI  float64       `mapstructure:"target_dpi"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	FontPaths  []string      `mapstructure:"font_paths"`
}

// Config is the root configuration object.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Translation is the primary completion backend used for the final
	// translation pass; Analysis is the (cheaper) backend used for
	// document analysis and evaluation. Either may be unconfigured, in
	// which case the dependent component degrades per its contract.
	Translation CompletionConfig `mapstructure:"translation"`
	Analysis    CompletionConfig `mapstructure:"analysis"`

	Terminology TerminologyConfig `mapstructure:"terminology"`
	Extraction  ExtractionConfig  `mapstructure:"extraction"`
	Session     SessionConfig     `mapstructure:"session"`
	Layout      LayoutConfig      `mapstructure:"layout"`

	// MemoryPath is the SQLite file backing the local translation memory.
	// Empty disables local persistence.
	MemoryPath string `mapstructure:"memory_path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("translation.base_url", "https://api.openai.com/v1")
	v.SetDefault("translation.model", "gpt-5.1")
	v.SetDefault("translation.fallback_model", "gpt-4o")
	v.SetDefault("translation.max_tokens", 16000)
	v.SetDefault("translation.temperature", 0.2)
	v.SetDefault("translation.timeout", 10*time.Minute)

	v.SetDefault("analysis.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("analysis.model", "deepseek-chat")
	v.SetDefault("analysis.max_tokens", 2000)
	v.SetDefault("analysis.temperature", 0.7)
	v.SetDefault("analysis.timeout", 30*time.Second)

	v.SetDefault("terminology.base_url", "https://open.feishu.cn")
	v.SetDefault("terminology.cache_ttl", 30*time.Minute)
	v.SetDefault("terminology.max_entries", 500)

	v.SetDefault("extraction.base_url", "https://api.textin.com")
	v.SetDefault("extraction.dpi", 144)
	v.SetDefault("extraction.timeout", 2*time.Minute)

	v.SetDefault("session.chunk_threshold", 3000)
	v.SetDefault("session.chunk_size", 2000)
	v.SetDefault("session.chunk_delay", time.Second)
	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.sweep_interval", 10*time.Minute)

	v.SetDefault("layout.target_dpi", 72.0)
	v.SetDefault("layout.batch_size", 5)
	v.SetDefault("layout.batch_delay", time.Second)
	v.SetDefault("layout.font_paths", []string{
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttf",
		"/System/Library/Fonts/PingFang.ttc",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	})

	v.SetDefault("memory_path", "./data/termitran.db")
}

// Load reads configuration from the optional file at path (empty skips the
// file) merged with TERMITRAN_-prefixed environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TERMITRAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
