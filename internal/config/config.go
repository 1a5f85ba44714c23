// Package config loads rankfuse configuration with layered precedence:
// hardcoded defaults, then the user config file, then the project config
// file, then RANKFUSE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corpusworks/rankfuse/internal/embed"
	"github.com/corpusworks/rankfuse/pkg/index"
	"github.com/corpusworks/rankfuse/pkg/rank"
	"github.com/corpusworks/rankfuse/pkg/selection"
)

// Config is the complete rankfuse configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Ranking    RankingConfig    `yaml:"ranking" json:"ranking"`
	Selection  SelectionConfig  `yaml:"selection" json:"selection"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// RankingConfig configures the ranking engine.
type RankingConfig struct {
	// Strategy selects the combination strategy: "weighted_sum", "rrf",
	// or "hybrid".
	Strategy string `yaml:"strategy" json:"strategy"`

	// Normalizer selects the default score normalizer: "minmax",
	// "zscore", or "percentile".
	Normalizer string `yaml:"normalizer" json:"normalizer"`

	// HybridAlpha is the hybrid strategy's blend factor (0.0-1.0):
	// 1.0 is pure weighted sum, 0.0 pure RRF.
	HybridAlpha float64 `yaml:"hybrid_alpha" json:"hybrid_alpha"`

	// RRFConstant is the RRF smoothing parameter (k).
	// Default: 60 (industry standard used by Azure AI Search, OpenSearch).
	RRFConstant int `yaml:"rrf_constant" json:"rrf_constant"`

	// Parallelism caps concurrent signal scoring. Default: 1 (sequential).
	Parallelism int `yaml:"parallelism" json:"parallelism"`

	// Signals maps document field names to ranking weights. Negative
	// weights demote.
	Signals map[string]float64 `yaml:"signals" json:"signals"`
}

// SelectionConfig configures the diversity selector.
type SelectionConfig struct {
	// Lambda balances relevance against diversity (0.0-1.0). In config
	// files zero reads as "unset"; use RANKFUSE_LAMBDA=0 for an explicit
	// pure-diversity default.
	Lambda float64 `yaml:"lambda" json:"lambda"`

	// Limit is the default number of candidates to select.
	Limit int `yaml:"limit" json:"limit"`
}

// IndexConfig configures the vector index graph parameters.
type IndexConfig struct {
	M        int `yaml:"m" json:"m"`
	EfSearch int `yaml:"ef_search" json:"ef_search"`
}

// EmbeddingsConfig configures the embedder.
type EmbeddingsConfig struct {
	Dimensions int `yaml:"dimensions" json:"dimensions"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig creates a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Ranking: RankingConfig{
			Strategy:    "weighted_sum",
			Normalizer:  "minmax",
			HybridAlpha: 0.5,
			RRFConstant: rank.DefaultRRFConstant,
			Parallelism: 1,
			Signals:     map[string]float64{},
		},
		Selection: SelectionConfig{
			Lambda: selection.DefaultLambda,
			Limit:  10,
		},
		Index: IndexConfig{
			M:        index.DefaultM,
			EfSearch: index.DefaultEfSearch,
		},
		Embeddings: EmbeddingsConfig{
			Dimensions: embed.DefaultDimensions,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file,
// following the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/rankfuse/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/rankfuse/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rankfuse", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "rankfuse", "config.yaml")
	}
	return filepath.Join(home, ".config", "rankfuse", "config.yaml")
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user configuration file if it exists. A missing
// file is not an error.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the given project directory, applying
// layers in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/rankfuse/config.yaml)
//  3. Project config (.rankfuse.yaml in the project root)
//  4. Environment variables (RANKFUSE_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load .rankfuse.yaml or .rankfuse.yml from dir.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".rankfuse.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".rankfuse.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine, defaults apply.
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Zero values read as
// "unset", so a config file cannot set lambda or hybrid_alpha to exactly 0;
// the RANKFUSE_LAMBDA and RANKFUSE_HYBRID_ALPHA env vars support explicit
// zeros.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Ranking.Strategy != "" {
		c.Ranking.Strategy = other.Ranking.Strategy
	}
	if other.Ranking.Normalizer != "" {
		c.Ranking.Normalizer = other.Ranking.Normalizer
	}
	if other.Ranking.HybridAlpha != 0 {
		c.Ranking.HybridAlpha = other.Ranking.HybridAlpha
	}
	if other.Ranking.RRFConstant != 0 {
		c.Ranking.RRFConstant = other.Ranking.RRFConstant
	}
	if other.Ranking.Parallelism != 0 {
		c.Ranking.Parallelism = other.Ranking.Parallelism
	}
	if len(other.Ranking.Signals) > 0 {
		// A project redefines its signal set wholesale, no per-key merge.
		c.Ranking.Signals = other.Ranking.Signals
	}

	if other.Selection.Lambda != 0 {
		c.Selection.Lambda = other.Selection.Lambda
	}
	if other.Selection.Limit != 0 {
		c.Selection.Limit = other.Selection.Limit
	}

	if other.Index.M != 0 {
		c.Index.M = other.Index.M
	}
	if other.Index.EfSearch != 0 {
		c.Index.EfSearch = other.Index.EfSearch
	}

	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// applyEnvOverrides applies RANKFUSE_* environment variable overrides.
// Numeric overrides accept explicit zeros, unlike file merging.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("RANKFUSE_STRATEGY"); v != "" {
		c.Ranking.Strategy = v
	}
	if v := os.Getenv("RANKFUSE_NORMALIZER"); v != "" {
		c.Ranking.Normalizer = v
	}
	if v := os.Getenv("RANKFUSE_HYBRID_ALPHA"); v != "" {
		if a, err := parseFloat64(v); err == nil && a >= 0 && a <= 1 {
			c.Ranking.HybridAlpha = a
		}
	}
	if v := os.Getenv("RANKFUSE_RRF_CONSTANT"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Ranking.RRFConstant = k
		}
	}
	if v := os.Getenv("RANKFUSE_PARALLELISM"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p >= 1 {
			c.Ranking.Parallelism = p
		}
	}
	if v := os.Getenv("RANKFUSE_LAMBDA"); v != "" {
		if l, err := parseFloat64(v); err == nil && l >= 0 && l <= 1 {
			c.Selection.Lambda = l
		}
	}
	if v := os.Getenv("RANKFUSE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Selection.Limit = n
		}
	}
	if v := os.Getenv("RANKFUSE_DIMENSIONS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			c.Embeddings.Dimensions = d
		}
	}
	if v := os.Getenv("RANKFUSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// parseFloat64 parses a string to float64, used for config parsing.
func parseFloat64(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f, err
}

// Validate checks the configuration and returns an error naming the first
// invalid field.
func (c *Config) Validate() error {
	validStrategies := map[string]bool{"weighted_sum": true, "rrf": true, "hybrid": true}
	if !validStrategies[strings.ToLower(c.Ranking.Strategy)] {
		return fmt.Errorf("ranking.strategy must be 'weighted_sum', 'rrf', or 'hybrid', got %s", c.Ranking.Strategy)
	}

	validNormalizers := map[string]bool{"minmax": true, "zscore": true, "percentile": true}
	if !validNormalizers[strings.ToLower(c.Ranking.Normalizer)] {
		return fmt.Errorf("ranking.normalizer must be 'minmax', 'zscore', or 'percentile', got %s", c.Ranking.Normalizer)
	}

	if c.Ranking.HybridAlpha < 0 || c.Ranking.HybridAlpha > 1 {
		return fmt.Errorf("ranking.hybrid_alpha must be between 0 and 1, got %f", c.Ranking.HybridAlpha)
	}
	if c.Ranking.RRFConstant <= 0 {
		return fmt.Errorf("ranking.rrf_constant must be positive, got %d", c.Ranking.RRFConstant)
	}
	if c.Ranking.Parallelism < 1 {
		return fmt.Errorf("ranking.parallelism must be at least 1, got %d", c.Ranking.Parallelism)
	}

	if c.Selection.Lambda < 0 || c.Selection.Lambda > 1 {
		return fmt.Errorf("selection.lambda must be between 0 and 1, got %f", c.Selection.Lambda)
	}
	if c.Selection.Limit < 0 {
		return fmt.Errorf("selection.limit must be non-negative, got %d", c.Selection.Limit)
	}

	if c.Index.M <= 0 {
		return fmt.Errorf("index.m must be positive, got %d", c.Index.M)
	}
	if c.Index.EfSearch <= 0 {
		return fmt.Errorf("index.ef_search must be positive, got %d", c.Index.EfSearch)
	}

	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// .rankfuse.yaml/.yml file. It falls back to startDir when nothing is
// found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if fileExists(filepath.Join(currentDir, ".rankfuse.yaml")) ||
			fileExists(filepath.Join(currentDir, ".rankfuse.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
