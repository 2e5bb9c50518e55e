package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"causalgate/internal/errors"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Gate    GateConfig
	Novelty NoveltyConfig
	Cache   CacheConfig
	Ledger  LedgerConfig
	Log     LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// GateConfig holds mechanism constraint gate policy
type GateConfig struct {
	MaxWarnings int               `toml:"max_warnings"`
	Policy      map[string]string `toml:"policy"`
	Domain      string            `toml:"domain"`
}

// NoveltyConfig holds novelty-proof thresholds
type NoveltyConfig struct {
	NoveltyThreshold        float64 `toml:"novelty_threshold"`
	FalsifiabilityThreshold float64 `toml:"falsifiability_threshold"`
	ContradictionThreshold  float64 `toml:"contradiction_threshold"`
	Concurrency             int     `toml:"concurrency"`
}

// CacheConfig selects the analysis cache backend
type CacheConfig struct {
	RedisURL   string
	MaxEntries int
}

// LedgerConfig holds the optional verdict ledger connection
type LedgerConfig struct {
	DatabaseURL string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// policyFile mirrors the TOML gate policy document
type policyFile struct {
	Gate    GateConfig    `toml:"gate"`
	Novelty NoveltyConfig `toml:"novelty"`
}

var validPolicies = map[string]bool{"fatal": true, "warning": true, "skip": true}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", GinMode: "release"},
		Gate: GateConfig{
			MaxWarnings: 3,
			Policy:      map[string]string{},
		},
		Novelty: NoveltyConfig{
			NoveltyThreshold:        0.3,
			FalsifiabilityThreshold: 0.5,
			ContradictionThreshold:  0.5,
			Concurrency:             4,
		},
		Cache: CacheConfig{MaxEntries: 4096},
		Log:   LogConfig{Level: "INFO"},
	}
}

// Load reads configuration from environment variables, overlays the optional
// TOML policy file named by GATE_POLICY_FILE, and validates the result.
func Load() (*Config, error) {
	config := Default()

	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	config.Log.Level = getEnvOrDefault("LOG_LEVEL", config.Log.Level)
	config.Cache.RedisURL = getEnvOrDefault("REDIS_URL", "")
	config.Cache.MaxEntries = getEnvIntOrDefault("CACHE_MAX_ENTRIES", config.Cache.MaxEntries)
	config.Ledger.DatabaseURL = getEnvOrDefault("DATABASE_URL", "")

	config.Gate.MaxWarnings = getEnvIntOrDefault("GATE_MAX_WARNINGS", config.Gate.MaxWarnings)
	config.Gate.Domain = getEnvOrDefault("GATE_DOMAIN", "")
	config.Novelty.NoveltyThreshold = getEnvFloatOrDefault("NOVELTY_THRESHOLD", config.Novelty.NoveltyThreshold)
	config.Novelty.FalsifiabilityThreshold = getEnvFloatOrDefault("FALSIFIABILITY_THRESHOLD", config.Novelty.FalsifiabilityThreshold)
	config.Novelty.ContradictionThreshold = getEnvFloatOrDefault("CONTRADICTION_THRESHOLD", config.Novelty.ContradictionThreshold)
	config.Novelty.Concurrency = getEnvIntOrDefault("PRIOR_ART_CONCURRENCY", config.Novelty.Concurrency)

	if path := os.Getenv("GATE_POLICY_FILE"); path != "" {
		if err := config.LoadPolicyFile(path); err != nil {
			return nil, errors.Wrap(err, "failed to load gate policy file")
		}
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadPolicyFile overlays gate and novelty settings from a TOML document.
// Zero values in the file leave the current settings untouched.
func (c *Config) LoadPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file '%s': %w", path, err)
	}
	return c.ApplyPolicyTOML(data)
}

// ApplyPolicyTOML overlays gate and novelty settings from TOML bytes
func (c *Config) ApplyPolicyTOML(data []byte) error {
	var file policyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse TOML: %w", err))
	}

	if file.Gate.MaxWarnings > 0 {
		c.Gate.MaxWarnings = file.Gate.MaxWarnings
	}
	if file.Gate.Domain != "" {
		c.Gate.Domain = file.Gate.Domain
	}
	if c.Gate.Policy == nil {
		c.Gate.Policy = map[string]string{}
	}
	for axiom, policy := range file.Gate.Policy {
		c.Gate.Policy[strings.ToLower(axiom)] = strings.ToLower(policy)
	}

	if file.Novelty.NoveltyThreshold > 0 {
		c.Novelty.NoveltyThreshold = file.Novelty.NoveltyThreshold
	}
	if file.Novelty.FalsifiabilityThreshold > 0 {
		c.Novelty.FalsifiabilityThreshold = file.Novelty.FalsifiabilityThreshold
	}
	if file.Novelty.ContradictionThreshold > 0 {
		c.Novelty.ContradictionThreshold = file.Novelty.ContradictionThreshold
	}
	if file.Novelty.Concurrency > 0 {
		c.Novelty.Concurrency = file.Novelty.Concurrency
	}
	return nil
}

// Validate rejects out-of-range thresholds and unknown policies
func (c *Config) Validate() error {
	if c.Gate.MaxWarnings < 0 {
		return errors.ConfigInvalid("gate max warnings must be non-negative")
	}
	for axiom, policy := range c.Gate.Policy {
		if !validPolicies[policy] {
			return errors.ConfigInvalid(fmt.Sprintf("invalid policy %q for axiom %q (want fatal, warning or skip)", policy, axiom))
		}
	}
	thresholds := map[string]float64{
		"novelty threshold":        c.Novelty.NoveltyThreshold,
		"falsifiability threshold": c.Novelty.FalsifiabilityThreshold,
		"contradiction threshold":  c.Novelty.ContradictionThreshold,
	}
	for name, value := range thresholds {
		if value < 0 || value > 1 {
			return errors.ConfigInvalid(fmt.Sprintf("%s must be within [0,1], got %v", name, value))
		}
	}
	if c.Novelty.Concurrency < 1 {
		return errors.ConfigInvalid("prior-art concurrency must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
