package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptdex/promptdex/safeurl"
)

// Config holds the full application configuration.
type Config struct {
	PagedCatalogURL   string `yaml:"paged_catalog_url"`
	ListingCatalogURL string `yaml:"listing_catalog_url"`

	ModerationEndpoint string `yaml:"moderation_endpoint"`

	OutputPath    string `yaml:"output_path"`
	StatsPath     string `yaml:"stats_path"`
	BlacklistPath string `yaml:"blacklist_path"`

	// RunLogDB enables the sqlite run ledger when non-empty.
	RunLogDB string `yaml:"runlog_db"`

	// Listen is the serve-mode bind address.
	Listen string `yaml:"listen"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		PagedCatalogURL:    "http://www.jasongjz.top:8000/api/v1/prompts/",
		ListingCatalogURL:  "https://prompt.614447.xyz/api/prompts",
		ModerationEndpoint: "https://green-cip.cn-shanghai.aliyuncs.com",
		OutputPath:         "public/prompts.json",
		StatsPath:          "public/stats.json",
		BlacklistPath:      "blacklist.txt",
		Listen:             ":8080",
		TimeoutSeconds:     10,
	}
}

// LoadConfig reads a YAML config file merged over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and endpoints are sane.
func (c *Config) Validate() error {
	for name, u := range map[string]string{
		"paged_catalog_url":   c.PagedCatalogURL,
		"listing_catalog_url": c.ListingCatalogURL,
		"moderation_endpoint": c.ModerationEndpoint,
	} {
		if u == "" {
			return fmt.Errorf("%s is required", name)
		}
		if err := safeurl.Validate(u); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output_path is required")
	}
	if c.StatsPath == "" {
		return fmt.Errorf("stats_path is required")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be > 0")
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
