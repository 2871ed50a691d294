package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// AMapConfig covers both the geocoder and the direction (routing) REST API.
type AMapConfig struct {
	APIKey  string `toml:"api_key"`
	City    string `toml:"city"`     // city bias for geocoding and transit
	BaseURL string `toml:"base_url"` // override for tests
}

// AdvisorConfig exposes the travel recommendation thresholds. Zero values
// fall back to the documented defaults (1000m, 20min, 1.5x).
type AdvisorConfig struct {
	WalkMaxMeters float64 `toml:"walk_max_meters"`
	BufferMinutes float64 `toml:"buffer_minutes"`
	TransitFactor float64 `toml:"transit_factor"`
}

type StorageConfig struct {
	Path string `toml:"path"` // SQLite database file
}

type ConcurrencyConfig struct {
	RouteSegments int `toml:"route_segments"` // parallel segment computations
}

type AssistantPrompts struct {
	// System overrides the built-in system prompt. Two %s verbs: current
	// date, then the serialized schedule.
	System string `toml:"system"`
	// Timezone for interpreting zone-less oracle timestamps, e.g.
	// "Asia/Shanghai". Empty means the local zone.
	Timezone string `toml:"timezone"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	AMap        AMapConfig        `toml:"amap"`
	Advisor     AdvisorConfig     `toml:"advisor"`
	Storage     StorageConfig     `toml:"storage"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Assistant   AssistantPrompts  `toml:"assistant"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}
