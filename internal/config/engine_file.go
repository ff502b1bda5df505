package config

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineFile is the bootstrap description of an engine deployment: the
// supported assets with their price feeds, and the oracle guardrails.
// Loaded once at startup; the engine's asset set is immutable afterward.
type EngineFile struct {
	Oracle OracleConfig  `yaml:"oracle"`
	Assets []AssetConfig `yaml:"assets"`
}

// OracleConfig carries the oracle guardrail settings.
type OracleConfig struct {
	// FreshnessTimeout is a duration string, e.g. "3h".
	FreshnessTimeout string `yaml:"freshness_timeout"`
}

// ParseTimeout converts the freshness timeout to a duration, zero when
// unset.
func (c OracleConfig) ParseTimeout() (time.Duration, error) {
	if c.FreshnessTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.FreshnessTimeout)
}

// AssetConfig describes one supported collateral asset.
type AssetConfig struct {
	ID   string     `yaml:"id"`
	Feed FeedConfig `yaml:"feed"`
}

// FeedConfig seeds a static price feed for the demo binary: a decimal
// integer price in the feed's own precision.
type FeedConfig struct {
	Price    string `yaml:"price"`
	Decimals uint8  `yaml:"decimals"`
}

// ParsePrice decodes the configured price string.
func (c FeedConfig) ParsePrice() (*big.Int, error) {
	price, ok := new(big.Int).SetString(c.Price, 10)
	if !ok {
		return nil, fmt.Errorf("config: invalid feed price %q", c.Price)
	}
	return price, nil
}

// LoadEngineFile reads and parses a YAML engine bootstrap file.
func LoadEngineFile(path string) (*EngineFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine file: %w", err)
	}

	ef := &EngineFile{}
	if err := yaml.Unmarshal(data, ef); err != nil {
		return nil, fmt.Errorf("parse engine file: %w", err)
	}
	if len(ef.Assets) == 0 {
		return nil, fmt.Errorf("engine file: no assets configured")
	}
	return ef, nil
}
