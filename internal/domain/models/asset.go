package models

import (
	"fmt"
	"strings"
)

// AssetClass selects which branch of trend and diagnosis logic applies to an asset.
type AssetClass string

const (
	AssetClassCryptocurrency AssetClass = "Cryptocurrency"
	AssetClassStablecoin     AssetClass = "Stablecoin"
	AssetClassTraditional    AssetClass = "Traditional"
)

// ParseAssetClass maps free-form labels onto the closed set of classes.
// Empty input and common equity/fund labels resolve to Traditional.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cryptocurrency", "crypto":
		return AssetClassCryptocurrency, nil
	case "stablecoin", "stable":
		return AssetClassStablecoin, nil
	case "", "traditional", "equity", "stock", "etf", "bond", "commodity", "fund":
		return AssetClassTraditional, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", s)
	}
}

func (c AssetClass) Valid() bool {
	switch c {
	case AssetClassCryptocurrency, AssetClassStablecoin, AssetClassTraditional:
		return true
	}
	return false
}

// IsCrypto reports whether the class belongs to the digital asset family.
func (c AssetClass) IsCrypto() bool {
	return c == AssetClassCryptocurrency || c == AssetClassStablecoin
}

func (c AssetClass) String() string { return string(c) }

// UnmarshalText lets JSON and YAML decoders accept the same aliases as ParseAssetClass.
func (c *AssetClass) UnmarshalText(b []byte) error {
	v, err := ParseAssetClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Allocation is one line of a portfolio.
type Allocation struct {
	Asset       string     `json:"asset" yaml:"asset" validate:"required"`
	Class       AssetClass `json:"asset_class" yaml:"asset_class"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Percentage  float64    `json:"allocation_percentage" yaml:"allocation_percentage" validate:"gte=0,lte=100"`
}

// EffectiveClass returns the allocation class, defaulting unmarked assets to Traditional.
func (a Allocation) EffectiveClass() AssetClass {
	if a.Class == "" {
		return AssetClassTraditional
	}
	return a.Class
}

// Portfolio is the ordered allocation list a run iterates over.
type Portfolio struct {
	ID          string       `json:"portfolio_id" yaml:"portfolio_id"`
	Allocations []Allocation `json:"allocations" yaml:"allocations"`
}
