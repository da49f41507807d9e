// Package config provides configuration management.
package config

import (
	stderrors "errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pricesync/internal/errors"
	"pricesync/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Shop contains remote webservice settings
	Shop ShopConfig `json:"shop" mapstructure:"shop"`

	// Pricing contains margin and rounding settings
	Pricing PricingConfig `json:"pricing" mapstructure:"pricing"`

	// HTTP contains request policy settings
	HTTP HTTPConfig `json:"http" mapstructure:"http"`

	// Columns maps supplier-file column headers
	Columns ColumnConfig `json:"columns" mapstructure:"columns"`

	// LogDir is where per-run log files are written
	LogDir string `json:"log_dir" mapstructure:"log_dir"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// ShopConfig contains remote webservice settings
type ShopConfig struct {
	// URL is the shop base URL (the /api suffix is appended by the client)
	URL string `json:"url" mapstructure:"url"`

	// APIKey is the webservice key, sent as the basic-auth username
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// SupplierID optionally narrows lookups to one supplier
	SupplierID string `json:"supplier_id" mapstructure:"supplier_id"`

	// UserAgent is sent on every request; some hosts reject default
	// client signatures
	UserAgent string `json:"user_agent" mapstructure:"user_agent"`
}

// PricingConfig contains margin and rounding settings
type PricingConfig struct {
	// DefaultMarginPercent is applied when no margin flag is given
	DefaultMarginPercent float64 `json:"default_margin_percent" mapstructure:"default_margin_percent"`

	// PriceDecimals is the minor-unit precision for rounding
	PriceDecimals int32 `json:"price_decimals" mapstructure:"price_decimals"`

	// SkipNonPositive skips items whose computed price is zero or negative
	SkipNonPositive bool `json:"skip_non_positive" mapstructure:"skip_non_positive"`
}

// HTTPConfig contains request policy settings
type HTTPConfig struct {
	// MaxRetries bounds transient-failure retries per call
	MaxRetries int `json:"max_retries" mapstructure:"max_retries"`

	// TimeoutSeconds bounds each remote call
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`

	// MethodOverride enables the POST substitution for blocked PUT verbs
	MethodOverride bool `json:"method_override" mapstructure:"method_override"`

	// Parallelism bounds concurrent remote updates (1 = sequential)
	Parallelism int `json:"parallelism" mapstructure:"parallelism"`
}

// ColumnConfig maps supplier-file column headers
type ColumnConfig struct {
	SKU          string `json:"sku" mapstructure:"sku"`
	Article      string `json:"article" mapstructure:"article"`
	Price        string `json:"price" mapstructure:"price"`
	Manufacturer string `json:"manufacturer" mapstructure:"manufacturer"`
	Availability string `json:"availability" mapstructure:"availability"`
	Group        string `json:"group" mapstructure:"group"`
}

// Timeout returns the per-request timeout as a duration
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Shop: ShopConfig{
			UserAgent: "Mozilla/5.0 pricesync",
		},
		Pricing: PricingConfig{
			DefaultMarginPercent: 12.0,
			PriceDecimals:        2,
			SkipNonPositive:      true,
		},
		HTTP: HTTPConfig{
			MaxRetries:     3,
			TimeoutSeconds: 30,
			MethodOverride: true,
			Parallelism:    1,
		},
		Columns: ColumnConfig{
			SKU:          "Internal Article No.",
			Article:      "Article No.",
			Price:        "Price",
			Manufacturer: "Manufacturer",
			Availability: "Availability",
			Group:        "Productgroup",
		},
		LogDir:  "logs",
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from an optional file plus PRICESYNC_* environment
// variables. An empty path searches the working directory and $HOME/.pricesync.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRICESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "reading config file", err)
		}
	} else {
		v.SetConfigName("pricesync")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pricesync")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.Wrap(errors.TypeConfig, "reading config file", err)
			}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "decoding config", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("shop.user_agent", d.Shop.UserAgent)
	v.SetDefault("pricing.default_margin_percent", d.Pricing.DefaultMarginPercent)
	v.SetDefault("pricing.price_decimals", d.Pricing.PriceDecimals)
	v.SetDefault("pricing.skip_non_positive", d.Pricing.SkipNonPositive)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)
	v.SetDefault("http.timeout_seconds", d.HTTP.TimeoutSeconds)
	v.SetDefault("http.method_override", d.HTTP.MethodOverride)
	v.SetDefault("http.parallelism", d.HTTP.Parallelism)
	v.SetDefault("columns.sku", d.Columns.SKU)
	v.SetDefault("columns.article", d.Columns.Article)
	v.SetDefault("columns.price", d.Columns.Price)
	v.SetDefault("columns.manufacturer", d.Columns.Manufacturer)
	v.SetDefault("columns.availability", d.Columns.Availability)
	v.SetDefault("columns.group", d.Columns.Group)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
}

// ValidateShop checks that the remote webservice is configured well enough
// to attempt a run. Called before any item is processed.
func (c *Config) ValidateShop() error {
	if c.Shop.URL == "" {
		return errors.Config("shop.url is not set")
	}
	u, err := url.Parse(c.Shop.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Config("shop.url is not a valid absolute URL: " + c.Shop.URL)
	}
	if c.Shop.APIKey == "" {
		return errors.Config("shop.api_key is not set")
	}
	if c.HTTP.MaxRetries < 0 {
		return errors.Config("http.max_retries must be >= 0")
	}
	if c.HTTP.Parallelism < 1 {
		return errors.Config("http.parallelism must be >= 1")
	}
	return nil
}
