package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadDefaults checks loading with no config file present
func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Pricing.DefaultMarginPercent != 12.0 {
		t.Errorf("default margin = %v", cfg.Pricing.DefaultMarginPercent)
	}
	if cfg.Pricing.PriceDecimals != 2 {
		t.Errorf("price decimals = %d", cfg.Pricing.PriceDecimals)
	}
	if !cfg.HTTP.MethodOverride {
		t.Error("method override must default to enabled")
	}
	if cfg.Columns.SKU != "Internal Article No." {
		t.Errorf("sku column = %q", cfg.Columns.SKU)
	}
}

// TestLoadFile checks values from a YAML config file land in the struct
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricesync.yaml")
	content := `shop:
  url: https://shop.example.com
  api_key: SECRET
  supplier_id: "5"
http:
  max_retries: 7
pricing:
  default_margin_percent: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Shop.URL != "https://shop.example.com" {
		t.Errorf("shop url = %q", cfg.Shop.URL)
	}
	if cfg.HTTP.MaxRetries != 7 {
		t.Errorf("max retries = %d", cfg.HTTP.MaxRetries)
	}
	if cfg.Pricing.DefaultMarginPercent != 20 {
		t.Errorf("margin = %v", cfg.Pricing.DefaultMarginPercent)
	}
	// untouched keys keep their defaults
	if cfg.HTTP.TimeoutSeconds != 30 {
		t.Errorf("timeout = %d", cfg.HTTP.TimeoutSeconds)
	}
}

// TestValidateShop checks the preflight configuration guards
func TestValidateShop(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateShop(); err == nil {
		t.Error("empty shop config must not validate")
	}

	cfg.Shop.URL = "not a url"
	cfg.Shop.APIKey = "k"
	if err := cfg.ValidateShop(); err == nil {
		t.Error("malformed URL must not validate")
	}

	cfg.Shop.URL = "https://shop.example.com"
	if err := cfg.ValidateShop(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
