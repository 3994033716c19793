package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Anomaly.WithinDocRatioLow != 0.5 || cfg.Anomaly.WithinDocRatioHigh != 1.5 {
		t.Errorf("within-doc band = %v-%v", cfg.Anomaly.WithinDocRatioLow, cfg.Anomaly.WithinDocRatioHigh)
	}
	if cfg.Anomaly.MarketRefDays != 20 || cfg.Anomaly.PriceLookbackDays != 14 {
		t.Errorf("market windows = %d/%d", cfg.Anomaly.MarketRefDays, cfg.Anomaly.PriceLookbackDays)
	}
	if cfg.Resolver.IssuerMinScore != 85 || cfg.Resolver.HolderMinScore != 80 {
		t.Errorf("resolver scores = %v/%v", cfg.Resolver.IssuerMinScore, cfg.Resolver.HolderMinScore)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	yml := `
anomaly:
  market_ratio_low: 0.7
resolver:
  issuer_min_score: 90
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FILINGS_MARKET_RATIO_HIGH", "1.3")
	t.Setenv("FILINGS_ISSUER_MIN_SCORE", "92")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Anomaly.MarketRatioLow != 0.7 {
		t.Errorf("yaml override lost: %v", cfg.Anomaly.MarketRatioLow)
	}
	if cfg.Anomaly.MarketRatioHigh != 1.3 {
		t.Errorf("env override lost: %v", cfg.Anomaly.MarketRatioHigh)
	}
	// env wins over yaml
	if cfg.Resolver.IssuerMinScore != 92 {
		t.Errorf("env should override yaml: %v", cfg.Resolver.IssuerMinScore)
	}
	// untouched fields keep defaults
	if cfg.Anomaly.ZeroMissingX10Min != 8.0 {
		t.Errorf("default lost: %v", cfg.Anomaly.ZeroMissingX10Min)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("workers = %d", cfg.Pipeline.Workers)
	}
}
