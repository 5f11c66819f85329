package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GAME_FILE", "missing.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "3000" {
		t.Fatalf("Port=%q, want 3000", cfg.Port)
	}
	if cfg.InitialCash != 10000 {
		t.Fatalf("InitialCash=%v, want 10000", cfg.InitialCash)
	}
	if cfg.UpdateInterval != time.Second {
		t.Fatalf("UpdateInterval=%v, want 1s", cfg.UpdateInterval)
	}
	if cfg.HistoryDepth != 50 {
		t.Fatalf("HistoryDepth=%v, want 50", cfg.HistoryDepth)
	}
	if cfg.MilestoneStep != 100 || cfg.RewardStep != 5000 {
		t.Fatalf("steps=%v/%v, want 100/5000", cfg.MilestoneStep, cfg.RewardStep)
	}
	if cfg.RewardDebounce != 10*time.Second {
		t.Fatalf("RewardDebounce=%v, want 10s", cfg.RewardDebounce)
	}
	// Stock name falls back to the symbol.
	if cfg.StockName != cfg.StockSymbol {
		t.Fatalf("StockName=%q, want symbol %q", cfg.StockName, cfg.StockSymbol)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GAME_FILE", "missing.yaml")
	t.Setenv("PORT", "8088")
	t.Setenv("STOCK_SYMBOL", "NVDA")
	t.Setenv("INITIAL_CASH", "2500.5")
	t.Setenv("UPDATE_INTERVAL", "250ms")
	t.Setenv("USE_MOCK_QUOTES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8088" || cfg.StockSymbol != "NVDA" {
		t.Fatalf("env overrides ignored: %+v", cfg)
	}
	if cfg.InitialCash != 2500.5 {
		t.Fatalf("InitialCash=%v, want 2500.5", cfg.InitialCash)
	}
	if cfg.UpdateInterval != 250*time.Millisecond {
		t.Fatalf("UpdateInterval=%v, want 250ms", cfg.UpdateInterval)
	}
	if !cfg.UseMockQuotes {
		t.Fatal("UseMockQuotes should be true")
	}
}

func TestLoadGameFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	content := `
stock_name: "MOON ROCKET"
milestone_overlay: 4s
reward_overlay: 7s
gifts:
  rose: 1
  whale: 500
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write game file: %v", err)
	}
	t.Setenv("GAME_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StockName != "MOON ROCKET" {
		t.Fatalf("StockName=%q, want MOON ROCKET", cfg.StockName)
	}
	if cfg.MilestoneOverlay != 4*time.Second || cfg.RewardOverlay != 7*time.Second {
		t.Fatalf("overlays=%v/%v, want 4s/7s", cfg.MilestoneOverlay, cfg.RewardOverlay)
	}
	if cfg.GiftCatalog["whale"] != 500 {
		t.Fatalf("GiftCatalog=%v, want whale=500", cfg.GiftCatalog)
	}
}

func TestEnvBeatsGameFileForStockName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	if err := os.WriteFile(path, []byte(`stock_name: "FROM FILE"`), 0o644); err != nil {
		t.Fatalf("write game file: %v", err)
	}
	t.Setenv("GAME_FILE", path)
	t.Setenv("STOCK_NAME", "FROM ENV")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StockName != "FROM ENV" {
		t.Fatalf("StockName=%q, want FROM ENV", cfg.StockName)
	}
}

func TestLoadRejectsMalformedGameFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	if err := os.WriteFile(path, []byte("gifts: [not a map"), 0o644); err != nil {
		t.Fatalf("write game file: %v", err)
	}
	t.Setenv("GAME_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed game file")
	}
}
