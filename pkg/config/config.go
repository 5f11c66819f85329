package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds environment-driven settings for the game server.
type Config struct {
	Port string

	// Market data
	StockSymbol   string
	StockName     string
	UseMockQuotes bool
	ProxyURL      string

	// Game tuning
	InitialCash     float64
	DefaultTradeUSD float64
	UpdateInterval  time.Duration
	HistoryDepth    int
	MilestoneStep   float64
	RewardThreshold float64
	RewardStep      float64
	RewardDebounce  time.Duration

	// Overlay timing hints exposed to the client
	MilestoneOverlay time.Duration
	RewardOverlay    time.Duration

	// Database
	DBPath string

	// Static overlay page (optional)
	StaticDir string

	// Admin auth
	AdminPassword string
	JWTSecret     string

	// Gift catalog loaded from the game file (name -> cash value)
	GiftCatalog map[string]float64
}

// gameFile is the optional YAML file with display settings and the gift catalog.
// Durations are Go duration strings ("3s", "500ms").
type gameFile struct {
	StockName        string             `yaml:"stock_name"`
	MilestoneOverlay string             `yaml:"milestone_overlay"`
	RewardOverlay    string             `yaml:"reward_overlay"`
	Gifts            map[string]float64 `yaml:"gifts"`
}

// Load reads environment variables (optionally via .env) into Config, then
// overlays the game YAML file when present.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "3000"),
		StockSymbol:      getEnv("STOCK_SYMBOL", "TSLA"),
		StockName:        getEnv("STOCK_NAME", ""),
		UseMockQuotes:    getEnv("USE_MOCK_QUOTES", "false") == "true",
		ProxyURL:         firstEnv("HTTPS_PROXY", "HTTP_PROXY"),
		InitialCash:      getEnvFloat("INITIAL_CASH", 10000),
		DefaultTradeUSD:  getEnvFloat("DEFAULT_TRADE_USD", 100),
		UpdateInterval:   getEnvDuration("UPDATE_INTERVAL", time.Second),
		HistoryDepth:     getEnvInt("HISTORY_DEPTH", 50),
		MilestoneStep:    getEnvFloat("MILESTONE_STEP", 100),
		RewardThreshold:  getEnvFloat("REWARD_THRESHOLD", 15000),
		RewardStep:       getEnvFloat("REWARD_STEP", 5000),
		RewardDebounce:   getEnvDuration("REWARD_DEBOUNCE", 10*time.Second),
		MilestoneOverlay: 3 * time.Second,
		RewardOverlay:    5 * time.Second,
		DBPath:           getEnv("DB_PATH", "./data/stockparty.db"),
		StaticDir:        getEnv("STATIC_DIR", ""),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret"),
		GiftCatalog:      map[string]float64{},
	}

	if path := getEnv("GAME_FILE", "game.yaml"); path != "" {
		if err := cfg.applyGameFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.StockName == "" {
		cfg.StockName = cfg.StockSymbol
	}
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = 50
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = time.Second
	}
	return cfg, nil
}

func (c *Config) applyGameFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read game file: %w", err)
	}

	var gf gameFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return fmt.Errorf("parse game file %s: %w", path, err)
	}

	if gf.StockName != "" && os.Getenv("STOCK_NAME") == "" {
		c.StockName = gf.StockName
	}
	if d, err := time.ParseDuration(gf.MilestoneOverlay); err == nil && d > 0 {
		c.MilestoneOverlay = d
	}
	if d, err := time.ParseDuration(gf.RewardOverlay); err == nil && d > 0 {
		c.RewardOverlay = d
	}
	for name, value := range gf.Gifts {
		if value > 0 {
			c.GiftCatalog[name] = value
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
