package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	HTTPHost string
	HTTPPort int

	// Simulator
	DriftInterval time.Duration
	TradeInterval time.Duration
	ChartInterval time.Duration
	WinRate       float64 // probability a simulated trade settles as a win
	HistorySize   int     // bounded trade history length
	Seed          uint64  // 0 means seed from the clock

	// Login throttling
	LoginAttemptsPerMin int

	// Files
	ExportPrefsPath string
	JournalPath     string // empty disables the journal

	// Backend SDK (initialised at start-up, unused by features)
	FirebaseCredentialsFile string
	FirebaseProjectID       string
	FirebaseStorageBucket   string
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPHost:                getEnvDefault("HTTP_HOST", "localhost"),
		HTTPPort:                getEnvInt("HTTP_PORT", 8080),
		DriftInterval:           getEnvDuration("SIM_DRIFT_INTERVAL", 2*time.Second),
		TradeInterval:           getEnvDuration("SIM_TRADE_INTERVAL", 5*time.Second),
		ChartInterval:           getEnvDuration("CHART_TICK_INTERVAL", 800*time.Millisecond),
		WinRate:                 getEnvFloat("SIM_WIN_RATE", 0.65),
		HistorySize:             getEnvInt("SIM_HISTORY_SIZE", 50),
		Seed:                    uint64(getEnvInt("SIM_SEED", 0)),
		LoginAttemptsPerMin:     getEnvInt("LOGIN_RATE_PER_MIN", 10),
		ExportPrefsPath:         getEnvDefault("EXPORT_PREFS_PATH", defaultPrefsPath()),
		JournalPath:             os.Getenv("JOURNAL_PATH"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		FirebaseProjectID:       getEnvDefault("FIREBASE_PROJECT_ID", "townhall-a5aa0"),
		FirebaseStorageBucket:   getEnvDefault("FIREBASE_STORAGE_BUCKET", "townhall-a5aa0.firebasestorage.app"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the simulator and server cannot run with.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.WinRate < 0 || c.WinRate > 1 {
		return fmt.Errorf("SIM_WIN_RATE must be between 0 and 1, got %v", c.WinRate)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("SIM_HISTORY_SIZE must be positive, got %d", c.HistorySize)
	}
	if c.DriftInterval <= 0 || c.TradeInterval <= 0 || c.ChartInterval <= 0 {
		return fmt.Errorf("simulator intervals must be positive")
	}
	if c.LoginAttemptsPerMin <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MIN must be positive, got %d", c.LoginAttemptsPerMin)
	}
	return nil
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "leadoptions", "history_export_prefs.json")
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
