package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	Port      string
	DBUrl     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string

	MLAPIURL          string
	MLAnalyzeTimeout  time.Duration
	MLFinalizeTimeout time.Duration
	MLHealthTimeout   time.Duration

	JitterAmplitude float64
	JitterSeed      uint64
}

// MemoryMode reports whether the server runs without Postgres.
func (c Config) MemoryMode() bool {
	return c.DBUrl == ""
}

func Default() Config {
	return Config{
		Port:              "8080",
		MLAPIURL:          "http://localhost:5001",
		MLAnalyzeTimeout:  15 * time.Second,
		MLFinalizeTimeout: 45 * time.Second,
		MLHealthTimeout:   5 * time.Second,
		JitterAmplitude:   0.1,
	}
}

func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment variables.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment on top of Default.
func FromEnv() (Config, error) {
	cfg := Default()
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	cfg.DBUrl = os.Getenv("DB_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("ML_API_URL"); v != "" {
		cfg.MLAPIURL = v
	}

	var err error
	if cfg.MLAnalyzeTimeout, err = envDuration("ML_ANALYZE_TIMEOUT", cfg.MLAnalyzeTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MLFinalizeTimeout, err = envDuration("ML_FINALIZE_TIMEOUT", cfg.MLFinalizeTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MLHealthTimeout, err = envDuration("ML_HEALTH_TIMEOUT", cfg.MLHealthTimeout); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("SCORING_JITTER"); v != "" {
		amp, err := strconv.ParseFloat(v, 64)
		if err != nil || amp < 0 || amp > 0.5 {
			return Config{}, fmt.Errorf("config: invalid SCORING_JITTER value %q", v)
		}
		cfg.JitterAmplitude = amp
	}
	if v := os.Getenv("SCORING_JITTER_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid SCORING_JITTER_SEED value %q: %w", v, err)
		}
		cfg.JitterSeed = seed
	}

	if cfg.JWTSecret == "" {
		if !cfg.MemoryMode() {
			return Config{}, fmt.Errorf("config: JWT_SECRET is required when DB_URL is set")
		}
		log.Println("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, v)
	}
	return d, nil
}
