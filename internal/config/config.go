package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed calibration.yaml
var calibrationYAML []byte

type Config struct {
	Embedding   EmbeddingConfig
	Match       MatchConfig
	Token       TokenConfig
	Kiosk       KioskConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Calibration CalibrationConfig
}

type EmbeddingConfig struct {
	URL     string // face embedding server base URL (defaults to http://localhost:8000)
	Model   string // model name, used to look up the calibrated threshold
	Dim     int    // expected embedding dimensionality (defaults to 512)
	MaxEdge int    // probe frames larger than this are downscaled before upload (0 = never)
}

type MatchConfig struct {
	// Threshold overrides the calibrated per-model operating point when > 0.
	Threshold float64
	// HNSW enables the in-memory nearest-neighbor index for identify calls.
	HNSW bool
}

type TokenConfig struct {
	TTL           time.Duration // validity window for issued gate passes
	SweepInterval time.Duration // how often the background sweeper runs
}

type KioskConfig struct {
	MinFaceInterval time.Duration // minimum gap between identify attempts
	HoldDuration    time.Duration // how long VERIFIED is displayed before reset
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL (empty = in-memory store)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RedisConfig struct {
	URL string // redis URL for the shared token registry (empty = in-memory registry)
}

type CalibrationConfig struct {
	Models map[string]ModelCalibration `yaml:"models"`
}

type ModelCalibration struct {
	Threshold float64 `yaml:"threshold"`
}

const defaultThreshold = 0.6

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a Go duration string.
// Returns the default value if the env var is unset, empty, or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envFloat reads an environment variable as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var calibration CalibrationConfig
	if err := yaml.Unmarshal(calibrationYAML, &calibration); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded calibration.yaml: " + err.Error())
	}

	return &Config{
		Embedding: EmbeddingConfig{
			URL:     os.Getenv("EMBEDDING_URL"),
			Model:   os.Getenv("EMBEDDING_MODEL"),
			Dim:     envInt("EMBEDDING_DIM", 512),
			MaxEdge: envInt("EMBEDDING_MAX_EDGE", 1280),
		},
		Match: MatchConfig{
			Threshold: envFloat("MATCH_THRESHOLD", 0),
			HNSW:      os.Getenv("MATCH_HNSW") == "true",
		},
		Token: TokenConfig{
			TTL:           envDuration("TOKEN_TTL", 15*time.Minute),
			SweepInterval: envDuration("TOKEN_SWEEP_INTERVAL", time.Minute),
		},
		Kiosk: KioskConfig{
			MinFaceInterval: envDuration("KIOSK_FACE_INTERVAL", 2*time.Second),
			HoldDuration:    envDuration("KIOSK_HOLD_DURATION", 5*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Calibration: calibration,
	}
}

// MatchThreshold resolves the cosine-distance threshold for the configured
// model: an explicit MATCH_THRESHOLD wins, then the calibrated per-model
// operating point, then the default.
func (c *Config) MatchThreshold() float64 {
	if c.Match.Threshold > 0 {
		return c.Match.Threshold
	}
	if cal, ok := c.Calibration.Models[c.Embedding.Model]; ok && cal.Threshold > 0 {
		return cal.Threshold
	}
	return defaultThreshold
}
