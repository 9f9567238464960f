package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	RedisURL          string
	PostgresURL       string
	TempDir           string
	CascadePath       string
	VideoDir          string
	FeatureStorePath  string
	OutcomePath       string
	ModelPath         string
	WorkerConcurrency int
	FrameInterval     float64
	ListenAddr        string

	// Training knobs. The model family and pruning threshold are
	// configuration, not fixed requirements.
	ModelFamily   string
	CorrThreshold float64
	PruneFeatures bool
}

// Load reads configuration from the environment, with an optional
// .env file merged in first.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		PostgresURL:       getEnv("POSTGRES_URL", ""),
		TempDir:           getEnv("TEMP_DIR", "/tmp/viralcast"),
		CascadePath:       getEnv("CASCADE_PATH", "cascade/facefinder"),
		VideoDir:          getEnv("VIDEO_DIR", "videos"),
		FeatureStorePath:  getEnv("FEATURE_STORE_PATH", "results/content_analysis.csv"),
		OutcomePath:       getEnv("OUTCOME_PATH", "data/viral_hooks.csv"),
		ModelPath:         getEnv("MODEL_PATH", "models/view_predictor.bin"),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 3),
		FrameInterval:     getEnvFloat("FRAME_INTERVAL", 1.0),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		ModelFamily:       getEnv("MODEL_FAMILY", "stacked"),
		CorrThreshold:     getEnvFloat("CORR_THRESHOLD", 0.85),
		PruneFeatures:     getEnvBool("PRUNE_FEATURES", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
