package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "cascade/facefinder", cfg.CascadePath)
	assert.Equal(t, "results/content_analysis.csv", cfg.FeatureStorePath)
	assert.Equal(t, "stacked", cfg.ModelFamily)
	assert.Equal(t, 3, cfg.WorkerConcurrency)
	assert.InDelta(t, 1.0, cfg.FrameInterval, 1e-9)
	assert.InDelta(t, 0.85, cfg.CorrThreshold, 1e-9)
	assert.True(t, cfg.PruneFeatures)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODEL_FAMILY", "gbt")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("FRAME_INTERVAL", "0.5")
	t.Setenv("PRUNE_FEATURES", "false")
	t.Setenv("CORR_THRESHOLD", "0.9")

	cfg := Load()

	assert.Equal(t, "gbt", cfg.ModelFamily)
	assert.Equal(t, 8, cfg.WorkerConcurrency)
	assert.InDelta(t, 0.5, cfg.FrameInterval, 1e-9)
	assert.False(t, cfg.PruneFeatures)
	assert.InDelta(t, 0.9, cfg.CorrThreshold, 1e-9)
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "many")
	t.Setenv("FRAME_INTERVAL", "fast")

	cfg := Load()
	assert.Equal(t, 3, cfg.WorkerConcurrency)
	assert.InDelta(t, 1.0, cfg.FrameInterval, 1e-9)
}
