package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hacklytics/viralcast/internal/processor"
	"github.com/hacklytics/viralcast/internal/storage"
	"github.com/hacklytics/viralcast/internal/utils"
	"github.com/hacklytics/viralcast/internal/vision"
)

var analyzeDir string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a directory of videos into the feature store",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDir, "dir", "", "Video directory (defaults to VIDEO_DIR)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dir := analyzeDir
	if dir == "" {
		dir = cfg.VideoDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	videoProcessor, err := buildVideoProcessor()
	if err != nil {
		return err
	}

	store, err := storage.NewCSVFeatureStore(cfg.FeatureStorePath)
	if err != nil {
		return err
	}

	postgres := openPostgres()
	if postgres != nil {
		defer postgres.Close()
	}

	batch := processor.NewBatchProcessor(videoProcessor, store, postgres, openProgressPublisher(ctx), cfg.WorkerConcurrency)
	result, err := batch.Run(ctx, dir)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"total":     result.Total,
	}).Info("Analysis run finished")
	return nil
}

func buildVideoProcessor() (*processor.VideoProcessor, error) {
	ffmpeg, err := utils.NewFFmpegHelper(cfg.TempDir)
	if err != nil {
		return nil, err
	}
	visionCtx, err := vision.NewContext(cfg.CascadePath)
	if err != nil {
		return nil, err
	}
	return processor.NewVideoProcessor(ffmpeg, visionCtx, cfg.FrameInterval, cfg.WorkerConcurrency), nil
}

// openPostgres returns nil when no POSTGRES_URL is configured or the
// database is unreachable; persistence then stays CSV-only.
func openPostgres() *storage.PostgresStore {
	if cfg.PostgresURL == "" {
		return nil
	}
	store, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logrus.WithError(err).Warn("Postgres unavailable, continuing CSV-only")
		return nil
	}
	return store
}

// openProgressPublisher returns a nil (no-op) publisher when Redis is
// unreachable.
func openProgressPublisher(ctx context.Context) *processor.ProgressPublisher {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.WithError(err).Warn("Invalid REDIS_URL, progress streaming disabled")
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, progress streaming disabled")
		return nil
	}
	return processor.NewProgressPublisher(client)
}
