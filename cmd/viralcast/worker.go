package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/queue"
	"github.com/hacklytics/viralcast/internal/storage"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis jobs from the Redis queue",
	RunE:  runWorker,
}

var enqueueDir string

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Enqueue analysis jobs for every video in a directory",
	RunE:  runEnqueue,
}

func init() {
	enqueueCmd.Flags().StringVar(&enqueueDir, "dir", "", "Video directory (defaults to VIDEO_DIR)")
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(enqueueCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	consumer, err := queue.NewConsumer(&queue.ConsumerConfig{
		RedisURL:    cfg.RedisURL,
		Concurrency: cfg.WorkerConcurrency,
		Processor:   videoProcessor,
		Store:       store,
		Postgres:    postgres,
	})
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		consumer.Stop()
	}()

	return consumer.Start()
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	dir := enqueueDir
	if dir == "" {
		dir = cfg.VideoDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read video directory: %w", err)
	}

	client, err := queue.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	enqueued := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			continue
		}
		job := models.AnalyzeJob{
			JobID:     uuid.New().String(),
			VideoPath: filepath.Join(dir, entry.Name()),
		}
		if err := client.Enqueue(ctx, job); err != nil {
			return err
		}
		enqueued++
	}

	logrus.WithField("jobs", enqueued).Info("Analysis jobs enqueued")
	return nil
}
