package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/storage"
)

var (
	videosProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "viralcast_videos_processed_total",
		Help: "Videos analyzed successfully.",
	})
	videosSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "viralcast_videos_skipped_total",
		Help: "Videos skipped after an extraction failure.",
	})
)

// ProgressPublisher streams batch progress over Redis pub/sub so other
// services can follow a long-running run. A nil publisher is a no-op.
type ProgressPublisher struct {
	client *redis.Client
}

// NewProgressPublisher connects the publisher.
func NewProgressPublisher(client *redis.Client) *ProgressPublisher {
	return &ProgressPublisher{client: client}
}

// Publish sends one progress update; failures are logged, never fatal.
func (p *ProgressPublisher) Publish(ctx context.Context, update models.ProgressUpdate) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	channel := fmt.Sprintf("viralcast:progress:%s", update.JobID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		logrus.WithError(err).Debug("progress publish failed")
	}
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	JobID     string
	Total     int
	Processed int
	Skipped   int
}

// Processor analyzes one video into a feature record. *VideoProcessor
// is the production implementation.
type Processor interface {
	Process(videoPath string, jobID string) (*models.VideoFeatureRecord, error)
}

// BatchProcessor walks a directory of videos and analyzes each one,
// appending successes to the feature store. Individual extraction
// failures skip the video and continue the batch.
type BatchProcessor struct {
	processor   Processor
	store       *storage.CSVFeatureStore
	postgres    *storage.PostgresStore // optional
	progress    *ProgressPublisher     // optional
	concurrency int
	log         *logrus.Entry
}

// NewBatchProcessor wires the batch runner. postgres and progress may
// be nil.
func NewBatchProcessor(p Processor, store *storage.CSVFeatureStore, postgres *storage.PostgresStore, progress *ProgressPublisher, concurrency int) *BatchProcessor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchProcessor{
		processor:   p,
		store:       store,
		postgres:    postgres,
		progress:    progress,
		concurrency: concurrency,
		log:         logrus.WithField("component", "batch"),
	}
}

// Run analyzes every video under dir. Videos already present in the
// feature store are not re-analyzed.
func (b *BatchProcessor) Run(ctx context.Context, dir string) (*BatchResult, error) {
	videos, err := listVideos(dir)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	result := &BatchResult{JobID: jobID, Total: len(videos)}
	b.log.WithFields(logrus.Fields{
		"job_id": jobID,
		"dir":    dir,
		"videos": len(videos),
	}).Info("Batch analysis started")

	if b.postgres != nil {
		if err := b.postgres.StoreJob(ctx, jobID, len(videos)); err != nil {
			b.log.WithError(err).Warn("failed to record batch job")
		}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, b.concurrency)

	for _, videoPath := range videos {
		if ctx.Err() != nil {
			break
		}
		// Store rows are keyed by bare filename, matching what Process
		// writes into the record.
		if b.store.Has(filepath.Base(videoPath)) {
			mu.Lock()
			result.Processed++
			b.publishLocked(ctx, result, "running", "already analyzed")
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(videoPath string) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := b.processor.Process(videoPath, uuid.New().String())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Skipped++
				videosSkipped.Inc()
				b.log.WithField("video", videoPath).WithError(err).Warn("Skipping video after extraction failure")
				b.publishLocked(ctx, result, "running", fmt.Sprintf("skipped %s", filepath.Base(videoPath)))
				return
			}

			if err := b.store.Append(rec); err != nil {
				result.Skipped++
				b.log.WithField("video", videoPath).WithError(err).Error("Failed to persist feature record")
				return
			}
			if b.postgres != nil {
				if err := b.postgres.StoreRecord(ctx, rec); err != nil {
					b.log.WithField("video", videoPath).WithError(err).Warn("Postgres mirror write failed")
				}
			}

			result.Processed++
			videosProcessed.Inc()
			b.publishLocked(ctx, result, "running", fmt.Sprintf("analyzed %s", filepath.Base(videoPath)))
		}(videoPath)
	}
	wg.Wait()

	status := "completed"
	if ctx.Err() != nil {
		status = "failed"
	}
	b.publishLocked(ctx, result, status, "batch finished")
	if b.postgres != nil {
		errMsg := ""
		if ctx.Err() != nil {
			errMsg = ctx.Err().Error()
		}
		if err := b.postgres.UpdateJob(context.WithoutCancel(ctx), jobID, status, result.Processed, result.Skipped, errMsg); err != nil {
			b.log.WithError(err).Warn("failed to update batch job")
		}
	}

	b.log.WithFields(logrus.Fields{
		"job_id":    jobID,
		"processed": result.Processed,
		"skipped":   result.Skipped,
	}).Info("Batch analysis finished")
	return result, ctx.Err()
}

// publishLocked must be called with the result mutex held (or after
// the pool has drained).
func (b *BatchProcessor) publishLocked(ctx context.Context, result *BatchResult, status, message string) {
	progress := 0.0
	if result.Total > 0 {
		progress = float64(result.Processed+result.Skipped) / float64(result.Total)
	}
	b.progress.Publish(ctx, models.ProgressUpdate{
		JobID:     result.JobID,
		Status:    status,
		Progress:  progress,
		Message:   message,
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Total:     result.Total,
	})
}

// listVideos returns the sorted .mp4 paths directly under dir.
func listVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read video directory: %w", err)
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}
	return videos, nil
}
