package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/processor"
	"github.com/hacklytics/viralcast/internal/storage"
)

// TaskAnalyze is the asynq task type for single-video analysis jobs.
const TaskAnalyze = "viralcast:analyze"

// Consumer consumes analysis jobs from the Redis queue and appends
// results to the feature store.
type Consumer struct {
	server    *asynq.Server
	processor *processor.VideoProcessor
	store     *storage.CSVFeatureStore
	postgres  *storage.PostgresStore // optional
	log       *logrus.Entry
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	RedisURL    string
	Concurrency int
	Processor   *processor.VideoProcessor
	Store       *storage.CSVFeatureStore
	Postgres    *storage.PostgresStore
}

// NewConsumer creates the queue consumer.
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	log := logrus.WithField("component", "queue")
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				"viralcast:default": 3,
				"viralcast:low":     1,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				// 1min, 2min, 4min
				return time.Duration(1<<uint(n)) * time.Minute
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.WithField("task", task.Type()).WithError(err).Error("Task failed")
			}),
		},
	)

	return &Consumer{
		server:    server,
		processor: cfg.Processor,
		store:     cfg.Store,
		postgres:  cfg.Postgres,
		log:       log,
	}, nil
}

// Start blocks serving tasks until Stop is called.
func (c *Consumer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskAnalyze, c.handleAnalyze)

	c.log.Info("Starting analysis worker")
	if err := c.server.Run(mux); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	return nil
}

// Stop shuts the consumer down gracefully.
func (c *Consumer) Stop() {
	c.log.Info("Shutting down analysis worker")
	c.server.Shutdown()
}

// handleAnalyze analyzes one video. Decode failures of the video file
// itself are terminal: retrying will not make a corrupt container
// decodable, so the task is not requeued.
func (c *Consumer) handleAnalyze(ctx context.Context, task *asynq.Task) error {
	var job models.AnalyzeJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	log := c.log.WithFields(logrus.Fields{"job_id": job.JobID, "video": job.VideoPath})
	log.Info("Processing analysis job")

	rec, err := c.processor.Process(job.VideoPath, job.JobID)
	if err != nil {
		var decodeErr *models.DecodeError
		var emptyErr *models.EmptyVideoError
		if errors.As(err, &decodeErr) || errors.As(err, &emptyErr) {
			log.WithError(err).Warn("Video is unreadable, dropping job")
			return fmt.Errorf("unreadable video: %v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if err := c.store.Append(rec); err != nil {
		return fmt.Errorf("failed to persist feature record: %w", err)
	}
	if c.postgres != nil {
		if err := c.postgres.StoreRecord(ctx, rec); err != nil {
			log.WithError(err).Warn("Postgres mirror write failed")
		}
	}

	log.Info("Analysis job completed")
	return nil
}

// Client enqueues analysis jobs.
type Client struct {
	client *asynq.Client
}

// NewClient connects an enqueuing client.
func NewClient(redisURL string) (*Client, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Client{client: asynq.NewClient(redisOpt)}, nil
}

// Enqueue submits one analysis job to the default queue.
func (c *Client) Enqueue(ctx context.Context, job models.AnalyzeJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}
	task := asynq.NewTask(TaskAnalyze, payload)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue("viralcast:default"), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
