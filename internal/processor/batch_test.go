package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/storage"
)

// stubProcessor fails the configured filenames and fabricates a record
// for everything else.
type stubProcessor struct {
	fail map[string]bool
}

func (s *stubProcessor) Process(videoPath string, jobID string) (*models.VideoFeatureRecord, error) {
	if s.fail[filepath.Base(videoPath)] {
		return nil, &models.DecodeError{Path: videoPath, Err: errors.New("no video stream")}
	}
	return buildRecord(videoPath, 10, &models.VisualSummary{}, models.NoAudioSummary()), nil
}

func TestListVideos(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MP4", "notes.txt", "c.mov"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mp4"), 0o755))

	videos, err := listVideos(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.MP4"),
		filepath.Join(dir, "b.mp4"),
	}, videos)
}

func TestListVideosMissingDir(t *testing.T) {
	_, err := listVideos(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestBatchRunSkipsFailedVideos(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bad.mp4", "ok.mp4"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	store, err := storage.NewCSVFeatureStore(filepath.Join(t.TempDir(), "features.csv"))
	require.NoError(t, err)

	batch := NewBatchProcessor(&stubProcessor{fail: map[string]bool{"bad.mp4": true}}, store, nil, nil, 2)
	result, err := batch.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Skipped)

	assert.Equal(t, 1, store.Len())
	assert.True(t, store.Has("ok.mp4"))
	assert.False(t, store.Has("bad.mp4"))
}

func TestBatchRunSkipsAlreadyAnalyzedVideos(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.mp4"), nil, 0o644))

	store, err := storage.NewCSVFeatureStore(filepath.Join(t.TempDir(), "features.csv"))
	require.NoError(t, err)

	first := NewBatchProcessor(&stubProcessor{}, store, nil, nil, 1)
	_, err = first.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	// The second run must recognize the stored row by bare filename and
	// never reach the processor, which would now fail.
	second := NewBatchProcessor(&stubProcessor{fail: map[string]bool{"ok.mp4": true}}, store, nil, nil, 1)
	result, err := second.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, store.Len())
}

func TestNilProgressPublisherIsNoop(t *testing.T) {
	var p *ProgressPublisher
	// Must not panic.
	p.Publish(context.Background(), models.ProgressUpdate{JobID: "x", Status: "running"})
}
