package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/features"
	"github.com/hacklytics/viralcast/internal/models"
)

// FeatureRow is the on-disk shape of one feature store record. The
// visual and audio summaries are nested JSON documents inside CSV
// cells, so downstream tooling can evolve the summary schema without a
// column migration.
type FeatureRow struct {
	VideoFilename      string `csv:"video_filename"`
	Duration           string `csv:"duration"`
	SocialMediaContent string `csv:"social_media_content"`
	AudioFeatures      string `csv:"audio_features"`
}

// RowIssue describes a feature store row that loaded but could not be
// fully decoded. Degraded rows are reported, not dropped silently.
type RowIssue struct {
	Row      int
	Filename string
	Err      error
}

// CSVFeatureStore persists VideoFeatureRecords as an append-oriented
// CSV file. Writes are serialized; the whole file is rewritten on each
// flush so partial writes never corrupt existing rows.
type CSVFeatureStore struct {
	path string
	log  *logrus.Entry

	mu   sync.Mutex
	rows []FeatureRow
}

// NewCSVFeatureStore opens (or initializes) the store at path.
func NewCSVFeatureStore(path string) (*CSVFeatureStore, error) {
	store := &CSVFeatureStore{
		path: path,
		log:  logrus.WithField("component", "feature_store"),
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open feature store: %w", err)
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, &store.rows); err != nil {
		if err == gocsv.ErrEmptyCSVFile {
			return store, nil
		}
		return nil, fmt.Errorf("read feature store %s: %w", path, err)
	}

	store.log.WithField("rows", len(store.rows)).Info("Feature store loaded")
	return store, nil
}

// Append adds one record and flushes the store to disk.
func (s *CSVFeatureStore) Append(rec *models.VideoFeatureRecord) error {
	row, err := encodeRow(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, row)
	return s.flushLocked()
}

// AppendAll adds a batch of records with a single flush.
func (s *CSVFeatureStore) AppendAll(recs []*models.VideoFeatureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		row, err := encodeRow(rec)
		if err != nil {
			return err
		}
		s.rows = append(s.rows, row)
	}
	return s.flushLocked()
}

// Len reports the number of stored rows.
func (s *CSVFeatureStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Has reports whether a row for the given filename already exists, so
// batch runs can skip videos analyzed on a previous pass.
func (s *CSVFeatureStore) Has(filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.VideoFilename == filename {
			return true
		}
	}
	return false
}

// Load decodes all rows into records. Rows whose nested JSON cannot be
// parsed are returned as issues alongside the good records.
func (s *CSVFeatureStore) Load() ([]*models.VideoFeatureRecord, []RowIssue) {
	s.mu.Lock()
	rows := make([]FeatureRow, len(s.rows))
	copy(rows, s.rows)
	s.mu.Unlock()

	var (
		records []*models.VideoFeatureRecord
		issues  []RowIssue
	)
	for i, row := range rows {
		rec, err := decodeRow(row)
		if err != nil {
			issues = append(issues, RowIssue{Row: i, Filename: row.VideoFilename, Err: err})
			continue
		}
		records = append(records, rec)
	}

	if len(issues) > 0 {
		s.log.WithFields(logrus.Fields{
			"loaded":  len(records),
			"skipped": len(issues),
		}).Warn("Feature store contains degraded rows")
	}
	return records, issues
}

// flushLocked rewrites the store atomically via a temp file rename.
func (s *CSVFeatureStore) flushLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create feature store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".features-*.csv")
	if err != nil {
		return fmt.Errorf("create temp feature store: %w", err)
	}
	tmpPath := tmp.Name()

	if err := gocsv.MarshalFile(&s.rows, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write feature store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp feature store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace feature store: %w", err)
	}
	return nil
}

func encodeRow(rec *models.VideoFeatureRecord) (FeatureRow, error) {
	visual, err := marshalCell(rec.Visual)
	if err != nil {
		return FeatureRow{}, fmt.Errorf("encode visual summary: %w", err)
	}
	audio, err := marshalCell(rec.Audio)
	if err != nil {
		return FeatureRow{}, fmt.Errorf("encode audio summary: %w", err)
	}

	return FeatureRow{
		VideoFilename:      rec.VideoFilename,
		Duration:           strconv.FormatFloat(rec.Duration, 'f', -1, 64),
		SocialMediaContent: visual,
		AudioFeatures:      audio,
	}, nil
}

func marshalCell(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRow(row FeatureRow) (*models.VideoFeatureRecord, error) {
	duration, err := strconv.ParseFloat(row.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", row.Duration, err)
	}

	visual, err := features.ParseVisual(row.SocialMediaContent)
	if err != nil {
		return nil, err
	}
	audio, err := features.ParseAudio(row.AudioFeatures)
	if err != nil {
		return nil, err
	}

	return &models.VideoFeatureRecord{
		VideoFilename: row.VideoFilename,
		Duration:      duration,
		Visual:        visual,
		Audio:         audio,
	}, nil
}
