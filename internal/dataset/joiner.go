package dataset

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/features"
	"github.com/hacklytics/viralcast/internal/models"
)

// Outcome is one row of the outcome table: the observed performance of
// an ad whose video was analyzed.
type Outcome struct {
	AdLink string  `csv:"ad_link"`
	Views  float64 `csv:"views"`
	Length float64 `csv:"length"`
}

// Example is one joined training example: the engineered feature
// vector plus the observed view count.
type Example struct {
	VideoID string
	Vector  features.Vector
	Views   float64
}

// JoinStats reports how the inner join went. Unmatched rows on either
// side are dropped but counted.
type JoinStats struct {
	Matched           int
	UnmatchedRecords  int
	UnmatchedOutcomes int
}

// LoadOutcomes reads the outcome CSV.
func LoadOutcomes(path string) ([]Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open outcome table: %w", err)
	}
	defer f.Close()

	var outcomes []Outcome
	if err := gocsv.UnmarshalFile(f, &outcomes); err != nil {
		return nil, fmt.Errorf("read outcome table %s: %w", path, err)
	}
	return outcomes, nil
}

// Join inner-joins feature records with outcomes on the normalized
// video identifier. Joining twice with the same inputs yields the same
// examples in the same order: records drive the iteration order and
// lookups are by exact key.
func Join(records []*models.VideoFeatureRecord, outcomes []Outcome) ([]Example, JoinStats) {
	byID := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		byID[features.NormalizeVideoID(o.AdLink)] = o
	}

	var (
		examples []Example
		stats    JoinStats
	)
	matchedIDs := make(map[string]bool, len(records))
	for _, rec := range records {
		id := features.NormalizeVideoID(rec.VideoFilename)
		outcome, ok := byID[id]
		if !ok {
			stats.UnmatchedRecords++
			continue
		}
		matchedIDs[id] = true
		examples = append(examples, Example{
			VideoID: id,
			Vector:  features.Engineer(rec, outcome.Length),
			Views:   outcome.Views,
		})
	}

	for id := range byID {
		if !matchedIDs[id] {
			stats.UnmatchedOutcomes++
		}
	}
	stats.Matched = len(examples)

	if stats.UnmatchedRecords > 0 || stats.UnmatchedOutcomes > 0 {
		logrus.WithFields(logrus.Fields{
			"matched":            stats.Matched,
			"unmatched_records":  stats.UnmatchedRecords,
			"unmatched_outcomes": stats.UnmatchedOutcomes,
		}).Warn("Outcome join dropped rows")
	}
	return examples, stats
}
