package features

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hacklytics/viralcast/internal/models"
)

// ParseError marks a feature-store cell whose nested JSON could not be
// decoded. Degraded records surface as explicit errors rather than
// silently becoming all-zero feature rows.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	raw := e.Raw
	if len(raw) > 80 {
		raw = raw[:80] + "..."
	}
	return fmt.Sprintf("parse feature JSON %q: %v", raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseVisual decodes the social_media_content column.
func ParseVisual(raw string) (*models.VisualSummary, error) {
	return parseJSON[models.VisualSummary](raw)
}

// ParseAudio decodes the audio_features column.
func ParseAudio(raw string) (*models.AudioSummary, error) {
	return parseJSON[models.AudioSummary](raw)
}

// parseJSON decodes a nested JSON cell. Legacy rows written by earlier
// tooling carry single-quoted JSON; those are retried with quotes
// substituted before being declared unparseable.
func parseJSON[T any](raw string) (*T, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("empty cell")}
	}

	var value T
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		requoted := strings.ReplaceAll(trimmed, "'", `"`)
		if err2 := json.Unmarshal([]byte(requoted), &value); err2 != nil {
			return nil, &ParseError{Raw: raw, Err: err}
		}
	}

	return &value, nil
}
