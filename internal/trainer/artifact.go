package trainer

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hacklytics/viralcast/internal/ml"
	"github.com/hacklytics/viralcast/internal/models"
)

// Artifact is the persisted training output: everything the predictor
// needs to score a new video exactly as training did. Columns fixes
// the feature order; the transformer carries the fitted reference
// distributions.
type Artifact struct {
	Columns     []string
	Transformer *ml.QuantileTransformer
	Model       ml.Model
	Family      string
	TrainedAt   time.Time
	Eval        models.EvalReport
}

// Save writes the artifact with gob, via temp file and rename so a
// crashed write never leaves a truncated model on disk.
func (a *Artifact) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.gob")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(a); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp model file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace model artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a previously saved artifact.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.ModelLoadError{Path: path, Err: err}
	}
	defer f.Close()

	var artifact Artifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return nil, &models.ModelLoadError{Path: path, Err: err}
	}
	if len(artifact.Columns) == 0 || artifact.Model == nil {
		return nil, &models.ModelLoadError{Path: path, Err: fmt.Errorf("artifact is incomplete")}
	}
	return &artifact, nil
}
