package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hacklytics/viralcast/internal/dataset"
	"github.com/hacklytics/viralcast/internal/storage"
	"github.com/hacklytics/viralcast/internal/trainer"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the view-count model from the feature store and outcome table",
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	store, err := storage.NewCSVFeatureStore(cfg.FeatureStorePath)
	if err != nil {
		return err
	}

	records, issues := store.Load()
	if len(records) == 0 {
		return fmt.Errorf("feature store %s has no usable records (%d degraded rows)", cfg.FeatureStorePath, len(issues))
	}

	outcomes, err := dataset.LoadOutcomes(cfg.OutcomePath)
	if err != nil {
		return err
	}

	examples, stats := dataset.Join(records, outcomes)
	logrus.WithFields(logrus.Fields{
		"matched":            stats.Matched,
		"unmatched_records":  stats.UnmatchedRecords,
		"unmatched_outcomes": stats.UnmatchedOutcomes,
	}).Info("Training set joined")

	artifact, err := trainer.Train(examples, trainer.Options{
		Family:        cfg.ModelFamily,
		CorrThreshold: cfg.CorrThreshold,
		PruneFeatures: cfg.PruneFeatures,
	})
	if err != nil {
		return err
	}

	if err := artifact.Save(cfg.ModelPath); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"path":     cfg.ModelPath,
		"family":   artifact.Family,
		"features": len(artifact.Columns),
		"rmse":     artifact.Eval.RMSE,
		"r2":       artifact.Eval.R2,
		"mape":     artifact.Eval.MAPE,
	}).Info("Model artifact saved")
	return nil
}
