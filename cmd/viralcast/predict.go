package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hacklytics/viralcast/internal/predictor"
)

var (
	predictVideo  string
	predictLength float64
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Analyze one video and predict its view count",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictVideo, "video", "", "Path to the video file")
	predictCmd.Flags().Float64Var(&predictLength, "length", 0, "Ad length in seconds from the outcome table schema")
	predictCmd.MarkFlagRequired("video")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	p, err := predictor.Load(cfg.ModelPath)
	if err != nil {
		return err
	}

	videoProcessor, err := buildVideoProcessor()
	if err != nil {
		return err
	}

	rec, err := videoProcessor.Process(predictVideo, uuid.New().String())
	if err != nil {
		return err
	}

	prediction, err := p.Predict(rec, predictLength)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(prediction, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
