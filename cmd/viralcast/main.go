package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hacklytics/viralcast/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "viralcast",
	Short: "Viral-potential estimation for short-form video ads",
	Long: `Viralcast analyzes short-form video ads with frame-sampled computer
vision and audio signal metrics, trains a view-count model on observed
outcomes, and serves predictions.

Examples:
  viralcast analyze --dir videos
  viralcast train
  viralcast predict --video ad.mp4 --length 42
  viralcast serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		setupLogging()
	},
}

func setupLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
