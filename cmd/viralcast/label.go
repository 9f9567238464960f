package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hacklytics/viralcast/internal/virality"
)

var (
	labelIn  string
	labelOut string
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Add a virality category column to an outcome CSV",
	RunE:  runLabel,
}

func init() {
	labelCmd.Flags().StringVar(&labelIn, "in", "", "Input outcome CSV (defaults to OUTCOME_PATH)")
	labelCmd.Flags().StringVar(&labelOut, "out", "", "Output CSV (defaults to overwriting the input)")
	rootCmd.AddCommand(labelCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	in := labelIn
	if in == "" {
		in = cfg.OutcomePath
	}
	out := labelOut
	if out == "" {
		out = in
	}

	rows, err := virality.LabelCSV(in, out)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"rows": rows, "out": out}).Info("Virality labels written")
	return nil
}
