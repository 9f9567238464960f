package virality

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Category labels a view count into one of four virality bands.
type Category string

const (
	NonViral   Category = "Non-viral"
	LowViral   Category = "Low-viral"
	Viral      Category = "Viral"
	SuperViral Category = "Super-viral"
)

// Categorize maps a view count to its virality band.
func Categorize(views float64) Category {
	switch {
	case views < 10_000:
		return NonViral
	case views < 100_000:
		return LowViral
	case views < 1_000_000:
		return Viral
	default:
		return SuperViral
	}
}

// LabelCSV reads an outcome CSV, appends a virality column derived
// from the views column, and writes the result to outPath. All other
// columns pass through untouched, so this works on outcome tables of
// any shape as long as a views column exists.
func LabelCSV(inPath, outPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open outcome table: %w", err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read outcome table %s: %w", inPath, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("outcome table %s is empty", inPath)
	}

	header := rows[0]
	viewsCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "views") {
			viewsCol = i
			break
		}
	}
	if viewsCol < 0 {
		return 0, fmt.Errorf("outcome table %s has no views column", inPath)
	}

	labeled := make([][]string, 0, len(rows))
	labeled = append(labeled, append(append([]string{}, header...), "virality"))
	for i, row := range rows[1:] {
		if viewsCol >= len(row) {
			return 0, fmt.Errorf("row %d is missing the views column", i+2)
		}
		views, err := strconv.ParseFloat(strings.TrimSpace(row[viewsCol]), 64)
		if err != nil {
			return 0, fmt.Errorf("row %d has unparseable views %q: %w", i+2, row[viewsCol], err)
		}
		labeled = append(labeled, append(append([]string{}, row...), string(Categorize(views))))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create labeled table: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.WriteAll(labeled); err != nil {
		return 0, fmt.Errorf("write labeled table %s: %w", outPath, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("write labeled table %s: %w", outPath, err)
	}
	return len(labeled) - 1, nil
}
