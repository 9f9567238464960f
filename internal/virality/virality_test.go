package virality

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	assert.Equal(t, NonViral, Categorize(0))
	assert.Equal(t, NonViral, Categorize(9999))
	assert.Equal(t, LowViral, Categorize(10000))
	assert.Equal(t, LowViral, Categorize(99999))
	assert.Equal(t, Viral, Categorize(100000))
	assert.Equal(t, Viral, Categorize(999999))
	assert.Equal(t, SuperViral, Categorize(1000000))
	assert.Equal(t, SuperViral, Categorize(50000000))
}

func TestLabelCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "outcomes.csv")
	out := filepath.Join(dir, "labeled.csv")

	data := "ad_link,views,length,notes\na,500,10,keep me\nb,50000,20,\nc,500000,30,x\nd,5000000,40,y\n"
	require.NoError(t, os.WriteFile(in, []byte(data), 0o644))

	rows, err := LabelCSV(in, out)
	require.NoError(t, err)
	assert.Equal(t, 4, rows)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	got, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, []string{"ad_link", "views", "length", "notes", "virality"}, got[0])
	assert.Equal(t, []string{"a", "500", "10", "keep me", "Non-viral"}, got[1])
	assert.Equal(t, "Low-viral", got[2][4])
	assert.Equal(t, "Viral", got[3][4])
	assert.Equal(t, "Super-viral", got[4][4])
}

func TestLabelCSVNoViewsColumn(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(in, []byte("a,b\n1,2\n"), 0o644))

	_, err := LabelCSV(in, filepath.Join(dir, "out.csv"))
	assert.ErrorContains(t, err, "views")
}

func TestLabelCSVBadViews(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(in, []byte("views\nnot-a-number\n"), 0o644))

	_, err := LabelCSV(in, filepath.Join(dir, "out.csv"))
	assert.Error(t, err)
}
