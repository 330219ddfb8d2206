package cmd

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roverlabs/tubmerge/pkg/tub"
)

func writeTestDataset(t *testing.T, records int) string {
	t.Helper()
	dir := t.TempDir()
	w, err := tub.NewWriter(dir,
		[]string{tub.AngleField, tub.ThrottleField, tub.ImageField},
		[]string{tub.FloatType, tub.FloatType, tub.ImageArrayType},
		1000, false)
	require.NoError(t, err)
	for i := 0; i < records; i++ {
		require.NoError(t, w.WriteRecord(tub.Record{
			tub.AngleField:    float64(i),
			tub.ThrottleField: 0.5,
			tub.ImageField:    image.NewRGBA(image.Rect(0, 0, 2, 2)),
		}))
	}
	require.NoError(t, w.Close())
	return dir
}

func TestSummarize(t *testing.T) {
	dir := writeTestDataset(t, 3)

	summary, err := summarize(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, summary.Path)
	assert.Equal(t, []string{tub.AngleField, tub.ThrottleField, tub.ImageField}, summary.Inputs)
	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 3, summary.CurrentIndex)
	assert.Equal(t, 1000, summary.MaxLen)
	assert.Equal(t, []string{"catalog_0.catalog"}, summary.Segments)
}

func TestSummaryRoundTrips(t *testing.T) {
	dir := writeTestDataset(t, 2)
	summary, err := summarize(dir)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(summary)
		require.NoError(t, err)
		var decoded datasetSummary
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, *summary, decoded)
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := yaml.Marshal(summary)
		require.NoError(t, err)
		var decoded datasetSummary
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Equal(t, *summary, decoded)
	})
}

func TestSummarizeMissingDataset(t *testing.T) {
	_, err := summarize(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestValidateDataset(t *testing.T) {
	t.Run("valid dataset has no problems", func(t *testing.T) {
		dir := writeTestDataset(t, 2)
		problems, err := validateDataset(dir)
		require.NoError(t, err)
		assert.Empty(t, problems)
	})

	t.Run("missing segment is reported", func(t *testing.T) {
		dir := writeTestDataset(t, 2)
		require.NoError(t, os.Remove(filepath.Join(dir, tub.SegmentName(0))))
		problems, err := validateDataset(dir)
		require.NoError(t, err)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], "catalog_0.catalog")
	})

	t.Run("missing image is reported", func(t *testing.T) {
		dir := writeTestDataset(t, 1)
		entries, err := os.ReadDir(filepath.Join(dir, tub.ImagesDirName))
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		require.NoError(t, os.Remove(filepath.Join(dir, tub.ImagesDirName, entries[0].Name())))

		problems, err := validateDataset(dir)
		require.NoError(t, err)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], tub.ImageField)
	})

	t.Run("unreadable manifest is an error", func(t *testing.T) {
		_, err := validateDataset(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}
