package tub_test

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roverlabs/tubmerge/pkg/errors"
	"github.com/roverlabs/tubmerge/pkg/tub"
)

var (
	testInputs = []string{tub.AngleField, tub.ThrottleField, tub.ImageField}
	testTypes  = []string{tub.FloatType, tub.FloatType, tub.ImageArrayType}
)

// testFrame builds a small camera frame.
func testFrame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	return img
}

// testRecord builds one in-memory record.
func testRecord(angle, throttle float64) tub.Record {
	return tub.Record{
		tub.AngleField:    angle,
		tub.ThrottleField: throttle,
		tub.ImageField:    testFrame(),
	}
}

// collectRecords reads every persisted record of a dataset.
func collectRecords(t *testing.T, dir string) []tub.Record {
	t.Helper()
	tb, err := tub.Open(dir)
	require.NoError(t, err)
	var records []tub.Record
	require.NoError(t, tb.Walk(func(rec tub.Record) error {
		records = append(records, rec)
		return nil
	}))
	return records
}

func TestWriterCreatesDataset(t *testing.T) {
	dir := t.TempDir()
	w, err := tub.NewWriter(dir, testInputs, testTypes, 1000, false)
	require.NoError(t, err)

	require.NoError(t, w.WriteRecord(testRecord(0.1, 0.5)))
	require.NoError(t, w.Close())

	records := collectRecords(t, dir)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 0, rec.Index())
	assert.Equal(t, 0.1, rec[tub.AngleField])
	assert.Equal(t, 0.5, rec[tub.ThrottleField])
	assert.Contains(t, rec, tub.SessionIDKey)
	assert.Contains(t, rec, tub.TimestampKey)

	// The frame is stored out of line and referenced by name.
	name, ok := rec[tub.ImageField].(string)
	require.True(t, ok)
	img, err := tub.LoadImage(filepath.Join(dir, tub.ImagesDirName, name))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestWriterRollover(t *testing.T) {
	dir := t.TempDir()
	w, err := tub.NewWriter(dir, testInputs, testTypes, 2, false)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.WriteRecord(testRecord(float64(i), 0)))
	}
	require.NoError(t, w.Close())

	m, err := tub.LoadManifest(filepath.Join(dir, tub.ManifestFileName))
	require.NoError(t, err)
	assert.Equal(t, 5, m.CurrentIndex())
	assert.Equal(t,
		[]string{"catalog_0.catalog", "catalog_1.catalog", "catalog_2.catalog"},
		m.Paths())

	// Sidecars are finalized for every segment.
	for _, name := range []string{"catalog_0", "catalog_1", "catalog_2"} {
		_, err := os.Stat(filepath.Join(dir, name+".catalog_manifest"))
		assert.NoError(t, err)
	}

	records := collectRecords(t, dir)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, i, rec.Index())
	}
}

func TestWriterContinuesNumbering(t *testing.T) {
	dir := t.TempDir()

	w, err := tub.NewWriter(dir, testInputs, testTypes, 1000, false)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(testRecord(0, 0)))
	require.NoError(t, w.WriteRecord(testRecord(1, 0)))
	require.NoError(t, w.Close())

	w, err = tub.NewWriter(dir, testInputs, testTypes, 1000, false)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(testRecord(2, 0)))
	require.NoError(t, w.Close())

	records := collectRecords(t, dir)
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[2].Index())

	m, err := tub.LoadManifest(filepath.Join(dir, tub.ManifestFileName))
	require.NoError(t, err)
	assert.Equal(t, 3, m.CurrentIndex())
	// Still a single segment below max_len.
	assert.Equal(t, []string{"catalog_0.catalog"}, m.Paths())
}

func TestWriterProjection(t *testing.T) {
	dir := t.TempDir()
	w, err := tub.NewWriter(dir, testInputs, testTypes, 1000, false)
	require.NoError(t, err)

	rec := testRecord(0.2, 0.8)
	rec["extra/unused"] = 42.0
	delete(rec, tub.ThrottleField)
	require.NoError(t, w.WriteRecord(rec))
	require.NoError(t, w.Close())

	records := collectRecords(t, dir)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0], "extra/unused")
	assert.Contains(t, records[0], tub.ThrottleField)
	assert.Nil(t, records[0][tub.ThrottleField])
}

func TestWriterReadOnly(t *testing.T) {
	dir := t.TempDir()
	w, err := tub.NewWriter(dir, testInputs, testTypes, 1000, false)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(testRecord(0, 0)))
	require.NoError(t, w.Close())

	ro, err := tub.NewWriter(dir, testInputs, testTypes, 1000, true)
	require.NoError(t, err)
	err = ro.WriteRecord(testRecord(1, 0))
	require.Error(t, err)
	assert.True(t, errors.IsReadOnly(err))
	require.NoError(t, ro.Close())

	// Nothing was appended.
	assert.Len(t, collectRecords(t, dir), 1)
}

func TestWriterErrors(t *testing.T) {
	t.Run("misaligned schema is rejected", func(t *testing.T) {
		_, err := tub.NewWriter(t.TempDir(), []string{"a", "b"}, []string{"float"}, 1000, false)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("image field requires decoded image", func(t *testing.T) {
		w, err := tub.NewWriter(t.TempDir(), testInputs, testTypes, 1000, false)
		require.NoError(t, err)
		rec := testRecord(0, 0)
		rec[tub.ImageField] = "already-a-filename.jpg"
		assert.Error(t, w.WriteRecord(rec))
	})

	t.Run("write after close is rejected", func(t *testing.T) {
		w, err := tub.NewWriter(t.TempDir(), testInputs, testTypes, 1000, false)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		assert.ErrorIs(t, w.WriteRecord(testRecord(0, 0)), errors.ErrClosed)
		// Close is idempotent.
		assert.NoError(t, w.Close())
	})
}
