// Package tub implements the on-disk driving-log dataset format used by the
// RC-car training pipeline: a manifest.json of five JSON lines declaring the
// schema, numbered append-only catalog segments of line-delimited JSON
// records, and an images directory of out-of-line camera frames.
package tub

import (
	"path/filepath"
)

// Tub is a read-only view of a dataset directory.
type Tub struct {
	dir      string
	manifest *Manifest
}

// Open loads the manifest of the dataset at dir.
func Open(dir string) (*Tub, error) {
	manifest, err := LoadManifest(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, err
	}
	return &Tub{dir: dir, manifest: manifest}, nil
}

// Dir returns the dataset directory.
func (t *Tub) Dir() string {
	return t.dir
}

// Manifest returns the dataset's schema declaration.
func (t *Tub) Manifest() *Manifest {
	return t.manifest
}

// ImagePath resolves an image file name stored in a record to its path under
// the dataset's images directory.
func (t *Tub) ImagePath(name string) string {
	return filepath.Join(t.dir, ImagesDirName, name)
}

// SegmentPath resolves a catalog segment path from the manifest to its
// location on disk.
func (t *Tub) SegmentPath(name string) string {
	return filepath.Join(t.dir, name)
}

// Walk invokes fn for every record in every catalog segment, in manifest
// order. Segments are opened one at a time. The first error aborts the walk.
func (t *Tub) Walk(fn func(Record) error) error {
	for _, path := range t.manifest.Paths() {
		if err := ReadSegment(t.SegmentPath(path), fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records across all catalog segments.
func (t *Tub) Count() (int, error) {
	n := 0
	err := t.Walk(func(Record) error {
		n++
		return nil
	})
	return n, err
}
