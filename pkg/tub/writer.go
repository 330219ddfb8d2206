package tub

import (
	"encoding/json"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/roverlabs/tubmerge/pkg/errors"
)

// Writer appends records to a dataset. It continues numbering from the
// dataset's current index, rolls to a new catalog segment when the configured
// maximum length is reached, and finalizes the manifest on Close. A Writer is
// not safe for concurrent use.
type Writer struct {
	dir       string
	manifest  *Manifest
	maxLen    int
	readOnly  bool
	sessionID string

	seg    *segment
	index  int
	closed bool
}

// NewWriter opens a dataset directory for appending. The directory and its
// manifest are created when missing; an existing manifest keeps its metadata
// but adopts the given inputs and types. With readOnly set, the dataset is
// opened without touching disk and WriteRecord is rejected.
func NewWriter(dir string, inputs, types []string, maxLen int, readOnly bool) (*Writer, error) {
	if len(inputs) != len(types) {
		return nil, errors.NewValidationError("types", types, "inputs and types must have the same length")
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	w := &Writer{
		dir:       dir,
		maxLen:    maxLen,
		readOnly:  readOnly,
		sessionID: uuid.NewString(),
	}

	manifestPath := filepath.Join(dir, ManifestFileName)
	manifest, err := LoadManifest(manifestPath)
	switch {
	case err == nil:
		manifest.Inputs = append([]string(nil), inputs...)
		manifest.Types = append([]string(nil), types...)
	case errors.Is(err, fs.ErrNotExist) && !readOnly:
		manifest = NewManifest(inputs, types, maxLen)
	default:
		return nil, err
	}
	w.manifest = manifest
	w.index = manifest.CurrentIndex()

	if readOnly {
		return w, nil
	}

	if err := os.MkdirAll(filepath.Join(dir, ImagesDirName), 0o755); err != nil {
		return nil, errors.WrapIO("create", filepath.Join(dir, ImagesDirName), err)
	}
	if err := w.openCurrentSegment(); err != nil {
		return nil, err
	}
	return w, nil
}

// openCurrentSegment resumes the last catalog segment, or starts the first
// one for a fresh dataset.
func (w *Writer) openCurrentSegment() error {
	paths := w.manifest.Paths()
	if len(paths) == 0 {
		return w.rollSegment()
	}

	last := paths[len(paths)-1]
	seg, err := openSegment(filepath.Join(w.dir, last), 0)
	if err != nil {
		return err
	}
	seg.startIndex = w.index - seg.count()
	if seg.count() >= w.maxLen {
		if err := seg.close(); err != nil {
			return err
		}
		return w.rollSegment()
	}
	w.seg = seg
	return nil
}

// rollSegment finalizes the open segment, if any, and starts the next one.
func (w *Writer) rollSegment() error {
	if w.seg != nil {
		if err := w.seg.close(); err != nil {
			return err
		}
		w.seg = nil
	}

	name := SegmentName(len(w.manifest.Paths()))
	seg, err := openSegment(filepath.Join(w.dir, name), w.index)
	if err != nil {
		return err
	}
	w.seg = seg
	w.manifest.AppendPath(name)
	return nil
}

// SessionID identifies this writer session. It is stamped into every written
// record and into the manifest metadata on Close.
func (w *Writer) SessionID() string {
	return w.sessionID
}

// Manifest returns the manifest the writer operates on.
func (w *Writer) Manifest() *Manifest {
	return w.manifest
}

// WriteRecord appends one record, assigning it the next sequential index.
// Values are persisted per the manifest's declared fields: image-typed fields
// holding an image.Image are encoded to the images directory and stored as a
// filename; undeclared record fields are dropped; declared fields absent from
// the record are stored as null.
func (w *Writer) WriteRecord(rec Record) error {
	if w.closed {
		return errors.ErrClosed
	}
	if w.readOnly {
		return errors.WrapIO("write", w.dir, errors.ErrReadOnly)
	}

	out := make(map[string]any, len(w.manifest.Inputs)+3)
	for i, field := range w.manifest.Inputs {
		value := rec[field]
		if w.manifest.Types[i] == ImageArrayType {
			img, ok := value.(image.Image)
			if !ok {
				return errors.WrapRecord(filepath.Base(w.seg.path), w.index, field,
					errors.New("image field requires a decoded image"))
			}
			name, err := saveImage(w.dir, w.index, field, img)
			if err != nil {
				return errors.WrapRecord(filepath.Base(w.seg.path), w.index, field, err)
			}
			value = name
		}
		out[field] = value
	}
	out[IndexKey] = w.index
	out[TimestampKey] = time.Now().UnixMilli()
	out[SessionIDKey] = w.sessionID

	data, err := json.Marshal(out)
	if err != nil {
		return errors.WrapParse("json", w.seg.path, err)
	}
	if err := w.seg.appendLine(data); err != nil {
		return err
	}
	w.index++

	if w.seg.count() >= w.maxLen {
		return w.rollSegment()
	}
	return nil
}

// Close finalizes the open segment and rewrites the manifest: current index,
// segment paths, and this session's id are persisted. Closing a read-only
// writer is a no-op. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.readOnly {
		return nil
	}

	if err := w.seg.close(); err != nil {
		return err
	}
	w.seg = nil

	w.manifest.SetCurrentIndex(w.index)
	w.recordSession()
	return w.manifest.Write(filepath.Join(w.dir, ManifestFileName))
}

// recordSession stamps this writer session into the manifest metadata.
func (w *Writer) recordSession() {
	if w.manifest.Session == nil {
		w.manifest.Session = map[string]any{}
	}
	if _, ok := w.manifest.Session["created_at"]; !ok {
		w.manifest.Session["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	sessions, _ := w.manifest.Session["sessions"].(map[string]any)
	if sessions == nil {
		sessions = map[string]any{}
	}
	all, _ := sessions["all_ids"].([]any)
	sessions["all_ids"] = append(all, w.sessionID)
	sessions["last_id"] = w.sessionID
	w.manifest.Session["sessions"] = sessions
}
