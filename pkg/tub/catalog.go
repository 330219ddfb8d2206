package tub

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roverlabs/tubmerge/pkg/errors"
)

// Catalog segment file naming. Segments are numbered from zero and each one
// carries a sidecar manifest recording its line lengths and start index.
const (
	segmentExt  = ".catalog"
	sidecarExt  = ".catalog_manifest"
	segmentStem = "catalog_%d"
)

// SegmentName returns the file name of the numbered catalog segment.
func SegmentName(n int) string {
	return fmt.Sprintf(segmentStem, n) + segmentExt
}

// sidecarPath returns the sidecar manifest path for a segment path.
func sidecarPath(segment string) string {
	return strings.TrimSuffix(segment, segmentExt) + sidecarExt
}

// ReadSegment parses one catalog segment file, invoking fn for each record
// in order. The file is open only for the duration of the call. The first
// malformed line or fn error aborts the scan.
func ReadSegment(path string, fn func(Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return errors.WrapRecord(filepath.Base(path), line-1, "", errors.WrapParse("json", path, err))
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.WrapIO("read", path, err)
	}
	return nil
}

// segment is an open catalog segment being appended to by a Writer.
type segment struct {
	path        string
	file        *os.File
	startIndex  int
	lineLengths []int
}

// openSegment opens a segment file for appending, recovering line lengths
// from the existing contents so the sidecar stays accurate after reopening.
func openSegment(path string, startIndex int) (*segment, error) {
	s := &segment{path: path, startIndex: startIndex}

	if existing, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(string(existing), "\n") {
			if line != "" {
				s.lineLengths = append(s.lineLengths, len(line)+1)
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.WrapIO("read", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	s.file = f
	return s, nil
}

// appendLine writes one serialized record plus newline to the segment.
func (s *segment) appendLine(data []byte) error {
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	s.lineLengths = append(s.lineLengths, len(data)+1)
	return nil
}

// count returns the number of records in the segment.
func (s *segment) count() int {
	return len(s.lineLengths)
}

// close finalizes the segment: the file is closed and the sidecar manifest
// is rewritten with the segment's line lengths and start index.
func (s *segment) close() error {
	if err := s.file.Close(); err != nil {
		return errors.WrapIO("close", s.path, err)
	}
	sidecar := map[string]any{
		"path":         filepath.Base(s.path),
		"start_index":  s.startIndex,
		"line_lengths": s.lineLengths,
		"created_at":   time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(sidecar)
	if err != nil {
		return errors.WrapParse("json", sidecarPath(s.path), err)
	}
	if err := os.WriteFile(sidecarPath(s.path), append(data, '\n'), 0o644); err != nil {
		return errors.WrapIO("write", sidecarPath(s.path), err)
	}
	return nil
}
