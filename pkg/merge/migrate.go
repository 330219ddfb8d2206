package merge

import (
	"context"
	"path/filepath"

	"github.com/roverlabs/tubmerge/pkg/errors"
	"github.com/roverlabs/tubmerge/pkg/logging"
	"github.com/roverlabs/tubmerge/pkg/tub"
)

// DefaultBrake is the value written for records that predate the brake
// signal. Treating legacy records as fully braking is a domain policy of the
// training pipeline, not a neutral default; Migrate warns when it applies.
const DefaultBrake = 1.0

// Options configures a migration.
type Options struct {
	// BrakeDefault is substituted for a missing user/brake value.
	// Zero-valued Options fall back to DefaultBrake.
	BrakeDefault *float64
}

// brakeDefault resolves the configured default.
func (o Options) brakeDefault() float64 {
	if o.BrakeDefault != nil {
		return *o.BrakeDefault
	}
	return DefaultBrake
}

// Result summarizes a completed migration.
type Result struct {
	// Records is the number of records appended to the destination.
	Records int

	// Defaulted is how many of them had no brake value in the source.
	Defaulted int

	// Segments is the number of source catalog segments read.
	Segments int
}

// Migrate appends every record of the source dataset to the destination.
//
// The destination manifest is reconciled first: a user/brake field is
// inserted when missing. Each source record then gets the configured brake
// default when it carries none, is projected onto the destination's field
// list (image references are resolved against the source's images directory
// and decoded), and is handed to the destination writer, which numbers it
// and rolls catalog segments as needed. The first malformed record, missing
// image, or write failure aborts the migration; no partial progress is
// tracked.
func Migrate(ctx context.Context, srcDir, dstDir string, opts Options) (*Result, error) {
	log := logging.Ctx(ctx)
	brake := opts.brakeDefault()

	inputs, types, maxLen, err := EnsureBrakeField(filepath.Join(dstDir, tub.ManifestFileName))
	if err != nil {
		return nil, err
	}

	src, err := tub.Open(srcDir)
	if err != nil {
		return nil, err
	}

	writer, err := tub.NewWriter(dstDir, inputs, types, maxLen, false)
	if err != nil {
		return nil, err
	}

	log.Warn().
		Float64("brake_default", brake).
		Msg("Source records without a brake value are treated as braking at this level")

	res := &Result{}
	for _, segment := range src.Manifest().Paths() {
		log.Debug().Str("segment", segment).Msg("Migrating segment")
		err := tub.ReadSegment(src.SegmentPath(segment), func(rec tub.Record) error {
			if rec.SetDefault(tub.BrakeField, brake) {
				res.Defaulted++
			}
			out, err := buildRecord(src, segment, inputs, rec)
			if err != nil {
				return err
			}
			if err := writer.WriteRecord(out); err != nil {
				return err
			}
			res.Records++
			return nil
		})
		if err != nil {
			return nil, err
		}
		res.Segments++
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	log.Info().
		Int("records", res.Records).
		Int("defaulted", res.Defaulted).
		Int("segments", res.Segments).
		Str("session_id", writer.SessionID()).
		Msg("Migration complete")
	return res, nil
}

// buildRecord projects a parsed source record onto the destination's field
// list. The image field is replaced by its decoded pixel data; other fields
// are copied as-is, with nil standing in for fields the source never
// recorded.
func buildRecord(src *tub.Tub, segment string, inputs []string, rec tub.Record) (tub.Record, error) {
	out := make(tub.Record, len(inputs))
	for _, field := range inputs {
		if field == tub.ImageField {
			name, ok := rec[field].(string)
			if !ok {
				return nil, errors.NewRecordError(segment, rec.Index(), field,
					errors.New("expected an image file name"))
			}
			img, err := tub.LoadImage(src.ImagePath(name))
			if err != nil {
				return nil, errors.WrapRecord(segment, rec.Index(), field, err)
			}
			out[field] = img
			continue
		}
		out[field] = rec[field]
	}
	return out, nil
}
