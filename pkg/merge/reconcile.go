// Package merge appends the records of one driving-log dataset to another,
// synthesizing the brake signal for datasets recorded before it existed and
// extending the destination schema when needed.
package merge

import (
	"github.com/roverlabs/tubmerge/pkg/tub"
)

// EnsureBrakeField guarantees that the manifest at path declares a
// user/brake field of type float. The field is inserted immediately after
// user/throttle when present, otherwise appended, and the manifest is
// rewritten only when a change was made, so repeated calls leave the file
// untouched. It returns the resulting field names, type tags, and maximum
// segment length.
func EnsureBrakeField(path string) (inputs, types []string, maxLen int, err error) {
	manifest, err := tub.LoadManifest(path)
	if err != nil {
		return nil, nil, 0, err
	}

	if !manifest.HasInput(tub.BrakeField) {
		idx := len(manifest.Inputs)
		for i, input := range manifest.Inputs {
			if input == tub.ThrottleField {
				idx = i + 1
				break
			}
		}
		manifest.InsertInput(idx, tub.BrakeField, tub.FloatType)
		if err := manifest.Write(path); err != nil {
			return nil, nil, 0, err
		}
	}

	return manifest.Inputs, manifest.Types, manifest.MaxLen(), nil
}
