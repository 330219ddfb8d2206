package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roverlabs/tubmerge/pkg/errors"
	"github.com/roverlabs/tubmerge/pkg/tub"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate <dataset-dir>",
	Short: "Check a dataset's manifest and catalog files",
	Long: `Check the structure of a dataset directory: the manifest must hold five
well-formed JSON lines with aligned field names and types, and every catalog
segment it declares must exist and parse.

Examples:
  tubmerge validate data/tub_main`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		problems, err := validateDataset(args[0])
		if err != nil {
			return err
		}
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), "invalid:", p)
			}
			return fmt.Errorf("dataset %s has %d problem(s)", args[0], len(problems))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset %s is valid\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateDataset checks one dataset directory. Structural findings are
// returned as problems; a manifest that cannot be read at all is an error.
func validateDataset(dir string) ([]string, error) {
	t, err := tub.Open(dir)
	if err != nil {
		return nil, err
	}
	m := t.Manifest()

	var problems []string
	if len(m.Inputs) != len(m.Types) {
		problems = append(problems,
			fmt.Sprintf("inputs has %d entries, types has %d", len(m.Inputs), len(m.Types)))
	}

	records := 0
	for _, segment := range m.Paths() {
		path := t.SegmentPath(segment)
		if _, err := os.Stat(path); err != nil {
			problems = append(problems, fmt.Sprintf("segment %s: %v", segment, err))
			continue
		}
		err := tub.ReadSegment(path, func(rec tub.Record) error {
			records++
			if name, ok := rec[tub.ImageField].(string); ok {
				if _, err := os.Stat(t.ImagePath(name)); err != nil {
					return errors.WrapRecord(segment, rec.Index(), tub.ImageField, errors.ErrNotFound)
				}
			}
			return nil
		})
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	if current := m.CurrentIndex(); records > current {
		problems = append(problems,
			fmt.Sprintf("%d records on disk but current_index is %d", records, current))
	}
	return problems, nil
}
