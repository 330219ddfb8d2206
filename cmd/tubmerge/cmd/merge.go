package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roverlabs/tubmerge/internal/config"
	"github.com/roverlabs/tubmerge/pkg/merge"
)

var (
	mergeSrc string
	mergeDst string
)

// mergeCmd represents the merge command.
var mergeCmd = &cobra.Command{
	Use:   "merge --src <dir> --dst <dir>",
	Short: "Append the records of one dataset to another",
	Long: `Append every record of the source dataset to the destination dataset.

The destination manifest gains a user/brake field when it lacks one. Source
records without a brake value are filled with the configured default (1.0,
meaning full brake, unless overridden with --brake-default or the
brake-default config key). Record numbering continues from the destination's
last index.

Examples:
  tubmerge merge --src data/tub_legacy --dst data/tub_main
  tubmerge merge --src data/tub_legacy --dst data/tub_main --brake-default 0.0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Viper resolves precedence: changed flag, then env/config file,
		// then the flag default.
		brake := viper.GetFloat64(config.KeyBrakeDefault)
		opts := merge.Options{BrakeDefault: &brake}

		res, err := merge.Migrate(cmd.Context(), mergeSrc, mergeDst, opts)
		if err != nil {
			return err
		}

		fmt.Printf("Merged %d records from %d segments into %s (%d filled with default brake)\n",
			res.Records, res.Segments, mergeDst, res.Defaulted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeSrc, "src", "", "source dataset directory (lacking brake data)")
	mergeCmd.Flags().StringVar(&mergeDst, "dst", "", "destination dataset directory")
	mergeCmd.Flags().Float64(
		"brake-default", merge.DefaultBrake,
		"brake value for source records without one")

	cobra.CheckErr(mergeCmd.MarkFlagRequired("src"))
	cobra.CheckErr(mergeCmd.MarkFlagRequired("dst"))
	cobra.CheckErr(mergeCmd.MarkFlagDirname("src"))
	cobra.CheckErr(mergeCmd.MarkFlagDirname("dst"))

	cobra.CheckErr(viper.BindPFlag(config.KeyBrakeDefault, mergeCmd.Flags().Lookup("brake-default")))
}
