package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/poisearch/internal/mappath"
)

func newMapPathsCommand() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "mappaths",
		Short: "Generate mapPaths.json from the world map SVG",
		Long: `Extract every <path> with both an id and path data from the world map SVG
and write {"viewBox": ..., "mapPaths": {id: d}} as indented JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entry, err := mappath.Convert(in, out)
			if err != nil {
				return fmt.Errorf("generate map paths: %w", err)
			}
			if len(entry.MapPaths) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no labeled paths found in %s\n", in)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "mapPaths.json generated!")
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", mappath.DefaultInput, "input SVG file")
	cmd.Flags().StringVar(&out, "out", mappath.DefaultOutput, "output JSON file")
	return cmd
}
