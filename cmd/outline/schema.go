package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/outline"
)

func schemaCmd() *cobra.Command {
	var input, output bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the outline (default) or span input format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := outline.OutputSchemaJSON()
			if input {
				var err error
				if data, err = outline.InputSchemaJSON(); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&input, "input", false, "print the span document schema")
	cmd.Flags().BoolVar(&output, "output", false, "print the outline schema")
	cmd.MarkFlagsMutuallyExclusive("input", "output")
	return cmd
}
