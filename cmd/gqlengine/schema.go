package main

import (
	"fmt"

	"github.com/hanpama/gqlengine/internal/config"
	"github.com/hanpama/gqlengine/internal/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Validate the schema and print it as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cmd.Flags(), file)
			if err != nil {
				return err
			}
			_, sch, err := loadSchema(cfg.SchemaFile)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), schema.Render(sch))
			return err
		},
	}
}
