package main

import (
	"github.com/hanpama/gqlengine/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gqlengine",
		Short:         "Execute GraphQL operations against an SDL schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Config file (YAML, JSON or TOML)")
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newExecCmd(), newSubscribeCmd(), newSchemaCmd())
	return root
}
