package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hanpama/gqlengine/internal/executor"
	"github.com/spf13/cobra"
)

var errInvalidQuery = errors.New("query validation failed")

type execFlags struct {
	variables string
	root      string
	operation string
	pretty    bool
}

func newExecCmd() *cobra.Command {
	var f execFlags
	cmd := &cobra.Command{
		Use:   "exec <query-file>",
		Short: "Run a query or mutation and print the result as JSON",
		Long: `Run a query or mutation against the schema. Fields resolve from the
root value file by name; use "-" to read the query from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.variables, "variables", "", "Variables file (YAML or JSON)")
	cmd.Flags().StringVar(&f.root, "root", "", "Root value file (YAML or JSON)")
	cmd.Flags().StringVar(&f.operation, "operation", "", "Operation name to run")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func runExec(cmd *cobra.Command, queryFile string, f execFlags) error {
	e, err := newEngine(cmd, executor.NewResolverMap())
	if err != nil {
		return err
	}
	defer e.close()

	source, err := readInput(cmd, queryFile)
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}
	doc, err := e.loadQuery(string(source))
	if err != nil {
		_ = writeJSON(cmd.OutOrStdout(), map[string]any{"errors": err}, f.pretty)
		return errInvalidQuery
	}
	vars, err := readVariables(f.variables)
	if err != nil {
		return err
	}
	root, err := readData(f.root)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	result := e.executor.ExecuteRequest(ctx, doc, f.operation, vars, root)
	return writeJSON(cmd.OutOrStdout(), result, f.pretty)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
