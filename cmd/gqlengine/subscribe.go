package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/hanpama/gqlengine/internal/executor"
	"github.com/spf13/cobra"
)

type subscribeFlags struct {
	events      string
	variables   string
	operation   string
	metricsAddr string
}

func newSubscribeCmd() *cobra.Command {
	var f subscribeFlags
	cmd := &cobra.Command{
		Use:   "subscribe <query-file>",
		Short: "Replay a list of events through a subscription",
		Long: `Replay the events of a YAML or JSON list through a subscription
operation, printing one JSON result per line. Each event is the root value of
its execution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscribe(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.events, "events", "", "Events file: a YAML or JSON list of payloads")
	cmd.Flags().StringVar(&f.variables, "variables", "", "Variables file (YAML or JSON)")
	cmd.Flags().StringVar(&f.operation, "operation", "", "Operation name to run")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics.addr", "", "Serve Prometheus metrics on this address while replaying")
	_ = cmd.MarkFlagRequired("events")
	return cmd
}

// replayRuntime answers every subscription root field with the same replayed
// events. Other fields use the default resolvers.
type replayRuntime struct {
	*executor.ResolverMap
	events []any
}

func (r *replayRuntime) SubscribeField(context.Context, any, map[string]any, *executor.ResolveInfo) (any, error) {
	ch := make(chan any, len(r.events))
	for _, ev := range r.events {
		ch <- ev
	}
	close(ch)
	return executor.NewChannelStream(ch, nil), nil
}

func runSubscribe(cmd *cobra.Command, queryFile string, f subscribeFlags) error {
	data, err := readData(f.events)
	if err != nil {
		return err
	}
	events, ok := data.([]any)
	if !ok {
		return fmt.Errorf("events in %s must be a list, got %T", f.events, data)
	}

	e, err := newEngine(cmd, &replayRuntime{ResolverMap: executor.NewResolverMap(), events: events})
	if err != nil {
		return err
	}
	defer e.close()

	if f.metricsAddr != "" {
		stop, err := serve(f.metricsAddr, e.metricsHandler())
		if err != nil {
			return err
		}
		defer stop()
	}

	source, err := readInput(cmd, queryFile)
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}
	doc, err := e.loadQuery(string(source))
	if err != nil {
		_ = writeJSON(cmd.OutOrStdout(), map[string]any{"errors": err}, false)
		return errInvalidQuery
	}
	vars, err := readVariables(f.variables)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stream, setup, err := e.executor.Subscribe(ctx, executor.Params{
		Document:       doc,
		OperationName:  f.operation,
		VariableValues: vars,
	})
	if err != nil {
		return err
	}
	if setup != nil {
		return writeJSON(cmd.OutOrStdout(), setup, false)
	}
	defer func() { _, _, _ = stream.Close(context.Background()) }()

	for {
		result, done, err := stream.Next(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := writeJSON(cmd.OutOrStdout(), result, false); err != nil {
			return err
		}
	}
}

// serve runs handler on addr until stop is called.
func serve(addr string, handler http.Handler) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	return func() { _ = srv.Close() }, nil
}
