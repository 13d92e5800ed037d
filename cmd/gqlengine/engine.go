package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hanpama/gqlengine/internal/config"
	"github.com/hanpama/gqlengine/internal/eventbus"
	"github.com/hanpama/gqlengine/internal/executor"
	"github.com/hanpama/gqlengine/internal/introspection"
	"github.com/hanpama/gqlengine/internal/language"
	"github.com/hanpama/gqlengine/internal/logging"
	"github.com/hanpama/gqlengine/internal/metrics"
	"github.com/hanpama/gqlengine/internal/otel"
	"github.com/hanpama/gqlengine/internal/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// engine is everything a command needs to run one operation.
type engine struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *prometheus.Registry
	ast      *language.Schema
	executor *executor.Executor
	closers  []func(context.Context) error
}

func newEngine(cmd *cobra.Command, runtime executor.Runtime) (*engine, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cmd.Flags(), file)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	doc, sch, err := loadSchema(cfg.SchemaFile)
	if err != nil {
		return nil, err
	}

	e := &engine{cfg: cfg, log: log, ast: doc, registry: prometheus.NewRegistry()}

	bus := eventbus.New()
	if err := e.observe(bus); err != nil {
		e.close()
		return nil, err
	}

	shutdown, err := otel.Setup(cmd.Context(), bus, cfg.OtelEndpoint, cfg.OtelService)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("otel setup: %w", err)
	}
	e.closers = append(e.closers, shutdown)

	if cfg.Introspection {
		w := introspection.Wrap(runtime, sch)
		runtime, sch = w.Runtime, w.Schema
	}
	e.executor = executor.NewExecutor(runtime, sch, executor.WithMaxVariableErrors(cfg.MaxVariableErrors))
	return e, nil
}

// observe installs bus as the global bus and attaches the log and metrics
// subscribers. The closer undoing it is registered before anything can fail.
func (e *engine) observe(bus *eventbus.Bus) error {
	eventbus.Use(bus)
	detach := []func(){logging.Attach(bus, e.log)}
	e.closers = append(e.closers, func(context.Context) error {
		for _, d := range detach {
			d()
		}
		eventbus.Use(nil)
		return nil
	})

	collectors := metrics.New()
	if err := e.registry.Register(collectors); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	detach = append(detach, collectors.Attach(bus))
	return nil
}

// loadSchema reads an SDL file. The gqlparser schema is kept for validating
// queries.
func loadSchema(path string) (*language.Schema, *schema.Schema, error) {
	sdl, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema: %w", err)
	}
	doc, err := language.LoadSchema(path, string(sdl))
	if err != nil {
		return nil, nil, fmt.Errorf("load schema %s: %w", path, err)
	}
	sch, err := schema.BuildFromAST(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("build schema: %w", err)
	}
	return doc, sch, nil
}

// close runs the closers in reverse order.
func (e *engine) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](context.Background()); err != nil {
			e.log.WithError(err).Warn("shutdown")
		}
	}
}

// loadQuery parses and validates a document against the schema.
func (e *engine) loadQuery(source string) (*language.QueryDocument, error) {
	doc, errs := language.LoadQuery(e.ast, source)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

func (e *engine) metricsHandler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// readInput reads a file named by a flag, "-" meaning stdin.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// readData decodes a YAML (or JSON) file. An empty path yields nil.
func readData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

func readVariables(path string) (map[string]any, error) {
	v, err := readData(path)
	if err != nil || v == nil {
		return nil, err
	}
	vars, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("variables in %s must be a map, got %T", path, v)
	}
	return vars, nil
}
