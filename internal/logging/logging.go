package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	reqid "github.com/hanpama/gqlengine/internal/reqid"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out with the given level and format.
func New(out io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := GetLevel(level)
	if err != nil {
		return nil, err
	}
	formatter, err := GetFormatter(format)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(formatter)
	return log, nil
}

func GetLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "", "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %v", level)
	}
}

func GetFormatter(format string) (logrus.Formatter, error) {
	switch format {
	case "", "text":
		return &logrus.TextFormatter{DisableTimestamp: true}, nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	case "json-pretty":
		return &logrus.JSONFormatter{PrettyPrint: true}, nil
	default:
		return nil, fmt.Errorf("invalid log format: %v", format)
	}
}

// Attach logs the executor's events published on bus.
func Attach(bus *eventbus.Bus, log logrus.FieldLogger) (detach func()) {
	unsubs := []func(){
		eventbus.SubscribeOn(bus, func(ctx context.Context, e events.ExecutionFinish) {
			entry := withRequest(ctx, log).WithFields(logrus.Fields{
				"operation": e.OperationName,
				"type":      e.OperationType,
				"duration":  e.Duration.String(),
				"errors":    len(e.Errors),
			})
			switch {
			case e.DataOmitted:
				entry.Warn("execution rejected")
			case len(e.Errors) > 0:
				entry.Warn("execution finished with errors")
			default:
				entry.Info("execution finished")
			}
		}),
		eventbus.SubscribeOn(bus, func(ctx context.Context, e events.FieldError) {
			withRequest(ctx, log).WithField("path", e.Path).Debug(e.Message)
		}),
		eventbus.SubscribeOn(bus, func(ctx context.Context, e events.SubscriptionStart) {
			log.WithFields(logrus.Fields{
				"subscription": e.SubscriptionID,
				"operation":    e.OperationName,
				"field":        e.Field,
			}).Info("subscription started")
		}),
		eventbus.SubscribeOn(bus, func(ctx context.Context, e events.SubscriptionStop) {
			log.WithFields(logrus.Fields{
				"subscription": e.SubscriptionID,
				"events":       e.Events,
			}).Info("subscription stopped")
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func withRequest(ctx context.Context, log logrus.FieldLogger) logrus.FieldLogger {
	if rid, ok := reqid.FromContext(ctx); ok {
		return log.WithField("request_id", rid)
	}
	return log
}
