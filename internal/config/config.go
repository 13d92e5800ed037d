package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override flags, e.g.
// GQLENGINE_LOG_LEVEL for --log.level.
const EnvPrefix = "GQLENGINE"

// Config is the resolved configuration of the CLI.
type Config struct {
	SchemaFile        string
	Introspection     bool
	MaxVariableErrors int
	Timeout           time.Duration

	LogLevel  string
	LogFormat string

	OtelEndpoint string
	OtelService  string
}

const (
	keySchema            = "graphql.schema"
	keyIntrospection     = "graphql.introspection"
	keyMaxVariableErrors = "graphql.max-variable-errors"
	keyTimeout           = "graphql.timeout"
	keyLogLevel          = "log.level"
	keyLogFormat         = "log.format"
	keyOtelEndpoint      = "otel.endpoint"
	keyOtelService       = "otel.service"
)

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(keySchema, "schema.graphql", "GraphQL SDL file")
	fs.Bool(keyIntrospection, true, "Enable GraphQL introspection")
	fs.Int(keyMaxVariableErrors, 50, "Max variable coercion errors reported per request (0 for all)")
	fs.Duration(keyTimeout, 10*time.Second, "Execution timeout")
	fs.String(keyLogLevel, "info", "Log level: debug, info, warn, error")
	fs.String(keyLogFormat, "text", "Log format: text, json, json-pretty")
	fs.String(keyOtelEndpoint, "", "OTLP collector endpoint")
	fs.String(keyOtelService, "gqlengine", "OpenTelemetry service name")
}

// Load resolves the configuration from flags, GQLENGINE_* variables and an
// optional config file, in that order of precedence.
func Load(fs *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		SchemaFile:        v.GetString(keySchema),
		Introspection:     v.GetBool(keyIntrospection),
		MaxVariableErrors: v.GetInt(keyMaxVariableErrors),
		Timeout:           v.GetDuration(keyTimeout),
		LogLevel:          v.GetString(keyLogLevel),
		LogFormat:         v.GetString(keyLogFormat),
		OtelEndpoint:      v.GetString(keyOtelEndpoint),
		OtelService:       v.GetString(keyOtelService),
	}
	if cfg.MaxVariableErrors < 0 {
		return nil, fmt.Errorf("%s must not be negative", keyMaxVariableErrors)
	}
	return cfg, nil
}
