package logutil

import (
	"context"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/hugozhu/obclient/errors"
)

const (
	// DefaultLogMaxSize is the default size of log files, in MB.
	DefaultLogMaxSize = 300
	// DefaultLogFormat is the default format of the log output.
	DefaultLogFormat = "text"
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// FileLogConfig serializes file log related config in toml/json.
type FileLogConfig struct {
	log.FileLogConfig
}

// NewFileLogConfig creates a FileLogConfig.
func NewFileLogConfig(maxSize uint) FileLogConfig {
	return FileLogConfig{FileLogConfig: log.FileLogConfig{
		MaxSize: int(maxSize),
	}}
}

// LogConfig serializes log related config in toml/json.
type LogConfig struct {
	log.Config
}

// NewLogConfig creates a LogConfig.
func NewLogConfig(level, format string, fileCfg FileLogConfig, disableTimestamp bool) *LogConfig {
	c := &LogConfig{
		Config: log.Config{
			Level:            level,
			Format:           format,
			DisableTimestamp: disableTimestamp,
			File:             fileCfg.FileLogConfig,
		},
	}
	return c
}

// InitLogger initializes the global logger from the config.
func InitLogger(cfg *LogConfig) error {
	gl, props, err := log.InitLogger(&cfg.Config, zap.AddStacktrace(zap.FatalLevel))
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(gl, props)
	return nil
}

type ctxLogKeyType struct{}

var ctxLogKey = ctxLogKeyType{}

// Logger gets a contextual logger from the current context.
// If the context has no logger, returns the background logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctxlogger, ok := ctx.Value(ctxLogKey).(*zap.Logger); ok {
		return ctxlogger
	}
	return log.L()
}

// BgLogger is alias of log.L(), the logger for background tasks.
func BgLogger() *zap.Logger {
	return log.L()
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLogKey, logger)
}

// WithKeyValue attaches key/value to the context logger; each log entry
// written with the returned context carries the field.
func WithKeyValue(ctx context.Context, key, value string) context.Context {
	return WithLogger(ctx, Logger(ctx).With(zap.String(key, value)))
}
