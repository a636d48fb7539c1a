// Package logging wires the fluent application logger onto a zap core.
package logging

import (
	"encoding/json"
	"strings"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Every log message is routed through a
// single zap sink so output is uniform JSON (or console when pretty is set).
func New(level string, pretty bool) (ectologger.Logger, *zap.Logger, error) {
	zapLevel := parseLevel(level)

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}

	sink := zapLogger.Sugar()
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		writeMessage(sink, msg)
	})

	return logger, zapLogger, nil
}

func writeMessage(sink *zap.SugaredLogger, msg ectologger.EctoLogMessage) {
	// The message struct is flattened through JSON so every field it carries
	// lands on the zap entry without coupling to its layout.
	raw, err := json.Marshal(msg)
	if err != nil {
		sink.Error("unloggable message")
		return
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		sink.Error(string(raw))
		return
	}

	level := extractString(fields, "level", "severity")
	text := extractString(fields, "message", "msg")

	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	switch strings.ToLower(level) {
	case "debug":
		sink.Debugw(text, args...)
	case "warn", "warning":
		sink.Warnw(text, args...)
	case "error", "fatal":
		sink.Errorw(text, args...)
	default:
		sink.Infow(text, args...)
	}
}

func extractString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok && v != "" {
			delete(fields, key)
			return v
		}
	}
	return ""
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
