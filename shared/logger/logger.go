// Package logger builds the zap loggers used by the editor server and cyoactl.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encodings accepted by Config.Encoding.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Config holds logger settings.
type Config struct {
	Level      string // debug, info, warn, error; empty means info
	Encoding   string // json or console; empty means json
	OutputPath string // file path, "stdout" or "stderr"; empty means stdout
	// Service is attached to every entry as the "service" field when set.
	Service string
	// Development adds the caller and stack traces from warn level up.
	Development bool
}

// ParseLevel converts a level name, case-insensitively. An empty name is info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// ParseEncoding normalizes an encoding name. An empty name is json.
func ParseEncoding(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingConsole:
		return EncodingConsole, nil
	default:
		return "", fmt.Errorf("invalid log encoding %q: want %s or %s", name, EncodingJSON, EncodingConsole)
	}
}

// New builds a zap.Logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	encoding, err := ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if encoding == EncodingConsole {
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoderCfg.ConsoleSeparator = " "
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		DisableCaller:     !cfg.Development,
		DisableStacktrace: !cfg.Development,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
	}
	if cfg.Service != "" {
		zapConfig.InitialFields = map[string]any{"service": cfg.Service}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewConsole builds the cyoactl logger: console lines on stderr, so stdout
// carries only command output.
func NewConsole(level string) (*zap.Logger, error) {
	return New(Config{Level: level, Encoding: EncodingConsole, OutputPath: "stderr", Service: "cyoactl"})
}
