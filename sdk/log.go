package sdk

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "GOV_LOG_LEVEL"
	EnvLogTimestamp = "GOV_LOG_TIMESTAMP"
	EnvLogNoColor   = "GOV_LOG_NOCOLOR"
	EnvLogJSON      = "GOV_LOG_JSON"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

type LogConfig struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	JSON      bool
	Out       io.Writer
}

var (
	configureOnce sync.Once
	logger        = zerolog.Nop()
	loggerMu      sync.RWMutex
)

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the process logger once; later calls are ignored so
// tests and the CLI can both call it freely.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultLogConfig(profile)
		applyEnvOverrides(&cfg)
		SetLogger(NewLogger(cfg))
	})
}

func defaultLogConfig(profile Profile) LogConfig {
	cfg := LogConfig{Out: os.Stderr}
	switch profile {
	case ProfileTest:
		// quiet unless GOV_LOG_LEVEL asks for more
		cfg.Level = zerolog.WarnLevel
		cfg.Timestamp = false
		cfg.NoColor = true
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

// NewLogger builds a zerolog logger from cfg without touching the global one.
func NewLogger(cfg LogConfig) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		}
	}
	ctx := zerolog.New(out).Level(cfg.Level).With().Str("app", "ridegov")
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// SetLogger swaps the process logger.
func SetLogger(l zerolog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// Logger returns the process logger; a no-op logger until Configure runs.
func Logger() zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func applyEnvOverrides(cfg *LogConfig) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
		cfg.JSON = v
	}
}

// ParseLevel maps the level names accepted on the command line.
func ParseLevel(raw string) (zerolog.Level, bool) {
	return parseLevel(raw)
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
