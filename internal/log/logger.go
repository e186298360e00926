// Package log provides structured logging for the analysis engine and its
// front ends using zap. Grounded on the teacher's internal/log/logger.go
// (same Init/New/sync.Once shape), generalized from Android-stub trace
// logging to draining internal/diag.Event diagnostics, and from 64-bit
// ARM64 PCs to this engine's 32-bit MIPS vrams.
package log

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/decomp-toolkit/spimdisasm/internal/diag"
)

// Logger wraps zap.Logger with engine-specific helpers.
type Logger struct {
	*zap.Logger
}

var (
	// L is the global logger instance.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger with the given configuration.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	// Shorter timestamps in development
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fallback to no-op if config fails
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithRun returns a logger with the analysis run's correlation id preset,
// so log lines from two overlapping analyses (e.g. two overlays sharing a
// vram range) can be told apart.
func (l *Logger) WithRun(runID uuid.UUID) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("run", runID.String()))}
}

// Event logs one internal/diag.Event at a severity matching spec.md §7's
// error taxonomy: range violations and ambiguous pointers are warnings
// (the engine degraded emission rather than aborting), everything else
// (malformed/unimplemented instructions, string-decode failures, size
// conflicts, boundary guesses) is debug-level detail.
func (l *Logger) Event(ev *diag.Event) {
	fields := make([]zap.Field, 0, 4+len(ev.Annotations))
	fields = append(fields, Addr(ev.Address), zap.String("category", string(ev.Primary())))
	if ev.Symbol != "" {
		fields = append(fields, Fn(ev.Symbol))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	for k, v := range ev.Annotations {
		fields = append(fields, zap.String(k, v))
	}

	switch ev.Primary() {
	case diag.RangeViolation, diag.AmbiguousPointer:
		l.Warn("analysis diagnostic", fields...)
	default:
		l.Debug("analysis diagnostic", fields...)
	}
}

// Hex formats a vram as a hex string for logging.
func Hex(addr uint32) string {
	return "0x" + hexString(addr)
}

func hexString(v uint32) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 8)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Field helpers for common patterns.

// Addr creates an address field.
func Addr(addr uint32) zap.Field {
	return zap.String("addr", Hex(addr))
}

// Size creates a size field.
func Size(size uint32) zap.Field {
	return zap.Uint32("size", size)
}

// Ptr creates a pointer field.
func Ptr(name string, ptr uint32) zap.Field {
	return zap.String(name, Hex(ptr))
}

// Fn creates a symbol name field.
func Fn(name string) zap.Field {
	return zap.String("symbol", name)
}
