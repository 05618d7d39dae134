// Package logging provides a decred/slog-backed structured logging setup,
// one named subsystem logger per component, grounded on the teacher's
// ambient logging throughout pkg/poker and pkg/server.
package logging

import (
	"io"
	"os"

	"github.com/decred/slog"
)

// Subsystem tags match the teacher's convention of short, all-caps
// subsystem names (its GameLog/Log split becomes TABLE/BETTING/...).
const (
	SubsystemTable     = "TABLE"
	SubsystemBetting   = "BETTING"
	SubsystemPot       = "POT"
	SubsystemDeck      = "DECK"
	SubsystemEval      = "EVAL"
	SubsystemScheduler = "SCHED"
	SubsystemSession   = "SESSN"
	SubsystemBroadcast = "BCAST"
	SubsystemRegistry  = "REGST"
	SubsystemServer    = "SRVR"
	SubsystemStore     = "STORE"
	SubsystemMetrics   = "METRC"
)

// Backend holds the single slog.Backend every subsystem logger is created
// from. Each logger's level is the one passed to Logger.
type Backend struct {
	backend slog.Backend
}

// Config controls backend construction.
type Config struct {
	// Writer defaults to os.Stderr when nil.
	Writer io.Writer
	// Level is a level name (e.g. "info", "debug", "trace", "warn",
	// "error"). New does not read it; each subsystem logger gets the level
	// passed to Logger (see ParseLevel).
	Level string
}

// New builds a Backend per cfg.
func New(cfg Config) *Backend {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	return &Backend{backend: slog.NewBackend(w)}
}

// Logger returns (creating if needed) the named subsystem logger, set to
// level.
func (b *Backend) Logger(subsystem string, level slog.Level) slog.Logger {
	l := b.backend.Logger(subsystem)
	l.SetLevel(level)
	return l
}

// ParseLevel maps a flag string to a slog.Level, defaulting to LevelInfo
// for an unrecognized value rather than erroring — a misconfigured
// log-level flag should never prevent the server from starting.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return slog.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return slog.LevelCritical
	case "off":
		return slog.LevelOff
	default:
		return slog.LevelInfo
	}
}
