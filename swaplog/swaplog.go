// Package swaplog centralizes btclog sub-logger setup the way
// cmd/chantools/root.go does: one rotating log writer, one sub-logger per
// subsystem, registered up front so every package logs through the same
// pipe at a configurable level.
package swaplog

import (
	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/build"
)

var writer = build.NewRotatingLogWriter()

// genSubLogger mirrors root.go's closure: a sub-logger with no shutdown
// hook, since the swap engine has no per-subsystem teardown of its own.
func genSubLogger() func(string) btclog.Logger {
	return func(s string) btclog.Logger {
		return writer.GenSubLogger(s, func() {})
	}
}

// New registers and returns a sub-logger for one subsystem tag (4 chars by
// chantools convention, but not enforced).
func New(subsystem string) btclog.Logger {
	logger := build.NewSubLogger(subsystem, genSubLogger())
	writer.RegisterSubLogger(subsystem, logger)
	return logger
}

// Init rotates the log file and applies the given debug level spec (e.g.
// "info", "debug", "USER=debug,LPRL=info").
func Init(logFilePath, debugLevel string) error {
	if err := writer.InitLogRotator(logFilePath, 10, 3); err != nil {
		return err
	}
	return build.ParseAndSetDebugLevels(debugLevel, writer)
}
