// Package logging configures the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop().Sugar()

// Init builds the global logger. Verbose enables debug-level development
// output; otherwise only warnings and errors reach the console, keeping
// stdout clean for report rendering.
func Init(verbose bool) error {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l.Sugar()
	return nil
}

// L returns the global sugared logger. Defaults to a nop logger until Init
// is called, so library code can log unconditionally.
func L() *zap.SugaredLogger {
	return logger
}

// Sync flushes buffered log entries. Safe to call on the nop logger.
func Sync() {
	_ = logger.Sync()
}
