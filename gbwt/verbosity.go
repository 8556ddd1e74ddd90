package gbwt

import (
	"sync/atomic"

	"github.com/datatrails/go-datatrails-common/logger"
)

// Verbosity levels for the diagnostics emitted during construction and
// merging. Queries never log. Warnings about conditions that degrade
// quality but not correctness are always emitted at VerbosityBasic and
// above; informational merge decisions require VerbosityExtended.
const (
	VerbositySilent uint32 = iota
	VerbosityBasic
	VerbosityExtended
	VerbosityFull
)

var verbosity atomic.Uint32

func init() {
	verbosity.Store(VerbosityBasic)
}

// SetVerbosity sets the process-wide diagnostics level.
func SetVerbosity(level uint32) {
	if level > VerbosityFull {
		level = VerbosityFull
	}
	verbosity.Store(level)
}

// Verbosity returns the process-wide diagnostics level.
func Verbosity() uint32 {
	return verbosity.Load()
}

// warnf reports a quality problem through the shared logger. The caller
// keeps going; these conditions never make a structure incorrect.
func warnf(format string, args ...any) {
	if Verbosity() < VerbosityBasic || logger.Sugar == nil {
		return
	}
	logger.Sugar.Warnf(format, args...)
}

// infof reports a decision taken during construction or merging.
func infof(format string, args ...any) {
	if Verbosity() < VerbosityExtended || logger.Sugar == nil {
		return
	}
	logger.Sugar.Infof(format, args...)
}
