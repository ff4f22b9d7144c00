package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/kcommon"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
)

// injected with -ldflags
var Version string = "dev"
var GitCommit string = "unknown"

/*
export LOG_LEVEL=info
export LOG_FORMAT=simple
export RTSPLAN_BUDGET_MS=90
./bin/rtsplan --problem problem.yaml
*/
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logLevel := kcommon.GetEnvString("LOG_LEVEL", "warning")
	logFormat := kcommon.GetEnvString("LOG_FORMAT", "simple")
	// stdout carries the plan
	logrusLogger := klogging.NewLogrusLogger().WithOutput(os.Stderr)
	logrusLogger.SetConfig(ctx, logLevel, logFormat)
	klogging.SetDefaultLogger(logrusLogger)
	klogging.Debug(ctx).With("logLevel", logLevel).With("logFormat", logFormat).With("version", Version).With("commit", GitCommit).Log("LogLevelSet", "")

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		klogging.Error(ctx).WithError(err).Log("RtsplanFailed", "")
		os.Exit(1)
	}
}
