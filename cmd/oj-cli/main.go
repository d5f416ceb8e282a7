package main

import (
	"log/slog"

	"ojassist/cmd/oj-cli/commands"
	"ojassist/lib/osutil"
	"ojassist/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "oj-cli")
	if err == nil {
		defer func() {
			if err := tel.Shutdown(ctx); err != nil {
				slog.Warn("failed to shut down telemetry", "err", err.Error())
			}
		}()
	}

	commands.Execute(ctx)
}
