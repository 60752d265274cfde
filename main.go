package main

import (
	"os"

	"github.com/bahria/bahria-go/cmd"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/logging"
)

// Version and build date are set at build time with -ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.HumanReadable().Error("Error loading configuration", "error", err)
		return 1
	}
	settings.Version = version
	settings.BuildDate = buildDate

	if err := logging.Configure(settings.Main.Log, settings.Debug); err != nil {
		logging.HumanReadable().Error("Error configuring log file", "error", err)
		return 1
	}
	defer func() {
		_ = logging.Close()
	}()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
