package main

import (
	"context"

	"github.com/spf13/viper"
	"github.com/turbot/go-kit/helpers"
	"github.com/turbot/pipe-fittings/error_helpers"

	"github.com/turbot/adfupgrade/internal/cache"
	"github.com/turbot/adfupgrade/internal/cmd"
	localcmdconfig "github.com/turbot/adfupgrade/internal/cmdconfig"
	"github.com/turbot/adfupgrade/internal/log"
)

var (
	// These variables will be set by GoReleaser.
	version = "0.0.1-local.1"
	commit  = "none"
	date    = "unknown"
	builtBy = "local"
)

func main() {
	// Create a single, global context for the application
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			error_helpers.ShowError(ctx, helpers.ToError(r))
		}
	}()

	localcmdconfig.SetAppSpecificConstants()
	log.SetDefaultLogger()
	cache.InMemoryInitialize(nil)

	viper.SetDefault("main.version", version)
	viper.SetDefault("main.commit", commit)
	viper.SetDefault("main.date", date)
	viper.SetDefault("main.builtBy", builtBy)

	// Run the CLI
	cmd.RunCLI(ctx)
}
