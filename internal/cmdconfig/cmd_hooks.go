package cmdconfig

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/constants"
)

// preRunHook is a function that is executed before the PreRun of every command handler
func preRunHook(cmd *cobra.Command, args []string) error {
	viper.Set(constants.ConfigKeyActiveCommand, cmd)
	viper.Set(constants.ConfigKeyActiveCommandArgs, args)

	// bind the flags of the running command, including the persistent ones it inherits
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// set up the global viper config with default values from
	// config files and ENV variables
	initGlobalConfig(cmd)

	slog.Debug("running command", "command", CommandFullKey(cmd), "args", len(args))
	return nil
}
