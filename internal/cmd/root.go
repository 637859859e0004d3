package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thediveo/enumflag/v2"
	"github.com/turbot/pipe-fittings/app_specific"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/constants"

	localconstants "github.com/turbot/adfupgrade/internal/constants"
	"github.com/turbot/adfupgrade/internal/types"
)

// Now use the OutputMode enum flag. If you want a non-zero default, then
// simply set it here, such as in "outputMode = types.OutputModeJson".
var outputMode types.OutputMode

// Build the cobra command that handles our command line tool.
func RootCommand(_ context.Context) (*cobra.Command, error) {

	// Define our command
	rootCmd := &cobra.Command{
		Use:     localconstants.Name,
		Short:   localconstants.ShortDescription,
		Long:    localconstants.LongDescription,
		Version: viper.GetString("main.version"),
	}
	rootCmd.SetVersionTemplate("adfupgrade v{{.Version}}\n")

	cmdconfig.
		OnCmd(rootCmd).
		AddPersistentFilepathFlag(constants.ArgInstallDir, app_specific.DefaultInstallDir, "Path to the Config Directory").
		AddPersistentStringFlag(localconstants.ArgHistoryDb, "", "Path to the run history database (default is <install-dir>/internal/history.db)").
		AddPersistentBoolFlag(localconstants.ArgNoHistory, false, "Do not record the run in the history database")

	// Define the CLI flag parameters for your wrapped enum flag.
	rootCmd.PersistentFlags().Var(
		enumflag.New(&outputMode, constants.ArgOutput, types.OutputModeIds, enumflag.EnumCaseInsensitive),
		constants.ArgOutput,
		"Output format; one of: pretty, yaml, json")

	// disable auto completion generation, since we don't want to support
	// powershell yet - and there's no way to disable powershell in the default generator
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// add all the subcommands
	addCommands(rootCmd)

	return rootCmd, nil
}

func addCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(upgradeCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(historyCmd())
}
