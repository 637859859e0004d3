package cmdconfig

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/constants"
	"github.com/turbot/pipe-fittings/error_helpers"

	localconstants "github.com/turbot/adfupgrade/internal/constants"
	"github.com/turbot/adfupgrade/internal/log"
	"github.com/turbot/adfupgrade/internal/util"
)

func initGlobalConfig(cmd *cobra.Command) {
	for k, v := range configDefaults() {
		viper.SetDefault(k, v)
	}

	// ENV takes precedence over the defaults, flags take precedence over both
	cmdconfig.SetDefaultsFromEnv(envMappings())

	// reset log level in case the environment changed it
	log.SetDefaultLogger()

	installDir := viper.GetString(constants.ArgInstallDir)
	internalDir := filepath.Join(installDir, "internal")
	error_helpers.FailOnError(util.EnsureDir(internalDir))

	// the history lives in the install dir unless configured elsewhere
	if viper.GetString(localconstants.ArgHistoryDb) == "" {
		viper.SetDefault(localconstants.ArgHistoryDb, filepath.Join(internalDir, localconstants.DefaultHistoryDBName))
	}

	slog.Debug("configuration loaded", "install_dir", installDir, "command", cmd.Name())
}
