package cmdconfig

import (
	"path/filepath"
	"strings"

	"github.com/turbot/go-kit/files"
	"github.com/turbot/pipe-fittings/app_specific"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/error_helpers"

	"github.com/turbot/adfupgrade/internal/constants"
)

// SetAppSpecificConstants sets app specific constants defined in pipe-fittings
func SetAppSpecificConstants() {
	// set the default install dir
	installDir, err := files.Tildefy("~/.adfupgrade")
	error_helpers.FailOnError(err)

	app_specific.DefaultInstallDir = installDir
	app_specific.DefaultConfigPath = strings.Join([]string{".", filepath.Join(installDir, "config")}, ":")
	app_specific.AppName = constants.Name
	app_specific.SetAppSpecificEnvVarKeys("ADFUPGRADE_")
	app_specific.WorkspaceDataDir = ".adfupgrade"

	// set the command pre and post hooks
	cmdconfig.CustomPreRunHook = preRunHook
}
