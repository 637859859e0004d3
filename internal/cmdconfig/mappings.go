package cmdconfig

import (
	"github.com/turbot/pipe-fittings/app_specific"
	"github.com/turbot/pipe-fittings/cmdconfig"
	pconstants "github.com/turbot/pipe-fittings/constants"

	"github.com/turbot/adfupgrade/internal/constants"
)

// global config defaults
func configDefaults() map[string]any {
	return map[string]any{
		constants.ArgFabricEndpoint: constants.DefaultFabricEndpoint,
		constants.ArgTimeout:        constants.DefaultExportTimeout,
		pconstants.ArgInstallDir:    app_specific.DefaultInstallDir,
	}
}

// a map of known environment variables to map to viper keys
func envMappings() map[string]cmdconfig.EnvMapping {
	return map[string]cmdconfig.EnvMapping{
		"ADFUPGRADE_FABRIC_TOKEN":    {ConfigVar: []string{constants.ArgFabricToken}, VarType: cmdconfig.EnvVarTypeString},
		"ADFUPGRADE_FABRIC_ENDPOINT": {ConfigVar: []string{constants.ArgFabricEndpoint}, VarType: cmdconfig.EnvVarTypeString},
		"ADFUPGRADE_WORKSPACE_ID":    {ConfigVar: []string{constants.ArgWorkspaceId}, VarType: cmdconfig.EnvVarTypeString},
		"ADFUPGRADE_RESOLUTIONS":     {ConfigVar: []string{constants.ArgResolutions}, VarType: cmdconfig.EnvVarTypeString},
		"ADFUPGRADE_HISTORY_DB":      {ConfigVar: []string{constants.ArgHistoryDb}, VarType: cmdconfig.EnvVarTypeString},
		"ADFUPGRADE_INSTALL_DIR":     {ConfigVar: []string{pconstants.ArgInstallDir}, VarType: cmdconfig.EnvVarTypeString},
	}
}
