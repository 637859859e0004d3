package constants

const (
	// ShortDescription is a short description of the application used in the CLI.
	ShortDescription = "Upgrade Azure Data Factory resources to Microsoft Fabric"

	// LongDescription is a long description of the application used in the CLI.
	LongDescription = `adfupgrade: Azure Data Factory to Microsoft Fabric

Upgrade the pipelines, datasets, linked services and triggers of a data factory
into Fabric data pipelines, connections and schedules, then create them in a
Fabric workspace.

Every command reads a progress document (stdin by default) and writes the
resulting progress document to stdout, so the commands can be chained:

  # Upgrade an imported factory and export it
  adfupgrade upgrade --input imported.json --output json \
    | adfupgrade export --workspace-id <id> --resolutions resolutions.hcl

  # Supply a connection the export asked for, then retry
  adfupgrade resolve LinkedServiceToConnectionId sql <connection-id> --input upgraded.json

  # Show the order resources will be exported in
  adfupgrade plan --input imported.json

  # Look at earlier runs
  adfupgrade history list
  adfupgrade history show <run-id>`
)
