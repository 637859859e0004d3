package upgrade

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turbot/adfupgrade/internal/types"
)

const factoryJSON = `{
  "type": "AdfSupportFile",
  "adfName": "factory",
  "linkedServices": {
    "sql": {"name": "sql", "properties": {"type": "AzureSqlDatabase", "typeProperties": {
      "connectionString": "Server=tcp:x.database.windows.net,1433;Initial Catalog=sales;"}}},
    "blob": {"name": "blob", "properties": {"type": "AzureBlobStorage", "typeProperties": {
      "serviceEndpoint": "https://x.blob.core.windows.net"}}}
  },
  "datasets": {
    "orders": {"name": "orders", "properties": {
      "type": "AzureSqlTable",
      "linkedServiceName": {"referenceName": "sql", "type": "LinkedServiceReference"},
      "parameters": {"table": {"type": "string", "defaultValue": "orders"}},
      "typeProperties": {"schema": "dbo", "table": {"value": "@dataset().table", "type": "Expression"}}}},
    "csv": {"name": "csv", "properties": {
      "type": "DelimitedText",
      "linkedServiceName": {"referenceName": "blob", "type": "LinkedServiceReference"},
      "parameters": {"fileName": {"type": "string"}},
      "typeProperties": {
        "location": {"type": "AzureBlobStorageLocation", "container": "raw",
          "fileName": {"value": "@dataset().fileName", "type": "Expression"}},
        "columnDelimiter": ","}}}
  },
  "pipelines": {
    "child": {"name": "child", "properties": {"activities": [
      {"name": "copy orders", "type": "Copy",
        "inputs": [{"referenceName": "orders", "type": "DatasetReference", "parameters": {"table": "orders_2024"}}],
        "outputs": [{"referenceName": "csv", "type": "DatasetReference", "parameters": {"fileName": "orders.csv"}}],
        "typeProperties": {"source": {"type": "AzureSqlSource"}, "sink": {"type": "DelimitedTextSink"}}}
    ]}},
    "parent": {"name": "parent", "properties": {"description": "runs child", "activities": [
      {"name": "wait", "type": "Wait", "typeProperties": {"waitTimeInSeconds": 5}},
      {"name": "run child", "type": "ExecutePipeline",
        "dependsOn": [{"activity": "wait", "dependencyConditions": ["Succeeded"]}],
        "typeProperties": {"pipeline": {"referenceName": "child", "type": "PipelineReference"}, "waitOnCompletion": true}}
    ]}}
  },
  "triggers": {
    "nightly": {"name": "nightly", "properties": {
      "type": "ScheduleTrigger",
      "runtimeState": "Started",
      "pipelines": [{"pipelineReference": {"referenceName": "parent", "type": "PipelineReference"}}],
      "typeProperties": {"recurrence": {"frequency": "Day", "interval": 1, "startTime": "2024-01-01T00:00:00Z",
        "timeZone": "UTC", "schedule": {"hours": [2], "minutes": [30]}}}}}
  }
}`

func testFactory(t *testing.T) *types.ImportedResources {
	t.Helper()
	imported := &types.ImportedResources{}
	require.NoError(t, json.Unmarshal([]byte(factoryJSON), imported))
	return imported
}

func importedProgress(imported *types.ImportedResources) *types.Progress {
	p := types.NewProgress()
	p.Result = &types.ProgressResult{ImportedResources: imported}
	return p
}

// doc decodes a JSON literal the way resources arrive from the importer.
func doc(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

func fatalAlerts(p *types.Progress) []types.Alert {
	var out []types.Alert
	for _, a := range p.Alerts {
		if a.IsFatal() {
			out = append(out, a)
		}
	}
	return out
}
