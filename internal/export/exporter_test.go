package export

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turbot/adfupgrade/internal/copier"
	"github.com/turbot/adfupgrade/internal/fabric"
	"github.com/turbot/adfupgrade/internal/types"
)

type call struct {
	resourceType string
	name         string
	payload      map[string]any
}

// recordingClient hands out ids of the form "<type>-<name>" and remembers every call.
type recordingClient struct {
	calls []call
	fail  map[string]error
}

func (c *recordingClient) CreateOrUpdate(_ context.Context, resourceType, name, _ string, payload map[string]any) (map[string]any, error) {
	c.calls = append(c.calls, call{resourceType: resourceType, name: name, payload: copier.DeepCopy(payload).(map[string]any)})
	if err := c.fail[name]; err != nil {
		return nil, err
	}
	return map[string]any{"id": resourceType + "-" + name, "displayName": name}, nil
}

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) PublishResourceExported(_ context.Context, resourceType, resourceName, id string) error {
	p.events = append(p.events, fmt.Sprintf("%s:%s=%s", resourceType, resourceName, id))
	return p.err
}

var workspace = types.Resolution{Type: types.ResolutionWorkspaceID, Value: "ws-1"}

func pipeline(name string, resolve ...types.ResolveStep) types.ExportableResource {
	return types.ExportableResource{
		ResourceType: types.FabricDataPipeline,
		ResourceName: name,
		Resolve:      resolve,
		Export: map[string]any{
			"properties": map[string]any{
				"activities": []any{
					map[string]any{
						"name": "run",
						"type": "InvokePipeline",
						"typeProperties": map[string]any{
							"pipelineId":  nil,
							"workspaceId": nil,
						},
					},
				},
			},
		},
	}
}

func invokes(target string) []types.ResolveStep {
	return []types.ResolveStep{
		{
			Type:       types.ResolutionFabricResourceID,
			Key:        types.FabricResourceKey(types.FabricDataPipeline, target),
			Hint:       "pipeline " + target,
			TargetPath: "properties.activities[0].typeProperties.pipelineId",
		},
		{
			Type:       types.ResolutionWorkspaceID,
			Hint:       "workspace",
			TargetPath: "properties.activities[0].typeProperties.workspaceId",
		},
	}
}

func exportable(resources ...types.ExportableResource) *types.Progress {
	p := types.NewProgress()
	p.Result = &types.ProgressResult{ExportableFabricResources: resources}
	return p
}

type ExporterTestSuite struct {
	suite.Suite
	client    *recordingClient
	publisher *recordingPublisher
	exporter  *Exporter
}

func (suite *ExporterTestSuite) SetupTest() {
	suite.client = &recordingClient{fail: map[string]error{}}
	suite.publisher = &recordingPublisher{}
	suite.exporter = NewExporter(suite.client, WithPublisher(suite.publisher))
}

func (suite *ExporterTestSuite) TestForwardReference() {
	assert := assert.New(suite.T())

	in := exportable(pipeline("child"), pipeline("parent", invokes("child")...))
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(context.Background(), in, nil)
	require.Equal(suite.T(), types.ProgressSucceeded, out.State, "%v", out.Alerts)

	require.Len(suite.T(), suite.client.calls, 2)
	assert.Equal("child", suite.client.calls[0].name)
	assert.Equal("parent", suite.client.calls[1].name)

	assert.Equal("DataPipeline-child", copier.GetString(suite.client.calls[1].payload, "properties.activities[0].typeProperties.pipelineId"))
	assert.Equal("ws-1", copier.GetString(suite.client.calls[1].payload, "properties.activities[0].typeProperties.workspaceId"))

	// the input document is never written to
	original, found := copier.Get(in.Result.ExportableFabricResources[1].Export, "properties.activities[0].typeProperties.pipelineId")
	assert.True(found)
	assert.Nil(original)

	expected := []types.Resolution{
		workspace,
		{Type: types.ResolutionFabricResourceID, Key: "DataPipeline:child", Value: "DataPipeline-child"},
		{Type: types.ResolutionFabricResourceID, Key: "DataPipeline:parent", Value: "DataPipeline-parent"},
	}
	if diff := cmp.Diff(expected, out.Resolutions); diff != "" {
		suite.T().Errorf("resolutions mismatch (-want +got):\n%s", diff)
	}

	assert.Equal("DataPipeline-parent", out.Result.ExportedFabricResources["parent"]["id"])
	assert.Equal([]string{"DataPipeline:child=DataPipeline-child", "DataPipeline:parent=DataPipeline-parent"}, suite.publisher.events)
}

func (suite *ExporterTestSuite) TestBackwardReferenceIsMissing() {
	assert := assert.New(suite.T())

	// parent comes first, so the id of child cannot be known when parent is exported
	in := exportable(pipeline("parent", invokes("child")...), pipeline("child"))
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(context.Background(), in, nil)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal([]types.Alert{{Severity: types.SeverityMissingResolution, Details: "AdfResourceNameToFabricResourceId 'DataPipeline:child' is missing: pipeline child"}}, out.Alerts)
	assert.Empty(suite.client.calls)
	assert.Nil(out.Result)
}

func (suite *ExporterTestSuite) TestMissingWorkspaceReportedOnce() {
	assert := assert.New(suite.T())

	out := suite.exporter.Export(context.Background(), exportable(pipeline("a"), pipeline("b")), nil)
	assert.Equal(types.ProgressFailed, out.State)
	require.Len(suite.T(), out.Alerts, 1)
	assert.Equal(types.SeverityMissingResolution, out.Alerts[0].Severity)
	assert.Contains(out.Alerts[0].Details, "WorkspaceId '' is missing")
	assert.Empty(suite.client.calls)
}

func (suite *ExporterTestSuite) TestOverridesShadowInput() {
	assert := assert.New(suite.T())

	in := exportable(pipeline("parent", invokes("child")...))
	in.Resolutions = []types.Resolution{
		workspace,
		{Type: types.ResolutionFabricResourceID, Key: "DataPipeline:child", Value: "stale"},
	}
	overrides := []types.Resolution{{Type: types.ResolutionFabricResourceID, Key: "DataPipeline:child", Value: "fresh"}}

	out := suite.exporter.Export(context.Background(), in, overrides)
	require.Equal(suite.T(), types.ProgressSucceeded, out.State, "%v", out.Alerts)
	assert.Equal("fresh", copier.GetString(suite.client.calls[0].payload, "properties.activities[0].typeProperties.pipelineId"))
	assert.Equal(overrides[0], out.Resolutions[0])
}

func (suite *ExporterTestSuite) TestUnsupportedType() {
	assert := assert.New(suite.T())

	in := exportable(types.ExportableResource{ResourceType: "Notebook", ResourceName: "nb", Export: map[string]any{}})
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(context.Background(), in, nil)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal([]types.Alert{{Severity: types.SeverityUnsupportedResource, Details: "Notebook 'nb' cannot be exported"}}, out.Alerts)
}

func (suite *ExporterTestSuite) TestMaterializeFailureStopsRun() {
	assert := assert.New(suite.T())

	suite.client.fail["b"] = errors.New("boom")
	in := exportable(pipeline("a"), pipeline("b"), pipeline("c"))
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(context.Background(), in, nil)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal([]types.Alert{{Severity: types.SeverityPermanent, Details: "failed to export DataPipeline 'b': boom"}}, out.Alerts)
	assert.Len(suite.client.calls, 2)
	// the id of a is kept so a rerun can pick it up
	assert.Contains(out.Resolutions, types.Resolution{Type: types.ResolutionFabricResourceID, Key: "DataPipeline:a", Value: "DataPipeline-a"})
}

func (suite *ExporterTestSuite) TestCancelled() {
	assert := assert.New(suite.T())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := exportable(pipeline("a"))
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(ctx, in, nil)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal([]types.Alert{{Severity: types.SeverityPermanent, Details: "export cancelled before DataPipeline 'a'"}}, out.Alerts)
	assert.Empty(suite.client.calls)
}

func (suite *ExporterTestSuite) TestCancelledMidRun() {
	assert := assert.New(suite.T())

	ctx, cancel := context.WithCancel(context.Background())
	client := fabric.ClientFunc(func(_ context.Context, resourceType, name, _ string, _ map[string]any) (map[string]any, error) {
		cancel()
		return map[string]any{"id": name}, nil
	})
	in := exportable(pipeline("a"), pipeline("b"))
	in.Resolutions = []types.Resolution{workspace}

	out := NewExporter(client).Export(ctx, in, nil)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal("export cancelled before DataPipeline 'b'", out.Alerts[0].Details)
}

func (suite *ExporterTestSuite) TestCancellationFinishesResourceInFlight() {
	assert := assert.New(suite.T())

	ctx, cancel := context.WithCancel(context.Background())
	var doneDuringCall []bool
	client := fabric.ClientFunc(func(c context.Context, _, name, _ string, _ map[string]any) (map[string]any, error) {
		cancel()
		doneDuringCall = append(doneDuringCall, c.Err() != nil)
		return map[string]any{"id": "id-" + name}, nil
	})
	in := exportable(pipeline("a"), pipeline("b"))
	in.Resolutions = []types.Resolution{workspace}

	out := NewExporter(client).Export(ctx, in, nil)
	assert.Equal([]bool{false}, doneDuringCall)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal([]types.Alert{{Severity: types.SeverityPermanent, Details: "export cancelled before DataPipeline 'b'"}}, out.Alerts)
	assert.Contains(out.Resolutions, types.Resolution{
		Type:  types.ResolutionFabricResourceID,
		Key:   types.FabricResourceKey(types.FabricDataPipeline, "a"),
		Value: "id-a",
	})
}

func (suite *ExporterTestSuite) TestDeadlineDoesNotReachClient() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	var hasDeadline bool
	client := fabric.ClientFunc(func(c context.Context, _, name, _ string, _ map[string]any) (map[string]any, error) {
		_, hasDeadline = c.Deadline()
		return map[string]any{"id": name}, nil
	})
	in := exportable(pipeline("a"))
	in.Resolutions = []types.Resolution{workspace}

	out := NewExporter(client).Export(ctx, in, nil)
	require.Equal(suite.T(), types.ProgressSucceeded, out.State, "%v", out.Alerts)
	assert.False(suite.T(), hasDeadline)
}

func (suite *ExporterTestSuite) TestNameCollision() {
	assert := assert.New(suite.T())

	conn := types.ExportableResource{
		ResourceType: types.FabricConnection,
		ResourceName: "shared",
		Resolve: []types.ResolveStep{{
			Type:       types.ResolutionLinkedServiceToConn,
			Key:        "shared",
			TargetPath: "id",
		}},
		Export: map[string]any{"id": nil},
	}
	in := exportable(conn, pipeline("shared"))
	in.Resolutions = []types.Resolution{workspace, {Type: types.ResolutionLinkedServiceToConn, Key: "shared", Value: "conn-1"}}

	out := suite.exporter.Export(context.Background(), in, nil)
	require.Equal(suite.T(), types.ProgressSucceeded, out.State, "%v", out.Alerts)
	assert.Equal(map[string]any{"type": "Connection", "id": "conn-1", "displayName": "shared"}, out.Result.ExportedFabricResources["shared"])
	assert.Equal("DataPipeline-shared", out.Result.ExportedFabricResources["DataPipeline:shared"]["id"])
	require.Len(suite.T(), out.Alerts, 1)
	assert.Equal(types.SeverityWarning, out.Alerts[0].Severity)
	// the connection stand-in never reaches the client
	assert.Len(suite.client.calls, 1)
}

func (suite *ExporterTestSuite) TestDuplicateResource() {
	assert := assert.New(suite.T())

	in := exportable(pipeline("a"), pipeline("a"))
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(context.Background(), in, nil)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal("duplicate DataPipeline 'a'", out.Alerts[0].Details)
}

func (suite *ExporterTestSuite) TestPublishFailureIsWarning() {
	assert := assert.New(suite.T())

	suite.publisher.err = errors.New("closed")
	in := exportable(pipeline("a"))
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(context.Background(), in, nil)
	assert.Equal(types.ProgressSucceeded, out.State)
	assert.Equal([]types.Alert{{Severity: types.SeverityWarning, Details: "could not publish export of DataPipeline 'a': closed"}}, out.Alerts)
}

func (suite *ExporterTestSuite) TestInputNotExportable() {
	assert := assert.New(suite.T())

	failed := types.FailedProgress([]types.Alert{{Severity: types.SeverityPermanent, Details: "earlier"}}, nil)
	assert.Same(failed, suite.exporter.Export(context.Background(), failed, nil))

	imported := types.NewProgress()
	imported.Result = &types.ProgressResult{ImportedResources: &types.ImportedResources{Type: types.ImportedResourcesType}}
	out := suite.exporter.Export(context.Background(), imported, nil)
	assert.Equal(types.ProgressFailed, out.State)
	assert.Equal("progress does not contain exportable Fabric resources", out.Alerts[0].Details)

	out = suite.exporter.Export(context.Background(), exportable(), nil)
	assert.Equal(types.ProgressSucceeded, out.State)
	assert.Empty(out.Result.ExportedFabricResources)
}

func (suite *ExporterTestSuite) TestScheduleAfterPipeline() {
	assert := assert.New(suite.T())

	schedule := types.ExportableResource{
		ResourceType: types.FabricPipelineSchedule,
		ResourceName: "nightly",
		Resolve: []types.ResolveStep{{
			Type:       types.ResolutionFabricResourceID,
			Key:        "DataPipeline:a",
			TargetPath: "itemId",
		}},
		Export: map[string]any{
			"itemId":        nil,
			"jobType":       "Pipeline",
			"enabled":       true,
			"configuration": map[string]any{"type": "Cron", "interval": 15},
		},
	}
	in := exportable(pipeline("a"), schedule)
	in.Resolutions = []types.Resolution{workspace}

	out := suite.exporter.Export(context.Background(), in, nil)
	require.Equal(suite.T(), types.ProgressSucceeded, out.State, "%v", out.Alerts)
	require.Len(suite.T(), suite.client.calls, 2)
	assert.Equal(types.FabricPipelineSchedule, suite.client.calls[1].resourceType)
	assert.Equal("DataPipeline-a", suite.client.calls[1].payload["itemId"])
}

func TestExporterTestSuite(t *testing.T) {
	suite.Run(t, new(ExporterTestSuite))
}
