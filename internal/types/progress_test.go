package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyProgress(t *testing.T) {
	for _, in := range []string{"", "  \n"} {
		p := ParseProgress([]byte(in))
		assert.Equal(t, ProgressSucceeded, p.State)
		assert.Empty(t, p.Alerts)
		assert.Nil(t, p.Result)
	}
}

func TestParseInvalidProgress(t *testing.T) {
	inputs := []string{
		`{`,
		`[1, 2]`,
		`{"state": "Finished", "alerts": [], "resolutions": []}`,
		`{"state": "Succeeded", "alerts": [{"severity": "Fatal", "details": "x"}], "resolutions": []}`,
		`{"state": "Succeeded", "alerts": [{"severity": "Warning", "details": ""}], "resolutions": []}`,
		`{"state": "Succeeded", "alerts": [], "resolutions": [{"type": "Bogus", "key": "k", "value": "v"}]}`,
		`{"state": "Succeeded", "alerts": [], "resolutions": [{"type": "LinkedServiceToConnectionId", "key": "", "value": "v"}]}`,
		`{"state": "Succeeded", "alerts": [], "result": {"importedResources": {"type": "Zip"}}, "resolutions": []}`,
		`{"state": "Succeeded", "alerts": [], "resolutions": []} this is not json`,
		`{"state": "Succeeded", "alerts": [], "resolutions": []} {"state": "Failed"}`,
	}
	for _, in := range inputs {
		p := ParseProgress([]byte(in))
		assert.Equal(t, ProgressFailed, p.State, in)
		require.Len(t, p.Alerts, 1, in)
		assert.Equal(t, Alert{Severity: SeverityPermanent, Details: InvalidInputDetails}, p.Alerts[0], in)
		assert.Nil(t, p.Result, in)
	}
}

func TestProgressRoundTrip(t *testing.T) {
	p := NewProgress()
	p.Alerts = []Alert{
		{Severity: SeverityWarning, Details: "folder dropped"},
		{Severity: SeverityMissingResolution, Details: "WorkspaceId '' is missing"},
	}
	p.Resolutions = []Resolution{
		{Type: ResolutionWorkspaceID, Value: "ws"},
		{Type: ResolutionFabricResourceID, Key: "DataPipeline:child", Value: "1234"},
	}
	p.Result = &ProgressResult{ExportableFabricResources: []ExportableResource{{
		ResourceType: FabricDataPipeline,
		ResourceName: "child",
		Resolve: []ResolveStep{{
			Type:       ResolutionFabricResourceID,
			Key:        "Connection:sql",
			TargetPath: "properties.activities[0].externalReferences.connection",
		}},
		Export: map[string]any{"properties": map[string]any{"activities": []any{}}},
	}}}

	data, err := p.Marshal()
	require.NoError(t, err)

	back := ParseProgress(data)
	if diff := cmp.Diff(p, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAllowsTrailingWhitespace(t *testing.T) {
	p := ParseProgress([]byte("{\"state\": \"Succeeded\", \"alerts\": [], \"resolutions\": []}\n\n"))
	assert.Equal(t, ProgressSucceeded, p.State)
	assert.Empty(t, p.Alerts)
}

func TestProgressRoundTripKeepsEmptyResults(t *testing.T) {
	inputs := []string{
		`{"state": "Succeeded", "alerts": [], "result": {"exportableFabricResources": []}, "resolutions": []}`,
		`{"state": "Succeeded", "alerts": [], "result": {"exportedFabricResources": {}}, "resolutions": []}`,
		`{"state": "Succeeded", "alerts": [], "result": {}, "resolutions": []}`,
	}
	for _, in := range inputs {
		p := ParseProgress([]byte(in))
		require.Equal(t, ProgressSucceeded, p.State, in)

		data, err := p.Marshal()
		require.NoError(t, err)
		assert.JSONEq(t, in, string(data))
	}
}

func TestProgressSerializesSeverityNames(t *testing.T) {
	p := FailedProgress([]Alert{{Severity: SeverityUnsupportedResource, Details: "dataflow 'f' cannot be upgraded"}}, nil)
	data, err := p.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"state": "Failed",
		"alerts": [{"severity": "UnsupportedResource", "details": "dataflow 'f' cannot be upgraded"}],
		"resolutions": []
	}`, string(data))
}

func TestParseNormalizesMissingLists(t *testing.T) {
	p := ParseProgress([]byte(`{"state": "Succeeded"}`))
	assert.Equal(t, ProgressSucceeded, p.State)
	assert.NotNil(t, p.Alerts)
	assert.NotNil(t, p.Resolutions)
}

func TestAlerts(t *testing.T) {
	assert := assert.New(t)

	a := NewAlerts(Alert{Severity: SeverityWarning, Details: "kept"})
	assert.False(a.Failed())

	a.Warning("%d warnings", 2)
	assert.False(a.Failed())

	a.MissingResolution("missing %s", "x")
	assert.True(a.Failed())
	assert.Equal(3, a.Len())

	items := a.Items()
	items[0].Details = "changed"
	assert.Equal("kept", a.Items()[0].Details)
	assert.Equal("MissingResolution: missing x", a.Items()[2].String())
}

func TestSeverityNames(t *testing.T) {
	for _, s := range []Severity{SeverityWarning, SeverityPermanent, SeverityMissingResolution, SeverityUnsupportedResource} {
		parsed, ok := ParseSeverity(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}
	_, ok := ParseSeverity("Fatal")
	assert.False(t, ok)
}

func TestSourceResourcesOrder(t *testing.T) {
	r := &ImportedResources{
		Type:           ImportedResourcesType,
		Pipelines:      map[string]map[string]any{"b": {}, "a": {}},
		Triggers:       map[string]map[string]any{"t": {}},
		LinkedServices: map[string]map[string]any{"ls": {}},
		Dataflows:      map[string]map[string]any{"f": {}},
		Datasets:       map[string]map[string]any{"d": {}},
	}

	var got []string
	for _, s := range r.SourceResources() {
		got = append(got, s.Kind+"/"+s.Name)
	}
	assert.Equal(t, []string{"linkedService/ls", "dataset/d", "pipeline/a", "pipeline/b", "trigger/t", "dataflow/f"}, got)
}
