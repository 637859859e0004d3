package upgrade

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/turbot/adfupgrade/internal/copier"
	"github.com/turbot/adfupgrade/internal/types"
)

// activity fields shared by every activity type
var commonActivityFields = []string{"name", "type", "description", "state", "onInactiveMarkAs", "dependsOn", "userProperties", "policy"}

var passThroughActivities = map[string]bool{
	"Wait":           true,
	"SetVariable":    true,
	"AppendVariable": true,
	"Filter":         true,
	"Fail":           true,
}

var containerActivities = map[string]bool{
	"ForEach":     true,
	"IfCondition": true,
	"Until":       true,
	"Switch":      true,
}

// activities reading a single dataset through typeProperties.dataset
var datasetActivities = map[string]bool{
	"Lookup":      true,
	"GetMetadata": true,
	"Delete":      true,
}

var webActivityFields = []string{"method", "headers", "body", "httpRequestTimeout", "disableCertValidation"}

type childList struct {
	path string
	list []any
}

// childLists returns the nested activity lists of a container activity, with paths relative to it.
func childLists(act map[string]any) []childList {
	var out []childList
	for _, p := range []string{
		"typeProperties.activities",
		"typeProperties.ifTrueActivities",
		"typeProperties.ifFalseActivities",
		"typeProperties.defaultActivities",
	} {
		if v, found := copier.Get(act, p); found {
			out = append(out, childList{path: p, list: asList(v)})
		}
	}
	cases, _ := copier.Get(act, "typeProperties.cases")
	for i, cs := range asList(cases) {
		if v, found := copier.Get(cs, "activities"); found {
			out = append(out, childList{path: fmt.Sprintf("typeProperties.cases[%d].activities", i), list: asList(v)})
		}
	}
	return out
}

func walkActivities(list []any, fn func(act map[string]any)) {
	for _, item := range list {
		act := asMap(item)
		if act == nil {
			continue
		}
		fn(act)
		for _, child := range childLists(act) {
			walkActivities(child.list, fn)
		}
	}
}

type activityReference struct {
	kind string
	name string
}

// activityReferences lists the entities a single activity (not its children) refers to.
func activityReferences(act map[string]any) []activityReference {
	var refs []activityReference
	switch copier.GetString(act, "type") {
	case "Copy":
		for _, p := range []string{"inputs", "outputs"} {
			v, _ := copier.Get(act, p)
			for _, ref := range asList(v) {
				refs = append(refs, activityReference{types.KindDataset, referenceName(ref)})
			}
		}
	case "ExecutePipeline":
		v, _ := copier.Get(act, "typeProperties.pipeline")
		refs = append(refs, activityReference{types.KindPipeline, referenceName(v)})
	default:
		if datasetActivities[copier.GetString(act, "type")] {
			v, _ := copier.Get(act, "typeProperties.dataset")
			refs = append(refs, activityReference{types.KindDataset, referenceName(v)})
		}
	}
	if v, found := copier.Get(act, "linkedServiceName"); found {
		refs = append(refs, activityReference{types.KindLinkedService, referenceName(v)})
	}
	return refs
}

// activityLowerer rewrites the activities of one pipeline, collecting the resolve steps their
// payloads need. Paths are relative to the pipeline export payload.
type activityLowerer struct {
	g        *Graph
	pipeline *Entity
	resolve  []types.ResolveStep
	ok       bool
}

func newActivityLowerer(g *Graph, pipeline *Entity) *activityLowerer {
	return &activityLowerer{g: g, pipeline: pipeline, ok: true}
}

func (l *activityLowerer) fail(format string, args ...any) {
	l.g.Alerts.Permanent(format, args...)
	l.ok = false
}

func (l *activityLowerer) lowerList(list []any, path string) []any {
	out := make([]any, 0, len(list))
	for i, item := range list {
		p := fmt.Sprintf("%s[%d]", path, i)
		act := asMap(item)
		if act == nil {
			l.fail("%s: %s is not an activity", l.pipeline, p)
			out = append(out, nil)
			continue
		}
		out = append(out, l.lower(act, p))
	}
	return out
}

func (l *activityLowerer) lower(act map[string]any, path string) map[string]any {
	name := copier.GetString(act, "name")
	activityType := copier.GetString(act, "type")

	c := copier.New(act, nil, nil)
	for _, f := range commonActivityFields {
		_ = c.Copy(f, f, false)
	}

	switch {
	case passThroughActivities[activityType]:
		_ = c.Copy("typeProperties", "typeProperties", false)
	case containerActivities[activityType]:
		_ = c.Copy("typeProperties", "typeProperties", false)
		for _, child := range childLists(act) {
			lowered := l.lowerList(child.list, path+"."+child.path)
			_ = copier.SetPath(c.Destination(), child.path, lowered)
		}
	case activityType == "Copy":
		l.copyActivity(act, c, path)
	case datasetActivities[activityType]:
		_ = c.Copy("typeProperties", "typeProperties", false)
		if tp := asMap(c.Destination()["typeProperties"]); tp != nil {
			delete(tp, "dataset")
		}
		ref, _ := copier.Get(act, "typeProperties.dataset")
		l.inlineDataset(name, ref, c, path, "typeProperties.datasetSettings")
	case activityType == "ExecutePipeline":
		l.invokePipeline(name, act, c, path)
	case activityType == "Web":
		l.webActivity(name, act, c, path)
	default:
		l.g.Alerts.Unsupported("activity '%s' of %s has type '%s' which cannot be upgraded", name, l.pipeline, activityType)
		l.ok = false
	}
	return c.Destination()
}

func (l *activityLowerer) copyActivity(act map[string]any, c *copier.Copier, path string) {
	name := copier.GetString(act, "name")
	_ = c.Copy("typeProperties", "typeProperties", false)

	inputs, _ := copier.Get(act, "inputs")
	outputs, _ := copier.Get(act, "outputs")
	if len(asList(inputs)) != 1 || len(asList(outputs)) != 1 {
		l.fail("copy activity '%s' of %s must have exactly one input and one output dataset", name, l.pipeline)
		return
	}
	l.inlineDataset(name, asList(inputs)[0], c, path, "typeProperties.source.datasetSettings")
	l.inlineDataset(name, asList(outputs)[0], c, path, "typeProperties.sink.datasetSettings")
}

// inlineDataset writes the settings of the referenced dataset at dest and records the resolve step
// for the connection of its linked service.
func (l *activityLowerer) inlineDataset(activity string, ref any, c *copier.Copier, path, dest string) {
	dsName := referenceName(ref)
	ds, ok := l.g.Find(types.KindDataset, dsName)
	if !ok {
		l.fail("activity '%s' of %s references dataset '%s' which does not exist", activity, l.pipeline, dsName)
		return
	}

	params, _ := copier.Get(ref, "parameters")
	settings := l.g.Symbol(ds, AttrDatasetSettings, Params(asMap(params)))
	if !settings.IsReady() {
		l.ok = false
		return
	}
	if err := copier.SetPath(c.Destination(), dest, copier.DeepCopy(settings.Value)); err != nil {
		l.fail("activity '%s' of %s: %s", activity, l.pipeline, err.Error())
		return
	}

	lsName, _ := l.g.Symbol(ds, AttrLinkedServiceName, nil).Value.(string)
	ls, ok := l.g.Find(types.KindLinkedService, lsName)
	if !ok {
		l.fail("%s references linked service '%s' which does not exist", ds, lsName)
		return
	}
	s := l.g.Symbol(ls, AttrConnectionResolveStep, nil)
	if !s.IsReady() {
		l.ok = false
		return
	}
	step := s.Value.(types.ResolveStep)
	step.TargetPath = path + "." + dest + ".externalReferences.connection"
	l.resolve = append(l.resolve, step)
}

func (l *activityLowerer) invokePipeline(activity string, act map[string]any, c *copier.Copier, path string) {
	ref, _ := copier.Get(act, "typeProperties.pipeline")
	target := referenceName(ref)
	if target == "" {
		l.fail("activity '%s' of %s does not name the pipeline it executes", activity, l.pipeline)
		return
	}

	_ = c.Set("type", "InvokePipeline")
	_ = c.Set("typeProperties.operationType", "InvokeFabricPipeline")
	_ = c.Copy("typeProperties.waitOnCompletion", "typeProperties.waitOnCompletion", false)
	_ = c.Copy("typeProperties.parameters", "typeProperties.parameters", false)
	_ = c.Set("typeProperties.pipelineId", nil)
	_ = c.Set("typeProperties.workspaceId", nil)
	_ = c.Set("externalReferences.connection", nil)

	l.resolve = append(l.resolve,
		types.ResolveStep{
			Type:       types.ResolutionFabricResourceID,
			Key:        types.FabricResourceKey(types.FabricDataPipeline, target),
			Hint:       fmt.Sprintf("the Fabric pipeline upgraded from pipeline '%s'", target),
			TargetPath: path + ".typeProperties.pipelineId",
		},
		types.ResolveStep{
			Type:       types.ResolutionWorkspaceID,
			Hint:       "the Fabric workspace the pipelines are exported into",
			TargetPath: path + ".typeProperties.workspaceId",
		},
		types.ResolveStep{
			Type:       types.ResolutionCredentialConnection,
			Key:        "user",
			Hint:       "a Fabric connection holding the credentials used to invoke pipelines",
			TargetPath: path + ".externalReferences.connection",
		},
	)
}

func (l *activityLowerer) webActivity(activity string, act map[string]any, c *copier.Copier, path string) {
	raw, _ := copier.Get(act, "typeProperties.url")
	s, isString := raw.(string)
	if !isString || strings.HasPrefix(s, "@") {
		l.fail("web activity '%s' of %s has a dynamic url which cannot be upgraded", activity, l.pipeline)
		return
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		l.fail("web activity '%s' of %s has an invalid url '%s'", activity, l.pipeline, s)
		return
	}

	_ = c.Set("type", "WebActivity")
	for _, f := range webActivityFields {
		_ = c.Copy("typeProperties."+f, "typeProperties."+f, false)
	}
	_ = c.Set("typeProperties.relativeUrl", u.RequestURI())
	_ = c.Set("externalReferences.connection", nil)
	if _, found := copier.Get(act, "typeProperties.authentication"); found {
		l.g.Alerts.Warning("authentication of web activity '%s' of %s is not carried over; configure it on the connection", activity, l.pipeline)
	}

	l.resolve = append(l.resolve, types.ResolveStep{
		Type:       types.ResolutionURLHostToConn,
		Key:        u.Host,
		Hint:       fmt.Sprintf("a Fabric connection for host %s", u.Host),
		TargetPath: path + ".externalReferences.connection",
	})
}
