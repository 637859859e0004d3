package upgrade

import (
	"fmt"
	"sort"
	"time"

	"github.com/turbot/adfupgrade/internal/copier"
	"github.com/turbot/adfupgrade/internal/types"
)

const scheduleTrigger = "ScheduleTrigger"

var weekDays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

type triggerLowering struct{}

func (l *triggerLowering) Compile(g *Graph, e *Entity) {
	if !requireFields(g, e, "properties.type") {
		return
	}
	if t := copier.GetString(e.Source, "properties.type"); t != scheduleTrigger {
		g.Alerts.Unsupported("%s has type '%s' which cannot be upgraded", e, t)
		return
	}
	requireFields(g, e, "properties.typeProperties.recurrence.frequency", "properties.pipelines")
}

func (l *triggerLowering) Link(g *Graph, e *Entity) {
	for _, p := range triggerPipelines(e) {
		g.DependOn(e, types.KindPipeline, referenceName(asMap(p)["pipelineReference"]))
	}
}

func triggerPipelines(e *Entity) []any {
	v, _ := copier.Get(e.Source, "properties.pipelines")
	return asList(v)
}

func (l *triggerLowering) Evaluate(g *Graph, e *Entity, attribute string, params Params) Symbol {
	if attribute != AttrExportResources {
		return unknownAttribute(g, e, attribute)
	}

	cfg, ok := scheduleConfiguration(g, e)
	if !ok {
		return Failed()
	}

	pipelines := triggerPipelines(e)
	enabled := copier.GetString(e.Source, "properties.runtimeState") == "Started"
	resources := make([]types.ExportableResource, 0, len(pipelines))
	for _, p := range pipelines {
		target := referenceName(asMap(p)["pipelineReference"])
		if params := asMap(asMap(p)["parameters"]); len(params) > 0 {
			g.Alerts.Warning("parameters passed by %s to pipeline '%s' are not carried over", e, target)
		}

		name := e.Name
		if len(pipelines) > 1 {
			name = e.Name + "_" + target
		}
		resources = append(resources, types.ExportableResource{
			ResourceType:        types.FabricPipelineSchedule,
			ResourceName:        name,
			ResourceDescription: copier.GetString(e.Source, "properties.description"),
			Resolve: []types.ResolveStep{{
				Type:       types.ResolutionFabricResourceID,
				Key:        types.FabricResourceKey(types.FabricDataPipeline, target),
				Hint:       fmt.Sprintf("the Fabric pipeline upgraded from pipeline '%s'", target),
				TargetPath: "itemId",
			}},
			Export: map[string]any{
				"itemId":        nil,
				"jobType":       "Pipeline",
				"enabled":       enabled,
				"configuration": copier.DeepCopy(cfg),
			},
		})
	}
	return Ready(resources)
}

// scheduleConfiguration translates an ADF recurrence into a Fabric schedule configuration.
func scheduleConfiguration(g *Graph, e *Entity) (map[string]any, bool) {
	rec, _ := copier.Get(e.Source, "properties.typeProperties.recurrence")
	frequency := copier.GetString(rec, "frequency")

	interval := 1
	if v, found := copier.Get(rec, "interval"); found {
		n, ok := asInt(v)
		if !ok || n < 1 {
			g.Alerts.Permanent("%s has an invalid recurrence interval", e)
			return nil, false
		}
		interval = n
	}

	cfg := map[string]any{}
	c := copier.New(asMap(rec), cfg, nil)
	_ = c.Copy("startTime", "startDateTime", false)
	_ = c.Copy("endTime", "endDateTime", false)
	if tz := copier.GetString(rec, "timeZone"); tz != "" {
		cfg["localTimeZoneId"] = tz
	} else {
		cfg["localTimeZoneId"] = "UTC"
	}

	switch frequency {
	case "Minute":
		cfg["type"] = "Cron"
		cfg["interval"] = interval
	case "Hour":
		cfg["type"] = "Cron"
		cfg["interval"] = interval * 60
	case "Day", "Week":
		times, ok := scheduleTimes(g, e, rec)
		if !ok {
			return nil, false
		}
		if interval != 1 {
			g.Alerts.Warning("%s recurs every %d %ss; the schedule runs every %s instead", e, interval, frequency, frequency)
		}
		cfg["times"] = times
		if frequency == "Day" {
			cfg["type"] = "Daily"
			break
		}
		days, ok := scheduleWeekDays(g, e, rec)
		if !ok {
			return nil, false
		}
		cfg["type"] = "Weekly"
		cfg["weekdays"] = days
	default:
		g.Alerts.Permanent("%s has recurrence frequency '%s' which cannot be upgraded", e, frequency)
		return nil, false
	}
	return cfg, true
}

// scheduleTimes expands schedule.hours x schedule.minutes into sorted "HH:MM" times. Without a
// schedule the time of day of the start time is used.
func scheduleTimes(g *Graph, e *Entity, rec any) ([]any, bool) {
	hoursV, hasHours := copier.Get(rec, "schedule.hours")
	minutesV, hasMinutes := copier.Get(rec, "schedule.minutes")

	if !hasHours && !hasMinutes {
		start := copier.GetString(rec, "startTime")
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			// ADF commonly omits the zone suffix
			t, err = time.Parse("2006-01-02T15:04:05", start)
		}
		if err != nil {
			g.Alerts.Permanent("%s has no schedule and an unreadable start time '%s'", e, start)
			return nil, false
		}
		return []any{t.Format("15:04")}, true
	}

	hours := []int{0}
	minutes := []int{0}
	var ok bool
	if hasHours {
		if hours, ok = intList(hoursV, 23); !ok {
			g.Alerts.Permanent("%s has invalid schedule hours", e)
			return nil, false
		}
	}
	if hasMinutes {
		if minutes, ok = intList(minutesV, 59); !ok {
			g.Alerts.Permanent("%s has invalid schedule minutes", e)
			return nil, false
		}
	}

	var times []string
	for _, h := range hours {
		for _, m := range minutes {
			times = append(times, fmt.Sprintf("%02d:%02d", h, m))
		}
	}
	sort.Strings(times)
	out := make([]any, len(times))
	for i, t := range times {
		out[i] = t
	}
	return out, true
}

func scheduleWeekDays(g *Graph, e *Entity, rec any) ([]any, bool) {
	v, _ := copier.Get(rec, "schedule.weekDays")
	days := asList(v)
	if len(days) == 0 {
		g.Alerts.Permanent("%s recurs weekly without week days", e)
		return nil, false
	}
	out := make([]any, 0, len(days))
	for _, d := range days {
		s, _ := d.(string)
		if !weekDays[s] {
			g.Alerts.Permanent("%s has an invalid week day '%v'", e, d)
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func intList(v any, limit int) ([]int, bool) {
	list := asList(v)
	if len(list) == 0 {
		return nil, false
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		n, ok := asInt(item)
		if !ok || n < 0 || n > limit {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
