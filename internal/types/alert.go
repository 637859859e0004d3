package types

import (
	"encoding/json"
	"fmt"
)

// Severity classifies an Alert. Anything other than SeverityWarning fails the run.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityPermanent
	SeverityMissingResolution
	SeverityUnsupportedResource
)

var severityNames = map[Severity]string{
	SeverityWarning:             "Warning",
	SeverityPermanent:           "Permanent",
	SeverityMissingResolution:   "MissingResolution",
	SeverityUnsupportedResource: "UnsupportedResource",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

func ParseSeverity(name string) (Severity, bool) {
	for s, n := range severityNames {
		if n == name {
			return s, true
		}
	}
	return SeverityWarning, false
}

func (s Severity) MarshalJSON() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown alert severity %d", int(s))
	}
	return json.Marshal(name)
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("unknown alert severity %q", name)
	}
	*s = parsed
	return nil
}

// Alert is a single diagnostic raised during a run.
type Alert struct {
	Severity Severity `json:"severity"`
	Details  string   `json:"details" validate:"required"`
}

func (a Alert) IsFatal() bool {
	return a.Severity != SeverityWarning
}

func (a Alert) String() string {
	return a.Severity.String() + ": " + a.Details
}

// Alerts accumulates the diagnostics of one run. It is append-only.
type Alerts struct {
	items []Alert
}

func NewAlerts(initial ...Alert) *Alerts {
	a := &Alerts{}
	a.items = append(a.items, initial...)
	return a
}

func (a *Alerts) Add(severity Severity, format string, args ...any) {
	a.items = append(a.items, Alert{Severity: severity, Details: fmt.Sprintf(format, args...)})
}

func (a *Alerts) Warning(format string, args ...any) {
	a.Add(SeverityWarning, format, args...)
}

func (a *Alerts) Permanent(format string, args ...any) {
	a.Add(SeverityPermanent, format, args...)
}

func (a *Alerts) MissingResolution(format string, args ...any) {
	a.Add(SeverityMissingResolution, format, args...)
}

func (a *Alerts) Unsupported(format string, args ...any) {
	a.Add(SeverityUnsupportedResource, format, args...)
}

// Failed reports whether any alert ranks above a warning.
func (a *Alerts) Failed() bool {
	for _, alert := range a.items {
		if alert.IsFatal() {
			return true
		}
	}
	return false
}

func (a *Alerts) Len() int {
	return len(a.items)
}

// Items returns a copy of the accumulated alerts in the order they were raised.
func (a *Alerts) Items() []Alert {
	out := make([]Alert, len(a.items))
	copy(out, a.items)
	return out
}
