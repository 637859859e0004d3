package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

type ProgressState string

const (
	ProgressInProgress        ProgressState = "InProgress"
	ProgressSucceeded         ProgressState = "Succeeded"
	ProgressFailed            ProgressState = "Failed"
	ProgressUnsupportedFormat ProgressState = "UnsupportedFormat"
	ProgressNotImplemented    ProgressState = "NotImplemented"
)

const InvalidInputDetails = "input is not valid"

// ProgressResult is the phase specific payload of a Progress. At most one field is set.
type ProgressResult struct {
	ImportedResources         *ImportedResources        `json:"importedResources"`
	ExportableFabricResources []ExportableResource      `json:"exportableFabricResources" validate:"dive"`
	ExportedFabricResources   map[string]map[string]any `json:"exportedFabricResources"`
}

// MarshalJSON writes the fields that are set, so an empty list or map survives a round trip while
// fields of other phases stay out of the document.
func (r ProgressResult) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if r.ImportedResources != nil {
		out["importedResources"] = r.ImportedResources
	}
	if r.ExportableFabricResources != nil {
		out["exportableFabricResources"] = r.ExportableFabricResources
	}
	if r.ExportedFabricResources != nil {
		out["exportedFabricResources"] = r.ExportedFabricResources
	}
	return json.Marshal(out)
}

// Progress is the state threaded between phases and across process boundaries.
type Progress struct {
	State       ProgressState   `json:"state" validate:"required,oneof=InProgress Succeeded Failed UnsupportedFormat NotImplemented"`
	Alerts      []Alert         `json:"alerts" validate:"dive"`
	Result      *ProgressResult `json:"result,omitempty"`
	Resolutions []Resolution    `json:"resolutions" validate:"dive"`
}

func NewProgress() *Progress {
	return &Progress{
		State:       ProgressSucceeded,
		Alerts:      []Alert{},
		Resolutions: []Resolution{},
	}
}

// FailedProgress builds a terminal progress carrying the given alerts and resolutions but no result.
func FailedProgress(alerts []Alert, resolutions []Resolution) *Progress {
	p := NewProgress()
	p.State = ProgressFailed
	p.Alerts = append(p.Alerts, alerts...)
	p.Resolutions = append(p.Resolutions, resolutions...)
	return p
}

func (p *Progress) Succeeded() bool {
	return p.State == ProgressSucceeded
}

// ParseProgress decodes a serialized Progress. Empty input yields a Succeeded progress with no
// alerts. Malformed input yields a Failed progress with a single Permanent alert.
func ParseProgress(data []byte) *Progress {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewProgress()
	}

	p := &Progress{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(p); err != nil {
		slog.Debug("progress input could not be decoded", "error", err)
		return invalidInput()
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		slog.Debug("progress input has trailing data", "error", err)
		return invalidInput()
	}
	if p.Alerts == nil {
		p.Alerts = []Alert{}
	}
	if p.Resolutions == nil {
		p.Resolutions = []Resolution{}
	}
	if err := Validate(p); err != nil {
		slog.Debug("progress input failed validation", "error", err)
		return invalidInput()
	}
	return p
}

func invalidInput() *Progress {
	return FailedProgress([]Alert{{Severity: SeverityPermanent, Details: InvalidInputDetails}}, nil)
}

func (p *Progress) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
