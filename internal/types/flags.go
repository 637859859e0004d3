package types

import "github.com/thediveo/enumflag/v2"

// OutputMode selects how a command renders the resulting progress document.
type OutputMode enumflag.Flag

const (
	OutputModePretty OutputMode = iota
	OutputModeJson
	OutputModeYaml
)

var OutputModeIds = map[OutputMode][]string{
	OutputModePretty: {"pretty"},
	OutputModeJson:   {"json"},
	OutputModeYaml:   {"yaml"},
}

func (m OutputMode) String() string {
	if ids, ok := OutputModeIds[m]; ok {
		return ids[0]
	}
	return "pretty"
}
