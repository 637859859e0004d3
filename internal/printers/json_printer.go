package printers

import (
	"context"
	"encoding/json"
	"io"

	"github.com/hokaccha/go-prettyjson"

	"github.com/turbot/adfupgrade/internal/sanitize"
	"github.com/turbot/adfupgrade/internal/types"
)

// JsonPrinter writes the resource as indented JSON. Colour is only used when Colour is set, so
// that output piped into the next command stays machine readable.
type JsonPrinter struct {
	Sanitizer *sanitize.Sanitizer
	Colour    bool
}

func (p JsonPrinter) PrintResource(_ context.Context, r types.PrintableResource, writer io.Writer) error {
	s, err := json.MarshalIndent(r.GetItems(), "", "  ")
	if err != nil {
		return err
	}

	if p.Sanitizer != nil {
		s = []byte(p.Sanitizer.SanitizeString(string(s)))
	}

	if p.Colour {
		s, err = prettyjson.Format(s)
		if err != nil {
			return err
		}
	}

	_, err = writer.Write(append(s, '\n'))
	return err
}
