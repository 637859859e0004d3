package printers

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/turbot/pipe-fittings/constants"
	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/sanitize"
	"github.com/turbot/adfupgrade/internal/types"
)

// Inspired by Kubernetes
//
// ResourcePrinter is an interface that knows how to print runtime objects.
type ResourcePrinter interface {
	// PrintResource receives a runtime object, formats it and prints it to a writer.
	PrintResource(context.Context, types.PrintableResource, io.Writer) error
}

// GetPrinter returns the printer selected by the command's output flag.
func GetPrinter(cmd *cobra.Command) (ResourcePrinter, error) {
	flag := cmd.Flags().Lookup(constants.ArgOutput)
	if flag == nil {
		return NewPrinter(types.OutputModePretty.String())
	}
	return NewPrinter(flag.Value.String())
}

func NewPrinter(format string) (ResourcePrinter, error) {
	switch format {
	case "pretty", "table", "":
		return NewTablePrinter(sanitize.Instance), nil
	case "json":
		return JsonPrinter{Sanitizer: sanitize.Instance, Colour: !color.NoColor}, nil
	case "yaml":
		return YamlPrinter{Sanitizer: sanitize.Instance, Colour: !color.NoColor}, nil
	}
	return nil, perr.BadRequestWithMessage("unsupported output format: " + format)
}
