package printers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/turbot/adfupgrade/internal/sanitize"
	"github.com/turbot/adfupgrade/internal/types"
)

// Inspired by Kubernetes
// TablePrinter renders the table form of a resource, one row per line.
type TablePrinter struct {
	Sanitizer *sanitize.Sanitizer
}

func NewTablePrinter(sanitizer *sanitize.Sanitizer) *TablePrinter {
	if sanitizer == nil {
		sanitizer = sanitize.NullSanitizer
	}
	return &TablePrinter{
		Sanitizer: sanitizer,
	}
}

func (p TablePrinter) PrintResource(_ context.Context, items types.PrintableResource, writer io.Writer) error {
	table, err := items.GetTable()
	if err != nil {
		return err
	}
	return p.PrintTable(table, writer)
}

func (p TablePrinter) PrintTable(table types.Table, writer io.Writer) error {
	// Create a tabwriter
	w := tabwriter.NewWriter(writer, 1, 1, 4, ' ', tabwriter.TabIndent)

	// Print the table headers
	var tableHeaders string
	var tableFormatter string
	for i, c := range table.Columns {
		if i > 0 {
			tableHeaders += "\t"
			tableFormatter += "\t"
		}
		tableHeaders += c.Name
		tableFormatter += c.Formatter()
	}
	tableHeaders += "\n"
	tableFormatter += "\n"

	//nolint:forbidigo // this is how the tabwriter works
	_, err := fmt.Fprint(w, tableHeaders)
	if err != nil {
		return err
	}

	// Print each struct in the array as a row in the table
	for _, r := range table.Rows {
		str := fmt.Sprintf(tableFormatter, r.Cells...)
		str = p.Sanitizer.SanitizeString(str)

		//nolint:forbidigo // this is how the tabwriter works
		_, err := fmt.Fprint(w, str)
		if err != nil {
			return err
		}
	}

	// Flush and display the table
	return w.Flush()
}
