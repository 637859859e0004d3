package cmdconfig

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// CommandFullKey returns the dotted path of cmd from the root, e.g. "adfupgrade.history.show".
func CommandFullKey(cmd *cobra.Command) string {
	names := []string{cmd.Name()}
	cmd.VisitParents(func(parent *cobra.Command) {
		names = append(names, parent.Name())
	})
	slices.Reverse(names)
	return strings.Join(names, ".")
}
