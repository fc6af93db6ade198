// File: cmd/frameworks.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/mimic-cli/internal/codegen"
)

// newFrameworksCmd creates the `frameworks` command, a static listing of the
// available code generation backends.
func newFrameworksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frameworks",
		Short: "Lists the available script generation frameworks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Framework", "Description", "Install"})
			table.SetBorder(false)
			table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

			for _, info := range codegen.Frameworks() {
				table.Append([]string{
					info.Name,
					fmt.Sprintf("%s (needs: %s)", info.Description, strings.Join(info.PythonDeps, ", ")),
					info.Install,
				})
			}
			table.Render()

			fmt.Fprintln(cmd.OutOrStdout(), "\nSelect one with 'mimic generate --framework <name>' or generate.framework in mimic.yaml.")
			return nil
		},
	}
}
