package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "Inspect server function deployments",
	}

	cmd.AddCommand(newFunctionsListCmd())

	return cmd
}

func newFunctionsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list <siteId>",
		Aliases: []string{"ls"},
		Short:   "List function deployments of a site",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunctionsList(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runFunctionsList(cmd *cobra.Command, siteID string, jsonOutput bool) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	client, _, err := d.authedClient(cmd.Context())
	if err != nil {
		return err
	}

	fns, err := client.ListFunctions(cmd.Context(), siteID)
	if err != nil {
		return fmt.Errorf("list functions: %w", err)
	}

	if jsonOutput {
		return printJSON(d.out, fns)
	}
	if len(fns) == 0 {
		fmt.Fprintf(d.out, "Site %s has no function deployments.\n", siteID)
		return nil
	}

	table := newTable(d.out, "CID", "RUNTIME", "ENTRY", "DEPLOYED")
	for _, f := range fns {
		table.Append([]string{f.CID, f.Runtime, f.EntryPath, formatTime(f.CreatedAt)})
	}
	table.Render()
	return nil
}
