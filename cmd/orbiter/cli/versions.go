package cli

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/orbiterhost/orbiter-cli/internal/model"
)

func newVersionsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "versions <siteId>",
		Short: "List the deployed versions of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(cmd, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runVersions(cmd *cobra.Command, siteID string, jsonOutput bool) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	client, _, err := d.authedClient(cmd.Context())
	if err != nil {
		return err
	}

	versions, err := client.ListVersions(cmd.Context(), siteID)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}

	if jsonOutput {
		return printJSON(d.out, versions)
	}
	if len(versions) == 0 {
		fmt.Fprintf(d.out, "Site %s has no versions.\n", siteID)
		return nil
	}

	table := newTable(d.out, "CID", "DEPLOYED")
	for _, v := range versions {
		table.Append([]string{v.CID, formatTime(v.CreatedAt)})
	}
	table.Render()
	return nil
}

// ---------- rollback ----------

func newRollbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback <siteId> [cid]",
		Short: "Point a site back at a previous version",
		Long: `Point a site back at a previously deployed version. Without a cid the
versions are listed for selection.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid := ""
			if len(args) == 2 {
				cid = args[1]
			}
			return runRollback(cmd, args[0], cid)
		},
	}

	return cmd
}

func runRollback(cmd *cobra.Command, siteID, cid string) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	client, _, err := d.authedClient(cmd.Context())
	if err != nil {
		return err
	}

	if cid == "" {
		if !isInteractive() {
			return fmt.Errorf("no version given: pass the cid to roll back to (see 'orbiter versions %s')", siteID)
		}
		versions, err := client.ListVersions(cmd.Context(), siteID)
		if err != nil {
			return fmt.Errorf("list versions: %w", err)
		}
		if cid, err = chooseVersion(versions); err != nil {
			return err
		}
	}

	if _, err := client.Rollback(cmd.Context(), siteID, cid); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	fmt.Fprintf(d.out, "%s Site %s now serves %s\n", green("✓"), bold(siteID), faint(cid))
	return nil
}

func chooseVersion(versions []model.Version) (string, error) {
	if len(versions) < 2 {
		return "", fmt.Errorf("no earlier version to roll back to")
	}
	items := make([]string, len(versions))
	for i, v := range versions {
		items[i] = fmt.Sprintf("%s  %s", formatTime(v.CreatedAt), v.CID)
	}
	sel := promptui.Select{
		Label: "Roll back to",
		Items: items,
	}
	i, _, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("select version: %w", err)
	}
	return versions[i].CID, nil
}
