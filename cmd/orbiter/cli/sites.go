package cli

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func newSitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Manage hosted sites",
		Long:  "List, create, update and delete sites hosted on Orbiter.",
	}

	cmd.AddCommand(newSitesListCmd())
	cmd.AddCommand(newSitesCreateCmd())
	cmd.AddCommand(newSitesUpdateCmd())
	cmd.AddCommand(newSitesDeleteCmd())

	return cmd
}

// ---------- sites list ----------

func newSitesListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your sites",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSitesList(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runSitesList(cmd *cobra.Command, jsonOutput bool) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	client, _, err := d.authedClient(cmd.Context())
	if err != nil {
		return err
	}

	sites, err := client.ListSites(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sites: %w", err)
	}

	if jsonOutput {
		return printJSON(d.out, sites)
	}

	if len(sites) == 0 {
		fmt.Fprintln(d.out, "No sites yet. Use 'orbiter deploy' or 'orbiter sites create' to create one.")
		return nil
	}

	table := newTable(d.out, "ID", "URL", "CID", "UPDATED")
	for _, s := range sites {
		table.Append([]string{s.ID, s.URL(d.settings.BaseDomain), s.CID, formatTime(s.UpdatedAt)})
	}
	table.Render()
	return nil
}

// ---------- sites create ----------

func newSitesCreateCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:     "create <dir>",
		Short:   "Upload a directory as a new site",
		Example: `  orbiter sites create --domain my-site ./dist`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSitesCreate(cmd, domain, args[0])
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Subdomain for the site (required)")
	cmd.MarkFlagRequired("domain")

	return cmd
}

func runSitesCreate(cmd *cobra.Command, domain, dir string) error {
	if err := validateSubdomain(domain); err != nil {
		return fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	client, cred, err := d.authedClient(cmd.Context())
	if err != nil {
		return err
	}

	cid, err := d.uploader(cred).Upload(cmd.Context(), dir)
	if err != nil {
		return err
	}
	site, err := client.CreateSite(cmd.Context(), cid, domain)
	if err != nil {
		return fmt.Errorf("create site: %w", err)
	}
	if site.Domain == "" {
		site.Domain = domain
	}

	fmt.Fprintf(d.out, "%s Created site %s\n", green("✓"), bold(site.ID))
	fmt.Fprintf(d.out, "  %s\n", cyan(site.URL(d.settings.BaseDomain)))
	return nil
}

// ---------- sites update ----------

func newSitesUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <siteId> <dir>",
		Short: "Upload a directory as the new version of a site",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSitesUpdate(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runSitesUpdate(cmd *cobra.Command, siteID, dir string) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	client, cred, err := d.authedClient(cmd.Context())
	if err != nil {
		return err
	}

	cid, err := d.uploader(cred).Upload(cmd.Context(), dir)
	if err != nil {
		return err
	}
	site, err := client.UpdateSite(cmd.Context(), siteID, cid)
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}

	fmt.Fprintf(d.out, "%s Updated site %s to %s\n", green("✓"), bold(siteID), faint(cid))
	if site.Domain != "" {
		fmt.Fprintf(d.out, "  %s\n", cyan(site.URL(d.settings.BaseDomain)))
	}
	return nil
}

// ---------- sites delete ----------

func newSitesDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <siteId>",
		Aliases: []string{"rm"},
		Short:   "Delete a site",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSitesDelete(cmd, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runSitesDelete(cmd *cobra.Command, siteID string, yes bool) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	client, _, err := d.authedClient(cmd.Context())
	if err != nil {
		return err
	}

	if !yes {
		if !isInteractive() {
			return fmt.Errorf("refusing to delete %s without confirmation: pass --yes", siteID)
		}
		if !confirm(fmt.Sprintf("Delete site %s", siteID)) {
			fmt.Fprintln(d.out, "Aborted.")
			return nil
		}
	}

	if err := client.DeleteSite(cmd.Context(), siteID); err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	fmt.Fprintf(d.out, "%s Deleted site %s\n", green("✓"), bold(siteID))
	return nil
}

// confirm displays a Y/N prompt.
func confirm(message string) bool {
	prompt := promptui.Prompt{
		Label:     message,
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		return false
	}

	return result == "y" || result == "Y"
}
