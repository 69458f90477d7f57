package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/orbiterhost/orbiter-cli/internal/api"
	"github.com/orbiterhost/orbiter-cli/internal/build"
	"github.com/orbiterhost/orbiter-cli/internal/config"
	"github.com/orbiterhost/orbiter-cli/internal/model"
)

const (
	defaultBuildCommand = "npm run build"
	defaultBuildDir     = "dist"
)

func newDeployCmd() *cobra.Command {
	var (
		dir       string
		domain    string
		skipBuild bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build and deploy the current project",
		Long: `Build the project, upload the build output and point the site at it.

The first deploy creates orbiter.json and a new site under the given
subdomain; later deploys update the same site. Projects whose orbiter.json
has an entryPath are deployed as server functions instead.`,
		Example: `  orbiter deploy --domain my-site
  orbiter deploy --dir ./web --skip-build`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, dir, domain, skipBuild)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")
	cmd.Flags().StringVar(&domain, "domain", "", "subdomain for a new site (prompted if omitted)")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "upload the existing build output without building")

	return cmd
}

func runDeploy(cmd *cobra.Command, dir, domain string, skipBuild bool) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Authenticate before doing any work.
	client, cred, err := d.authedClient(ctx)
	if err != nil {
		return err
	}

	project, err := config.LoadProject(dir)
	switch {
	case errors.Is(err, config.ErrNotFound):
		project, err = newProjectConfig(domain)
		if err != nil {
			return err
		}
		if err := config.SaveProject(dir, project); err != nil {
			return err
		}
		fmt.Fprintf(d.out, "Created %s\n", filepath.Join(dir, config.ProjectFile))
	case err != nil:
		return err
	}
	if domain != "" && project.SiteID == "" {
		project.Domain = domain
	}

	if !skipBuild {
		runner := &build.Runner{Stdout: d.out, Stderr: cmd.ErrOrStderr(), Logger: d.logger}
		if err := runner.Run(ctx, dir, project.BuildCommand); err != nil {
			return err
		}
	}

	out := filepath.Join(dir, project.BuildDir)
	fmt.Fprintf(d.out, "Uploading %s...\n", out)
	cid, err := d.uploader(cred).Upload(ctx, out)
	if err != nil {
		return err
	}
	d.logger.Debug("uploaded build output", "cid", cid)

	if project.IsServer() {
		return deployFunction(cmd, d, client, project, cid)
	}
	return deploySite(cmd, d, client, dir, project, cid)
}

func deploySite(cmd *cobra.Command, d *deps, client *api.Client, dir string, project *model.ProjectConfig, cid string) error {
	ctx := cmd.Context()

	var (
		site *model.Site
		err  error
	)
	if project.SiteID == "" {
		if project.Domain == "" {
			return fmt.Errorf("no domain for the new site: pass --domain or set domain in %s", config.ProjectFile)
		}
		site, err = client.CreateSite(ctx, cid, project.Domain)
		if err != nil {
			return fmt.Errorf("create site: %w", err)
		}
		project.SiteID = site.ID
		if site.Domain != "" {
			project.Domain = site.Domain
		}
		if err := config.SaveProject(dir, project); err != nil {
			return err
		}
	} else {
		site, err = client.UpdateSite(ctx, project.SiteID, cid)
		if err != nil {
			return fmt.Errorf("update site: %w", err)
		}
	}

	if site.Domain == "" {
		site.Domain = project.Domain
	}
	fmt.Fprintf(d.out, "%s Deployed %s\n", green("✓"), faint(cid))
	fmt.Fprintf(d.out, "  %s\n", cyan(site.URL(d.settings.BaseDomain)))
	return nil
}

func deployFunction(cmd *cobra.Command, d *deps, client *api.Client, project *model.ProjectConfig, cid string) error {
	if project.SiteID == "" {
		return fmt.Errorf("server deployments need a siteId in %s", config.ProjectFile)
	}
	fn, err := client.DeployFunction(cmd.Context(), project.SiteID, api.DeployFunctionRequest{
		CID:       cid,
		Runtime:   project.Runtime,
		EntryPath: project.EntryPath,
	})
	if err != nil {
		return fmt.Errorf("deploy function: %w", err)
	}
	fmt.Fprintf(d.out, "%s Deployed function %s (%s, entry %s)\n", green("✓"), faint(fn.CID), fn.Runtime, fn.EntryPath)
	return nil
}

// newProjectConfig asks for the settings of a first deploy, falling back to
// defaults when there is no terminal.
func newProjectConfig(domain string) (*model.ProjectConfig, error) {
	cfg := &model.ProjectConfig{
		Domain:       domain,
		BuildCommand: defaultBuildCommand,
		BuildDir:     defaultBuildDir,
	}
	if !isInteractive() {
		return cfg, nil
	}

	var err error
	if cfg.Domain == "" {
		if cfg.Domain, err = ask("Subdomain", "", validateSubdomain); err != nil {
			return nil, err
		}
	}
	if cfg.BuildCommand, err = ask("Build command", defaultBuildCommand, nil); err != nil {
		return nil, err
	}
	if cfg.BuildDir, err = ask("Build output directory", defaultBuildDir, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(result), nil
}

func validateSubdomain(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("subdomain is required")
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return errors.New("use lowercase letters, digits and dashes")
		}
	}
	return nil
}
