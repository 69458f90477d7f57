package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/orbiterhost/orbiter-cli/internal/template"
)

func newNewCmd() *cobra.Command {
	var (
		templateName string
		list         bool
	)

	cmd := &cobra.Command{
		Use:   "new <project>",
		Short: "Create a new project from a template",
		Long: `Create a new project directory from one of the Orbiter templates. Templates
are cached in the data directory and refreshed once a day.`,
		Example: `  orbiter new my-site --template react
  orbiter new --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return runNewList(cmd)
			}
			return runNew(cmd, args[0], templateName)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "template name (prompted if omitted)")
	cmd.Flags().BoolVar(&list, "list", false, "list available templates")

	return cmd
}

func runNewList(cmd *cobra.Command) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	cache, err := d.templateCache()
	if err != nil {
		return err
	}
	names, err := cache.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(d.out, "No templates found.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(d.out, n)
	}
	return nil
}

func runNew(cmd *cobra.Command, project, templateName string) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	cache, err := d.templateCache()
	if err != nil {
		return err
	}

	if templateName == "" {
		templateName, err = chooseTemplate(cmd, cache)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(d.out, "Fetching template %s...\n", cyan(templateName))
	src, err := cache.Fetch(cmd.Context(), templateName)
	if err != nil {
		return err
	}

	dst, err := filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}
	if err := template.Scaffold(src, dst, filepath.Base(dst)); err != nil {
		return err
	}

	fmt.Fprintf(d.out, "%s Created %s from %s\n\n", green("✓"), bold(project), templateName)
	fmt.Fprintln(d.out, "Next steps:")
	fmt.Fprintf(d.out, "  cd %s\n", project)
	fmt.Fprintln(d.out, "  npm install")
	fmt.Fprintln(d.out, "  orbiter deploy")
	return nil
}

func chooseTemplate(cmd *cobra.Command, cache *template.Cache) (string, error) {
	if !isInteractive() {
		return "", fmt.Errorf("no template given: pass --template (see 'orbiter new --list')")
	}
	names, err := cache.List(cmd.Context())
	if err != nil || len(names) == 0 {
		return "", fmt.Errorf("no templates available: %v", err)
	}
	sel := promptui.Select{
		Label: "Template",
		Items: names,
		Searcher: func(input string, index int) bool {
			return strings.Contains(names[index], strings.ToLower(input))
		},
	}
	_, result, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("select template: %w", err)
	}
	return result, nil
}
