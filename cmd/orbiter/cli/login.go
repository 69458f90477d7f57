package cli

import (
	"fmt"
	"slices"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/orbiterhost/orbiter-cli/internal/auth"
	"github.com/orbiterhost/orbiter-cli/internal/config"
)

func newLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in through your browser",
		Long: `Log in with GitHub or Google. A browser window opens on the provider's
sign-in page and the session is sent back to a short-lived listener on
localhost. The session is stored in the data directory and refreshed
automatically.`,
		Example: `  orbiter login
  orbiter login --provider google`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, provider)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "OAuth provider: github or google (prompted if omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, provider string) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}

	if provider == "" {
		provider, err = chooseProvider()
		if err != nil {
			return err
		}
	}
	if !slices.Contains(auth.Providers, provider) {
		return fmt.Errorf("unsupported provider %q (choose one of %v)", provider, auth.Providers)
	}

	flow := &auth.LoginFlow{
		Provider: d.provider,
		Store:    d.store,
		Port:     d.settings.Login.Port,
		Timeout:  config.ParseDuration(d.settings.Login.Timeout, auth.DefaultLoginTimeout),
		Out:      d.out,
		Logger:   d.logger,
	}
	cred, err := flow.Run(cmd.Context(), provider)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	who := ""
	if claims, err := auth.ParseClaims(cred.AccessToken); err == nil && claims.Email != "" {
		who = " as " + bold(claims.Email)
	}
	fmt.Fprintf(d.out, "%s Logged in%s\n", green("✓"), who)
	return nil
}

// chooseProvider asks which provider to use, defaulting to the first one
// when there is no terminal to prompt on.
func chooseProvider() (string, error) {
	if !isInteractive() {
		return auth.Providers[0], nil
	}
	sel := promptui.Select{
		Label: "Log in with",
		Items: auth.Providers,
	}
	_, result, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("select provider: %w", err)
	}
	return result, nil
}
