package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/orbiterhost/orbiter-cli/internal/auth"
)

func newAuthCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with an API key",
		Long: `Store an Orbiter API key as the current credential. The key is checked
against the API first; a rejected key is never saved. API keys do not expire.

Setting ORBITER_API_KEY has the same effect for a single invocation without
writing anything to disk.`,
		Example: `  orbiter auth --key ob_live_xxxxxxxx
  orbiter auth   # prompts for the key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd, key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key (prompted if omitted)")

	return cmd
}

func runAuth(cmd *cobra.Command, key string) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}

	if key == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no key given: pass --key or run in a terminal")
		}
		fmt.Fprint(d.out, "API key: ")
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		fmt.Fprintln(d.out)
		key = string(keyBytes)
	}

	cred, err := auth.RegisterAPIKey(cmd.Context(), d.apiClient(nil), d.store, key)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "%s API key %s saved to %s\n", green("✓"), mask(cred.AccessToken), d.store.Path())
	return nil
}
