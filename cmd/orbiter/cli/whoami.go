package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orbiterhost/orbiter-cli/internal/auth"
)

func newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd)
		},
	}

	return cmd
}

func runWhoami(cmd *cobra.Command) error {
	d, err := newDeps(cmd)
	if err != nil {
		return err
	}
	cred, err := d.credential(cmd.Context())
	if err != nil {
		return err
	}

	if cred.IsAPIKey() {
		source := d.store.Path()
		if envAPIKey() != "" {
			source = envPrefix + "_API_KEY"
		}
		fmt.Fprintf(d.out, "Authenticated with API key %s\n", bold(mask(cred.AccessToken)))
		fmt.Fprintf(d.out, "  source:  %s\n", source)
		return nil
	}

	fmt.Fprintln(d.out, "Authenticated with OAuth session")
	claims, err := auth.ParseClaims(cred.AccessToken)
	if err != nil {
		d.logger.Debug("access token is not a readable JWT", "error", err)
	} else {
		if claims.Email != "" {
			fmt.Fprintf(d.out, "  email:   %s\n", bold(claims.Email))
		}
		if claims.Subject != "" {
			fmt.Fprintf(d.out, "  user id: %s\n", claims.Subject)
		}
		if claims.ExpiresAt != nil {
			fmt.Fprintf(d.out, "  expires: %s\n", formatTime(claims.ExpiresAt.Time))
		}
	}
	fmt.Fprintf(d.out, "  issued:  %s (%s ago)\n", formatTime(cred.CreatedAt), time.Since(cred.CreatedAt).Round(time.Second))
	return nil
}
