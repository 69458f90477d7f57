package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orbiterhost/orbiter-cli/internal/api"
)

var (
	cfgFile    string
	verbose    bool
	appVersion string
)

// Execute creates the root command tree and runs it. Ctrl-C cancels the
// command context.
func Execute(version, commit, date string) error {
	appVersion = version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd(version, commit, date).ExecuteContext(ctx)
}

// ErrorText renders err for the terminal, adding a hint when the API
// refused the stored credential.
func ErrorText(err error) string {
	msg := red("Error: ") + err.Error()
	if errors.Is(err, api.ErrUnauthorized) {
		msg += "\n" + yellow("Your credentials were rejected. Run 'orbiter login' or 'orbiter auth --key <key>'.")
	}
	return msg
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orbiter",
		Short: "Deploy static sites and server functions to Orbiter",
		Long: `Orbiter: deploy static sites and server functions from your terminal.

Log in once, scaffold a project from a template, and deploy it. Every deploy
uploads your build output, pins it to content storage, and points your site
at the new version. Previous versions stay available for rollback.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./orbiter.yaml or ~/.orbiter/config.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for credentials and caches (default: ~/.orbiter)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newDeployCmd())
	cmd.AddCommand(newSitesCmd())
	cmd.AddCommand(newVersionsCmd())
	cmd.AddCommand(newRollbackCmd())
	cmd.AddCommand(newFunctionsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	viper.Reset()
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	path := cfgFile
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return
	}
	viper.SetConfigFile(path)
	viper.ReadInConfig() // Parse errors surface in loadSettings
}

// findConfigFile looks for ./orbiter.yaml, then config.yaml in the data dir.
func findConfigFile() string {
	for _, p := range []string{"orbiter.yaml", filepath.Join(resolveDataDir(), settingsFile)} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
