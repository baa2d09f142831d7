// Package cli provides the standupctl command-line interface.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// loadConfig is a variable so tests can supply configuration without env
var loadConfig = config.Load

// NewRootCommand creates the root command for standupctl
func NewRootCommand(version string) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "standupctl",
		Short: "Run and administer AI standup calls",
		Long: `standupctl runs a standup call from the terminal, applies database
migrations, seeds team fixtures and issues operator tokens for the API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	newLogger := func() *zap.Logger {
		var (
			logger *zap.Logger
			err    error
		)
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}

	root.AddCommand(
		newRunCommand(newLogger),
		newMigrateCommand(),
		newSeedCommand(),
		newTokenCommand(),
	)
	return root
}
