package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/shopbooks/internal/buildinfo"
)

// EnvPrefix prefixes the environment variables that override flags, e.g.
// SHOPBOOKS_REPO or SHOPBOOKS_AS_OF.
const EnvPrefix = "SHOPBOOKS"

// Setting keys shared by the subcommands.
const (
	keyRepo      = "repo"
	keyAsOf      = "as-of"
	keyLogLevel  = "log-level"
	keyLogFormat = "log-format"
	keyInput     = "input"
	keyFormat    = "format"
	keyCommit    = "commit"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:     "shopbooks",
		Short:   "Financial statements and restock alerts for small shops",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		// Flags are bound for the command being run only, so subcommands
		// can share keys such as as-of.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyRepo, ".", "books repository directory")
	flags.String(keyLogLevel, "", "log level, overrides the config (debug, info, warn, error)")
	flags.String(keyLogFormat, "", "log format, overrides the config (console, json)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReportCommand(v))
	rootCmd.AddCommand(newInventoryCommand(v))

	return rootCmd
}
