package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdir/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "chartdir",
		Short: "chartdir builds charts from scripted commands",
		Long: `chartdir builds XY and pie charts from small command scripts and serves
them over HTTP. Charts live behind numeric handles that expire when idle.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/chartdir/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.execCommand())
	root.AddCommand(c.chartsCommand())
	root.AddCommand(c.gcCommand())
	root.AddCommand(c.commandsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}
