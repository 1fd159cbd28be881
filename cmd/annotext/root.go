package main

import (
	"github.com/spf13/cobra"

	"annotext/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "annotext",
		Short: "Index and analyze text with inline annotations",
		Long: `annotext tokenizes text carrying inline annotation markup such as
"[John Smith](type=person&value=John%20Smith)". Annotations are indexed as
extra tokens sharing positions with the words they annotate.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().String("analyzer", "", "base analyzer (standard, whitespace, keyword)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	loadConfig := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(cfgFile, cmd.Flags())
	}

	root.AddCommand(
		newServeCmd(loadConfig),
		newAnalyzeCmd(loadConfig),
		newHighlightCmd(loadConfig),
	)
	return root
}

// configLoader loads the configuration with the command's flags applied.
type configLoader func(cmd *cobra.Command) (*config.Config, error)
