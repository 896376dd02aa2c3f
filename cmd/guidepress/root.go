package main

import (
	"github.com/spf13/cobra"

	"github.com/eringen/guidepress"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "guidepress",
	Short: "A travel-guide publishing engine built with Go, Echo, and templ",
	Long: `guidepress serves long-form travel guides with schema.org structured data
and a scroll-spy table of contents. Configuration comes from an optional
YAML file overlaid with GUIDEPRESS_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config",
		guidepress.EnvOr("GUIDEPRESS_CONFIG", "guidepress.yaml"), "config file path")
}
