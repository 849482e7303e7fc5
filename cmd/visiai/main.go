package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "visiai",
	Short: "Score web pages for visual clarity, accessibility and readability",
	Long: `VisiAI analyzes a page with a Lighthouse audit, a vision model and text
heuristics, then fuses the results into one scan record.

Provider credentials are read from the config file; without them every
provider falls back to its documented default record.`,
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: $CONFIG_PATH or ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Debugf("command failed: %v", err)
		os.Exit(1)
	}
}
