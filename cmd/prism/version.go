package main

import (
	"github.com/spf13/cobra"

	"github.com/prismworks/prism/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cmd.Printf("prism version %s\n", cfg.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
