package main

import (
	"fmt"
	"os"

	"github.com/handiism/bandcamp-converter/internal/config"
	"github.com/handiism/bandcamp-converter/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "bcconvert-tui",
		Short:         "Interactive Bandcamp archive converter",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			path, err := config.ExpandPath(path)
			if err != nil {
				return err
			}
			settings, err := config.Load(path)
			if err != nil {
				return err
			}
			return tui.Run(settings)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path (default "+config.DefaultPath()+")")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
