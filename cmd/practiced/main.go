package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "practiced",
		Short:        "Practice subscription and billing service",
		SilenceUsage: true,
	}

	var envFiles []string
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return loadEnvFiles(envFiles)
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newTokenCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
