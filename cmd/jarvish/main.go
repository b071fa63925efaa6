package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/doeshing/jarvish/internal/app"
)

func main() {
	// A local .env (OPENAI_API_KEY and friends) loads before config.
	_ = godotenv.Load()

	var (
		verbose    bool
		configPath string
	)

	exitCode := 0
	root := &cobra.Command{
		Use:           "jarvish",
		Short:         "An interactive shell with Jarvis inside",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := app.BuildContainer(verbose, configPath)
			if err != nil {
				return err
			}
			defer container.Close()
			exitCode = container.Shell.Run()
			return nil
		},
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level to the console")
	root.Flags().StringVar(&configPath, "config", "", "path to config.toml (default: user config dir)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jarvish:", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
