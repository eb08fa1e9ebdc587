package main

import (
	"fmt"
	"os"

	"github.com/akeren/landing-api/config"
	"github.com/akeren/landing-api/internal/log"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:           "landing",
		Short:         "Operate the landing API",
		Long:          "Command-line tools for the landing API: database migrations, admin password hashes and waitlist management.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitializeEnvFile(log.NewDiscardLogger())
		},
	}

	root.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (default $LANDING_API_URL or http://localhost:8080)")

	root.AddCommand(
		newMigrateCommand(),
		newHashPasswordCommand(),
		newWaitlistCommand(&serverURL),
	)

	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
