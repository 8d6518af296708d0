package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dashlite/dashlite/internal/config"
)

// NewRootCommand groups the dashlite subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashlite",
		Short:         "Dashboard server with selector driven query filtering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cfg := config.NewConfigurationWithOptionsAndDefaults()
	root.AddCommand(NewRunCommand(cfg))

	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
