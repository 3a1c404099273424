// Package cmd assembles the librarian command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	loadcmd "github.com/libreshelf/librarian/cmd/load"
	"github.com/libreshelf/librarian/cmd/migrate"
	"github.com/libreshelf/librarian/cmd/serve"
	"github.com/libreshelf/librarian/cmd/user"
)

// RootCommand creates and returns the root command with all subcommands attached.
func RootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "librarian",
		Short:   "School library inventory service",
		Long:    "librarian tracks a school book inventory: bulk CSV loads, borrow and return circulation, and the HTTP API that serves both.",
		Version: version,
	}

	subcommands := []*cobra.Command{
		serve.Command(version),
		loadcmd.Command(version),
		migrate.Command(version),
		user.Command(version),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// Execute builds the root command and runs it.
func Execute(version string) error {
	return RootCommand(version).Execute()
}
