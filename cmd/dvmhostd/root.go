package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version and commit are set at build time via -ldflags, matching the
// teacher pack's cobra entrypoints.
var (
	version = "dev"
	commit  = "unknown"
)

// NewRootCommand builds the dvmhostd CLI: a bare invocation is
// equivalent to "run", plus explicit "run" and "version" subcommands,
// following USA-RedDragon-DMRHub/cmd/root.go's NewCommand shape.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dvmhostd",
		Short:         "Trunking core host process",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHost,
	}
	root.PersistentFlags().StringP("config", "c", "dvmhostd.yaml", "path to the host's YAML configuration file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the host process (default when no subcommand is given)",
		RunE:  runHost,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the host process version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("dvmhostd %s (%s)\n", version, commit)
			return nil
		},
	}

	root.AddCommand(runCmd, versionCmd)
	return root
}

func runHost(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	host, err := NewHost(configPath)
	if err != nil {
		return fmt.Errorf("dvmhostd: %w", err)
	}
	return host.Run(cmd.Context())
}
