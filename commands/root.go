// Package commands wires the hookd CLI. The event commands are the hook
// protocol surface; everything else is for humans.
package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hookdsh/hookd/internal/logging"
)

var (
	configFlag  string
	verboseFlag bool
)

// NewRootCmd creates the root command for hookd.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hookd",
		Short:         "Lifecycle hook dispatcher for AI coding-agent sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verboseFlag {
				logging.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to hooks.yaml (default: discovered)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newSessionStartCmd())
	rootCmd.AddCommand(newPreToolUseCmd())
	rootCmd.AddCommand(newPostToolUseCmd())
	rootCmd.AddCommand(newPreCompactCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewSessionsCmd())
	rootCmd.AddCommand(NewInstallCmd())
	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
