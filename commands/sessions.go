package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hookdsh/hookd/internal/storage"
	"github.com/hookdsh/hookd/internal/utils"
)

// NewSessionsCmd groups the session inspection subcommands.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect recorded agent sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsEndCmd())
	cmd.AddCommand(newSessionsCleanupCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.GetAllSessions()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("no sessions recorded")
				return nil
			}

			fmt.Printf("%-38s %-10s %-12s %s\n", "ID", "STATUS", "ACTIVITY", "DIRECTORY")
			for _, s := range sessions {
				fmt.Printf("%-38s %-10s %-12s %s\n",
					s.ID, s.Status, utils.FormatAge(s.LastActivity),
					utils.TruncateStr(s.WorkingDirectory, 48))
			}
			return nil
		},
	}
}

func newSessionsShowCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session and its dispatch history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteStore()
			if err != nil {
				return err
			}
			defer store.Close()

			session, err := store.GetSession(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("session %s\n", session.ID)
			fmt.Printf("  status:    %s\n", session.Status)
			fmt.Printf("  user:      %s\n", session.User)
			fmt.Printf("  directory: %s\n", session.WorkingDirectory)
			fmt.Printf("  started:   %s\n", session.StartedAt.Format(time.RFC3339))
			if session.EndedAt != nil {
				fmt.Printf("  ended:     %s\n", session.EndedAt.Format(time.RFC3339))
			}

			dispatches, err := store.GetDispatches(session.ID, limit)
			if err != nil {
				return err
			}
			if len(dispatches) == 0 {
				fmt.Println("  no dispatches recorded")
				return nil
			}

			fmt.Printf("\n%-20s %-13s %-14s %-8s %s\n", "TIME", "EVENT", "TOOL", "DECISION", "REASONS")
			for _, d := range dispatches {
				fmt.Printf("%-20s %-13s %-14s %-8s %s\n",
					d.CreatedAt.Format("2006-01-02 15:04:05"),
					d.Event, utils.TruncateStr(d.ToolName, 14), d.Decision,
					utils.TruncateStr(strings.Join(d.Reasons, "; "), 60))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum dispatches to show")
	return cmd
}

func newSessionsEndCmd() *cobra.Command {
	var failed bool

	cmd := &cobra.Command{
		Use:   "end <session-id>",
		Short: "Mark a session as finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteStore()
			if err != nil {
				return err
			}
			defer store.Close()

			status := "completed"
			if failed {
				status = "failed"
			}
			if err := store.UpdateSessionStatus(args[0], status); err != nil {
				return err
			}
			fmt.Printf("session %s marked %s\n", args[0], status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&failed, "failed", false, "mark the session failed instead of completed")
	return cmd
}

func newSessionsCleanupCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete sessions with no recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.DeleteSessionsBefore(time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Printf("removed %d session(s)\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "drop sessions idle longer than this")
	return cmd
}
