package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hookdsh/hookd/internal/storage"
	"github.com/hookdsh/hookd/internal/tui/browse"
)

// NewBrowseCmd launches the interactive session browser.
func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"tui", "b"},
		Short:   "Browse sessions and dispatch history interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteStore()
			if err != nil {
				return err
			}
			defer store.Close()

			program := tea.NewProgram(browse.NewModel(store), tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("browser failed: %w", err)
			}
			return nil
		},
	}
	return cmd
}
