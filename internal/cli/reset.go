package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all persisted data",
	Long: `Delete the session, registered users, published listings, sent messages
and read marks. Seed data is not affected.

Examples:
  estatehub reset --force`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "confirm deletion")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		return fmt.Errorf("refusing to delete data without --force")
	}
	if err := store.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset record store: %w", err)
	}
	appState.Logout()

	fmt.Fprintln(cmd.OutOrStdout(), "All persisted data deleted.")
	return nil
}
