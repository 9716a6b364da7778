package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [item-id]",
	Short: "Toggle an item between completed and not completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.ToggleItemCompleted(args[0]); err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	it, err := a.store.ItemByID(args[0])
	if err != nil {
		return err
	}
	if it.Completed {
		fmt.Printf("Completed %q\n", it.DisplayTitle())
	} else {
		fmt.Printf("Reopened %q\n", it.DisplayTitle())
	}
	return nil
}
