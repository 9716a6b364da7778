package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every project and item",
	RunE:  runClear,
}

var clearForce bool

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Skip confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		fmt.Print("Delete ALL projects and items? This cannot be undone. [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.DeleteAll(); err != nil {
		return err
	}
	if err := a.store.Commit(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	fmt.Println("All data deleted.")
	return nil
}
