package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with fresh sample projects and items",
	Long: `Replace all data with fresh sample projects and items.

Seeding always wipes first, so running it twice leaves the same shape
of data behind rather than accumulating duplicates.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.ResetSampleData(); err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}

	fmt.Println("Seeded 5 sample projects with 10 items each.")
	return nil
}
