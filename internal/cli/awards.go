package cli

import (
	"fmt"

	"github.com/garrow/portfolio/internal/awards"
	"github.com/spf13/cobra"
)

var awardsCmd = &cobra.Command{
	Use:   "awards",
	Short: "Show the award catalog and which awards are earned",
	RunE:  runAwards,
}

var awardsEarnedOnly bool

func init() {
	awardsCmd.Flags().BoolVar(&awardsEarnedOnly, "earned", false, "Only show earned awards")
}

func runAwards(cmd *cobra.Command, args []string) error {
	catalog, err := awards.LoadCatalog()
	if err != nil {
		// Gamification is a primary surface; a broken catalog is fatal.
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	totals := a.store.Totals()
	earnedCount := 0
	for _, award := range catalog {
		earned := awards.Earned(award, totals)
		if earned {
			earnedCount++
		}
		if awardsEarnedOnly && !earned {
			continue
		}
		marker := " "
		if earned {
			marker = "*"
		}
		fmt.Printf("%s %-16s  %s\n", marker, award.Name, award.Description)
	}

	fmt.Printf("\n%d of %d awards earned (%d items, %d completed)\n",
		earnedCount, len(catalog), totals.Items, totals.Completed)
	return nil
}
