package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/garrow/portfolio/internal/store"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search indexed items, or resolve an activity identifier",
	Long: `Search indexed items by title or detail text.

With --open, the argument is treated as an activity identifier (as
handed out to the system search surface) and resolved back to the item
it names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var searchOpen bool

func init() {
	searchCmd.Flags().BoolVar(&searchOpen, "open", false, "Resolve an activity identifier to its item")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.index == nil {
		return fmt.Errorf("search index is unavailable")
	}

	if searchOpen {
		itemID, err := a.index.LookupIdentifier(args[0])
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println("No item found for that identifier.")
			return nil
		}
		if err != nil {
			return err
		}
		it, err := a.store.ItemByID(itemID)
		if errors.Is(err, store.ErrNotFound) {
			// Index entry survived the item; tolerated staleness.
			fmt.Println("No item found for that identifier.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s  [P%d]  %s\n", it.ID, it.Priority, it.DisplayTitle())
		return nil
	}

	entries, err := a.index.Search(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-36s  %s\n", e.ItemID, e.Title)
	}
	return nil
}
