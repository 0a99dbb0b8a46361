package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/cardscope/pkg/card"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the marketplace for cards by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		client := newMarketplaceClient()
		results, err := client.SearchCards(cmd.Context(), args[0], card.SearchFilter(category))
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No cards found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSET\tCATEGORY\tMARKET\t")
		for _, c := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				c.ID, c.Name, c.SetName, c.Category, card.FormatPrice(c.MarketPrice))
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("category", "c", "", "Limit results to one game family (e.g. pokemon, magic, yugioh)")
}
