package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/cardscope/pkg/card"
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price <product-id>",
	Short: "Show detailed marketplace pricing for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newMarketplaceClient()

		c, err := client.PricePoints(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", c.Name)
		fmt.Fprintf(w, "Set:\t%s\n", c.SetName)
		fmt.Fprintf(w, "Category:\t%s\n", c.Category)
		fmt.Fprintf(w, "Market price:\t%s\n", card.FormatPrice(c.MarketPrice))
		fmt.Fprintf(w, "Low/Mid/High:\t%s / %s / %s\n",
			card.FormatPrice(c.LowPrice), card.FormatPrice(c.MidPrice), card.FormatPrice(c.HighPrice))
		fmt.Fprintf(w, "URL:\t%s\n", c.ProductURL)
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
}
