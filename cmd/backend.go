package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/cardscope/pkg/backend"
	"github.com/sw33tLie/cardscope/pkg/card"
)

// backendCmd groups the commands talking to the legacy recognition server
// (the server-backed variant of the scanner).
var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Talk to the legacy recognition backend",
}

func backendClient(cmd *cobra.Command) *backend.Client {
	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		server = viper.GetString("backend.url")
	}
	return backend.New(server)
}

var backendHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := backendClient(cmd).Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("Backend status:", status)
		return nil
	},
}

var backendIdentifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Upload a photo for server-side identification and pricing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hint, _ := cmd.Flags().GetString("hint")

		res, err := backendClient(cmd).Identify(cmd.Context(), args[0], hint)
		if err != nil {
			return err
		}

		fmt.Printf("Classified as %s (confidence %.2f)\n",
			res.Classification.Category, res.Classification.Confidence)

		if res.Card == nil {
			fmt.Println("The backend found no matching card.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", res.Card.Name)
		fmt.Fprintf(w, "Set:\t%s\n", res.Card.SetName)
		fmt.Fprintf(w, "Category:\t%s\n", res.Card.Category)
		fmt.Fprintf(w, "Match confidence:\t%.2f\n", res.MatchConfidence)
		fmt.Fprintf(w, "Market price:\t%s\n", card.FormatPrice(res.Card.MarketPrice))
		if res.Condition != "" {
			fmt.Fprintf(w, "Condition:\t%s\n", res.Condition)
		}
		if res.Card.ProductURL != "" {
			fmt.Fprintf(w, "URL:\t%s\n", res.Card.ProductURL)
		}
		w.Flush()

		return nil
	},
}

var backendSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search through the backend's proxied marketplace index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")

		results, err := backendClient(cmd).Search(cmd.Context(), args[0], category, limit)
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

var backendPriceCmd = &cobra.Command{
	Use:   "price <product-id>",
	Short: "Fetch detailed pricing for a product through the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := backendClient(cmd).Price(cmd.Context(), args[0])
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
	rootCmd.AddCommand(backendCmd)
	backendCmd.PersistentFlags().String("server", "", "Backend base URL (default from config backend.url)")
	backendCmd.AddCommand(backendHealthCmd)
	backendCmd.AddCommand(backendIdentifyCmd)
	backendCmd.AddCommand(backendSearchCmd)
	backendCmd.AddCommand(backendPriceCmd)

	backendIdentifyCmd.Flags().String("hint", "", "Card name hint passed to the backend matcher")
	backendSearchCmd.Flags().StringP("category", "c", "", "Category filter (e.g. pokemon, magic_the_gathering)")
	backendSearchCmd.Flags().Int("limit", 10, "Maximum number of results")
}
