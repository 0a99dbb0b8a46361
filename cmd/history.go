package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/cardscope/pkg/card"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the local scan history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored scans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		scans := history.List()
		if len(scans) == 0 {
			fmt.Println("Scan history is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SCANNED\tNAME\tSET\tCATEGORY\tMARKET\tCONF\t")
		for _, s := range scans {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t\n",
				s.ScannedAt.Local().Format("2006-01-02 15:04"),
				s.Name, s.SetName, s.Category, card.FormatPrice(s.MarketPrice), s.Confidence)
		}
		w.Flush()

		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		if err := history.Clear(); err != nil {
			return err
		}
		fmt.Println("Scan history cleared.")
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-category counts and the total collection value.",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		scans := history.List()
		if len(scans) == 0 {
			fmt.Println("No scans in the history to generate stats.")
			return nil
		}

		counts := map[string]int{}
		values := map[string]float64{}
		var order []string
		var totalValue float64
		for _, s := range scans {
			if _, seen := counts[s.Category]; !seen {
				order = append(order, s.Category)
			}
			counts[s.Category]++
			if s.MarketPrice != nil {
				values[s.Category] += *s.MarketPrice
				totalValue += *s.MarketPrice
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "CATEGORY\tCARDS\tVALUE\t")
		for _, cat := range order {
			fmt.Fprintf(w, "%s\t%d\t$%.2f\t\n", cat, counts[cat], values[cat])
		}
		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t$%.2f\t\n", len(scans), totalValue)
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
