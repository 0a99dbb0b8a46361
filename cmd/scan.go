package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/cardscope/pkg/card"
	"github.com/sw33tLie/cardscope/pkg/ocr"
	"github.com/sw33tLie/cardscope/pkg/recognize"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Scan a card photo and look up its market price",
	Long: `Runs the full recognition pipeline on a photo: crops to the card frame,
OCRs the text, guesses the game family from the border color, searches the
marketplace and stores the priced result in the scan history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryHint, _ := cmd.Flags().GetString("category")
		noSave, _ := cmd.Flags().GetBool("no-save")

		extractor := ocr.NewTesseractExtractor(viper.GetString("ocr.languages"))
		scanner := recognize.NewScanner(extractor, newMarketplaceClient())

		scanned, err := scanner.Scan(cmd.Context(), args[0], categoryHint)
		if err != nil {
			var noName *recognize.NoNameError
			if errors.As(err, &noName) {
				fmt.Println("No card name detected. Raw text found on the card:")
				if len(noName.Detected) == 0 {
					fmt.Println("  (nothing)")
				}
				for _, d := range noName.Detected {
					fmt.Printf("  %q (confidence %.2f)\n", d.Text, d.Confidence)
				}
				return fmt.Errorf("could not recognize a card name, try again or search manually")
			}
			var noMatch *recognize.NoMatchError
			if errors.As(err, &noMatch) {
				return fmt.Errorf("recognized %q but the marketplace returned no matches", noMatch.Name)
			}
			return err
		}

		printScannedCard(scanned)

		if !noSave {
			history, err := openHistory()
			if err != nil {
				return err
			}
			defer history.Close()
			if err := history.Add(*scanned); err != nil {
				return err
			}
			fmt.Printf("Saved to scan history (%d scans).\n", history.Len())
		}

		return nil
	},
}

func printScannedCard(c *card.ScannedCard) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", c.Name)
	fmt.Fprintf(w, "Set:\t%s\n", c.SetName)
	fmt.Fprintf(w, "Category:\t%s\n", c.Category)
	fmt.Fprintf(w, "Market price:\t%s\n", card.FormatPrice(c.MarketPrice))
	fmt.Fprintf(w, "Low/Mid/High:\t%s / %s / %s\n",
		card.FormatPrice(c.LowPrice), card.FormatPrice(c.MidPrice), card.FormatPrice(c.HighPrice))
	if c.ProductURL != "" {
		fmt.Fprintf(w, "URL:\t%s\n", c.ProductURL)
	}
	fmt.Fprintf(w, "Confidence:\t%.2f\n", c.Confidence)
	w.Flush()
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("category", "c", "", "Category hint overriding the border-color guess (e.g. pokemon, magic)")
	scanCmd.Flags().Bool("no-save", false, "Don't store the result in the scan history")
}
