package cmd

import (
	"github.com/spf13/viper"

	"github.com/sw33tLie/cardscope/internal/utils"
	"github.com/sw33tLie/cardscope/pkg/marketplace"
	"github.com/sw33tLie/cardscope/pkg/storage"
)

// newMarketplaceClient builds the scraping client, honoring config
// overrides and the global proxy flag.
func newMarketplaceClient() *marketplace.Client {
	client := marketplace.New()

	if base := viper.GetString("marketplace.baseurl"); base != "" {
		client.BaseURL = base
	}
	if api := viper.GetString("marketplace.priceapiurl"); api != "" {
		client.PriceAPIURL = api
	}

	if proxy, _ := rootCmd.PersistentFlags().GetString("proxy"); proxy != "" {
		if err := client.SetProxy(proxy); err != nil {
			utils.Log.Fatal("Invalid proxy URL: ", err)
		}
	}

	return client
}

// openHistory opens the scan history at the configured path.
func openHistory() (*storage.DB, error) {
	return storage.Open(viper.GetString("history.dbpath"))
}
