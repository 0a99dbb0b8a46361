package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/cardscope/internal/utils"
	"github.com/sw33tLie/cardscope/pkg/card"
	"github.com/sw33tLie/cardscope/pkg/whttp"
)

const (
	DefaultBaseURL     = "https://www.tcgplayer.com"
	DefaultPriceAPIURL = "https://mpapi.tcgplayer.com/v2"

	searchPath = "/search/product/all"

	cacheTTL       = 300 * time.Second
	requestTimeout = 20 * time.Second
)

// Client looks up cards on the marketplace search page. It has no API key
// and no stable contract: results come from scraping whatever the page
// currently serves, so a layout change degrades to empty results.
type Client struct {
	BaseURL     string
	PriceAPIURL string

	http    *retryablehttp.Client
	cache   *searchCache
	parsers []searchParser
}

// New returns a client against the real marketplace endpoints.
func New() *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	// Retry only what retryablehttp classifies as retryable (429/5xx and
	// connection resets); a timeout still surfaces to the caller.
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = requestTimeout

	return &Client{
		BaseURL:     DefaultBaseURL,
		PriceAPIURL: DefaultPriceAPIURL,
		http:        rc,
		cache:       newSearchCache(cacheTTL),
		parsers:     []searchParser{embeddedJSONParser{}, htmlParser{}},
	}
}

// SetProxy routes all marketplace traffic through an HTTP proxy.
func (c *Client) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	c.http.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return nil
}

// SearchCards runs a search for query, optionally filtered to one
// product line (e.g. "pokemon"). Results are cached per (query, category)
// for five minutes; a cached entry is returned without any network call.
func (c *Client) SearchCards(ctx context.Context, query, category string) ([]card.MarketplaceCard, error) {
	key := cacheKey(query, category)
	if cards, ok := c.cache.get(key); ok {
		utils.Log.Debug("search cache hit for ", key)
		return cards, nil
	}

	u, err := url.Parse(c.BaseURL + searchPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("view", "grid")
	if category != "" {
		q.Set("productLineName", category)
	}
	u.RawQuery = q.Encode()

	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method:  "GET",
		URL:     u.String(),
		Context: ctx,
	}, c.http)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, res.StatusCode)
	}

	cards := c.parseSearch(res.BodyString)
	utils.Log.Debug("search ", key, " returned ", len(cards), " cards (page title: ", res.HTTPTitle, ")")

	c.cache.put(key, cards)
	return cards, nil
}

// parseSearch runs the parser chain in order and returns the first
// non-empty result set. A parser error is logged and the chain moves on;
// when every pass comes back empty the search result is simply empty,
// indistinguishable from a genuine absence of matches.
func (c *Client) parseSearch(body string) []card.MarketplaceCard {
	for _, p := range c.parsers {
		cards, err := p.parse(body)
		if err != nil {
			utils.Log.Debug("search parser ", p.name(), " failed: ", err)
			continue
		}
		if len(cards) > 0 {
			return cards
		}
	}
	return nil
}

// ClearCache drops all cached search and price entries immediately.
func (c *Client) ClearCache() {
	c.cache.clear()
}
