package marketplace

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/sw33tLie/cardscope/internal/utils"
	"github.com/sw33tLie/cardscope/pkg/card"
	"github.com/sw33tLie/cardscope/pkg/whttp"
)

// PricePoints returns detailed pricing for one product. The price API is
// tried first; when it yields nothing the product page itself is scraped.
// Results share the search cache and its TTL.
func (c *Client) PricePoints(ctx context.Context, productID string) (*card.MarketplaceCard, error) {
	key := "price-" + productID
	if cards, ok := c.cache.get(key); ok && len(cards) > 0 {
		utils.Log.Debug("price cache hit for ", productID)
		return &cards[0], nil
	}

	if pc, err := c.priceFromAPI(ctx, productID); err == nil && pc != nil {
		c.cache.put(key, []card.MarketplaceCard{*pc})
		return pc, nil
	} else if err != nil {
		utils.Log.Debug("price API failed for ", productID, ": ", err)
	}

	pc, err := c.priceFromProductPage(ctx, productID)
	if err != nil {
		return nil, err
	}
	if pc == nil {
		return nil, ErrNotFound
	}
	c.cache.put(key, []card.MarketplaceCard{*pc})
	return pc, nil
}

func (c *Client) priceFromAPI(ctx context.Context, productID string) (*card.MarketplaceCard, error) {
	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method:  "GET",
		URL:     c.PriceAPIURL + "/product/" + productID + "/pricepoints",
		Context: ctx,
	}, c.http)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, res.StatusCode)
	}

	// The API answers either {"results":[...]} or a bare array of price
	// points per printing; take the first entry in both shapes.
	point := gjson.Get(res.BodyString, "results.0")
	if !point.Exists() {
		point = gjson.Get(res.BodyString, "0")
	}
	if !point.Exists() {
		return nil, nil
	}

	return &card.MarketplaceCard{
		ID:          productID,
		Name:        firstStringOr(point, "Unknown", "productName", "name"),
		SetName:     firstStringOr(point, "Unknown", "setName"),
		Category:    firstStringOr(point, "Unknown", "categoryName"),
		ImageURL:    firstString(point, "imageUrl"),
		ProductURL:  c.BaseURL + "/product/" + productID,
		MarketPrice: firstPrice(point, "marketPrice"),
		LowPrice:    firstPrice(point, "lowPrice", "lowestPrice"),
		MidPrice:    firstPrice(point, "midPrice"),
		HighPrice:   firstPrice(point, "highPrice"),
	}, nil
}

var classPriceRes = map[string]*regexp.Regexp{
	"market": regexp.MustCompile(`market-price|marketPrice`),
	"low":    regexp.MustCompile(`low-price|lowPrice`),
	"mid":    regexp.MustCompile(`mid-price|midPrice`),
	"high":   regexp.MustCompile(`high-price|highPrice`),
}

func (c *Client) priceFromProductPage(ctx context.Context, productID string) (*card.MarketplaceCard, error) {
	productURL := c.BaseURL + "/product/" + productID

	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method:  "GET",
		URL:     productURL,
		Context: ctx,
	}, c.http)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if res.StatusCode == 404 {
		return nil, ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.BodyString))
	if err != nil {
		return nil, fmt.Errorf("parse product page: %w", err)
	}

	name := strings.TrimSpace(doc.Find("h1[class*='product-details__name']").First().Text())
	if name == "" {
		return nil, nil
	}
	setName := strings.TrimSpace(doc.Find("[class*='product-details__set']").First().Text())
	if setName == "" {
		setName = "Unknown"
	}

	category := card.CategoryGeneric
	if crumbs := doc.Find("[class*='breadcrumb']").Text(); crumbs != "" {
		category = categoryFromURL(crumbs)
	}

	pc := &card.MarketplaceCard{
		ID:         productID,
		Name:       name,
		SetName:    setName,
		Category:   category,
		ProductURL: productURL,
	}

	if src, ok := doc.Find("img[class*='product-details__image']").First().Attr("src"); ok {
		pc.ImageURL = src
	}

	prices := map[string]*float64{}
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		for kind, re := range classPriceRes {
			if prices[kind] != nil || !re.MatchString(class) {
				continue
			}
			if m := dollarRe.FindStringSubmatch(s.Text()); m != nil {
				if f, perr := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); perr == nil {
					prices[kind] = &f
				}
			}
		}
	})
	pc.MarketPrice = prices["market"]
	pc.LowPrice = prices["low"]
	pc.MidPrice = prices["mid"]
	pc.HighPrice = prices["high"]

	return pc, nil
}
