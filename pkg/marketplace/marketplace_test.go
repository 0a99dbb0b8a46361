package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New()
	c.BaseURL = srv.URL
	c.PriceAPIURL = srv.URL + "/mp"
	return c, srv
}

func TestSearchCards_SendsQueryParameters(t *testing.T) {
	var got url.Values
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(embeddedSearchPage))
	}))
	defer srv.Close()

	cards, err := c.SearchCards(context.Background(), "Charizard VMAX", "pokemon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}

	if got.Get("q") != "Charizard VMAX" {
		t.Fatalf("unexpected q parameter: %q", got.Get("q"))
	}
	if got.Get("view") != "grid" {
		t.Fatalf("unexpected view parameter: %q", got.Get("view"))
	}
	if got.Get("productLineName") != "pokemon" {
		t.Fatalf("unexpected productLineName: %q", got.Get("productLineName"))
	}
}

func TestSearchCards_UnfilteredOmitsProductLine(t *testing.T) {
	var got url.Values
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(embeddedSearchPage))
	}))
	defer srv.Close()

	if _, err := c.SearchCards(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["productLineName"]; ok {
		t.Fatal("unfiltered search must not send productLineName")
	}
}

func TestSearchCards_SecondLookupIsServedFromCache(t *testing.T) {
	requests := 0
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(embeddedSearchPage))
	}))
	defer srv.Close()

	for i := 0; i < 3; i++ {
		if _, err := c.SearchCards(context.Background(), "Charizard", "pokemon"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if requests != 1 {
		t.Fatalf("expected 1 upstream request, got %d", requests)
	}

	// A different category is a different cache entry.
	if _, err := c.SearchCards(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("expected 2 upstream requests, got %d", requests)
	}
}

func TestSearchCards_EmptyResultsAreCachedToo(t *testing.T) {
	requests := 0
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("<html><body>no matches</body></html>"))
	}))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		cards, err := c.SearchCards(context.Background(), "Nonexistent", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cards) != 0 {
			t.Fatalf("expected no cards, got %d", len(cards))
		}
	}
	if requests != 1 {
		t.Fatalf("expected the empty result to be cached, got %d requests", requests)
	}
}

func TestSearchCards_CacheExpires(t *testing.T) {
	requests := 0
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(embeddedSearchPage))
	}))
	defer srv.Close()

	now := time.Now()
	c.cache.now = func() time.Time { return now }

	if _, err := c.SearchCards(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(cacheTTL - time.Second)
	if _, err := c.SearchCards(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 1 {
		t.Fatalf("entry expired too early, got %d requests", requests)
	}

	now = now.Add(2 * time.Second)
	if _, err := c.SearchCards(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("expected a refetch after the TTL, got %d requests", requests)
	}
}

func TestSearchCards_HTTPErrorStatus(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := c.SearchCards(context.Background(), "Charizard", "")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestClearCache(t *testing.T) {
	requests := 0
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(embeddedSearchPage))
	}))
	defer srv.Close()

	if _, err := c.SearchCards(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.ClearCache()
	if _, err := c.SearchCards(context.Background(), "Charizard", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Fatalf("expected the cleared entry to be refetched, got %d requests", requests)
	}
}

func TestPricePoints_FromAPI(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mp/product/23120/pricepoints" {
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"results": [{"productName": "Charizard VMAX", "setName": "Darkness Ablaze",
			"categoryName": "Pokemon", "marketPrice": 79.99, "lowPrice": 55.0, "midPrice": 70.0, "highPrice": 120.0}]}`))
	}))
	defer srv.Close()

	pc, err := c.PricePoints(context.Background(), "23120")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Name != "Charizard VMAX" || pc.SetName != "Darkness Ablaze" || pc.Category != "Pokemon" {
		t.Fatalf("unexpected card: %+v", pc)
	}
	if pc.MarketPrice == nil || *pc.MarketPrice != 79.99 {
		t.Fatalf("unexpected market price: %+v", pc.MarketPrice)
	}
	if pc.HighPrice == nil || *pc.HighPrice != 120.0 {
		t.Fatalf("unexpected high price: %+v", pc.HighPrice)
	}
	if pc.ProductURL != c.BaseURL+"/product/23120" {
		t.Fatalf("unexpected product URL: %q", pc.ProductURL)
	}
}

const productPage = `<html><body>
<nav class="breadcrumb">Home / Pokemon / Darkness Ablaze</nav>
<h1 class="product-details__name">Charizard VMAX</h1>
<div class="product-details__set">Darkness Ablaze</div>
<img class="product-details__image" src="https://img.example/23120.jpg">
<section>
  <div class="price-point market-price">Market Price: $79.99</div>
  <div class="price-point low-price">$55.00</div>
  <div class="price-point mid-price">$70.00</div>
  <div class="price-point high-price">$120.00</div>
</section>
</body></html>`

func TestPricePoints_FallsBackToProductPage(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mp/product/23120/pricepoints":
			w.Write([]byte(`{"results": []}`))
		case "/product/23120":
			w.Write([]byte(productPage))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	pc, err := c.PricePoints(context.Background(), "23120")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Name != "Charizard VMAX" || pc.SetName != "Darkness Ablaze" {
		t.Fatalf("unexpected card: %+v", pc)
	}
	if pc.Category != "Pokemon" {
		t.Fatalf("expected category from the breadcrumb, got %q", pc.Category)
	}
	if pc.ImageURL != "https://img.example/23120.jpg" {
		t.Fatalf("unexpected image URL: %q", pc.ImageURL)
	}
	for label, got := range map[string]*float64{
		"market": pc.MarketPrice, "low": pc.LowPrice, "mid": pc.MidPrice, "high": pc.HighPrice,
	} {
		if got == nil {
			t.Fatalf("missing %s price", label)
		}
	}
	if *pc.MarketPrice != 79.99 || *pc.LowPrice != 55.0 || *pc.MidPrice != 70.0 || *pc.HighPrice != 120.0 {
		t.Fatalf("unexpected prices: %+v", pc)
	}
}

func TestPricePoints_NotFound(t *testing.T) {
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := c.PricePoints(context.Background(), "999999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPricePoints_SecondLookupIsCached(t *testing.T) {
	requests := 0
	c, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"results": [{"productName": "Charizard VMAX", "marketPrice": 79.99}]}`))
	}))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		if _, err := c.PricePoints(context.Background(), "23120"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if requests != 1 {
		t.Fatalf("expected 1 upstream request, got %d", requests)
	}
}

func TestCacheKey(t *testing.T) {
	if got := cacheKey("  Charizard  ", ""); got != "charizard-all" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := cacheKey("Black Lotus", "Magic"); got != "black lotus-magic" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestSetProxy_InvalidURL(t *testing.T) {
	c := New()
	if err := c.SetProxy("http://bad proxy:8080"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}
