package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/sw33tLie/cardscope/pkg/card"
	"github.com/sw33tLie/cardscope/pkg/whttp"
)

// Client speaks the REST contract of the legacy recognition backend, the
// server-backed variant of the scanner. The server classifies an uploaded
// photo and proxies marketplace lookups itself.
type Client struct {
	BaseURL string
	http    *retryablehttp.Client
}

var (
	// ErrInvalidURL means the configured server URL could not be parsed.
	ErrInvalidURL = errors.New("invalid backend URL")
	// ErrNetwork covers transport failures, timeouts and non-2xx statuses.
	ErrNetwork = errors.New("backend request failed")
	// ErrInvalidResponse means the server answered with something that is
	// not the expected JSON envelope.
	ErrInvalidResponse = errors.New("invalid backend response")
	// ErrEncoding means the image file could not be read and serialized.
	ErrEncoding = errors.New("image encoding failed")
)

// ServerError is an explicit failure envelope from the backend
// (success=false plus an error string).
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "backend error: " + e.Message
}

// Classification is the category guess the backend returns for an image.
type Classification struct {
	Category   string
	Confidence float64
}

// IdentifyResult is the outcome of the full identify-and-price pipeline.
// Card is nil when the backend found no match.
type IdentifyResult struct {
	Classification  Classification
	Card            *card.MarketplaceCard
	MatchConfidence float64
	Condition       string
}

// New returns a client for the backend at baseURL. Uploads can be slow, so
// the timeout is generous.
func New(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 0
	rc.HTTPClient.Timeout = 30 * time.Second

	return &Client{BaseURL: baseURL, http: rc}
}

// Health checks the /health endpoint and returns the reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return "", err
	}
	status := gjson.Get(body, "status").String()
	if status == "" {
		return "", ErrInvalidResponse
	}
	return status, nil
}

// Recognize uploads the image for classification only.
func (c *Client) Recognize(ctx context.Context, imagePath string) (*Classification, error) {
	payload, err := imagePayload(imagePath, "")
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, "/api/recognize", payload)
	if err != nil {
		return nil, err
	}
	cls := gjson.Get(body, "classification")
	if !cls.Exists() {
		return nil, ErrInvalidResponse
	}
	return &Classification{
		Category:   cls.Get("category").String(),
		Confidence: cls.Get("confidence").Float(),
	}, nil
}

// Identify runs the full pipeline on the server: classification, database
// match and price lookup. nameHint helps the server when its own matcher
// comes up empty.
func (c *Client) Identify(ctx context.Context, imagePath, nameHint string) (*IdentifyResult, error) {
	payload, err := imagePayload(imagePath, nameHint)
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, "/api/identify", payload)
	if err != nil {
		return nil, err
	}

	out := &IdentifyResult{
		Classification: Classification{
			Category:   gjson.Get(body, "classification.category").String(),
			Confidence: gjson.Get(body, "classification.confidence").Float(),
		},
	}

	info := gjson.Get(body, "card_info")
	if info.Exists() && info.Type != gjson.Null {
		mc := &card.MarketplaceCard{
			Name:     info.Get("name").String(),
			SetName:  info.Get("set_name").String(),
			Category: info.Get("category").String(),
		}
		out.MatchConfidence = info.Get("match_confidence").Float()

		pricing := gjson.Get(body, "pricing")
		if pricing.Exists() && pricing.Type != gjson.Null {
			mc.MarketPrice = optFloat(pricing.Get("market_price"))
			mc.LowPrice = optFloat(pricing.Get("low_price"))
			mc.MidPrice = optFloat(pricing.Get("mid_price"))
			mc.HighPrice = optFloat(pricing.Get("high_price"))
			mc.ProductURL = pricing.Get("tcgplayer_url").String()
			out.Condition = pricing.Get("condition").String()
		}
		out.Card = mc
	}

	return out, nil
}

// Search queries the backend's proxied marketplace search.
func (c *Client) Search(ctx context.Context, query, category string, limit int) ([]card.MarketplaceCard, error) {
	params := url.Values{}
	params.Set("q", query)
	if category != "" {
		params.Set("category", category)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/search", params)
	if err != nil {
		return nil, err
	}

	var out []card.MarketplaceCard
	for _, r := range gjson.Get(body, "results").Array() {
		out = append(out, card.MarketplaceCard{
			ID:          r.Get("product_id").String(),
			Name:        r.Get("name").String(),
			SetName:     r.Get("set_name").String(),
			Category:    r.Get("category").String(),
			ImageURL:    r.Get("image_url").String(),
			ProductURL:  r.Get("tcgplayer_url").String(),
			MarketPrice: optFloat(r.Get("market_price")),
		})
	}
	return out, nil
}

// Price fetches detailed pricing for one product id.
func (c *Client) Price(ctx context.Context, productID string) (*card.MarketplaceCard, error) {
	body, err := c.get(ctx, "/api/price/"+url.PathEscape(productID), nil)
	if err != nil {
		return nil, err
	}

	pricing := gjson.Get(body, "pricing")
	return &card.MarketplaceCard{
		ID:          gjson.Get(body, "product_id").String(),
		Name:        gjson.Get(body, "card_name").String(),
		SetName:     gjson.Get(body, "set_name").String(),
		Category:    gjson.Get(body, "category").String(),
		ImageURL:    gjson.Get(body, "image_url").String(),
		ProductURL:  gjson.Get(body, "tcgplayer_url").String(),
		MarketPrice: optFloat(pricing.Get("market_price")),
		LowPrice:    optFloat(pricing.Get("low_price")),
		MidPrice:    optFloat(pricing.Get("mid_price")),
		HighPrice:   optFloat(pricing.Get("high_price")),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method:  "GET",
		URL:     u.String(),
		Context: ctx,
	}, c.http)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return envelope(res)
}

func (c *Client) post(ctx context.Context, path, payload string) (string, error) {
	if _, err := url.Parse(c.BaseURL + path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method:  "POST",
		URL:     c.BaseURL + path,
		Body:    payload,
		Context: ctx,
		Headers: []whttp.WHTTPHeader{
			{Name: "Content-Type", Value: "application/json"},
		},
	}, c.http)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return envelope(res)
}

// envelope validates the common response shape: JSON with a success flag
// (absent on /health) and an error string on failure.
func envelope(res *whttp.WHTTPRes) (string, error) {
	if !gjson.Valid(res.BodyString) {
		return "", fmt.Errorf("%w: status %d", ErrInvalidResponse, res.StatusCode)
	}
	if success := gjson.Get(res.BodyString, "success"); success.Exists() && !success.Bool() {
		msg := gjson.Get(res.BodyString, "error").String()
		if msg == "" {
			msg = "unknown error"
		}
		return "", &ServerError{Message: msg}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		if msg := gjson.Get(res.BodyString, "error").String(); msg != "" {
			return "", &ServerError{Message: msg}
		}
		return "", fmt.Errorf("%w: status %d", ErrNetwork, res.StatusCode)
	}
	return res.BodyString, nil
}

func imagePayload(imagePath, nameHint string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if nameHint != "" {
		return fmt.Sprintf(`{"image":%s,"card_name_hint":%s}`, strconv.Quote(encoded), strconv.Quote(nameHint)), nil
	}
	return fmt.Sprintf(`{"image":%s}`, strconv.Quote(encoded)), nil
}

func optFloat(r gjson.Result) *float64 {
	if !r.Exists() || r.Type != gjson.Number {
		return nil
	}
	f := r.Float()
	return &f
}
