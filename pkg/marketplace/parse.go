package marketplace

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/sw33tLie/cardscope/pkg/card"
)

// searchParser is one strategy for pulling product rows out of the search
// page. Parsers are tried in order; an error means "this pass broke", an
// empty result means "this pass found nothing".
type searchParser interface {
	name() string
	parse(body string) ([]card.MarketplaceCard, error)
}

const (
	productsMarker = `"products":`
	// Search result tiles carry this CSS class on both the old and the
	// current page layout.
	productSectionMarker = "search-result"

	maxEmbeddedResults = 20
)

// embeddedJSONParser extracts the product array the page embeds for its own
// frontend. Preferred because it survives cosmetic layout changes.
type embeddedJSONParser struct{}

func (embeddedJSONParser) name() string { return "embedded-json" }

func (embeddedJSONParser) parse(body string) ([]card.MarketplaceCard, error) {
	idx := strings.Index(body, productsMarker)
	if idx == -1 {
		return nil, nil
	}
	rest := body[idx+len(productsMarker):]

	start := strings.Index(rest, "[")
	if start == -1 {
		return nil, fmt.Errorf("products marker without an array")
	}

	span, err := bracketSpan(rest[start:])
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(span) {
		return nil, fmt.Errorf("embedded products span is not valid JSON")
	}

	var out []card.MarketplaceCard
	for _, p := range gjson.Parse(span).Array() {
		if len(out) >= maxEmbeddedResults {
			break
		}

		id := firstString(p, "productId", "id")
		productURL := ""
		if id != "" {
			productURL = DefaultBaseURL + "/product/" + id
		}

		out = append(out, card.MarketplaceCard{
			ID:          id,
			Name:        firstStringOr(p, "Unknown", "productName", "name", "title"),
			SetName:     firstStringOr(p, "Unknown", "setName", "setUrlName"),
			Category:    "Unknown",
			ImageURL:    firstString(p, "imageUrl", "image"),
			ProductURL:  productURL,
			MarketPrice: firstPrice(p, "marketPrice", "price"),
			LowPrice:    firstPrice(p, "lowestPrice", "lowPrice"),
			MidPrice:    firstPrice(p, "midPrice"),
			HighPrice:   firstPrice(p, "highPrice"),
		})
	}
	return out, nil
}

// bracketSpan returns the substring from the leading '[' to its matching
// ']' by tracking bracket depth. JSON string contents are honored so that
// card names containing brackets don't derail the scan.
func bracketSpan(s string) (string, error) {
	if len(s) == 0 || s[0] != '[' {
		return "", fmt.Errorf("expected an array start")
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[:i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced brackets in products array")
}

func firstString(p gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := p.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func firstStringOr(p gjson.Result, fallback string, keys ...string) string {
	if v := firstString(p, keys...); v != "" {
		return v
	}
	return fallback
}

func firstPrice(p gjson.Result, keys ...string) *float64 {
	for _, k := range keys {
		if v := p.Get(k); v.Exists() && v.Type == gjson.Number {
			f := v.Float()
			return &f
		}
	}
	return nil
}

// htmlParser is the fallback for pages served without the embedded JSON:
// split the document on the result-tile class and regex each fragment.
type htmlParser struct{}

func (htmlParser) name() string { return "html-regex" }

var (
	productHrefRe = regexp.MustCompile(`href="((?:https?://[^"/]+)?/product/(\d+)[^"]*)"`)
	titleAttrRe   = regexp.MustCompile(`title="([^"]+)"`)
	altAttrRe     = regexp.MustCompile(`alt="([^"]+)"`)
	dollarRe      = regexp.MustCompile(`\$([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	imageURLRe    = regexp.MustCompile(`(https?://[^"'\s]+\.(?:jpg|jpeg|png|webp))`)
	subtitleRe    = regexp.MustCompile(`<span[^>]*class="[^"]*subtitle[^"]*"[^>]*>([^<]+)</span>`)
)

// Game families recognized from product URL keywords; anything else stays
// the generic category.
var urlCategoryHints = []struct {
	keyword  string
	category string
}{
	{"pokemon", card.CategoryPokemon},
	{"magic", card.CategoryMagic},
	{"yugioh", "Yu-Gi-Oh!"},
	{"one-piece", "One Piece Card Game"},
	{"lorcana", "Disney Lorcana"},
	{"baseball", "Sports Cards"},
	{"basketball", "Sports Cards"},
	{"football", "Sports Cards"},
	{"sports", "Sports Cards"},
}

func (htmlParser) parse(body string) ([]card.MarketplaceCard, error) {
	sections := strings.Split(body, productSectionMarker)
	if len(sections) < 2 {
		return nil, nil
	}

	var out []card.MarketplaceCard
	for _, sec := range sections[1:] {
		m := productHrefRe.FindStringSubmatch(sec)
		if m == nil {
			continue
		}
		productURL, id := m[1], m[2]

		if strings.HasPrefix(productURL, "http") {
			// Absolute links must still point at the marketplace; ads and
			// partner tiles link elsewhere.
			if !sameMarketplaceDomain(productURL) {
				continue
			}
		} else {
			productURL = DefaultBaseURL + productURL
		}

		name := "Unknown Card"
		if t := titleAttrRe.FindStringSubmatch(sec); t != nil {
			name = t[1]
		} else if a := altAttrRe.FindStringSubmatch(sec); a != nil {
			name = a[1]
		}

		var market *float64
		if pm := dollarRe.FindStringSubmatch(sec); pm != nil {
			if f, err := strconv.ParseFloat(strings.ReplaceAll(pm[1], ",", ""), 64); err == nil {
				market = &f
			}
		}

		imageURL := ""
		if im := imageURLRe.FindStringSubmatch(sec); im != nil {
			imageURL = im[1]
		}

		setName := "Unknown"
		if sm := subtitleRe.FindStringSubmatch(sec); sm != nil {
			setName = strings.TrimSpace(sm[1])
		}

		out = append(out, card.MarketplaceCard{
			ID:          id,
			Name:        name,
			SetName:     setName,
			Category:    categoryFromURL(productURL),
			ImageURL:    imageURL,
			ProductURL:  productURL,
			MarketPrice: market,
		})
	}
	return out, nil
}

func categoryFromURL(productURL string) string {
	low := strings.ToLower(productURL)
	for _, hint := range urlCategoryHints {
		if strings.Contains(low, hint.keyword) {
			return hint.category
		}
	}
	return card.CategoryGeneric
}

// sameMarketplaceDomain reports whether an absolute URL lives under the
// marketplace's registered domain (subdomains included).
func sameMarketplaceDomain(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	base, err := url.Parse(DefaultBaseURL)
	if err != nil {
		return false
	}
	got, err := publicsuffix.Domain(u.Hostname())
	if err != nil {
		return false
	}
	want, err := publicsuffix.Domain(base.Hostname())
	if err != nil {
		return false
	}
	return got == want
}
