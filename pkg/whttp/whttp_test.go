package whttp

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendHTTPRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("custom header not forwarded, got %q", got)
		}
		w.Write([]byte("<html><head><title>  Card Search \n</title></head><body>hi</body></html>"))
	}))
	defer srv.Close()

	res, err := SendHTTPRequest(&WHTTPReq{
		Method:  "GET",
		URL:     srv.URL,
		Headers: []WHTTPHeader{{Name: "X-Custom", Value: "yes"}},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.StatusCode != 200 {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	if res.HTTPTitle != "Card Search" {
		t.Fatalf("unexpected title %q", res.HTTPTitle)
	}
	if res.ResponseLength == 0 || res.BodyString == "" {
		t.Fatalf("expected a body, got %+v", res)
	}
}
