// Package upstream provides the single shared, connection-pooled HTTP
// client the dispatch engine and connectivity probe invoke upstream
// vendors through (spec.md §4.3).
package upstream

import (
	"io"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Chyrain/LLMGateway/common/config"
)

// Client is a pure HTTP invocation layer over a shared *http.Client. It
// carries no URL-joining or vendor-specific logic — that belongs to the
// adaptor that built the request (spec.md §4.3).
var Client = &http.Client{
	Transport: &http.Transport{
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	},
}

// NoRedirectClient is the variant the connectivity probe uses; it never
// follows redirects since a 3xx from a model endpoint is itself diagnostic
// (spec.md §4.3, §4.4).
var NoRedirectClient = &http.Client{
	Transport: Client.Transport,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// Do sends req over the shared client and returns the raw *http.Response.
// Callers are responsible for closing resp.Body.
func Do(req *http.Request) (*http.Response, error) {
	resp, err := Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do upstream request")
	}
	return resp, nil
}

// DoNoRedirect sends req over NoRedirectClient, used by the connectivity
// probe (spec.md §4.4).
func DoNoRedirect(req *http.Request) (*http.Response, error) {
	resp, err := NoRedirectClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do upstream probe request")
	}
	return resp, nil
}

// ReadBodyExcerpt reads up to maxBytes of resp.Body for inclusion in an
// upstream_http_error's detail (spec.md §4.2 rule 5).
func ReadBodyExcerpt(resp *http.Response, maxBytes int64) string {
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	return string(data)
}
