// Package crawler defines core types shared across subsystems.
package crawler

import (
	"errors"
	"net/http"
	"time"
)

// Sentinel errors wrapped by the pipeline stages.
var (
	// ErrReadInput marks an input that could not be read.
	ErrReadInput = errors.New("read input")
	// ErrFetch marks a failed or non-2xx page fetch.
	ErrFetch = errors.New("fetch page")
	// ErrParse marks a body that could not be parsed as HTML.
	ErrParse = errors.New("parse page")
)

// Result is emitted for each successfully scraped URL.
// Email holds the keyed digest of the first address on the page, never the address itself.
type Result struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Email string `json:"email,omitempty"`
}

// HasEmail reports whether an address was found on the page.
func (r Result) HasEmail() bool {
	return r.Email != ""
}

// URLList is the record announcing the URLs about to be fetched.
type URLList struct {
	URLs []string `json:"urls"`
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
