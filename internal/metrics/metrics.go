// Package metrics exposes Prometheus collectors for crawl runs.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	fetchesTotal         *prometheus.CounterVec
	emailsFoundTotal     prometheus.Counter
	fetchDurationSeconds *prometheus.HistogramVec
	urlsParsedTotal      prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bracket_crawler_fetches_total",
				Help: "Total number of page fetches, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		emailsFoundTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bracket_crawler_emails_found_total",
				Help: "Total number of pages on which an email address was found.",
			},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bracket_crawler_fetch_duration_seconds",
				Help:    "Histogram of fetch-and-parse latencies, labeled by status.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"status"},
		)

		urlsParsedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bracket_crawler_urls_parsed_total",
				Help: "Total number of URLs extracted from the input.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(strings.ToLower(rawURL), "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveFetch records one scrape attempt.
func ObserveFetch(rawURL string, status string, duration time.Duration, emailFound bool) {
	Init()
	fetchesTotal.WithLabelValues(SanitizeSite(rawURL), status).Inc()
	fetchDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
	if emailFound {
		emailsFoundTotal.Inc()
	}
}

// ObserveParsedURLs adds n to the extracted URL counter.
func ObserveParsedURLs(n int) {
	Init()
	if n > 0 {
		urlsParsedTotal.Add(float64(n))
	}
}

// WriteTextfile dumps the default registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
