// Package worker implements the sequential scrape loop.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/bracket-crawler/internal/clock/system"
	"github.com/JakeFAU/bracket-crawler/internal/crawler"
	"github.com/JakeFAU/bracket-crawler/internal/metrics"
)

// Scraper turns one URL into a Result.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (crawler.Result, error)
}

// Config controls Worker behavior.
type Config struct {
	// Delay is the pause between two consecutive fetches.
	Delay time.Duration
}

// Outcome is the per-URL result of a run: exactly one of Result and Err is set.
type Outcome struct {
	URL       string
	Result    *crawler.Result
	Err       error
	FetchedAt time.Time
	Duration  time.Duration
}

// Summary aggregates the outcomes of a run in input order.
type Summary struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int
}

// Total is the number of URLs attempted.
func (s Summary) Total() int {
	return len(s.Outcomes)
}

// pauseController abstracts how the worker waits between fetches.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration) error
}

type timerPauseController struct{}

func (timerPauseController) Pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Worker fetches URLs one at a time and publishes each successful Result.
type Worker struct {
	scraper   Scraper
	publisher crawler.Publisher
	cfg       Config
	pause     pauseController
	clock     crawler.Clock
	logger    *zap.Logger
}

// New constructs a Worker.
func New(scraper Scraper, publisher crawler.Publisher, cfg Config, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		scraper:   scraper,
		publisher: publisher,
		cfg:       cfg,
		pause:     timerPauseController{},
		clock:     system.New(),
		logger:    logger,
	}
}

// Run scrapes urls in order. A failed URL is logged and skipped; the error
// return is reserved for cancellation and publish failures.
func (w *Worker) Run(ctx context.Context, urls []string) (Summary, error) {
	summary := Summary{Outcomes: make([]Outcome, 0, len(urls))}
	w.logger.Info("run started", zap.Int("urls", len(urls)), zap.Duration("delay", w.cfg.Delay))

	for i, url := range urls {
		if i > 0 {
			if err := w.pause.Pause(ctx, w.cfg.Delay); err != nil {
				return summary, fmt.Errorf("run canceled: %w", err)
			}
		} else if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run canceled: %w", err)
		}

		outcome := w.handleURL(ctx, url)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Err != nil {
			summary.Failed++
			if ctx.Err() != nil {
				return summary, fmt.Errorf("run canceled: %w", ctx.Err())
			}
			continue
		}

		summary.Succeeded++
		if err := w.publisher.Publish(ctx, *outcome.Result); err != nil {
			return summary, fmt.Errorf("publish result: %w", err)
		}
	}

	w.logger.Info("run finished",
		zap.Int("total", summary.Total()),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (w *Worker) handleURL(ctx context.Context, url string) Outcome {
	start := w.clock.Now()
	result, err := w.scraper.Scrape(ctx, url)
	elapsed := w.clock.Now().Sub(start)

	if err != nil {
		metrics.ObserveFetch(url, metrics.StatusFailure, elapsed, false)
		w.logger.Error("Error fetching the page", zap.String("url", url), zap.Error(err))
		return Outcome{URL: url, Err: err, FetchedAt: start, Duration: elapsed}
	}

	metrics.ObserveFetch(url, metrics.StatusSuccess, elapsed, result.HasEmail())
	w.logger.Debug("page processed", zap.String("url", url), zap.Duration("duration", elapsed))
	return Outcome{URL: url, Result: &result, FetchedAt: start, Duration: elapsed}
}
