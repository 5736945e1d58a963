package crawler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Scraper fetches a page and reduces it to a Result.
type Scraper struct {
	fetcher Fetcher
	hasher  Hasher
	logger  *zap.Logger
}

// NewScraper wires a Fetcher and a Hasher together.
func NewScraper(fetcher Fetcher, hasher Hasher, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		fetcher: fetcher,
		hasher:  hasher,
		logger:  logger,
	}
}

// Scrape fetches rawURL and returns its title and hashed first email.
// Errors wrap ErrFetch or ErrParse; nothing is printed here.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (Result, error) {
	if s.fetcher == nil {
		return Result{}, fmt.Errorf("%w: no fetcher configured", ErrFetch)
	}
	if s.hasher == nil {
		return Result{}, errors.New("no hasher configured")
	}

	resp, err := s.fetcher.Fetch(ctx, FetchRequest{URL: rawURL})
	if err != nil {
		if errors.Is(err, ErrFetch) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	info, err := ParsePage(resp.Body)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		URL:   rawURL,
		Title: info.Title,
	}
	if info.Email != "" {
		digest, err := s.hasher.Hash([]byte(info.Email))
		if err != nil {
			return Result{}, fmt.Errorf("hash email: %w", err)
		}
		result.Email = digest
	}

	s.logger.Debug("page scraped",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
		zap.Bool("email_found", result.HasEmail()),
	)
	return result, nil
}
