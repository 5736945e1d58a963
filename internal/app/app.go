// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/bracket-crawler/internal/config"
	"github.com/JakeFAU/bracket-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/bracket-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/bracket-crawler/internal/hash/hmac"
	"github.com/JakeFAU/bracket-crawler/internal/id/uuid"
	"github.com/JakeFAU/bracket-crawler/internal/logging"
	"github.com/JakeFAU/bracket-crawler/internal/metrics"
	"github.com/JakeFAU/bracket-crawler/internal/publisher/stream"
	"github.com/JakeFAU/bracket-crawler/internal/worker"
)

// App holds the shared services for one crawl run.
// It is built once at startup from a validated Config and closed when the command ends.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	runID     string
	publisher crawler.Publisher
	worker    *worker.Worker
}

// Option customizes App construction.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	fetcher   crawler.Fetcher
	publisher crawler.Publisher
}

// WithLogger injects a logger instead of building one from config.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithFetcher replaces the Colly fetcher.
func WithFetcher(fetcher crawler.Fetcher) Option {
	return func(o *options) { o.fetcher = fetcher }
}

// WithPublisher replaces the stdout publisher.
func WithPublisher(publisher crawler.Publisher) Option {
	return func(o *options) { o.publisher = publisher }
}

// New wires the hasher, fetcher, scraper, publisher and worker. Records are
// written to stdout unless WithPublisher is given.
func New(cfg config.Config, stdout io.Writer, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		built, err := logging.New(logging.Config{
			Development: cfg.Logging.Development,
			Level:       cfg.Logging.Level,
		})
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		logger = built
	}

	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("init run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))

	if cfg.Hash.Secret == "" {
		logger.Warn("No hash secret configured; email digests use an empty key",
			zap.String("env", config.SecretEnv))
	}
	hasher := hmac.New(cfg.SecretKey())

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.Crawler.UserAgent,
			RespectRobots: cfg.Crawler.RespectRobots,
			Timeout:       cfg.Crawler.RequestTimeout,
			MaxBodyBytes:  cfg.Crawler.MaxBodyBytes,
		})
	}

	publisher := o.publisher
	if publisher == nil {
		if stdout == nil {
			return nil, fmt.Errorf("no output writer configured")
		}
		publisher = stream.New(stdout)
	}

	metrics.Init()
	scraper := crawler.NewScraper(fetcher, hasher, logger.Named("scraper"))
	w := worker.New(scraper, publisher, worker.Config{Delay: cfg.Crawler.Delay}, logger.Named("worker"))

	logger.Debug("Application services initialized",
		zap.Duration("delay", cfg.Crawler.Delay),
		zap.Duration("request_timeout", cfg.Crawler.RequestTimeout),
		zap.String("stdin_mode", cfg.Input.StdinMode),
	)

	return &App{
		cfg:       cfg,
		logger:    logger,
		runID:     runID,
		publisher: publisher,
		worker:    w,
	}, nil
}

// Logger returns the run-scoped logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// RunID returns the identifier attached to every log line of this run.
func (a *App) RunID() string {
	return a.runID
}

// CrawlFile extracts bracketed URLs from the file at path and scrapes them.
// An unreadable file is returned as an error wrapping crawler.ErrReadInput.
func (a *App) CrawlFile(ctx context.Context, path string) (worker.Summary, error) {
	urls, err := crawler.ParseFile(path)
	if err != nil {
		a.logger.Error("Error reading file", zap.String("path", path), zap.Error(err))
		return worker.Summary{}, err
	}
	return a.crawlExtracted(ctx, urls)
}

// CrawlStdin reads r to EOF and scrapes according to the configured stdin mode.
func (a *App) CrawlStdin(ctx context.Context, r io.Reader) (worker.Summary, error) {
	if a.cfg.Input.StdinMode == config.StdinModeURL {
		urls, err := readURLLines(r)
		if err != nil {
			return worker.Summary{}, err
		}
		metrics.ObserveParsedURLs(len(urls))
		return a.worker.Run(ctx, urls)
	}

	urls, err := crawler.ParseReader(r)
	if err != nil {
		a.logger.Error("Error reading standard input", zap.Error(err))
		return worker.Summary{}, err
	}
	return a.crawlExtracted(ctx, urls)
}

func (a *App) crawlExtracted(ctx context.Context, urls []string) (worker.Summary, error) {
	metrics.ObserveParsedURLs(len(urls))
	if err := a.publisher.Publish(ctx, crawler.URLList{URLs: urls}); err != nil {
		return worker.Summary{}, fmt.Errorf("publish url list: %w", err)
	}
	return a.worker.Run(ctx, urls)
}

// readURLLines returns every non-blank, trimmed line of r.
func readURLLines(r io.Reader) ([]string, error) {
	urls := make([]string, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", crawler.ErrReadInput, err)
	}
	return urls, nil
}

// Close flushes the metrics textfile, when configured, and the logger.
func (a *App) Close() error {
	var err error
	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			a.logger.Warn("Error writing metrics textfile", zap.String("path", path), zap.Error(werr))
			err = werr
		}
	}
	_ = a.logger.Sync() //nolint:errcheck // best-effort flush; stderr sync fails on some terminals
	return err
}
