package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/bracket-crawler/internal/worker"
)

// runCrawl crawls the file named by args[0], or standard input when no path is given.
func runCrawl(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	source := "stdin"
	if len(args) == 1 {
		source = args[0]
	}
	logger.Info("Crawl started", zap.String("source", source))

	var summary worker.Summary
	if len(args) == 1 {
		summary, err = appInstance.CrawlFile(cmd.Context(), args[0])
	} else {
		summary, err = appInstance.CrawlStdin(cmd.Context(), cmd.InOrStdin())
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Crawl interrupted", zap.Int("attempted", summary.Total()))
		}
		return fmt.Errorf("crawl %s: %w", source, err)
	}

	logger.Info("Crawl finished",
		zap.Int("total", summary.Total()),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
