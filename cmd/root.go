// Package cmd defines and implements the CLI for the bracket-crawler executable.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/bracket-crawler/internal/app"
	"github.com/JakeFAU/bracket-crawler/internal/config"
	"github.com/JakeFAU/bracket-crawler/internal/worker"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that the command uses.
// Tests can swap in their own factory through newApp.
type App interface {
	Close() error
	Logger() *zap.Logger
	CrawlFile(ctx context.Context, path string) (worker.Summary, error)
	CrawlStdin(ctx context.Context, r io.Reader) (worker.Summary, error)
}

// newApp is the application factory.
var newApp = func(cfg config.Config, stdout io.Writer) (App, error) {
	return app.New(cfg, stdout)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "bracket-crawler [filePath]",
		Short: "Fetch every URL found inside square brackets and report page titles.",
		Long: `bracket-crawler scans a text file (or standard input) for [bracketed]
regions, picks the last http(s) URL in each region and fetches the pages one at
a time. For each page it prints a JSON line with the page title and, when the
page contains an email address, its HMAC-SHA256 digest keyed by IM_SECRET.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,

		// Build the application once flags are parsed and stash it for RunE.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			appInstance, err := newApp(cfg, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		RunE: runCrawl,

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			closeApp(cmd)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

// closeApp releases the app stored on cmd's context, if any.
func closeApp(cmd *cobra.Command) {
	appInstance, ok := cmd.Context().Value(appKey).(App)
	if !ok || appInstance == nil {
		return
	}
	if err := appInstance.Close(); err != nil {
		appInstance.Logger().Warn("Failed to close application services", zap.Error(err))
	}
}

// run executes the root command with args and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		// PersistentPostRun does not fire when RunE fails.
		closeApp(cmd)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// Execute is the main entry point. SIGINT and SIGTERM cancel the run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
