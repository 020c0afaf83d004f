package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/folio/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/folio/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve posts over HTTP and run background tasks",
	Long: `Start the HTTP API together with the background scheduler and the
content watcher.

Routes:
  GET  /posts?type=&page=&per_page=&s=&status=
  GET  /posts/{type}/{slug}
  GET  /types
  GET  /jobs/{id}
  POST /webhook   (GitHub push and pull_request events, HMAC signed)
  GET  /up`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr        string
	serveNoScheduler bool
	serveNoWatcher   bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "do not run background tasks")
	serveCmd.Flags().BoolVar(&serveNoWatcher, "no-watch", false, "do not watch the content root")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errNotConfigured("content service")
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Content:     contentService,
		Export:      exportService,
		Sync:        syncService,
		Submissions: submissionService,
	}, httpapi.Config{WebhookSecret: resolved.Remote.WebhookSecret})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = resolved.Server.Addr
	}
	if resolved.Remote.WebhookSecret == "" {
		logger.Warn("remote.webhook_secret is not set, webhooks will be refused")
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx, addr)
	})
	if scheduler != nil && !serveNoScheduler {
		g.Go(func() error {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if watcher != nil && !serveNoWatcher {
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	cmd.Printf("Listening on http://%s\n", addr)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
