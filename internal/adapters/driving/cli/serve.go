package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookbot/internal/adapters/driven/catalog"
	"github.com/custodia-labs/bookbot/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
	"github.com/custodia-labs/bookbot/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: `Start the HTTP facade.

  GET /?query=<text>&session=<id>   ask the assistant, returns {"response": "..."}
  GET /healthz                      index status

The session can also be sent in the X-Session-ID header. Requests without
a session share the "default" cart.

With --watch the catalog file is watched and the index is rebuilt when it
changes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	serveCmd.Flags().Bool("watch", false, "Rebuild the index when the catalog changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	if !verbose {
		logger.SetLevel(logger.LevelInfo)
	}
	logger.SetTimestamps(true)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureIndexed(ctx); err != nil {
		return err
	}

	settings := domain.DefaultSettings()
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			settings = s
		}
	}
	if addr == "" {
		addr = settings.ServerAddr
	}

	if watch {
		w, err := catalog.NewWatcher(settings.CatalogPath, catalog.DefaultDebounce)
		if err != nil {
			return fmt.Errorf("watch catalog: %w", err)
		}
		defer w.Close() //nolint:errcheck
		go reindexOnChange(ctx, w, indexService)
		logger.Info("Watching %s for changes", w.Path())
	}

	server, err := httpapi.NewServer(chatService, indexService)
	if err != nil {
		return err
	}

	cmd.Printf("Serving on http://%s\n", addr)
	return server.Run(ctx, addr)
}

// changeNotifier reports catalog modifications.
type changeNotifier interface {
	Changes(ctx context.Context) <-chan struct{}
}

// reindexOnChange rebuilds the index after every change until ctx is done.
// Failures are logged and watching continues.
func reindexOnChange(ctx context.Context, changes changeNotifier, index driving.IndexService) {
	for range changes.Changes(ctx) {
		logger.Info("Catalog changed, rebuilding index")
		if _, err := index.Build(ctx, true); err != nil {
			logger.Error("Rebuild failed: %v", err)
		}
	}
}
