// Package cli implements the bookbot command line with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services set by the bootstrap or directly by tests.
var (
	settingsService driving.SettingsService
	chatService     driving.ChatService
	cartService     driving.CartService
	indexService    driving.IndexService
	closeServices   func() error

	// indexed is set once the index has been checked in this process.
	indexed bool
)

var errServicesNotConfigured = errors.New("services not configured")

// Services is the application wiring produced by a Bootstrap.
type Services struct {
	Chat  driving.ChatService
	Cart  driving.CartService
	Index driving.IndexService

	// Close releases stores and indexes. May be nil.
	Close func() error
}

// Bootstrap builds services on first use so that commands which only
// touch settings never need provider credentials.
type Bootstrap struct {
	// Settings opens the settings service for the config directory.
	// An empty dir selects the default location.
	Settings func(dir string) (driving.SettingsService, error)

	// Services wires the chat pipeline from resolved settings.
	Services func(ctx context.Context, settings domain.Settings, dir string) (*Services, error)
}

var bootstrap *Bootstrap

var rootCmd = &cobra.Command{
	Use:   "bookbot",
	Short: "Bookstore assistant with a shopping cart",
	Long: `bookbot answers questions about a book catalog with retrieval-augmented
generation and runs shopping-cart commands it infers from the conversation.

Start the HTTP facade with 'bookbot serve', ask a single question with
'bookbot ask', or open an interactive session with 'bookbot chat'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.bookbot)")
}

// SetVersion sets the version printed by 'bookbot version'.
func SetVersion(v string) {
	version = v
}

// SetBootstrap installs the service builder used by commands.
func SetBootstrap(b *Bootstrap) {
	bootstrap = b
}

// Execute runs the root command and releases services afterwards.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

func shutdown() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("close services: %v", err)
	}
	closeServices = nil
}

// requireSettings returns the settings service, opening it if needed.
func requireSettings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if bootstrap == nil || bootstrap.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	svc, err := bootstrap.Settings(configDir)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	settingsService = svc
	return svc, nil
}

// requireServices wires the chat, cart and index services if needed.
func requireServices(ctx context.Context) error {
	if chatService != nil && cartService != nil && indexService != nil {
		return nil
	}
	if bootstrap == nil || bootstrap.Services == nil {
		return errServicesNotConfigured
	}

	svc, err := requireSettings()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	built, err := bootstrap.Services(ctx, settings, configDir)
	if err != nil {
		return err
	}
	chatService = built.Chat
	cartService = built.Cart
	indexService = built.Index
	closeServices = built.Close
	return nil
}

// ensureIndexed wires services and makes sure the index is populated.
func ensureIndexed(ctx context.Context) error {
	if err := requireServices(ctx); err != nil {
		return err
	}
	if indexed {
		return nil
	}

	rebuild := false
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			rebuild = settings.Index.Rebuild
		}
	}

	if _, err := indexService.Build(ctx, rebuild); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	indexed = true
	return nil
}
