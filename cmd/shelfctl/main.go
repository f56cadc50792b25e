// Command shelfctl administers a shelf deployment directly against its
// configured storage: seeding accounts, managing users and importing books.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgo/shelf/internal/app"
	"github.com/forgo/shelf/internal/config"
	"github.com/forgo/shelf/internal/service"
	"github.com/forgo/shelf/internal/session"
)

// env is the wiring shared by every subcommand
type env struct {
	cfg     *config.Config
	stores  *app.Stores
	auth    *service.AuthService
	catalog *service.CatalogService
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Administer the shelf library backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.open(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return e.close()
		},
	}

	root.AddCommand(
		newSeedCmd(e),
		newUsersCmd(e),
		newBooksCmd(e),
	)
	return root
}

func (e *env) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	stores, err := app.OpenStores(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Database.Driver, err)
	}

	e.cfg = cfg
	e.stores = stores
	e.auth = service.NewAuthService(service.AuthServiceConfig{
		UserRepo:   stores.Users,
		Sessions:   session.NewStore(cfg.Session.TTL),
		BcryptCost: cfg.Auth.BcryptCost,
	})
	e.catalog = service.NewCatalogService(service.CatalogServiceConfig{
		BookRepo: stores.Books,
	})
	return nil
}

func (e *env) close() error {
	if e.stores == nil {
		return nil
	}
	return e.stores.Close()
}
