package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/recitals/internal/api"
	"github.com/mmynk/recitals/internal/auth"
	"github.com/mmynk/recitals/internal/middleware"
	"github.com/mmynk/recitals/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := service.EnsureAdmin(ctx, store, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
			return err
		}
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	deps := api.Deps{
		Store:      store,
		Auth:       service.NewAuthService(auth.NewPasswordAuthenticator(store, cfg.BcryptCost), tokens, slog.Default()),
		Recitals:   service.NewRecitalService(store),
		Songs:      service.NewSongService(store),
		Users:      service.NewUserService(store),
		Verifier:   tokens,
		CORSOrigin: cfg.CORSOrigin,
	}
	if cfg.RateLimitEnabled() {
		deps.Limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// h2c lets clients speak HTTP/2 without TLS.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(api.NewServer(deps).Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
