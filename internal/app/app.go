package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/driftroom/driftroom-server/internal/auth"
	"github.com/driftroom/driftroom-server/internal/config"
	"github.com/driftroom/driftroom-server/internal/core"
	transporthttp "github.com/driftroom/driftroom-server/internal/transport/http"
	"github.com/driftroom/driftroom-server/internal/utils"
)

// App wires together the core dispatcher and the transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	secret := cfg.TokenSecret
	if secret == "" {
		// Sessions are ephemeral anyway; a random per-process secret just
		// means tokens do not survive a restart.
		secret = utils.NewID()
		logger.Warn().Msg("no token_secret configured, using a per-process random secret")
	}

	tokens := auth.NewTokenIssuer(auth.Config{
		Secret: []byte(secret),
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	})

	hub := core.NewHub(core.HubConfig{
		ConnectionIdleTTL: cfg.ConnectionIdleTTL,
		RoomIdleTTL:       cfg.RoomIdleTTL,
		ReapInterval:      cfg.ReapInterval,
		MaxFileBytes:      cfg.MaxFileBytes,
		AllowImplicitJoin: cfg.AllowImplicitJoin,
	}, tokens, logger)

	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
