// Command server runs the room token API.
//
//	@title						Room Token API
//	@version					1.0
//	@description				Provisions video rooms and conversations idempotently and issues access tokens for them.
//	@BasePath					/
//	@securityDefinitions.apikey	IdentityToken
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-room-token/docs"
	"github.com/tbourn/go-room-token/internal/auth"
	"github.com/tbourn/go-room-token/internal/config"
	httpapi "github.com/tbourn/go-room-token/internal/http"
	"github.com/tbourn/go-room-token/internal/observability"
	"github.com/tbourn/go-room-token/internal/provider/twilio"
	"github.com/tbourn/go-room-token/internal/services"
	"github.com/tbourn/go-room-token/internal/sysutil"
	"github.com/tbourn/go-room-token/internal/token"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	version := sysutil.Version()

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = sysutil.NewLogger(os.Stderr, cfg.LogPretty, cfg.OTEL.ServiceName, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, version)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config, version string) error {
	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	minter, err := token.New(token.Credentials{
		AccountSID:   cfg.Twilio.AccountSID,
		APIKeySID:    cfg.Twilio.APIKeySID,
		APIKeySecret: cfg.Twilio.APIKeySecret,
	})
	if err != nil {
		return err
	}

	verifier, err := auth.NewFirebaseVerifier(ctx, []byte(cfg.Auth.ServiceAccountJSON), cfg.Auth.DatabaseURL)
	if err != nil {
		return err
	}

	provider := twilio.New(twilio.Credentials{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
	}, cfg.Twilio.ConversationsServiceSID)

	provisioner := services.NewProvisioner(provider, provider, cfg.Twilio.RoomType)
	provisioner.DefaultRegion = cfg.Twilio.DefaultMediaRegion

	deps := httpapi.Deps{
		Tokens:     services.NewTokenService(provisioner, minter, cfg.Twilio.ConversationsServiceSID, cfg.Twilio.RoomType),
		Recordings: services.NewRecordingService(provider),
		Verifier:   verifier,
		Policy:     auth.NewDomainPolicy(cfg.Auth.AllowedDomains...),
	}

	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.BasePath = cfg.APIBasePath

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("room_type", cfg.Twilio.RoomType).
			Bool("token_auth", cfg.Auth.TokenEndpoint).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
