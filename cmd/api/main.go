package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/givehope/platform/internal/adapter/repo"
	"github.com/givehope/platform/internal/exchange"
	"github.com/givehope/platform/internal/http/handlers"
	"github.com/givehope/platform/internal/http/httpapi"
	"github.com/givehope/platform/internal/infra"
	"github.com/givehope/platform/internal/notify"
	"github.com/givehope/platform/internal/security"
	"github.com/givehope/platform/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	codec, err := security.NewCodec(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid ENCRYPTION_KEY")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	rateSource := exchange.NewAPIClient(cfg.ExchangeRateAPIURL, cfg.ExchangeRateTimeout)
	converter := exchange.NewConverter(rateSource, exchange.NewCache(exchange.CacheTTL), logger)

	notifications := repo.NewNotificationRepository(dbpool)
	gateway := notify.NewStoreGateway(notifications, logger)

	donations := service.NewDonationService(
		repo.NewCaseRepository(dbpool),
		repo.NewDonationRepository(dbpool),
		gateway,
		converter,
		codec,
		logger,
	)

	app := handlers.NewApp(donations, logger)
	router := httpapi.NewRouter(cfg, app, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
