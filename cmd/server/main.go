package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"imageserver/internal/http/handlers"
	"imageserver/internal/http/httpapi"
	"imageserver/internal/imagetool"
	"imageserver/internal/infra"
	"imageserver/internal/providers/dalle"
	"imageserver/internal/storage"
	"imageserver/internal/tool"
)

func main() {
	// Load .env when present.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client, err := dalle.NewClient(dalle.Options{
		APIKey:         cfg.AzureAPIKey,
		Endpoint:       cfg.AzureEndpoint,
		Deployment:     cfg.AzureDeployment,
		APIVersion:     cfg.AzureAPIVersion,
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image provider")
	}
	logger.Info().Str("deployment", cfg.AzureDeployment).Msg("image provider configured")

	store, err := storage.NewArtifactStore(cfg.ImagesDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize artifact store")
	}

	handler, err := imagetool.NewHandler(imagetool.HandlerOptions{
		Provider: imagetool.NewDalleProvider(client),
		Store:    store,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image handler")
	}

	registry := tool.NewRegistry()
	if err := registry.Register(handler.Tool()); err != nil {
		logger.Fatal().Err(err).Msg("failed to register tool")
	}

	app := handlers.NewApp(logger, registry, store)
	router := httpapi.NewRouter(app, httpapi.Options{
		RateLimitPerMin: cfg.RateLimitPerMin,
		StaticDir:       store.Root(),
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("tool server listening on :%s", cfg.Port)
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
