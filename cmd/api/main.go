package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"

	"virtualitems/internal/adapter/api"
	"virtualitems/internal/adapter/api/handler"
	apimiddleware "virtualitems/internal/adapter/api/middleware"
	"virtualitems/internal/adapter/api/router"
	"virtualitems/internal/adapter/repository"
	domainrepo "virtualitems/internal/domain/repository"
	"virtualitems/internal/infrastructure/cache"
	"virtualitems/internal/infrastructure/firebase"
	"virtualitems/internal/infrastructure/ratelimit"
	"virtualitems/internal/infrastructure/storage"
	"virtualitems/internal/infrastructure/websocket"
	"virtualitems/internal/usecase"
	"virtualitems/pkg/config"
	"virtualitems/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := firebase.ClientOptions(cfg.ServiceAccountJSON, cfg.ServiceAccountPath)

	// Requests carrying a verified ID token are forwarded with it; the process token source
	// only covers calls made without one.
	var tokenSource oauth2.TokenSource
	if cfg.RefreshToken != "" {
		tokenSource, err = firebase.NewTokenSource(firebase.TokenSourceConfig{
			APIKey:       cfg.FirebaseApiKey,
			RefreshToken: cfg.RefreshToken,
		})
		if err != nil {
			log.Fatalf("Failed to create token source: %v", err)
		}
	}

	functions := firebase.NewFunctionsClient(firebase.FunctionsConfig{
		ProjectID:    cfg.FirebaseProject,
		Region:       cfg.FirebaseRegion,
		BaseURL:      cfg.FunctionsBaseURL,
		EmulatorHost: cfg.FunctionsEmulator,
		Timeout:      cfg.RequestTimeout,
		TokenSource:  tokenSource,
	})
	logger.Info("Catalog functions client ready for project %s", cfg.FirebaseProject)

	catalog := repository.NewFunctionsVirtualItemRepository(functions, cfg.AppID, cfg.IDBatchSize)
	purchases := repository.NewFunctionsPurchaseRepository(functions)

	var reader domainrepo.VirtualItemReader = catalog
	if cfg.CatalogReadSource == config.SourceFirestore {
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		reader = repository.NewFirestoreVirtualItemRepository(firestoreClient, cfg.AppID)
		logger.Info("Catalog reads served from Firestore")
	}

	var thumbnails domainrepo.ThumbnailRepository = repository.NewFunctionsThumbnailRepository(functions)
	if cfg.ThumbnailSource == config.SourceStorage {
		bucket, err := storage.NewThumbnailBucket(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer bucket.Close()
		thumbnails = bucket
		logger.Info("Thumbnails served from bucket %s", cfg.StorageBucket)
	}

	thumbnailCache, err := cache.NewThumbnailCache(cfg.ThumbnailCacheDir, cfg.ThumbnailMemoryEntries)
	if err != nil {
		log.Fatalf("Failed to initialize thumbnail cache: %v", err)
	}

	identity := firebase.NewIdentityResolver(tokenSource, cfg.AdminUIDs)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	limiter := ratelimit.NewPurchaseLimiter(cfg.PurchaseRatePerMinute)

	virtualItemUseCase := usecase.NewVirtualItemUseCase(reader, catalog, identity, cfg.AppID)
	thumbnailUseCase := usecase.NewThumbnailUseCase(thumbnailCache, thumbnails, reader, identity)
	purchaseUseCase := usecase.NewPurchaseUseCase(reader, purchases, wsManager)
	importUseCase := usecase.NewImportUseCase(catalog, identity)

	keyFunc, err := apimiddleware.NewJWKSKeyfunc(ctx, apimiddleware.SecureTokenJWKSURL)
	if err != nil {
		log.Fatalf("Failed to load signing keys: %v", err)
	}
	authMiddleware := apimiddleware.NewAuthMiddleware(keyFunc, cfg.FirebaseProject)
	adminMiddleware := apimiddleware.NewAdminMiddleware(identity)

	handlers := &handler.Handlers{
		Health:      handler.NewHealthHandler(cfg.AppID, cfg.CatalogReadSource, cfg.ThumbnailSource),
		VirtualItem: handler.NewVirtualItemHandler(virtualItemUseCase),
		Purchase:    handler.NewPurchaseHandler(purchaseUseCase, limiter),
		Thumbnail:   handler.NewThumbnailHandler(thumbnailUseCase),
		Import:      handler.NewImportHandler(importUseCase),
		WebSocket:   handler.NewWebSocketHandler(wsManager, cfg.AllowedOrigins),
	}

	e := echo.New()
	e.HideBanner = true
	e.Debug = !cfg.IsProduction()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	router.Setup(e, handlers, authMiddleware, adminMiddleware)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
