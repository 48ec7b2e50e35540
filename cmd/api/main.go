package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	domain "github.com/eventloft/api/internal/domain"
	"github.com/eventloft/api/internal/handlers"
	"github.com/eventloft/api/internal/platform/config"
	"github.com/eventloft/api/internal/platform/events"
	pfirestore "github.com/eventloft/api/internal/platform/firestore"
	"github.com/eventloft/api/internal/platform/observability"
	firestoreRepo "github.com/eventloft/api/internal/repositories/firestore"
	"github.com/eventloft/api/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	ticketTypeRepo, err := firestoreRepo.NewTicketTypeRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise ticket type repository", zap.Error(err))
	}
	discountRepo, err := firestoreRepo.NewDiscountRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise discount repository", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		TicketTypes: ticketTypeRepo,
		CacheTTL:    cfg.Catalog.CacheTTL,
		Clock:       time.Now,
		Logger:      serviceLogger(logger.Named("catalog")),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	discountService, err := services.NewDiscountService(services.DiscountServiceDeps{
		Discounts: discountRepo,
		Clock:     time.Now,
		Logger:    serviceLogger(logger.Named("discount")),
	})
	if err != nil {
		logger.Fatal("failed to initialise discount service", zap.Error(err))
	}

	cartStore := services.NewCartStore(services.CartStoreDeps{Clock: time.Now})

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Store:      cartStore,
		Catalog:    catalogService,
		Discounts:  discountService,
		Promotions: services.NewPromotionService(),
		FeePolicy: domain.FeePolicy{
			ServiceFeeBps: cfg.Pricing.ServiceFeeBps,
			FixedFee:      cfg.Pricing.FixedFeeCents,
		},
		AutomaticDiscounts: cfg.Features.EnableAutomaticDiscounts,
		Clock:              time.Now,
		Logger:             serviceLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
	if err != nil {
		logger.Fatal("failed to initialise pubsub client", zap.Error(err))
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}()

	checkoutTopic := pubsubClient.Topic(cfg.Events.CheckoutTopic)
	defer checkoutTopic.Stop()

	checkoutPublisher, err := events.NewPubSubCheckoutPublisher(checkoutTopic)
	if err != nil {
		logger.Fatal("failed to initialise checkout publisher", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Carts:     cartService,
		Publisher: checkoutPublisher,
		Clock:     time.Now,
		Logger:    serviceLogger(logger.Named("checkout")),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	evictionCtx, evictionCancel := context.WithCancel(context.Background())
	var evictionWG sync.WaitGroup
	evictionTicker := time.NewTicker(cfg.Carts.EvictionInterval)
	evictionLogger := logger.Named("cart_eviction")
	evictionWG.Add(1)
	go func() {
		defer evictionWG.Done()
		for {
			select {
			case <-evictionTicker.C:
				if removed := cartStore.EvictIdle(cfg.Carts.IdleTTL); removed > 0 {
					evictionLogger.Info("evicted idle carts", zap.Int("count", removed))
				}
			case <-evictionCtx.Done():
				return
			}
		}
	}()

	cartHandlers := handlers.NewCartHandlers(cartService, checkoutService)
	catalogHandlers := handlers.NewCatalogHandlers(catalogService)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfoFromEnv(startedAt)),
		handlers.WithReadinessCheck("firestore", func(ctx context.Context) error {
			probeCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
			defer cancel()
			iter := firestoreClient.Collections(probeCtx)
			_, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(cfg.Firestore.ProjectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(cfg.Firestore.ProjectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("eventloft api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	evictionTicker.Stop()
	evictionCancel()
	evictionWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func serviceLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields)+1)
		zFields = append(zFields, zap.String("event", event))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Debug("service log", zFields...)
	}
}

func buildInfoFromEnv(started time.Time) handlers.BuildInfo {
	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("API_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(os.Getenv("API_ENVIRONMENT"))
	if environment == "" {
		environment = "local"
	}
	return handlers.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}
