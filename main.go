package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wooshop/internal/config"
	"wooshop/internal/handlers"
	"wooshop/internal/logging"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
	"wooshop/pkg/audit"
	"wooshop/pkg/health"
	"wooshop/pkg/rabbitmq"
)

const (
	healthInterval = 10 * time.Second
	purgeInterval  = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lg, err := logging.New(cfg.Log.Level, cfg.Development())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("Server failed", zap.Error(err))
	}
	lg.Info("Server gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	// --- Database ---
	db, err := repositories.OpenDB(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	defer func() { _ = sqlDB.Close() }()
	if err := repositories.Migrate(db); err != nil {
		return err
	}

	hc := health.New(lg)
	hc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	hc.AddReadinessCheck("database", 2*time.Second, sqlDB.PingContext)

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	couponRepo := repositories.NewGORMCouponRepository(db)

	var purger *repositories.GORMCartRepository
	var cartRepo repositories.CartRepository
	switch cfg.Cart.Store {
	case "redis":
		client := repositories.NewRedisClient(repositories.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "ping redis")
		}
		hc.AddReadinessCheck("redis", 2*time.Second, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		cartRepo = repositories.NewRedisCartRepository(client)
	case "memory":
		cartRepo = repositories.NewMockCartRepository()
	default:
		purger = repositories.NewGORMCartRepository(db)
		cartRepo = purger
	}

	// --- Optional collaborators ---
	var auditTrail services.AuditTrail
	if cfg.Mongo.URI != "" {
		sink, err := audit.Connect(ctx, audit.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return err
		}
		defer func() { _ = sink.Close(context.Background()) }()
		hc.AddReadinessCheck("mongo", 2*time.Second, sink.Ping)
		auditTrail = sink
	}

	var mq *rabbitmq.Client
	if cfg.RabbitMQ.URL != "" {
		mq, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, lg)
		if err != nil {
			return err
		}
		defer func() { _ = mq.Close() }()
	}

	// --- Services ---
	couponService := services.NewCouponService(couponRepo)
	productService := services.NewProductService(productRepo, categoryRepo, tagRepo, lg)
	taxonomyService := services.NewTaxonomyService(categoryRepo, tagRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, cartRepo, lg).
		WithCurrency(cfg.Orders.Currency)
	if cfg.Orders.Transactional {
		orderService.WithUnitOfWork(repositories.NewGORMUnitOfWork(db))
	}
	if mq != nil {
		orderService.WithEvents(mq)
	}
	if auditTrail != nil {
		orderService.WithAudit(auditTrail)
	}

	if cfg.Seed {
		seeder := services.NewSeeder(userRepo, couponRepo, taxonomyService, productService, lg)
		if err := seeder.Seed(ctx); err != nil {
			return err
		}
	}
	if err := couponService.Warm(ctx); err != nil {
		return err
	}

	app := handlers.NewApp(handlers.Services{
		Auth:      services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL, lg),
		Products:  productService,
		Taxonomy:  taxonomyService,
		Reviews:   services.NewReviewService(repositories.NewGORMReviewRepository(db), productRepo, userRepo, lg),
		Carts:     services.NewCartService(cartRepo, productRepo, couponService, cfg.Cart.TTL),
		Orders:    orderService,
		Coupons:   couponService,
		Customers: services.NewCustomerService(userRepo),
		Wishlist:  services.NewWishlistService(repositories.NewGORMWishlistRepository(db), productRepo),
		Shipping:  services.NewShippingService(),
		Payment:   services.NewPaymentService(),
	}, lg, cfg.Pagination.MaxPerPage)
	app.Get("/livez", hc.Live)
	app.Get("/readyz", hc.Ready)

	lg.Info("Starting server",
		zap.String("addr", cfg.App.Port),
		zap.String("db", cfg.DB.Driver),
		zap.String("cart_store", cfg.Cart.Store),
		zap.Bool("transactional_orders", orderService.Transactional()),
		zap.Bool("events", mq != nil),
		zap.Bool("audit", auditTrail != nil),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(cfg.App.Port); err != nil {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		hc.SetReady(false)
		lg.Info("Shutting down server")
		return app.ShutdownWithTimeout(cfg.App.ShutdownTimeout)
	})
	g.Go(func() error {
		return hc.Run(gctx, healthInterval)
	})
	if mq != nil {
		g.Go(func() error {
			return mq.ConsumeOrderEvents(gctx, rabbitmq.LogOrderEvent(lg))
		})
	}
	if purger != nil {
		g.Go(func() error {
			purgeCarts(gctx, purger, lg)
			return nil
		})
	}
	hc.SetReady(true)
	return g.Wait()
}

// purgeCarts deletes expired database carts until ctx is done.
func purgeCarts(ctx context.Context, carts *repositories.GORMCartRepository, lg *zap.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := carts.PurgeExpired(ctx)
			if err != nil {
				lg.Warn("Failed to purge expired carts", zap.Error(err))
				continue
			}
			if n > 0 {
				lg.Info("Purged expired carts", zap.Int64("count", n))
			}
		}
	}
}
