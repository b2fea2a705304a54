package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/mytheresa/go-shop-catalog/app/admin"
	"github.com/mytheresa/go-shop-catalog/app/catalog"
	"github.com/mytheresa/go-shop-catalog/app/categories"
	"github.com/mytheresa/go-shop-catalog/app/config"
	"github.com/mytheresa/go-shop-catalog/app/database"
	"github.com/mytheresa/go-shop-catalog/app/logger"
	"github.com/mytheresa/go-shop-catalog/app/media"
	"github.com/mytheresa/go-shop-catalog/app/products"
	"github.com/mytheresa/go-shop-catalog/app/properties"
	"github.com/mytheresa/go-shop-catalog/app/server"
	"github.com/mytheresa/go-shop-catalog/app/storage"
	"github.com/mytheresa/go-shop-catalog/models"
)

// lockTTL bounds how long a crashed process can hold a derivation lock.
const lockTTL = 2 * time.Minute

type env struct {
	cfg   config.Config
	log   *slog.Logger
	db    *gorm.DB
	redis *redis.Client
}

func bootstrap(ctx context.Context, cmd *cli.Command) (*env, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Production())
	slog.SetDefault(log)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log, db: db}
	if cfg.RedisAddr != "" {
		e.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := e.redis.Ping(ctx).Err(); err != nil {
			e.close()
			return nil, fmt.Errorf("redis: ping %s: %w", cfg.RedisAddr, err)
		}
	}
	return e, nil
}

func (e *env) close() {
	if e.redis != nil {
		e.redis.Close()
	}
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (e *env) deriver(disk storage.Disk) *media.Deriver {
	opts := []media.Option{media.WithLogger(e.log)}
	if e.redis != nil {
		opts = append(opts, media.WithLocker(media.NewRedisLocker(e.redis, lockTTL)))
	}
	return media.NewDeriver(disk, media.WebPEncoder{}, opts...)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	e, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	disk, err := storage.New(ctx, e.cfg)
	if err != nil {
		return err
	}

	productsRepo := models.NewProductsRepository(e.db)
	categoriesRepo := models.NewCategoriesRepository(e.db)

	opts := products.Options{Timeout: e.cfg.DeriveTimeout}
	var queue *media.Queue
	if e.cfg.DeriveAsync {
		queue = media.NewQueue(e.cfg.DeriveWorkers, e.log)
		opts.Async = true
		opts.Queue = queue
	}
	service := products.NewService(productsRepo, e.deriver(disk), opts)

	routes := server.Routes{
		Catalog:    catalog.NewCatalogHandler(productsRepo, disk),
		Categories: categories.NewCategoryHandler(categoriesRepo),
		Properties: properties.NewPropertyHandler(models.NewPropertiesRepository(e.db)),
		Admin:      admin.NewProductHandler(categoriesRepo, productsRepo, service, disk),
		Health: func(ctx context.Context) error {
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if local, ok := disk.(*storage.LocalDisk); ok {
		routes.MediaURL = e.cfg.MediaURL
		routes.MediaRoot = local.Root()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e.log.Info("starting server", "addr", e.cfg.HTTPAddr, "db", e.cfg.DBDriver, "disk", e.cfg.StorageDisk, "async", e.cfg.DeriveAsync)
	runErr := server.New(e.cfg.HTTPAddr, server.NewRouter(routes, e.log), e.log).Run(ctx)

	if queue != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.DeriveTimeout)
		defer cancel()
		if err := queue.Shutdown(shutdownCtx); err != nil {
			e.log.Warn("derivation queue did not drain", "error", err)
		}
	}
	return runErr
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	e, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := database.Migrate(e.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	e.log.Info("migration complete")
	return nil
}

func derive(ctx context.Context, cmd *cli.Command) error {
	e, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	disk, err := storage.New(ctx, e.cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := products.NewService(models.NewProductsRepository(e.db), e.deriver(disk), products.Options{Timeout: e.cfg.DeriveTimeout})
	report, err := service.Backfill(logger.Inject(ctx, e.log))
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("derive: %d of %d variants failed", report.Failed, report.Ready+report.Failed)
	}
	return nil
}
