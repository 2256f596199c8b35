package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airroutes/config"
	"github.com/Domenick1991/airroutes/internal/bootstrap"
	"github.com/Domenick1991/airroutes/internal/cache"
	"github.com/Domenick1991/airroutes/internal/kafka"
	"github.com/Domenick1991/airroutes/internal/repository"
	"github.com/Domenick1991/airroutes/internal/routing"
	"github.com/Domenick1991/airroutes/internal/service/routes"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source routes.Source
	switch cfg.Data.Source {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		source = repository.NewDatasetRepository(pool)
	default:
		source = repository.NewFileSource(cfg.Data.AirportsFile, cfg.Data.FlightsFile)
	}

	hs := bootstrap.NewHealth()
	opts := []routes.RouteServiceOption{routes.WithReloadHook(bootstrap.ReloadHook(hs))}
	switch cfg.Cache.Driver {
	case "redis":
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache.TTL())
		defer redisCache.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			// lookups fall back to the index on cache errors
			log.Printf("redis ping %s: %v", cfg.Redis.Addr, err)
		}
		cancel()
		opts = append(opts, routes.WithCache(redisCache))
	case "memory":
		memCache, err := cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL())
		if err != nil {
			log.Fatalf("memory cache: %v", err)
		}
		opts = append(opts, routes.WithCache(memCache))
	}

	routeService := routes.NewRouteService(routing.NewIndex(), source, opts...)

	// The service starts even when the first load fails; health reports
	// NOT_SERVING until a reload succeeds.
	if _, err := routeService.Reload(ctx); err != nil {
		log.Printf("initial load failed: %v", err)
	}

	if cfg.Kafka.Enabled() {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.DatasetTopic)
		defer consumer.Close()

		go func() {
			if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.DatasetEvent) error {
				log.Printf("dataset event %s: %d airports, %d flights", event.ID, event.Airports, event.Flights)
				// a failed reload is logged by the service and the old index stays
				_, _ = routeService.Reload(ctx)
				return nil
			}); err != nil && ctx.Err() == nil {
				log.Printf("consumer stopped: %v", err)
			}
		}()
	}

	if interval := cfg.Data.ReloadInterval(); interval > 0 {
		go reloadEvery(ctx, interval, routeService)
	}

	if err := bootstrap.Run(ctx, cfg, routeService, hs); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func reloadEvery(ctx context.Context, interval time.Duration, svc routes.RouteUseCase) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = svc.Reload(ctx)
		case <-ctx.Done():
			return
		}
	}
}
