package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airroutes/config"
	"github.com/Domenick1991/airroutes/internal/kafka"
	"github.com/Domenick1991/airroutes/internal/repository"
	"github.com/Domenick1991/airroutes/internal/routing"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// The worker ingests the flat files into PostgreSQL. A dataset that would
// not load into the route index is never written.
func main() {
	_ = godotenv.Load()
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	airportsPath := flag.String("airports", "", "airports file (defaults to data.airports_file)")
	flightsPath := flag.String("flights", "", "flights file (defaults to data.flights_file)")
	flag.Parse()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *airportsPath == "" {
		*airportsPath = cfg.Data.AirportsFile
	}
	if *flightsPath == "" {
		*flightsPath = cfg.Data.FlightsFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := repository.NewFileSource(*airportsPath, *flightsPath).Load(ctx)
	if err != nil {
		log.Fatalf("read dataset: %v", err)
	}
	if err := routing.NewIndex().Load(ds); err != nil {
		log.Fatalf("validate dataset: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	repo := repository.NewDatasetRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	if err := repo.Replace(ctx, ds); err != nil {
		log.Fatalf("store dataset: %v", err)
	}
	log.Printf("stored %d airports, %d flights", len(ds.Airports), len(ds.Flights))

	if !cfg.Kafka.Enabled() {
		return
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	event := kafka.NewDatasetEvent(len(ds.Airports), len(ds.Flights))
	if err := producer.PublishWithRetry(ctx, cfg.Kafka.DatasetTopic, event.ID, event, 3); err != nil {
		log.Printf("publish dataset event: %v", err)
	}
}
