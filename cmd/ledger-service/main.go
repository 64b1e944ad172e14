package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	lhttp "github.com/radieske/accountability-ledger/internal/ledger-service/http"
	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
	kpub "github.com/radieske/accountability-ledger/internal/ledger-service/producer"
	"github.com/radieske/accountability-ledger/internal/ledger-service/repo"
	"github.com/radieske/accountability-ledger/internal/shared/config"
	"github.com/radieske/accountability-ledger/internal/shared/db"
	skafka "github.com/radieske/accountability-ledger/internal/shared/kafka"
	"github.com/radieske/accountability-ledger/internal/shared/logger"
	"github.com/radieske/accountability-ledger/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Kafka writers (bet_created / bet_resolved)
	createdWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetCreated)
	defer createdWriter.Close()
	resolvedWriter := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetResolved)
	defer resolvedWriter.Close()

	// deps
	store := repo.NewPostgres(pg)
	led := ledger.New(store)
	publ := kpub.NewKafkaPublisher(createdWriter, resolvedWriter)

	// HTTP público
	api := lhttp.NewServer(log, led, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("ledger-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
