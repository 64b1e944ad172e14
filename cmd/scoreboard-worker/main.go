package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
	lrepo "github.com/radieske/accountability-ledger/internal/ledger-service/repo"
	wrepo "github.com/radieske/accountability-ledger/internal/scoreboard-worker/repo"
	"github.com/radieske/accountability-ledger/internal/scoreboard-worker/snapshot"
	"github.com/radieske/accountability-ledger/internal/scoreboard-worker/stats"
	"github.com/radieske/accountability-ledger/internal/shared/cache"
	"github.com/radieske/accountability-ledger/internal/shared/config"
	"github.com/radieske/accountability-ledger/internal/shared/db"
	skafka "github.com/radieske/accountability-ledger/internal/shared/kafka"
	"github.com/radieske/accountability-ledger/internal/shared/logger"
	"github.com/radieske/accountability-ledger/internal/shared/metrics"
	ev "github.com/radieske/accountability-ledger/pkg/contracts/events"
)

// TTL generoso: o snapshot é recalculado a cada resolução, o TTL só limpa usuários inativos
const snapshotTTL = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: fonte de verdade para recomputar o placar
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: destino dos snapshots de placar
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}

	// Kafka consumer: eventos bet_resolved disparam o recálculo
	reader := skafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetResolved, "scoreboard")
	defer reader.Close()

	// DLQ para eventos indecifráveis
	var dlqWriter *kafkago.Writer
	if cfg.TopicBetResolvedDLQ != "" {
		dlqWriter = skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetResolvedDLQ)
		defer dlqWriter.Close()
	}

	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "scoreboard_events_consumed_total", Help: "eventos bet_resolved consumidos"})
	snapshots := prometheus.NewCounter(prometheus.CounterOpts{Name: "scoreboard_snapshots_written_total", Help: "snapshots gravados no redis"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scoreboard_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, snapshots, errorsBy)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	led := ledger.New(lrepo.NewPostgres(pg))
	history := wrepo.NewPostgres(pg)
	snap := snapshot.New(rdb)

	log.Info("scoreboard-worker started", zap.String("consume", cfg.TopicBetResolved))

	ctx := context.Background()

	// Loop principal: consome bet_resolved, recalcula acurácia e streaks, grava snapshot
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			errorsBy.WithLabelValues("consume").Inc()
			time.Sleep(time.Second)
			continue
		}
		consumed.Inc()

		var resolved ev.BetResolved
		if jerr := json.Unmarshal(msg.Value, &resolved); jerr != nil {
			log.Error("unmarshal bet_resolved", zap.Error(jerr))
			errorsBy.WithLabelValues("decode").Inc()
			if dlqWriter != nil {
				_ = skafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}

		if err := refreshScoreboard(ctx, led, history, snap, &resolved); err != nil {
			log.Error("refresh scoreboard", zap.String("userId", resolved.UserID), zap.Error(err))
			errorsBy.WithLabelValues("refresh").Inc()
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
			continue
		}
		snapshots.Inc()
	}
}

// refreshScoreboard recomputa o placar do usuário a partir do banco e grava
// dois snapshots: o geral e o do quarter do evento.
func refreshScoreboard(
	ctx context.Context,
	led *ledger.Ledger,
	history *wrepo.Postgres,
	snap *snapshot.Cache,
	resolved *ev.BetResolved,
) error {
	outcomes, err := history.OutcomeHistory(ctx, resolved.UserID)
	if err != nil {
		return err
	}
	streaks := stats.ComputeStreaks(outcomes)

	for _, quarter := range []string{"", resolved.Quarter} {
		acc, err := led.CalculateAccuracy(ctx, resolved.UserID, quarter)
		if err != nil {
			return err
		}
		sb := snapshot.Scoreboard{
			Accuracy:        acc,
			Streaks:         streaks,
			UpdatedAtUnixMs: time.Now().UnixMilli(),
		}
		if err := snap.Set(ctx, resolved.UserID, quarter, sb, snapshotTTL); err != nil {
			return err
		}
		if resolved.Quarter == "" {
			break
		}
	}
	return nil
}
