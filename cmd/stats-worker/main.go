package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/tourinfo/internal/adapters/crdb"
	mongoadapter "github.com/robertarktes/tourinfo/internal/adapters/mongo"
	"github.com/robertarktes/tourinfo/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/tourinfo/internal/adapters/redis"
	"github.com/robertarktes/tourinfo/internal/config"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/observability"
	"github.com/robertarktes/tourinfo/internal/poller"
	"github.com/robertarktes/tourinfo/internal/stats"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	notices := mongoadapter.NewNoticeStore(mongoClient.Database("tourinfo"), logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	cache := redisadapter.NewCache(redisClient)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	events, err := rabbit.NewPublisher(conn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	aggregator := stats.New(logger, cfg.StatsDeadline, stats.DashboardSources(repo, notices, cache)...)

	noticePoller := poller.New(func(ctx context.Context) ([]domain.AdminNotice, error) {
		return notices.List(ctx, 50)
	}, cfg.PollMaxRetries, cfg.PollRetryDelay, logger)

	worker := NewSnapshotWorker(aggregator, noticePoller, events, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go noticePoller.Run(ctx, cfg.PollInterval)
	go worker.Run(ctx, cfg.SnapshotInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown stats worker")
}

// SnapshotWorker periodically aggregates dashboard stats and broadcasts
// the snapshot to the event exchange for back-office consumers.
type SnapshotWorker struct {
	aggregator *stats.Aggregator
	poller     *poller.Poller
	events     *rabbit.Publisher
	logger     observability.Logger
}

func NewSnapshotWorker(aggregator *stats.Aggregator, p *poller.Poller, events *rabbit.Publisher, logger observability.Logger) *SnapshotWorker {
	return &SnapshotWorker{aggregator: aggregator, poller: p, events: events, logger: logger}
}

func (w *SnapshotWorker) Run(ctx context.Context, interval time.Duration) {
	w.logger.Info("Stats worker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.publishSnapshot(ctx)
		}
	}
}

func (w *SnapshotWorker) publishSnapshot(ctx context.Context) {
	snap := w.aggregator.Aggregate(ctx)
	_, degraded := w.poller.Snapshot()

	payload, _ := json.Marshal(map[string]interface{}{
		"stats":            snap.Values,
		"failed":           snap.Failed,
		"timed_out":        snap.TimedOut,
		"notices_degraded": degraded,
		"generated_at":     snap.GeneratedAt,
	})
	if err := w.events.Publish(ctx, "stats.snapshot", payload); err != nil {
		w.logger.Error("failed to publish stats snapshot: ", err)
		return
	}
	w.logger.WithField("timed_out", snap.TimedOut).Info("stats snapshot published")
}
