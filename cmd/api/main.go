package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/tourinfo/internal/adapters/crdb"
	"github.com/robertarktes/tourinfo/internal/adapters/mailapi"
	mongoadapter "github.com/robertarktes/tourinfo/internal/adapters/mongo"
	"github.com/robertarktes/tourinfo/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/tourinfo/internal/adapters/redis"
	smtpadapter "github.com/robertarktes/tourinfo/internal/adapters/smtp"
	"github.com/robertarktes/tourinfo/internal/config"
	"github.com/robertarktes/tourinfo/internal/delivery"
	"github.com/robertarktes/tourinfo/internal/domain"
	"github.com/robertarktes/tourinfo/internal/feed"
	httphandler "github.com/robertarktes/tourinfo/internal/http"
	"github.com/robertarktes/tourinfo/internal/idempotency"
	"github.com/robertarktes/tourinfo/internal/mail"
	"github.com/robertarktes/tourinfo/internal/observability"
	"github.com/robertarktes/tourinfo/internal/orchestrator"
	"github.com/robertarktes/tourinfo/internal/poller"
	"github.com/robertarktes/tourinfo/internal/rateLimit"
	"github.com/robertarktes/tourinfo/internal/stats"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

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
	mongoDB := mongoClient.Database("tourinfo")
	catalog := mongoadapter.NewServiceCatalog(mongoDB, logger)
	notices := mongoadapter.NewNoticeStore(mongoDB, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	cache := redisadapter.NewCache(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, cfg.IdempTTL)
	rl := rateLimit.NewRateLimiter(cache)

	rabbitConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbitConn.Close()
	events, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	primary := mailapi.NewClient(cfg.MailAPIEndpoint, cfg.MailAPIKey, cfg.MailFrom)
	secondary := smtpadapter.NewClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	dispatcher := delivery.NewDispatcher(primary, secondary, logger)

	emergencyFeed := feed.New()
	builder := mail.NewBuilder(cfg.OperatorEmail, cfg.PaymentBaseURL)
	orch := orchestrator.New(notices, events, dispatcher, emergencyFeed, builder, logger)

	aggregator := stats.New(logger, cfg.StatsDeadline, stats.DashboardSources(repo, notices, cache)...)

	noticePoller := poller.New(func(ctx context.Context) ([]domain.AdminNotice, error) {
		return notices.List(ctx, 50)
	}, cfg.PollMaxRetries, cfg.PollRetryDelay, logger)

	pollCtx, pollCancel := context.WithCancel(context.Background())
	defer pollCancel()
	go noticePoller.Run(pollCtx, cfg.PollInterval)

	handlers := httphandler.NewHandlers(cfg, repo, catalog, emergencyFeed, orch, aggregator, noticePoller, idemp)

	r := httphandler.SetupRouter(handlers, logger, rl, cache)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	// Drain in-flight fan-out tasks before exiting.
	orch.Wait()
	logger.Info("Server exiting")
}
