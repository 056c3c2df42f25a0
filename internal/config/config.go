package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	CRDBDSN   string
	MongoURI  string
	RedisAddr string
	RabbitURL string
	HTTPAddr  string

	MailAPIEndpoint string
	MailAPIKey      string
	MailFrom        string
	OperatorEmail   string
	PaymentBaseURL  string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	StatsDeadline    time.Duration
	SnapshotInterval time.Duration
	PollMaxRetries   int
	PollRetryDelay   time.Duration
	PollInterval     time.Duration
	IdempTTL         time.Duration

	OTLPEndpoint string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	statsDeadline, _ := time.ParseDuration(os.Getenv("STATS_DEADLINE"))
	if statsDeadline == 0 {
		statsDeadline = 3 * time.Second
	}
	snapshotInterval, _ := time.ParseDuration(os.Getenv("SNAPSHOT_INTERVAL"))
	if snapshotInterval == 0 {
		snapshotInterval = time.Hour
	}
	pollRetryDelay, _ := time.ParseDuration(os.Getenv("POLL_RETRY_DELAY"))
	if pollRetryDelay == 0 {
		pollRetryDelay = 2 * time.Second
	}
	pollInterval, _ := time.ParseDuration(os.Getenv("POLL_INTERVAL"))
	if pollInterval == 0 {
		pollInterval = 30 * time.Second
	}
	idempTTL, _ := time.ParseDuration(os.Getenv("IDEMP_TTL"))
	if idempTTL == 0 {
		idempTTL = time.Hour
	}
	pollMaxRetries, _ := strconv.Atoi(os.Getenv("POLL_MAX_RETRIES"))
	if pollMaxRetries == 0 {
		pollMaxRetries = 3
	}
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if smtpPort == 0 {
		smtpPort = 587
	}
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	paymentBaseURL := os.Getenv("PAYMENT_BASE_URL")
	if paymentBaseURL == "" {
		paymentBaseURL = "https://tourinfo.example/pay"
	}

	return &Config{
		CRDBDSN:          os.Getenv("CRDB_DSN"),
		MongoURI:         os.Getenv("MONGO_URI"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RabbitURL:        os.Getenv("RABBIT_URL"),
		HTTPAddr:         httpAddr,
		MailAPIEndpoint:  os.Getenv("MAIL_API_ENDPOINT"),
		MailAPIKey:       os.Getenv("MAIL_API_KEY"),
		MailFrom:         os.Getenv("MAIL_FROM"),
		OperatorEmail:    os.Getenv("OPERATOR_EMAIL"),
		PaymentBaseURL:   paymentBaseURL,
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         smtpPort,
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		StatsDeadline:    statsDeadline,
		SnapshotInterval: snapshotInterval,
		PollMaxRetries:   pollMaxRetries,
		PollRetryDelay:   pollRetryDelay,
		PollInterval:     pollInterval,
		IdempTTL:         idempTTL,
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}
