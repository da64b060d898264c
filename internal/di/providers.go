package di

import (
	"context"
	"fmt"
	"time"

	"SignalPull/internal/domain/models"
	"SignalPull/internal/domain/repository"
	internalrepo "SignalPull/internal/repository"
	"SignalPull/internal/scheduler"
	"SignalPull/internal/services/priceguard"
	"SignalPull/internal/services/vendors"
	"SignalPull/internal/usecase"
	pkgch "SignalPull/pkg/clickhouse"
	"SignalPull/pkg/config"
	pkgkafka "SignalPull/pkg/kafka"
	applogger "SignalPull/pkg/logger"
	"SignalPull/pkg/metrics"
	"SignalPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithAuth(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRunStore creates the ClickHouse run store and ensures its schema.
func ProvideRunStore(chClient *pkgch.Client, l *applogger.Logger) (repository.RunStore, error) {
	store := internalrepo.NewCHRunStore(chClient, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("run store schema: %w", err)
	}
	return store, nil
}

// ProvideActionPublisher creates the Kafka action publisher.
func ProvideActionPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) repository.ActionPublisher {
	return internalrepo.NewKafkaActionPublisher(producer, cfg.Kafka.Topic, l)
}

// ProvideSnapshotStore creates the Redis derivative snapshot store, or nil
// when Redis is disabled; the pipeline then runs without the open-interest
// lookback.
func ProvideSnapshotStore(cfg *config.Config) repository.SnapshotStore {
	if !cfg.Redis.Enabled {
		return nil
	}
	return internalrepo.NewRedisSnapshotStore(internalrepo.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideGuard creates the price guard with the canonical thresholds.
func ProvideGuard() *priceguard.Guard {
	return priceguard.New()
}

// ProvidePipeline assembles the pipeline with its vendor clients and
// universe.
func ProvidePipeline(
	cfg *config.Config,
	l *applogger.Logger,
	guard *priceguard.Guard,
	snapshots repository.SnapshotStore,
	store repository.RunStore,
	publisher repository.ActionPublisher,
	m repository.Metrics,
) *usecase.Pipeline {
	timeout := cfg.Vendors.Timeout

	universe := make([]usecase.Instrument, 0, len(cfg.Universe.Equities)+len(cfg.Universe.Crypto))
	for _, sym := range cfg.Universe.Equities {
		universe = append(universe, usecase.Instrument{Symbol: sym, Asset: models.AssetEquity})
	}
	for _, sym := range cfg.Universe.Crypto {
		universe = append(universe, usecase.Instrument{Symbol: sym, Asset: models.AssetCrypto})
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Log:             l,
		Guard:           guard,
		EquityPrimary:   vendors.NewStooq(l, cfg.Vendors.StooqURL, timeout),
		EquitySecondary: vendors.NewYahoo(l, cfg.Vendors.YahooURL, timeout),
		CryptoPrimary:   vendors.NewBinance(l, cfg.Vendors.BinanceURL, timeout),
		CryptoSecondary: vendors.NewCoinGecko(l, cfg.Vendors.CoinGeckoURL, timeout),
		Derivatives:     vendors.NewBinanceDerivatives(l, cfg.Vendors.BinanceFuturesURL, timeout),
		Snapshots:       snapshots,
		Store:           store,
		Publisher:       publisher,
		Metrics:         m,
	}, universe, cfg.Pipeline.Bars, cfg.Pipeline.Parallel)
}

// ProvideScheduler creates the cron scheduler around the pipeline.
func ProvideScheduler(cfg *config.Config, l *applogger.Logger, pipe *usecase.Pipeline) *scheduler.Scheduler {
	return scheduler.New(l, pipe, cfg.Pipeline.RunTimeout, context.Background())
}

// ProvideApp creates the application server. When a collect topic is
// configured, error logs are aggregated and shipped through the producer.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pipe *usecase.Pipeline,
	sched *scheduler.Scheduler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	store repository.RunStore,
	publisher repository.ActionPublisher,
) *server.App {
	if topic := cfg.Logging.CollectTopic; topic != "" {
		l.AddCollector(&applogger.CollectorConfig{
			FlushInterval:  30 * time.Second,
			CountThreshold: 100,
			Topic:          topic,
			Publisher:      kafkaLogSink{producer: producer},
		})
	}
	return server.New(cfg, l, pipe, sched, chClient, store, publisher)
}

// kafkaLogSink adapts the producer to the log collector's publisher.
type kafkaLogSink struct {
	producer *pkgkafka.Producer
}

func (s kafkaLogSink) Publish(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.PublishBatch(ctx, topic, []pkgkafka.Message{{Value: payload}})
}
