package wire

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	ginadapter "github.com/uniedit/fintoc-gateway/internal/adapter/inbound/gin"
	"github.com/uniedit/fintoc-gateway/internal/adapter/outbound/fintocapi"
	kafkaadapter "github.com/uniedit/fintoc-gateway/internal/adapter/outbound/kafka"
	"github.com/uniedit/fintoc-gateway/internal/adapter/outbound/postgres"
	"github.com/uniedit/fintoc-gateway/internal/adapter/outbound/postprocess"
	redisadapter "github.com/uniedit/fintoc-gateway/internal/adapter/outbound/redis"
	s3adapter "github.com/uniedit/fintoc-gateway/internal/adapter/outbound/s3"
	"github.com/uniedit/fintoc-gateway/internal/domain/fintoc"
	"github.com/uniedit/fintoc-gateway/internal/infra/auth"
	"github.com/uniedit/fintoc-gateway/internal/infra/config"
	"github.com/uniedit/fintoc-gateway/internal/infra/httpclient"
	"github.com/uniedit/fintoc-gateway/internal/port/inbound"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"github.com/uniedit/fintoc-gateway/internal/shared/cache"
	"github.com/uniedit/fintoc-gateway/internal/shared/database"
	"github.com/uniedit/fintoc-gateway/internal/shared/logger"
	"github.com/uniedit/fintoc-gateway/internal/utils/metrics"
)

// Dependencies holds everything the HTTP server needs.
type Dependencies struct {
	Config           *config.Config
	DB               *gorm.DB
	Redis            goredis.UniversalClient
	Logger           *logger.Logger
	ZapLogger        *zap.Logger
	Metrics          *metrics.Metrics
	JWTManager       *auth.JWTManager
	RateLimiter      outbound.RateLimiterPort
	IdempotencyStore outbound.IdempotencyStorePort

	FintocDomain  fintoc.FintocDomain
	WebhookRoutes inbound.FintocWebhookHttpPort
	AdminRoutes   inbound.FintocAdminHttpPort
}

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideZapLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideMetrics,
	ProvideJWTManager,
	ProvideRateLimiter,
	ProvideIdempotencyStore,
)

// ProvideLogger creates the access logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, func()) {
	log := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		LokiURL: cfg.Log.LokiURL,
	})
	return log, log.Close
}

// ProvideZapLogger creates the zap logger used by the domain and adapters.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

// ProvideDatabase opens the database and applies migrations when enabled.
func ProvideDatabase(cfg *config.Config, zapLog *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.DSN()); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		zapLog.Info("database migrations applied")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}

// ProvideRedisClient creates a Redis client. Redis is optional: nil is returned when
// it is not configured or not reachable.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing without idempotency and rate limiting", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = cache.Close(client) }
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New("fintoc_gateway")
}

// ProvideJWTManager creates the admin token manager.
func ProvideJWTManager(cfg *config.Config) *auth.JWTManager {
	return auth.NewJWTManager(cfg.Auth)
}

// ProvideRateLimiter creates the return route rate limiter.
func ProvideRateLimiter(cfg *config.Config, redis goredis.UniversalClient) outbound.RateLimiterPort {
	if redis == nil || !cfg.RateLimit.Enabled {
		return nil
	}
	return redisadapter.NewRateLimiter(redis)
}

// ProvideIdempotencyStore creates the admin idempotency store.
func ProvideIdempotencyStore(cfg *config.Config, redis goredis.UniversalClient) outbound.IdempotencyStorePort {
	if redis == nil || !cfg.Idempotency.Enabled {
		return nil
	}
	return redisadapter.NewIdempotencyStore(redis)
}

// ===== Fintoc Providers =====

// FintocSet provides the Fintoc domain and its adapters.
var FintocSet = wire.NewSet(
	postgres.NewTransactionAdapter,
	postgres.NewFintocEventAdapter,
	postgres.NewWebhookEndpointAdapter,
	ProvideFintocConfig,
	ProvideFintocAPI,
	ProvidePostProcessSignal,
	ProvideEventArchive,
	fintoc.NewFintocDomain,
	ginadapter.NewFintocWebhookAdapter,
	ginadapter.NewFintocAdminAdapter,
)

// ProvideFintocConfig maps configuration to the domain's provider configuration.
func ProvideFintocConfig(cfg *config.Config) fintoc.Config {
	f := cfg.Fintoc
	return fintoc.Config{
		SecretKey:          f.SecretKey,
		WebhookSecret:      f.WebhookSecret,
		WebhookTolerance:   f.WebhookTolerance,
		APIBaseURL:         f.APIBaseURL,
		CollectionMode:     f.CollectionMode,
		EnableBankTransfer: f.EnableBankTransfer,
		EnableCard:         f.EnableCard,
		RecipientAccount: fintoc.RecipientAccount{
			HolderID:      f.RecipientAccount.HolderID,
			Number:        f.RecipientAccount.Number,
			Type:          f.RecipientAccount.Type,
			InstitutionID: f.RecipientAccount.InstitutionID,
		},
		PublicBaseURL:      f.PublicBaseURL,
		WebhookEndpointURL: f.WebhookEndpointURL,
		AccessTokenSecret:  f.AccessTokenSecret,
		StatusPagePath:     f.StatusPagePath,
	}
}

// ProvideFintocAPI creates the Fintoc REST client.
func ProvideFintocAPI(cfg *config.Config, httpClient *http.Client, m *metrics.Metrics, zapLog *zap.Logger) outbound.FintocAPIPort {
	return fintocapi.NewClient(httpClient, cfg.Fintoc.APIBaseURL, cfg.Fintoc.SecretKey, m, zapLog)
}

// ProvidePostProcessSignal selects the post-process signal driver.
func ProvidePostProcessSignal(
	cfg *config.Config,
	redis goredis.UniversalClient,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) (outbound.PostProcessSignalPort, func(), error) {
	switch cfg.PostProcess.Driver {
	case postprocess.DriverKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, nil, fmt.Errorf("post-process driver kafka requires kafka.brokers")
		}
		writer := kafkaadapter.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		signal := postprocess.Instrument(postprocess.DriverKafka, kafkaadapter.NewPostProcessPublisher(writer), m)
		return signal, func() { _ = writer.Close() }, nil

	case postprocess.DriverRedis:
		if redis == nil {
			return nil, nil, fmt.Errorf("post-process driver redis requires a reachable redis")
		}
		signal := redisadapter.NewPostProcessQueue(redis, cfg.PostProcess.RedisList)
		return postprocess.Instrument(postprocess.DriverRedis, signal, m), func() {}, nil

	case postprocess.DriverLog, "":
		return postprocess.Instrument(postprocess.DriverLog, postprocess.NewLogSignal(zapLog), m), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown post-process driver %q", cfg.PostProcess.Driver)
	}
}

// ProvideEventArchive creates the raw payload archive, or nil when disabled.
func ProvideEventArchive(cfg *config.Config) (outbound.EventArchivePort, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	client, err := s3adapter.NewClient(context.Background(), cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("create archive client: %w", err)
	}
	return s3adapter.NewEventArchiveAdapter(client, cfg.Archive.Bucket, cfg.Archive.Prefix), nil
}
