package wire

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniedit/fintoc-gateway/internal/adapter/outbound/postprocess"
	"github.com/uniedit/fintoc-gateway/internal/infra/config"
	"github.com/uniedit/fintoc-gateway/internal/utils/metrics"
)

func TestProvideFintocConfig(t *testing.T) {
	cfg := &config.Config{
		Fintoc: config.FintocConfig{
			SecretKey:          "sk_live_1",
			WebhookSecret:      "whsec_1",
			WebhookTolerance:   time.Minute,
			CollectionMode:     "direct",
			EnableBankTransfer: true,
			RecipientAccount: config.RecipientAccountConfig{
				HolderID:      "76.123.456-7",
				Number:        "123456",
				Type:          "checking_account",
				InstitutionID: "cl_banco_de_chile",
			},
			PublicBaseURL:     "https://shop.example.com",
			AccessTokenSecret: "return-secret",
		},
	}

	got := ProvideFintocConfig(cfg)

	assert.Equal(t, "sk_live_1", got.SecretKey)
	assert.Equal(t, "whsec_1", got.WebhookSecret)
	assert.Equal(t, time.Minute, got.WebhookTolerance)
	assert.Equal(t, "direct", got.CollectionMode)
	assert.True(t, got.EnableBankTransfer)
	assert.False(t, got.EnableCard)
	assert.Equal(t, "cl_banco_de_chile", got.RecipientAccount.InstitutionID)
	assert.Equal(t, "123456", got.RecipientAccount.Number)
	assert.Equal(t, "return-secret", got.AccessTokenSecret)
}

func TestProvidePostProcessSignal(t *testing.T) {
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	t.Run("log driver by default", func(t *testing.T) {
		signal, cleanup, err := ProvidePostProcessSignal(&config.Config{}, nil, m, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, signal)
		cleanup()
	})

	t.Run("redis driver requires redis", func(t *testing.T) {
		cfg := &config.Config{PostProcess: config.PostProcessConfig{Driver: postprocess.DriverRedis}}
		_, _, err := ProvidePostProcessSignal(cfg, nil, m, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("kafka driver requires brokers", func(t *testing.T) {
		cfg := &config.Config{PostProcess: config.PostProcessConfig{Driver: postprocess.DriverKafka}}
		_, _, err := ProvidePostProcessSignal(cfg, nil, m, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("kafka driver", func(t *testing.T) {
		cfg := &config.Config{
			PostProcess: config.PostProcessConfig{Driver: postprocess.DriverKafka},
			Kafka:       config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "fintoc.post_process"},
		}
		signal, cleanup, err := ProvidePostProcessSignal(cfg, nil, m, zap.NewNop())
		require.NoError(t, err)
		require.NotNil(t, signal)
		cleanup()
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := &config.Config{PostProcess: config.PostProcessConfig{Driver: "sqs"}}
		_, _, err := ProvidePostProcessSignal(cfg, nil, m, zap.NewNop())
		assert.ErrorContains(t, err, "sqs")
	})
}

func TestProvideOptionalInfrastructure(t *testing.T) {
	cfg := &config.Config{
		RateLimit:   config.RateLimitConfig{Enabled: true},
		Idempotency: config.IdempotencyConfig{Enabled: true},
	}

	assert.Nil(t, ProvideRateLimiter(cfg, nil))
	assert.Nil(t, ProvideIdempotencyStore(cfg, nil))

	archive, err := ProvideEventArchive(cfg)
	require.NoError(t, err)
	assert.Nil(t, archive)

	client, cleanup := ProvideRedisClient(cfg, zap.NewNop())
	assert.Nil(t, client)
	cleanup()
}
