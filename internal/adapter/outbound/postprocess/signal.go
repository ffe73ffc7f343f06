package postprocess

import (
	"context"

	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"github.com/uniedit/fintoc-gateway/internal/utils/metrics"
	"go.uber.org/zap"
)

// Drivers selectable in configuration.
const (
	DriverLog   = "log"
	DriverKafka = "kafka"
	DriverRedis = "redis"
)

// logSignal only logs the signal. Used when no queue is configured.
type logSignal struct {
	logger *zap.Logger
}

// NewLogSignal creates a post-process signal that only logs.
func NewLogSignal(logger *zap.Logger) outbound.PostProcessSignalPort {
	return &logSignal{logger: logger}
}

func (s *logSignal) Signal(_ context.Context, tx *model.Transaction) error {
	s.logger.Info("transaction ready for post-processing",
		zap.Int64("transaction_id", tx.ID),
		zap.String("reference", tx.Reference),
		zap.String("operation", string(tx.Operation)),
		zap.String("state", string(tx.State)),
	)
	return nil
}

// instrumented counts signals per driver and outcome.
type instrumented struct {
	driver  string
	next    outbound.PostProcessSignalPort
	metrics *metrics.Metrics
}

// Instrument wraps next with signal metrics. It returns next when m is nil.
func Instrument(driver string, next outbound.PostProcessSignalPort, m *metrics.Metrics) outbound.PostProcessSignalPort {
	if m == nil {
		return next
	}
	return &instrumented{driver: driver, next: next, metrics: m}
}

func (s *instrumented) Signal(ctx context.Context, tx *model.Transaction) error {
	err := s.next.Signal(ctx, tx)
	s.metrics.RecordPostProcessSignal(s.driver, err)
	return err
}

// Compile-time checks
var (
	_ outbound.PostProcessSignalPort = (*logSignal)(nil)
	_ outbound.PostProcessSignalPort = (*instrumented)(nil)
)
