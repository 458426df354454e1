package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/signatrust/internal/metrics"
)

// encryptionEngineWithMetrics decorates EncryptionEngine with metrics instrumentation.
// Encode and Decode run on every sign request and are left uninstrumented.
type encryptionEngineWithMetrics struct {
	next    EncryptionEngine
	metrics metrics.BusinessMetrics
}

// NewEncryptionEngineWithMetrics wraps an EncryptionEngine with metrics recording.
func NewEncryptionEngineWithMetrics(engine EncryptionEngine, m metrics.BusinessMetrics) EncryptionEngine {
	return &encryptionEngineWithMetrics{
		next:    engine,
		metrics: m,
	}
}

// Initialize records metrics for cluster key initialization.
func (e *encryptionEngineWithMetrics) Initialize(ctx context.Context) error {
	start := time.Now()
	err := e.next.Initialize(ctx)
	e.record(ctx, "cluster_key_initialize", start, err)
	return err
}

// Rotate records metrics for cluster key rotation.
func (e *encryptionEngineWithMetrics) Rotate(ctx context.Context) error {
	start := time.Now()
	err := e.next.Rotate(ctx)
	e.record(ctx, "cluster_key_rotate", start, err)
	return err
}

// RunRotation delegates to the wrapped engine; each refresh goes through its Initialize.
func (e *encryptionEngineWithMetrics) RunRotation(ctx context.Context, interval time.Duration) {
	e.next.RunRotation(ctx, interval)
}

// Encode delegates without instrumentation.
func (e *encryptionEngineWithMetrics) Encode(content []byte) ([]byte, error) {
	return e.next.Encode(content)
}

// Decode delegates without instrumentation.
func (e *encryptionEngineWithMetrics) Decode(content []byte) ([]byte, error) {
	return e.next.Decode(content)
}

// ActiveKey delegates without instrumentation.
func (e *encryptionEngineWithMetrics) ActiveKey() (uuid.UUID, string, bool) {
	return e.next.ActiveKey()
}

func (e *encryptionEngineWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, e.metrics, "crypto", operation, start, err)
}
