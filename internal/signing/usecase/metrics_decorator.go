package usecase

import (
	"context"
	"time"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	"github.com/allisson/signatrust/internal/metrics"
	signingService "github.com/allisson/signatrust/internal/signing/service"
)

// signingBackendWithMetrics decorates SigningBackend with metrics instrumentation.
type signingBackendWithMetrics struct {
	next    SigningBackend
	metrics metrics.BusinessMetrics
}

// NewSigningBackendWithMetrics wraps a SigningBackend with metrics recording.
func NewSigningBackendWithMetrics(backend SigningBackend, m metrics.BusinessMetrics) SigningBackend {
	return &signingBackendWithMetrics{
		next:    backend,
		metrics: m,
	}
}

// GenerateKeys records metrics for key generation.
func (s *signingBackendWithMetrics) GenerateKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error {
	start := time.Now()
	err := s.next.GenerateKeys(ctx, dataKey)
	s.record(ctx, "generate_keys", start, err)
	return err
}

// Sign records metrics for signing.
func (s *signingBackendWithMetrics) Sign(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
	content []byte,
	options map[string]string,
) ([]byte, error) {
	start := time.Now()
	signature, err := s.next.Sign(ctx, dataKey, content, options)
	s.record(ctx, "sign", start, err)
	return signature, err
}

// DecodePublicKeys records metrics for public key export.
func (s *signingBackendWithMetrics) DecodePublicKeys(ctx context.Context, dataKey *dataKeyDomain.DataKey) error {
	start := time.Now()
	err := s.next.DecodePublicKeys(ctx, dataKey)
	s.record(ctx, "decode_public_keys", start, err)
	return err
}

// ImportKeys records metrics for key import.
func (s *signingBackendWithMetrics) ImportKeys(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
	privateKey, publicKey, certificate []byte,
) error {
	start := time.Now()
	err := s.next.ImportKeys(ctx, dataKey, privateKey, publicKey, certificate)
	s.record(ctx, "import_keys", start, err)
	return err
}

// LoadPlugin records metrics for plugin construction.
func (s *signingBackendWithMetrics) LoadPlugin(
	ctx context.Context,
	dataKey *dataKeyDomain.DataKey,
) (signingService.SigningPlugin, error) {
	start := time.Now()
	plugin, err := s.next.LoadPlugin(ctx, dataKey)
	s.record(ctx, "load_plugin", start, err)
	return plugin, err
}

func (s *signingBackendWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, s.metrics, "signing", operation, start, err)
}
