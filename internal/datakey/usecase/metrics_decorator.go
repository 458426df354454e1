package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
	"github.com/allisson/signatrust/internal/metrics"
)

// dataKeyUseCaseWithMetrics decorates DataKeyUseCase with metrics instrumentation.
type dataKeyUseCaseWithMetrics struct {
	next    DataKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewDataKeyUseCaseWithMetrics wraps a DataKeyUseCase with metrics recording.
func NewDataKeyUseCaseWithMetrics(useCase DataKeyUseCase, m metrics.BusinessMetrics) DataKeyUseCase {
	return &dataKeyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (d *dataKeyUseCaseWithMetrics) List(ctx context.Context) ([]*dataKeyDomain.DataKey, error) {
	start := time.Now()
	dataKeys, err := d.next.List(ctx)
	d.record(ctx, "data_key_list", start, err)
	return dataKeys, err
}

func (d *dataKeyUseCaseWithMetrics) Create(ctx context.Context, input CreateInput) (*dataKeyDomain.DataKey, error) {
	start := time.Now()
	dataKey, err := d.next.Create(ctx, input)
	d.record(ctx, "data_key_create", start, err)
	return dataKey, err
}

func (d *dataKeyUseCaseWithMetrics) Import(ctx context.Context, input ImportInput) (*dataKeyDomain.DataKey, error) {
	start := time.Now()
	dataKey, err := d.next.Import(ctx, input)
	d.record(ctx, "data_key_import", start, err)
	return dataKey, err
}

func (d *dataKeyUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*dataKeyDomain.DataKey, error) {
	start := time.Now()
	dataKey, err := d.next.Get(ctx, id)
	d.record(ctx, "data_key_get", start, err)
	return dataKey, err
}

func (d *dataKeyUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := d.next.Delete(ctx, id)
	d.record(ctx, "data_key_delete", start, err)
	return err
}

func (d *dataKeyUseCaseWithMetrics) Export(ctx context.Context, id uuid.UUID) (*dataKeyDomain.ExportKey, error) {
	start := time.Now()
	exported, err := d.next.Export(ctx, id)
	d.record(ctx, "data_key_export", start, err)
	return exported, err
}

func (d *dataKeyUseCaseWithMetrics) Enable(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := d.next.Enable(ctx, id)
	d.record(ctx, "data_key_enable", start, err)
	return err
}

func (d *dataKeyUseCaseWithMetrics) Disable(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := d.next.Disable(ctx, id)
	d.record(ctx, "data_key_disable", start, err)
	return err
}

func (d *dataKeyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, d.metrics, "datakey", operation, start, err)
}
