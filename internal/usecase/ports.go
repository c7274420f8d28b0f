package usecase

import (
	"context"

	"github.com/openrdm/rdmc-registry"
	"github.com/openrdm/rdmc-registry/internal/domain"
)

// RdmcRepository defines storage operations for registry records.
type RdmcRepository interface {
	Upsert(ctx context.Context, req rdmc.IngestRequest, fields rdmc.DerivedFields, contributors []rdmc.Contributor) (*domain.Rdmc, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Rdmc, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.RdmcSummary, error)
	GetByContributor(ctx context.Context, orcid, email *string) ([]domain.RdmcSummary, error)
}

// SignalPublisher broadcasts ingest events to realtime subscribers.
type SignalPublisher interface {
	Publish(ctx context.Context, event rdmc.IngestEvent) error
}
