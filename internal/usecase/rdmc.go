package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/openrdm/rdmc-registry"
	"github.com/openrdm/rdmc-registry/internal/domain"
)

var tracer = otel.Tracer("rdmc")

type RdmcUsecase struct {
	repo   RdmcRepository
	signal SignalPublisher
}

// NewRdmcUsecase wires the registry usecase. signal may be nil, in which
// case ingest events are not broadcast.
func NewRdmcUsecase(repo RdmcRepository, signal SignalPublisher) *RdmcUsecase {
	return &RdmcUsecase{
		repo:   repo,
		signal: signal,
	}
}

// Ingest maps the manifest to its derived fields and upserts the record.
// When a first-time insert loses the uniqueness race on external_id, the
// row exists by the time we observe the conflict, so one retry lands on
// the update path.
func (uc *RdmcUsecase) Ingest(ctx context.Context, req rdmc.IngestRequest) (*domain.Rdmc, error) {
	ctx, span := tracer.Start(ctx, "Rdmc.Usecase.Ingest")
	defer span.End()

	fields, contributors := rdmc.DeriveFields(req.Manifest)

	record, err := uc.repo.Upsert(ctx, req, fields, contributors)
	if errors.Is(err, domain.ErrConflict) {
		record, err = uc.repo.Upsert(ctx, req, fields, contributors)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if uc.signal != nil {
		event := rdmc.IngestEvent{
			ExternalID: record.ExternalID,
			Title:      record.Title,
			Updated:    record.UpdatedAt.After(record.CreatedAt),
		}
		if err := uc.signal.Publish(ctx, event); err != nil {
			// Signaling is best effort. The ingest already committed.
			slog.ErrorContext(
				ctx, "Failed to publish ingest event",
				slog.String("error", err.Error()),
				slog.String("module", "usecase"),
			)
		}
	}

	return record, nil
}

func (uc *RdmcUsecase) Get(ctx context.Context, externalID string) (*domain.Rdmc, error) {
	return uc.repo.GetByExternalID(ctx, externalID)
}

func (uc *RdmcUsecase) List(ctx context.Context, filter domain.ListFilter) ([]domain.RdmcSummary, error) {
	return uc.repo.List(ctx, filter)
}

func (uc *RdmcUsecase) GetByContributor(ctx context.Context, orcid, email *string) ([]domain.RdmcSummary, error) {
	return uc.repo.GetByContributor(ctx, orcid, email)
}
