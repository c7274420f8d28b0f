package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/openrdm/rdmc-registry"
	"github.com/openrdm/rdmc-registry/internal/domain"
)

type mockRdmcRepo struct {
	upsertCalls  int
	lastFields   rdmc.DerivedFields
	lastContribs []rdmc.Contributor
	conflicts    int
	failWith     error
}

func (m *mockRdmcRepo) Upsert(ctx context.Context, req rdmc.IngestRequest, fields rdmc.DerivedFields, contributors []rdmc.Contributor) (*domain.Rdmc, error) {
	m.upsertCalls++
	m.lastFields = fields
	m.lastContribs = contributors
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.conflicts > 0 {
		m.conflicts--
		return nil, domain.ErrConflict
	}
	now := time.Now()
	return &domain.Rdmc{
		ExternalID: req.ExternalID,
		Title:      fields.Title,
		Manifest:   req.Manifest,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (m *mockRdmcRepo) GetByExternalID(ctx context.Context, externalID string) (*domain.Rdmc, error) {
	return nil, domain.NotFoundError{Resource: "rdmc"}
}

func (m *mockRdmcRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.RdmcSummary, error) {
	return []domain.RdmcSummary{}, nil
}

func (m *mockRdmcRepo) GetByContributor(ctx context.Context, orcid, email *string) ([]domain.RdmcSummary, error) {
	return []domain.RdmcSummary{}, nil
}

type mockPublisher struct {
	published []rdmc.IngestEvent
	failWith  error
}

func (m *mockPublisher) Publish(ctx context.Context, event rdmc.IngestEvent) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.published = append(m.published, event)
	return nil
}

func TestIngestMapsManifest(t *testing.T) {
	repo := &mockRdmcRepo{}
	pub := &mockPublisher{}
	uc := NewRdmcUsecase(repo, pub)

	req := rdmc.IngestRequest{
		ExternalID: "rdmc-1",
		Manifest: rdmc.Manifest{
			"RDMC Title": "Example Container",
			"RDMC Metadata": map[string]any{
				"Subject": "biology",
				"Contributors": []any{
					map[string]any{"first_name": "Jane", "last_name": "Doe"},
				},
			},
		},
	}

	record, err := uc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if record.ExternalID != "rdmc-1" {
		t.Fatalf("unexpected record: %+v", record)
	}

	if repo.lastFields.Title != "Example Container" {
		t.Fatalf("mapper output not passed to repository: %+v", repo.lastFields)
	}
	if repo.lastFields.Subject == nil || *repo.lastFields.Subject != "biology" {
		t.Fatalf("subject not derived: %+v", repo.lastFields)
	}
	if len(repo.lastContribs) != 1 || repo.lastContribs[0].FirstName != "Jane" {
		t.Fatalf("contributors not derived: %+v", repo.lastContribs)
	}

	if len(pub.published) != 1 || pub.published[0].ExternalID != "rdmc-1" {
		t.Fatalf("expected one ingest event, got %+v", pub.published)
	}
}

func TestIngestRetriesOnConflict(t *testing.T) {
	repo := &mockRdmcRepo{conflicts: 1}
	uc := NewRdmcUsecase(repo, nil)

	_, err := uc.Ingest(context.Background(), rdmc.IngestRequest{
		ExternalID: "rdmc-2",
		Manifest:   rdmc.Manifest{},
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if repo.upsertCalls != 2 {
		t.Fatalf("expected 2 upsert attempts, got %d", repo.upsertCalls)
	}
}

func TestIngestSurfacesRepositoryErrors(t *testing.T) {
	repo := &mockRdmcRepo{failWith: errors.New("connection refused")}
	uc := NewRdmcUsecase(repo, nil)

	_, err := uc.Ingest(context.Background(), rdmc.IngestRequest{
		ExternalID: "rdmc-3",
		Manifest:   rdmc.Manifest{},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if repo.upsertCalls != 1 {
		t.Fatalf("non-conflict errors must not be retried, got %d attempts", repo.upsertCalls)
	}
}

// fakeRdmcStore emulates the persistence gateway's upsert semantics in
// memory: update-in-place keyed by external_id, with the contributor set
// replaced wholesale on every ingest. When rival is set, a concurrent
// writer wins the first insert and the store reports a conflict.
type fakeRdmcStore struct {
	records map[string]*domain.Rdmc
	rival   *rdmc.IngestRequest
}

func newFakeRdmcStore() *fakeRdmcStore {
	return &fakeRdmcStore{records: map[string]*domain.Rdmc{}}
}

func (f *fakeRdmcStore) Upsert(ctx context.Context, req rdmc.IngestRequest, fields rdmc.DerivedFields, contributors []rdmc.Contributor) (*domain.Rdmc, error) {
	existing, ok := f.records[req.ExternalID]

	if !ok && f.rival != nil {
		rivalFields, rivalContribs := rdmc.DeriveFields(f.rival.Manifest)
		now := time.Now()
		f.records[f.rival.ExternalID] = &domain.Rdmc{
			ExternalID:        f.rival.ExternalID,
			Title:             rivalFields.Title,
			Subject:           rivalFields.Subject,
			ContributorsCount: rivalFields.ContributorsCount,
			Manifest:          f.rival.Manifest,
			Contributors:      rivalContribs,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		f.rival = nil
		return nil, domain.ErrConflict
	}

	now := time.Now()
	stored := &domain.Rdmc{
		ExternalID:        req.ExternalID,
		Title:             fields.Title,
		Subject:           fields.Subject,
		ContributorsCount: fields.ContributorsCount,
		ContributorsText:  fields.ContributorsText,
		Manifest:          req.Manifest,
		Contributors:      contributors,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if ok {
		stored.CreatedAt = existing.CreatedAt
	}
	f.records[req.ExternalID] = stored
	return stored, nil
}

func (f *fakeRdmcStore) GetByExternalID(ctx context.Context, externalID string) (*domain.Rdmc, error) {
	if record, ok := f.records[externalID]; ok {
		return record, nil
	}
	return nil, domain.NotFoundError{Resource: "rdmc"}
}

func (f *fakeRdmcStore) List(ctx context.Context, filter domain.ListFilter) ([]domain.RdmcSummary, error) {
	return []domain.RdmcSummary{}, nil
}

func (f *fakeRdmcStore) GetByContributor(ctx context.Context, orcid, email *string) ([]domain.RdmcSummary, error) {
	return []domain.RdmcSummary{}, nil
}

func manifestWithContributors(title string, names ...string) rdmc.Manifest {
	contributors := []any{}
	for _, name := range names {
		contributors = append(contributors, map[string]any{
			"first_name": name,
			"last_name":  "Tester",
		})
	}
	return rdmc.Manifest{
		"RDMC Title": title,
		"RDMC Metadata": map[string]any{
			"Contributors": contributors,
		},
	}
}

func TestIngestIdempotent(t *testing.T) {
	store := newFakeRdmcStore()
	uc := NewRdmcUsecase(store, nil)

	req := rdmc.IngestRequest{
		ExternalID: "rdmc-10",
		Manifest:   manifestWithContributors("Repeated Container", "Ann", "Ben"),
	}

	first, err := uc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	second, err := uc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected one stored record, got %d", len(store.records))
	}
	if first.Title != second.Title || first.ContributorsCount != second.ContributorsCount {
		t.Fatalf("derived fields differ between ingests: %+v vs %+v", first, second)
	}
	if len(second.Contributors) != 2 ||
		second.Contributors[0].FirstName != "Ann" ||
		second.Contributors[1].FirstName != "Ben" {
		t.Fatalf("unexpected contributor set after re-ingest: %+v", second.Contributors)
	}
}

func TestIngestReplacesContributorSet(t *testing.T) {
	store := newFakeRdmcStore()
	uc := NewRdmcUsecase(store, nil)

	if _, err := uc.Ingest(context.Background(), rdmc.IngestRequest{
		ExternalID: "rdmc-11",
		Manifest:   manifestWithContributors("Container", "Ann", "Ben"),
	}); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}

	record, err := uc.Ingest(context.Background(), rdmc.IngestRequest{
		ExternalID: "rdmc-11",
		Manifest:   manifestWithContributors("Container", "Cleo"),
	})
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected one stored record, got %d", len(store.records))
	}
	if len(record.Contributors) != 1 || record.Contributors[0].FirstName != "Cleo" {
		t.Fatalf("prior contributors must not survive re-ingest: %+v", record.Contributors)
	}
	if record.ContributorsCount != 1 {
		t.Fatalf("expected contributor count 1, got %d", record.ContributorsCount)
	}
}

func TestIngestConflictRetryUpdatesExisting(t *testing.T) {
	store := newFakeRdmcStore()
	store.rival = &rdmc.IngestRequest{
		ExternalID: "rdmc-12",
		Manifest:   manifestWithContributors("Rival Version", "Rae"),
	}
	uc := NewRdmcUsecase(store, nil)

	record, err := uc.Ingest(context.Background(), rdmc.IngestRequest{
		ExternalID: "rdmc-12",
		Manifest:   manifestWithContributors("Our Version", "Ann", "Ben"),
	})
	if err != nil {
		t.Fatalf("expected retry to land on the update path, got %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected one stored record after the race, got %d", len(store.records))
	}
	if record.Title != "Our Version" {
		t.Fatalf("retry must replace the rival's fields, got %+v", record)
	}
	if len(record.Contributors) != 2 || record.Contributors[0].FirstName != "Ann" {
		t.Fatalf("retry must replace the rival's contributors: %+v", record.Contributors)
	}
}

func TestIngestIgnoresPublishFailure(t *testing.T) {
	repo := &mockRdmcRepo{}
	pub := &mockPublisher{failWith: errors.New("redis down")}
	uc := NewRdmcUsecase(repo, pub)

	record, err := uc.Ingest(context.Background(), rdmc.IngestRequest{
		ExternalID: "rdmc-4",
		Manifest:   rdmc.Manifest{},
	})
	if err != nil {
		t.Fatalf("publish failure must not fail ingest: %v", err)
	}
	if record == nil {
		t.Fatalf("expected record")
	}
}
