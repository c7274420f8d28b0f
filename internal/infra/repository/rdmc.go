package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/openrdm/rdmc-registry"
	"github.com/openrdm/rdmc-registry/internal/domain"
	"github.com/openrdm/rdmc-registry/internal/infra/database/models"
)

type RdmcRepository struct {
	db *gorm.DB
}

func NewRdmcRepository(db *gorm.DB) *RdmcRepository {
	return &RdmcRepository{db: db}
}

// Upsert creates or replaces the record identified by the request's
// external_id, and synchronizes its contributor rows, in one transaction.
// A first-time insert losing the uniqueness race on external_id surfaces
// as domain.ErrConflict so the caller can re-attempt as an update.
func (r *RdmcRepository) Upsert(ctx context.Context, req rdmc.IngestRequest, fields rdmc.DerivedFields, contributors []rdmc.Contributor) (*domain.Rdmc, error) {

	manifestJSON, err := json.Marshal(req.Manifest)
	if err != nil {
		return nil, errors.Wrap(err, "RdmcRepository.Upsert: marshal manifest")
	}
	hash := req.Manifest.Hash()

	var stored models.Rdmc

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var row models.Rdmc
		err := tx.Where("external_id = ?", req.ExternalID).Take(&row).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		exists := err == nil
		if !exists {
			row = models.Rdmc{ExternalID: req.ExternalID}
		}

		row.ExternalIDScheme = req.ExternalIDScheme
		if req.Pid != nil {
			row.Pid = req.Pid
			row.PidStatus = "minted"
			if row.PidMintedAt == nil {
				now := time.Now().UTC()
				row.PidMintedAt = &now
			}
		}
		if req.PidScheme != nil {
			row.PidScheme = req.PidScheme
		}

		applyDerivedFields(&row, fields)
		row.Manifest = string(manifestJSON)
		row.ManifestHash = &hash
		row.IsLatest = true

		if exists {
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrConflict
				}
				return err
			}
		}

		// Replace the contributor set: delete the previous rows, then
		// insert the current ordered list.
		if err := tx.Where("rdmc_id = ?", row.ID).Delete(&models.RdmcContributor{}).Error; err != nil {
			return err
		}
		for _, c := range contributors {
			contrib := models.RdmcContributor{
				RdmcID:      row.ID,
				Position:    c.Position,
				FirstName:   c.FirstName,
				LastName:    c.LastName,
				Email:       c.Email,
				Affiliation: c.Affiliation,
				Orcid:       c.Orcid,
				Role:        c.Role,
			}
			if err := tx.Create(&contrib).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Contributors", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).Take(&stored, "id = ?", row.ID).Error
	})

	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, errors.Wrap(err, "RdmcRepository.Upsert")
	}

	return toDomain(&stored)
}

func (r *RdmcRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Rdmc, error) {

	var row models.Rdmc
	err := r.db.WithContext(ctx).
		Preload("Contributors", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("external_id = ?", externalID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "rdmc"}
		}
		return nil, errors.Wrap(err, "RdmcRepository.GetByExternalID")
	}

	return toDomain(&row)
}

func (r *RdmcRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.RdmcSummary, error) {

	query := r.db.WithContext(ctx).Model(&models.Rdmc{})
	if filter.Subject != nil {
		query = query.Where("subject = ?", *filter.Subject)
	}
	if filter.License != nil {
		query = query.Where("license = ?", *filter.License)
	}
	if filter.ContainerConcept != nil {
		query = query.Where("container_concept = ?", *filter.ContainerConcept)
	}

	var rows []models.Rdmc
	err := query.Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "RdmcRepository.List")
	}

	return toSummaries(rows), nil
}

// GetByContributor joins against the contributor table with AND semantics
// across the provided identity filters. With neither filter the query is
// unconstrained by definition and returns nothing.
func (r *RdmcRepository) GetByContributor(ctx context.Context, orcid, email *string) ([]domain.RdmcSummary, error) {

	if orcid == nil && email == nil {
		return []domain.RdmcSummary{}, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Rdmc{}).
		Joins("JOIN rdmc_contributor ON rdmc_contributor.rdmc_id = rdmc.id")
	if orcid != nil {
		query = query.Where("rdmc_contributor.orcid = ?", *orcid)
	}
	if email != nil {
		query = query.Where("rdmc_contributor.email = ?", *email)
	}

	var rows []models.Rdmc
	err := query.Distinct("rdmc.*").Order("rdmc.created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "RdmcRepository.GetByContributor")
	}

	return toSummaries(rows), nil
}

func applyDerivedFields(row *models.Rdmc, fields rdmc.DerivedFields) {
	row.RdmcVersion = fields.RdmcVersion
	row.ManifestSchemaVersion = fields.ManifestSchemaVersion
	row.ManifestFilePath = fields.ManifestFilePath

	row.Title = fields.Title
	row.Description = fields.Description
	row.Subject = fields.Subject
	row.License = fields.License
	row.KeywordsRaw = fields.KeywordsRaw
	row.ContainerConcept = fields.ContainerConcept

	row.ContributorsCount = fields.ContributorsCount
	row.ContributorsText = fields.ContributorsText

	row.ArtifactsRaw = fields.ArtifactsRaw
	row.ArtifactCount = fields.ArtifactCount
	row.HasPublicArtifacts = fields.HasPublicArtifacts
	row.HasRestrictedArtifacts = fields.HasRestrictedArtifacts
	row.HasPrivateArtifacts = fields.HasPrivateArtifacts
	row.HasDataResources = fields.HasDataResources
	row.HasSoftwareResources = fields.HasSoftwareResources
	row.HasLinks = fields.HasLinks
}

func toDomain(row *models.Rdmc) (*domain.Rdmc, error) {

	var manifest rdmc.Manifest
	if err := json.Unmarshal([]byte(row.Manifest), &manifest); err != nil {
		return nil, errors.Wrap(err, "unmarshal stored manifest")
	}

	contributors := make([]rdmc.Contributor, 0, len(row.Contributors))
	for _, c := range row.Contributors {
		contributors = append(contributors, rdmc.Contributor{
			Position:    c.Position,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			Email:       c.Email,
			Affiliation: c.Affiliation,
			Orcid:       c.Orcid,
			Role:        c.Role,
		})
	}

	hash := ""
	if row.ManifestHash != nil {
		hash = *row.ManifestHash
	}

	return &domain.Rdmc{
		ExternalID:       row.ExternalID,
		ExternalIDScheme: row.ExternalIDScheme,

		Pid:         row.Pid,
		PidScheme:   row.PidScheme,
		PidStatus:   row.PidStatus,
		PidMintedAt: row.PidMintedAt,

		RdmcVersion:           row.RdmcVersion,
		ManifestSchemaVersion: row.ManifestSchemaVersion,
		ManifestFilePath:      row.ManifestFilePath,

		Title:            row.Title,
		Description:      row.Description,
		Subject:          row.Subject,
		License:          row.License,
		KeywordsRaw:      row.KeywordsRaw,
		ContainerConcept: row.ContainerConcept,

		ContributorsCount: row.ContributorsCount,
		ContributorsText:  row.ContributorsText,

		ArtifactsRaw:           row.ArtifactsRaw,
		ArtifactCount:          row.ArtifactCount,
		HasPublicArtifacts:     row.HasPublicArtifacts,
		HasRestrictedArtifacts: row.HasRestrictedArtifacts,
		HasPrivateArtifacts:    row.HasPrivateArtifacts,
		HasDataResources:       row.HasDataResources,
		HasSoftwareResources:   row.HasSoftwareResources,
		HasLinks:               row.HasLinks,

		Manifest:     manifest,
		ManifestHash: hash,
		Contributors: contributors,

		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func toSummaries(rows []models.Rdmc) []domain.RdmcSummary {
	summaries := make([]domain.RdmcSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.RdmcSummary{
			ExternalID:       row.ExternalID,
			Title:            row.Title,
			Subject:          row.Subject,
			License:          row.License,
			ContainerConcept: row.ContainerConcept,
		})
	}
	return summaries
}
