package domain

import (
	"time"

	"github.com/openrdm/rdmc-registry"
)

// Rdmc is the full registry record for one research data container,
// including the authoritative manifest and the contributor set.
type Rdmc struct {
	ExternalID       string  `json:"external_id"`
	ExternalIDScheme *string `json:"external_id_scheme,omitempty"`

	Pid         *string    `json:"pid,omitempty"`
	PidScheme   *string    `json:"pid_scheme,omitempty"`
	PidStatus   string     `json:"pid_status"`
	PidMintedAt *time.Time `json:"pid_minted_at,omitempty"`

	RdmcVersion           *string `json:"rdmc_version,omitempty"`
	ManifestSchemaVersion *string `json:"manifest_schema_version,omitempty"`
	ManifestFilePath      *string `json:"manifest_file_path,omitempty"`

	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	Subject          *string `json:"subject,omitempty"`
	License          *string `json:"license,omitempty"`
	KeywordsRaw      *string `json:"keywords_raw,omitempty"`
	ContainerConcept *string `json:"container_concept,omitempty"`

	ContributorsCount int     `json:"contributors_count"`
	ContributorsText  *string `json:"contributors_text,omitempty"`

	ArtifactsRaw           *string `json:"artifacts_raw,omitempty"`
	ArtifactCount          int     `json:"artifact_count"`
	HasPublicArtifacts     bool    `json:"has_public_artifacts"`
	HasRestrictedArtifacts bool    `json:"has_restricted_artifacts"`
	HasPrivateArtifacts    bool    `json:"has_private_artifacts"`
	HasDataResources       bool    `json:"has_data_resources"`
	HasSoftwareResources   bool    `json:"has_software_resources"`
	HasLinks               bool    `json:"has_links"`

	Manifest     rdmc.Manifest      `json:"manifest"`
	ManifestHash string             `json:"manifest_hash,omitempty"`
	Contributors []rdmc.Contributor `json:"contributors"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RdmcSummary is the compact projection returned by list endpoints.
// The manifest body is deliberately excluded.
type RdmcSummary struct {
	ExternalID       string  `json:"external_id"`
	Title            string  `json:"title"`
	Subject          *string `json:"subject,omitempty"`
	License          *string `json:"license,omitempty"`
	ContainerConcept *string `json:"container_concept,omitempty"`
}

// ListFilter holds the optional equality predicates for list queries.
type ListFilter struct {
	Subject          *string
	License          *string
	ContainerConcept *string
}
