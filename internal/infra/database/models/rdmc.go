package models

import (
	"time"
)

// Rdmc is one row of the rdmc table: the extracted summary/search fields
// plus the authoritative manifest stored as JSONB. Most fields are nullable
// because manifests can be incomplete.
type Rdmc struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	ExternalID       string  `gorm:"type:text;not null;uniqueIndex"`
	ExternalIDScheme *string `gorm:"type:text"`

	// PID lifecycle: pending until a persistent identifier is supplied.
	Pid         *string    `gorm:"type:text;unique"`
	PidScheme   *string    `gorm:"type:text"`
	PidStatus   string     `gorm:"type:text;not null;default:pending"`
	PidMintedAt *time.Time `gorm:"type:timestamp with time zone"`

	RdmcVersion           *string `gorm:"type:text"`
	ManifestSchemaVersion *string `gorm:"type:text"`
	ManifestFilePath      *string `gorm:"type:text"`

	Title            string  `gorm:"type:text;not null"`
	Description      *string `gorm:"type:text"`
	Subject          *string `gorm:"type:text;index"`
	License          *string `gorm:"type:text;index"`
	KeywordsRaw      *string `gorm:"type:text"`
	ContainerConcept *string `gorm:"type:text;index"`

	ContributorsCount int     `gorm:"type:integer"`
	ContributorsText  *string `gorm:"type:text"`

	ArtifactsRaw           *string `gorm:"type:text"`
	ArtifactCount          int     `gorm:"type:integer"`
	HasPublicArtifacts     bool    `gorm:"type:boolean;not null;default:false"`
	HasRestrictedArtifacts bool    `gorm:"type:boolean;not null;default:false"`
	HasPrivateArtifacts    bool    `gorm:"type:boolean;not null;default:false"`
	HasDataResources       bool    `gorm:"type:boolean;not null;default:false"`
	HasSoftwareResources   bool    `gorm:"type:boolean;not null;default:false"`
	HasLinks               bool    `gorm:"type:boolean;not null;default:false"`

	Manifest     string  `gorm:"type:jsonb;not null"`
	ManifestHash *string `gorm:"type:text"`

	IsLatest bool `gorm:"type:boolean;not null;default:true"`

	Contributors []RdmcContributor `gorm:"foreignKey:RdmcID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt time.Time `gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

func (Rdmc) TableName() string {
	return "rdmc"
}

// RdmcContributor is one contributor of an Rdmc row. Position preserves the
// author order from the manifest, starting at 0.
type RdmcContributor struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	RdmcID int64 `gorm:"not null;index"`

	Position    int     `gorm:"type:integer;not null"`
	FirstName   string  `gorm:"type:text;not null"`
	LastName    string  `gorm:"type:text;not null"`
	Email       *string `gorm:"type:text"`
	Affiliation *string `gorm:"type:text"`
	Orcid       *string `gorm:"type:text;index"`
	Role        *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

func (RdmcContributor) TableName() string {
	return "rdmc_contributor"
}
