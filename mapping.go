package rdmc

import (
	"strings"
)

// DerivedFields is the flat projection of a manifest promoted to queryable
// columns on the rdmc table.
type DerivedFields struct {
	Title                 string
	RdmcVersion           *string
	ManifestSchemaVersion *string
	ManifestFilePath      *string

	Description      *string
	Subject          *string
	License          *string
	KeywordsRaw      *string
	ContainerConcept *string

	ContributorsCount int
	ContributorsText  *string

	ArtifactsRaw           *string
	ArtifactCount          int
	HasPublicArtifacts     bool
	HasRestrictedArtifacts bool
	HasPrivateArtifacts    bool
	HasDataResources       bool
	HasSoftwareResources   bool
	HasLinks               bool
}

// Contributor is one entry of a manifest's contributor list, in manifest
// order. Only the name parts are guaranteed; everything else is optional.
type Contributor struct {
	Position    int     `json:"position"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       *string `json:"email,omitempty"`
	Affiliation *string `json:"affiliation,omitempty"`
	Orcid       *string `json:"orcid,omitempty"`
	Role        *string `json:"role,omitempty"`
}

// DeriveFields extracts the rdmc table fields and the contributor rows from
// a manifest. It is intentionally defensive: producers disagree on key
// names (e.g. "RDMC Title" vs "title"), so lookups fall back across a small
// set of candidates and degrade to absent values instead of failing. A
// contributor list entry that is not an object is skipped.
func DeriveFields(m Manifest) (DerivedFields, []Contributor) {
	fields := DerivedFields{
		RdmcVersion:           m.Text("RDMC Version"),
		ManifestSchemaVersion: m.Text("Manifest-Schemaversion"),
		ManifestFilePath:      m.Text("Manifest File Path"),
		ArtifactsRaw:          m.Text("Artifacts"),
	}

	if title := m.Text("RDMC Title", "title"); title != nil {
		fields.Title = *title
	} else {
		fields.Title = "(no title)"
	}

	meta := m.Object("RDMC Metadata")
	fields.Description = meta.Text("Description")
	fields.Subject = meta.Text("Subject")
	fields.License = meta.Text("License")
	fields.KeywordsRaw = meta.Text("Keywords")
	fields.ContainerConcept = meta.Text("container-concept")

	contributors := deriveContributors(meta.List("Contributors"))
	fields.ContributorsCount = len(contributors)
	fields.ContributorsText = contributorsText(contributors)

	deriveArtifactFlags(m.List("Artifacts Details"), &fields)

	return fields, contributors
}

func deriveContributors(entries []any) []Contributor {
	contributors := []Contributor{}
	for pos, entry := range entries {
		c, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		cm := Manifest(c)

		contributor := Contributor{
			Position:    pos,
			Email:       cm.Text("email"),
			Affiliation: cm.Text("affiliation"),
			Orcid:       cm.Text("orcid"),
			Role:        cm.Text("role"),
		}
		if first := cm.Text("first_name"); first != nil {
			contributor.FirstName = strings.TrimSpace(*first)
		}
		if last := cm.Text("last_name"); last != nil {
			contributor.LastName = strings.TrimSpace(*last)
		}

		contributors = append(contributors, contributor)
	}
	return contributors
}

// contributorsText builds the human-friendly summary string shown in list
// views: "First Last (role), ORCID: <orcid>, <affiliation>" per
// contributor, joined by "; ".
func contributorsText(contributors []Contributor) *string {
	parts := []string{}
	for _, c := range contributors {
		piece := strings.TrimSpace(c.FirstName + " " + c.LastName)
		if c.Role != nil {
			piece += " (" + *c.Role + ")"
		}
		if c.Orcid != nil {
			piece += ", ORCID: " + *c.Orcid
		}
		if c.Affiliation != nil {
			piece += ", " + *c.Affiliation
		}
		if piece != "" {
			parts = append(parts, piece)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	text := strings.Join(parts, "; ")
	return &text
}

func deriveArtifactFlags(details []any, fields *DerivedFields) {
	fields.ArtifactCount = len(details)

	for _, entry := range details {
		art, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		am := Manifest(art)

		if level := am.Text("access_level"); level != nil {
			switch strings.ToLower(*level) {
			case "public":
				fields.HasPublicArtifacts = true
			case "restricted":
				fields.HasRestrictedArtifacts = true
			case "private":
				fields.HasPrivateArtifacts = true
			}
		}

		markResourceTypes(am.List("files"), fields)
		markResourceTypes(am.List("folders"), fields)

		if len(am.List("links")) > 0 {
			fields.HasLinks = true
		}
	}
}

func markResourceTypes(items []any, fields *DerivedFields) {
	for _, entry := range items {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if rtype := Manifest(item).Text("resource type"); rtype != nil {
			switch strings.ToLower(*rtype) {
			case "data":
				fields.HasDataResources = true
			case "software":
				fields.HasSoftwareResources = true
			}
		}
	}
}
