package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Person is the second record kind. OrgID/OrgName is the primary affiliation
// with the organization name denormalized at link time; SecondaryOrgIDs and
// SecondaryOrgNames are parallel lists paired by index.
type Person struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null;index" json:"name"`
	OriginalName string    `json:"original_name,omitempty"`
	Title        string    `json:"title,omitempty"`
	Department   string    `json:"department,omitempty"`

	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	LinkedInURL string `gorm:"column:linkedin_url" json:"linkedin_url,omitempty"`
	Notes       string `json:"notes,omitempty"`

	Tags datatypes.JSONSlice[string] `json:"tags,omitempty"`

	OrgID           *uuid.UUID `gorm:"type:uuid;index" json:"org_id,omitempty"`
	OrgName         string     `json:"org_name,omitempty"`
	OrgOriginalName string     `json:"org_original_name,omitempty"`

	SecondaryOrgIDs   datatypes.JSONSlice[uuid.UUID] `json:"secondary_org_ids,omitempty"`
	SecondaryOrgNames datatypes.JSONSlice[string]    `json:"secondary_org_names,omitempty"`

	SummaryEN          string     `gorm:"column:summary_en" json:"summary_en,omitempty"`
	SummaryJA          string     `gorm:"column:summary_ja" json:"summary_ja,omitempty"`
	SummariesUpdatedAt *time.Time `json:"summaries_updated_at,omitempty"`

	EnrichedFields datatypes.JSONSlice[string] `json:"enriched_fields,omitempty"`
	PreEnrichment  map[string]string           `gorm:"serializer:json" json:"pre_enrichment,omitempty"`

	PhotoIDs datatypes.JSONSlice[string] `json:"photo_ids,omitempty"`

	SourceLanguage string     `json:"source_language,omitempty"`
	EnrichedAt     *time.Time `json:"enriched_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Person) TableName() string { return "person" }
