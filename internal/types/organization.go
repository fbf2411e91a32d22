package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Organization is one of the two record kinds in the directory. Links to
// people are stored as an id list and mirrored on the person side; both
// sides are only ever mutated together through the directory service.
type Organization struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null;index" json:"name"`
	OriginalName string    `json:"original_name,omitempty"`
	Summary      string    `json:"summary,omitempty"`

	Services datatypes.JSONSlice[string] `json:"services,omitempty"`

	Website     string `json:"website,omitempty"`
	LinkedInURL string `gorm:"column:linkedin_url" json:"linkedin_url,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`

	Industry     string `json:"industry,omitempty"`
	SizeBand     string `json:"size_band,omitempty"`
	RevenueBand  string `json:"revenue_band,omitempty"`
	FoundedYear  string `json:"founded_year,omitempty"`
	Headquarters string `json:"headquarters,omitempty"`

	Location     string `json:"location,omitempty"`
	ServiceType  string `json:"service_type,omitempty"`
	Audience     string `json:"audience,omitempty"` // "B2B" or "B2C"
	MarketRegion string `json:"market_region,omitempty"`
	Notes        string `json:"notes,omitempty"`

	Tags      datatypes.JSONSlice[string]    `json:"tags,omitempty"`
	PersonIDs datatypes.JSONSlice[uuid.UUID] `json:"person_ids,omitempty"`
	PhotoIDs  datatypes.JSONSlice[string]    `json:"photo_ids,omitempty"`

	SummaryEN          string     `gorm:"column:summary_en" json:"summary_en,omitempty"`
	SummaryJA          string     `gorm:"column:summary_ja" json:"summary_ja,omitempty"`
	SummariesUpdatedAt *time.Time `json:"summaries_updated_at,omitempty"`

	// EnrichedFields names the fields touched by the most recent enrichment;
	// PreEnrichment holds each overwritten field's prior non-empty value.
	EnrichedFields datatypes.JSONSlice[string] `json:"enriched_fields,omitempty"`
	PreEnrichment  map[string]string           `gorm:"serializer:json" json:"pre_enrichment,omitempty"`

	SourceLanguage string     `json:"source_language,omitempty"`
	EnrichedAt     *time.Time `json:"enriched_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Organization) TableName() string { return "organization" }
