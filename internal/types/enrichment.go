package types

import "github.com/google/uuid"

type RecordKind string

const (
	RecordKindOrganization RecordKind = "organization"
	RecordKindPerson       RecordKind = "person"
)

// EnrichmentRequest is the normalized payload sent to the enrichment backend.
type EnrichmentRequest struct {
	Kind           RecordKind `json:"kind"`
	RecordID       uuid.UUID  `json:"record_id"`
	Name           string     `json:"name"`
	OriginalName   string     `json:"original_name,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	TagPool        []string   `json:"tag_pool,omitempty"`
	Context        string     `json:"context,omitempty"`
	PreferredLinks []string   `json:"preferred_links,omitempty"`
	SourceLanguage string     `json:"source_language,omitempty"`
}

// EnrichmentResult is the normalized shape the backend returns: two display
// language summaries, a tag list, and candidate values keyed by field name.
type EnrichmentResult struct {
	SummaryEN string            `json:"summary_en,omitempty"`
	SummaryJA string            `json:"summary_ja,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// ScanCandidate is the structured output of a card/document scan: the fields
// the extractor recognized plus the raw recognized text.
type ScanCandidate struct {
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	OrgName  string `json:"org_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Website  string `json:"website,omitempty"`
	Address  string `json:"address,omitempty"`
	RawText  string `json:"raw_text,omitempty"`
	Language string `json:"language,omitempty"`

	// DuplicateID is set when an existing person plausibly matches.
	DuplicateID *uuid.UUID `json:"duplicate_id,omitempty"`
}
