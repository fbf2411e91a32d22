package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/yungbote/cardfolio-backend/internal/types"
)

func TestMergeEnrichmentOverwritesAndBacksUp(t *testing.T) {
	now := time.Now().UTC()
	org := &types.Organization{
		Name:    "Acme Logistics",
		Website: "http://old.example.com",
	}
	res := &types.EnrichmentResult{
		Fields: map[string]string{
			FieldWebsite:  "https://acme.example.com",
			FieldIndustry: "Logistics",
		},
	}

	out := MergeEnrichmentIntoOrganization(org, res, nil, now)

	if !out.Changed {
		t.Fatalf("want changed")
	}
	if org.Website != "https://acme.example.com" {
		t.Fatalf("website not overwritten: %q", org.Website)
	}
	if got := org.PreEnrichment[FieldWebsite]; got != "http://old.example.com" {
		t.Fatalf("backup: want old website, got=%q", got)
	}
	// Industry had no prior value, so no backup entry exists for it.
	if _, ok := org.PreEnrichment[FieldIndustry]; ok {
		t.Fatalf("empty prior value must not be backed up")
	}
	if org.EnrichedAt == nil || !org.EnrichedAt.Equal(now) {
		t.Fatalf("enriched_at not stamped: %v", org.EnrichedAt)
	}
	want := []string{FieldWebsite, FieldIndustry}
	if !reflect.DeepEqual([]string(org.EnrichedFields), want) {
		t.Fatalf("enriched fields: want=%v got=%v", want, org.EnrichedFields)
	}
}

func TestMergeEnrichmentIdenticalValuesAreNoChange(t *testing.T) {
	now := time.Now().UTC()
	org := &types.Organization{Name: "Acme", Website: "https://acme.example.com"}
	res := &types.EnrichmentResult{Fields: map[string]string{FieldWebsite: "https://acme.example.com"}}

	out := MergeEnrichmentIntoOrganization(org, res, nil, now)

	if out.Changed {
		t.Fatalf("identical value must not count as change")
	}
	if org.EnrichedAt != nil || len(org.EnrichedFields) != 0 {
		t.Fatalf("no-change merge must not stamp provenance")
	}
}

func TestMergeEnrichmentEmptyCandidateIgnored(t *testing.T) {
	now := time.Now().UTC()
	org := &types.Organization{Name: "Acme", Phone: "03-1234"}
	res := &types.EnrichmentResult{Fields: map[string]string{FieldPhone: "   "}}

	out := MergeEnrichmentIntoOrganization(org, res, nil, now)
	if out.Changed || org.Phone != "03-1234" {
		t.Fatalf("blank candidate must never clear a value, got=%q", org.Phone)
	}
}

func TestMergeEnrichmentSummariesChangeWithoutBackup(t *testing.T) {
	now := time.Now().UTC()
	p := &types.Person{Name: "Aiko", SummaryEN: "old summary"}
	res := &types.EnrichmentResult{SummaryEN: "new summary", SummaryJA: "新しい要約"}

	out := MergeEnrichmentIntoPerson(p, res, nil, now)

	if !out.Changed {
		t.Fatalf("want changed")
	}
	if p.SummaryEN != "new summary" || p.SummaryJA != "新しい要約" {
		t.Fatalf("summaries not applied: %q / %q", p.SummaryEN, p.SummaryJA)
	}
	if len(p.PreEnrichment) != 0 {
		t.Fatalf("summaries must not be backed up, got=%v", p.PreEnrichment)
	}
	if p.SummariesUpdatedAt == nil || !p.SummariesUpdatedAt.Equal(now) {
		t.Fatalf("summaries timestamp not stamped: %v", p.SummariesUpdatedAt)
	}
}

func TestMergeEnrichmentTagRules(t *testing.T) {
	now := time.Now().UTC()
	registry := NewTagRegistry()
	registry.Register([]string{"Logistics"})

	p := &types.Person{Name: "Aiko", Tags: []string{"existing"}}
	res := &types.EnrichmentResult{
		Tags: []string{"logistics", "has space", "EXISTING", "fresh"},
	}

	out := MergeEnrichmentIntoPerson(p, res, registry.Canonicalize, now)

	if !out.Changed {
		t.Fatalf("want changed")
	}
	want := []string{"existing", "Logistics", "fresh"}
	if !reflect.DeepEqual([]string(p.Tags), want) {
		t.Fatalf("tags: want=%v got=%v", want, p.Tags)
	}
	if got := p.PreEnrichment[FieldTags]; got != "existing" {
		t.Fatalf("tag backup: want=%q got=%q", "existing", got)
	}
}

func TestMergeEnrichmentReplacesProvenanceWholesale(t *testing.T) {
	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)
	org := &types.Organization{
		Name:           "Acme",
		Industry:       "Shipping",
		EnrichedAt:     &earlier,
		EnrichedFields: []string{FieldWebsite},
		PreEnrichment:  map[string]string{FieldWebsite: "http://stale.example.com"},
	}
	res := &types.EnrichmentResult{Fields: map[string]string{FieldIndustry: "Logistics"}}

	MergeEnrichmentIntoOrganization(org, res, nil, now)

	if !reflect.DeepEqual([]string(org.EnrichedFields), []string{FieldIndustry}) {
		t.Fatalf("provenance must be replaced, got=%v", org.EnrichedFields)
	}
	if _, stale := org.PreEnrichment[FieldWebsite]; stale {
		t.Fatalf("stale backup entry survived: %v", org.PreEnrichment)
	}
	if got := org.PreEnrichment[FieldIndustry]; got != "Shipping" {
		t.Fatalf("backup: want=%q got=%q", "Shipping", got)
	}
}

func TestMergeContactFieldsIncomingWins(t *testing.T) {
	existing := &types.Person{
		Name:  "Aiko Tanaka",
		Title: "Manager",
		Phone: "03-1111",
		Notes: "met at expo",
		Tags:  []string{"logistics"},
	}
	incoming := &types.Person{
		Title: "Senior Manager",
		Email: "aiko@example.co.jp",
		Notes: "follow up in March",
		Tags:  []string{"Logistics", "fintech"},
	}

	if !MergeContactFields(existing, incoming) {
		t.Fatalf("want changed")
	}
	if existing.Title != "Senior Manager" {
		t.Fatalf("title: got=%q", existing.Title)
	}
	if existing.Phone != "03-1111" {
		t.Fatalf("empty incoming must not clear phone, got=%q", existing.Phone)
	}
	if existing.Email != "aiko@example.co.jp" {
		t.Fatalf("email: got=%q", existing.Email)
	}
	if existing.Notes != "met at expo\n\nfollow up in March" {
		t.Fatalf("notes: got=%q", existing.Notes)
	}
	want := []string{"logistics", "fintech"}
	if !reflect.DeepEqual([]string(existing.Tags), want) {
		t.Fatalf("tags: want=%v got=%v", want, existing.Tags)
	}
}

func TestMergeContactFieldsSourceLanguageKeptOnceSet(t *testing.T) {
	existing := &types.Person{Name: "Aiko", SourceLanguage: "ja"}
	incoming := &types.Person{SourceLanguage: "en"}

	if MergeContactFields(existing, incoming) {
		t.Fatalf("no other field changed; language hint alone must not flip")
	}
	if existing.SourceLanguage != "ja" {
		t.Fatalf("language hint overwritten: %q", existing.SourceLanguage)
	}
}

func TestMergeContactFieldsNoop(t *testing.T) {
	existing := &types.Person{Name: "Aiko", Notes: "same"}
	incoming := &types.Person{Name: "Aiko", Notes: "same"}
	if MergeContactFields(existing, incoming) {
		t.Fatalf("identical incoming must be a no-op")
	}
}
