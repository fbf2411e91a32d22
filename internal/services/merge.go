package services

import (
	"strings"
	"time"
	"unicode"

	"github.com/yungbote/cardfolio-backend/internal/types"
)

// Enrichable field names. These are the closed set of keys that can appear in
// a record's EnrichedFields list and PreEnrichment backup map.
const (
	FieldWebsite      = "website"
	FieldLinkedIn     = "linkedin"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldIndustry     = "industry"
	FieldSizeBand     = "size_band"
	FieldRevenueBand  = "revenue_band"
	FieldFoundedYear  = "founded_year"
	FieldHeadquarters = "headquarters"
	FieldTitle        = "title"
	FieldDepartment   = "department"
	FieldLocation     = "location"
	FieldEmail        = "email"
	FieldTags         = "tags"
	FieldSummaryEN    = "summary_en"
	FieldSummaryJA    = "summary_ja"
)

// tagBackupSeparator joins the prior tag set into one displayable backup value.
const tagBackupSeparator = ", "

// MergeOutcome reports what an enrichment merge did. When Changed is false
// the record was not mutated and the caller must not persist it.
type MergeOutcome struct {
	Changed       bool
	ChangedFields []string
	Backup        map[string]string
}

type fieldSlot struct {
	name      string
	candidate string
	get       func() string
	set       func(string)
	backup    bool
}

// applyFieldSlots runs the enrichment comparison over each slot: a field
// changes only when the candidate is non-empty and differs from the current
// value. A non-empty prior value is snapshotted before the overwrite.
func applyFieldSlots(slots []fieldSlot, out *MergeOutcome) {
	for _, slot := range slots {
		candidate := strings.TrimSpace(slot.candidate)
		if candidate == "" {
			continue
		}
		current := slot.get()
		if candidate == current {
			continue
		}
		if slot.backup && current != "" {
			out.Backup[slot.name] = current
		}
		slot.set(candidate)
		out.ChangedFields = append(out.ChangedFields, slot.name)
		out.Changed = true
	}
}

// mergeEnrichedTags filters malformed candidate tags (anything containing
// whitespace is rejected outright), canonicalizes the rest, and unions them
// with the current set. Returns the merged set and whether it differs.
func mergeEnrichedTags(current, candidates []string, canon func(string) string) ([]string, bool) {
	merged := make([]string, len(current))
	copy(merged, current)

	seen := make(map[string]bool, len(current))
	for _, tag := range current {
		seen[strings.ToLower(tag)] = true
	}

	changed := false
	for _, tag := range candidates {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.ContainsFunc(tag, unicode.IsSpace) {
			continue
		}
		if canon != nil {
			tag = canon(tag)
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, tag)
		changed = true
	}
	return merged, changed
}

// MergeEnrichmentIntoOrganization folds an enrichment result into an
// organization record. The record is mutated only for fields that actually
// change; on any change the provenance state (EnrichedFields, PreEnrichment)
// is replaced wholesale and EnrichedAt is stamped.
func MergeEnrichmentIntoOrganization(org *types.Organization, res *types.EnrichmentResult, canon func(string) string, now time.Time) MergeOutcome {
	out := MergeOutcome{Backup: make(map[string]string)}
	if org == nil || res == nil {
		return out
	}

	fields := res.Fields
	slots := []fieldSlot{
		{name: FieldWebsite, candidate: fields[FieldWebsite], get: func() string { return org.Website }, set: func(v string) { org.Website = v }, backup: true},
		{name: FieldLinkedIn, candidate: fields[FieldLinkedIn], get: func() string { return org.LinkedInURL }, set: func(v string) { org.LinkedInURL = v }, backup: true},
		{name: FieldPhone, candidate: fields[FieldPhone], get: func() string { return org.Phone }, set: func(v string) { org.Phone = v }, backup: true},
		{name: FieldAddress, candidate: fields[FieldAddress], get: func() string { return org.Address }, set: func(v string) { org.Address = v }, backup: true},
		{name: FieldIndustry, candidate: fields[FieldIndustry], get: func() string { return org.Industry }, set: func(v string) { org.Industry = v }, backup: true},
		{name: FieldSizeBand, candidate: fields[FieldSizeBand], get: func() string { return org.SizeBand }, set: func(v string) { org.SizeBand = v }, backup: true},
		{name: FieldRevenueBand, candidate: fields[FieldRevenueBand], get: func() string { return org.RevenueBand }, set: func(v string) { org.RevenueBand = v }, backup: true},
		{name: FieldFoundedYear, candidate: fields[FieldFoundedYear], get: func() string { return org.FoundedYear }, set: func(v string) { org.FoundedYear = v }, backup: true},
		{name: FieldHeadquarters, candidate: fields[FieldHeadquarters], get: func() string { return org.Headquarters }, set: func(v string) { org.Headquarters = v }, backup: true},
		{name: FieldSummaryEN, candidate: res.SummaryEN, get: func() string { return org.SummaryEN }, set: func(v string) { org.SummaryEN = v }},
		{name: FieldSummaryJA, candidate: res.SummaryJA, get: func() string { return org.SummaryJA }, set: func(v string) { org.SummaryJA = v }},
	}
	applyFieldSlots(slots, &out)

	if merged, changed := mergeEnrichedTags(org.Tags, res.Tags, canon); changed {
		if len(org.Tags) > 0 {
			out.Backup[FieldTags] = strings.Join(org.Tags, tagBackupSeparator)
		}
		org.Tags = merged
		out.ChangedFields = append(out.ChangedFields, FieldTags)
		out.Changed = true
	}

	if out.Changed {
		stamp := now
		org.EnrichedAt = &stamp
		org.EnrichedFields = out.ChangedFields
		org.PreEnrichment = out.Backup
		if org.SummaryEN != "" || org.SummaryJA != "" {
			org.SummariesUpdatedAt = &stamp
		}
	}
	return out
}

// MergeEnrichmentIntoPerson is the person-kind counterpart of
// MergeEnrichmentIntoOrganization, run against the person field list.
func MergeEnrichmentIntoPerson(p *types.Person, res *types.EnrichmentResult, canon func(string) string, now time.Time) MergeOutcome {
	out := MergeOutcome{Backup: make(map[string]string)}
	if p == nil || res == nil {
		return out
	}

	fields := res.Fields
	slots := []fieldSlot{
		{name: FieldTitle, candidate: fields[FieldTitle], get: func() string { return p.Title }, set: func(v string) { p.Title = v }, backup: true},
		{name: FieldDepartment, candidate: fields[FieldDepartment], get: func() string { return p.Department }, set: func(v string) { p.Department = v }, backup: true},
		{name: FieldLocation, candidate: fields[FieldLocation], get: func() string { return p.Location }, set: func(v string) { p.Location = v }, backup: true},
		{name: FieldPhone, candidate: fields[FieldPhone], get: func() string { return p.Phone }, set: func(v string) { p.Phone = v }, backup: true},
		{name: FieldEmail, candidate: fields[FieldEmail], get: func() string { return p.Email }, set: func(v string) { p.Email = v }, backup: true},
		{name: FieldWebsite, candidate: fields[FieldWebsite], get: func() string { return p.Website }, set: func(v string) { p.Website = v }, backup: true},
		{name: FieldLinkedIn, candidate: fields[FieldLinkedIn], get: func() string { return p.LinkedInURL }, set: func(v string) { p.LinkedInURL = v }, backup: true},
		{name: FieldSummaryEN, candidate: res.SummaryEN, get: func() string { return p.SummaryEN }, set: func(v string) { p.SummaryEN = v }},
		{name: FieldSummaryJA, candidate: res.SummaryJA, get: func() string { return p.SummaryJA }, set: func(v string) { p.SummaryJA = v }},
	}
	applyFieldSlots(slots, &out)

	if merged, changed := mergeEnrichedTags(p.Tags, res.Tags, canon); changed {
		if len(p.Tags) > 0 {
			out.Backup[FieldTags] = strings.Join(p.Tags, tagBackupSeparator)
		}
		p.Tags = merged
		out.ChangedFields = append(out.ChangedFields, FieldTags)
		out.Changed = true
	}

	if out.Changed {
		stamp := now
		p.EnrichedAt = &stamp
		p.EnrichedFields = out.ChangedFields
		p.PreEnrichment = out.Backup
		if p.SummaryEN != "" || p.SummaryJA != "" {
			p.SummariesUpdatedAt = &stamp
		}
	}
	return out
}

// MergeContactFields folds a user-supplied incoming person into an existing
// one: incoming wins per non-empty scalar field, notes are concatenated, tag
// sets are unioned, the source-language hint is kept if already set. Returns
// whether anything changed. This never touches the provenance map; it is a
// user-directed merge, not an enrichment overwrite.
func MergeContactFields(existing, incoming *types.Person) bool {
	if existing == nil || incoming == nil {
		return false
	}
	changed := false

	overwrite := func(dst *string, src string) {
		src = strings.TrimSpace(src)
		if src != "" && src != *dst {
			*dst = src
			changed = true
		}
	}

	overwrite(&existing.Name, incoming.Name)
	overwrite(&existing.OriginalName, incoming.OriginalName)
	overwrite(&existing.Title, incoming.Title)
	overwrite(&existing.Department, incoming.Department)
	overwrite(&existing.Phone, incoming.Phone)
	overwrite(&existing.Email, incoming.Email)
	overwrite(&existing.Location, incoming.Location)
	overwrite(&existing.Website, incoming.Website)
	overwrite(&existing.LinkedInURL, incoming.LinkedInURL)

	incomingNotes := strings.TrimSpace(incoming.Notes)
	if incomingNotes != "" && incomingNotes != strings.TrimSpace(existing.Notes) {
		if strings.TrimSpace(existing.Notes) == "" {
			existing.Notes = incomingNotes
		} else {
			existing.Notes = existing.Notes + "\n\n" + incomingNotes
		}
		changed = true
	}

	if merged, tagsChanged := unionTags(existing.Tags, incoming.Tags); tagsChanged {
		existing.Tags = merged
		changed = true
	}

	if existing.SourceLanguage == "" && incoming.SourceLanguage != "" {
		existing.SourceLanguage = incoming.SourceLanguage
		changed = true
	}

	return changed
}

// unionTags unions two tag sets case-insensitively, keeping the existing
// spellings and order.
func unionTags(current, extra []string) ([]string, bool) {
	merged := make([]string, len(current))
	copy(merged, current)

	seen := make(map[string]bool, len(current))
	for _, tag := range current {
		seen[strings.ToLower(tag)] = true
	}

	changed := false
	for _, tag := range extra {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		merged = append(merged, tag)
		changed = true
	}
	return merged, changed
}
