package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/repos"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

// maxAttachments bounds how many photo ids a single record may hold.
const maxAttachments = 10

// DirectoryNotifier receives record change events. Implementations must not
// call back into the directory.
type DirectoryNotifier interface {
	RecordCreated(kind types.RecordKind, id uuid.UUID)
	RecordUpdated(kind types.RecordKind, id uuid.UUID)
	RecordDeleted(kind types.RecordKind, id uuid.UUID)
}

// DirectoryService owns the organization and person collections and the
// bidirectional links between them. Every mutation runs under one mutex so
// no two mutations interleave; persistence goes through the repos, and a
// failed save is logged and otherwise treated as a no-op. Operations on
// identifiers that no longer exist are silent no-ops.
type DirectoryService interface {
	Load(ctx context.Context) error

	Organizations() []*types.Organization
	People() []*types.Person
	GetOrganization(orgID uuid.UUID) *types.Organization
	GetPerson(personID uuid.UUID) *types.Person

	CreateOrganization(ctx context.Context, org *types.Organization) *types.Organization
	UpdateOrganization(ctx context.Context, org *types.Organization)
	DeleteOrganization(ctx context.Context, orgID uuid.UUID)

	CreatePerson(ctx context.Context, person *types.Person) *types.Person
	UpdatePerson(ctx context.Context, person *types.Person)
	DeletePerson(ctx context.Context, personID uuid.UUID)

	EnsureOrganization(ctx context.Context, name string) *types.Organization
	LinkPerson(ctx context.Context, personID, orgID uuid.UUID)
	UnlinkPerson(ctx context.Context, personID, orgID uuid.UUID)

	AddPhoto(ctx context.Context, kind types.RecordKind, ownerID uuid.UUID, photoID string) error
	MergePerson(ctx context.Context, existingID uuid.UUID, incoming *types.Person, photoIDs []string) *types.Person
	FindDuplicatePerson(name, phone, email string) *types.Person

	ApplyEnrichment(ctx context.Context, kind types.RecordKind, recordID uuid.UUID, res *types.EnrichmentResult) (found bool, changed bool)
	RevertEnrichment(ctx context.Context, kind types.RecordKind, recordID uuid.UUID) bool

	TagPool() []string
	Canonicalize(tag string) string
}

type directoryService struct {
	mu sync.Mutex

	log      *logger.Logger
	orgRepo  repos.OrganizationRepo
	pplRepo  repos.PersonRepo
	registry TagRegistry
	notifier DirectoryNotifier

	orgs      map[uuid.UUID]*types.Organization
	orgOrder  []uuid.UUID
	people    map[uuid.UUID]*types.Person
	pplOrder  []uuid.UUID
}

func NewDirectoryService(log *logger.Logger, orgRepo repos.OrganizationRepo, pplRepo repos.PersonRepo, registry TagRegistry, notifier DirectoryNotifier) DirectoryService {
	return &directoryService{
		log:      log.With("service", "DirectoryService"),
		orgRepo:  orgRepo,
		pplRepo:  pplRepo,
		registry: registry,
		notifier: notifier,
		orgs:     make(map[uuid.UUID]*types.Organization),
		people:   make(map[uuid.UUID]*types.Person),
	}
}

// Load pulls both collections from storage and seeds the tag pool.
func (s *directoryService) Load(ctx context.Context) error {
	var (
		orgs   []*types.Organization
		people []*types.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orgs, err = s.orgRepo.LoadAll(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		people, err = s.pplRepo.LoadAll(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs = make(map[uuid.UUID]*types.Organization, len(orgs))
	s.orgOrder = s.orgOrder[:0]
	for _, org := range orgs {
		s.orgs[org.ID] = org
		s.orgOrder = append(s.orgOrder, org.ID)
		s.registry.Register(org.Tags)
	}
	s.people = make(map[uuid.UUID]*types.Person, len(people))
	s.pplOrder = s.pplOrder[:0]
	for _, p := range people {
		s.people[p.ID] = p
		s.pplOrder = append(s.pplOrder, p.ID)
		s.registry.Register(p.Tags)
	}
	s.log.Info("Directory loaded", "organizations", len(orgs), "people", len(people))
	return nil
}

func (s *directoryService) Organizations() []*types.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Organization, 0, len(s.orgOrder))
	for _, id := range s.orgOrder {
		if org, ok := s.orgs[id]; ok {
			out = append(out, cloneOrganization(org))
		}
	}
	return out
}

func (s *directoryService) People() []*types.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Person, 0, len(s.pplOrder))
	for _, id := range s.pplOrder {
		if p, ok := s.people[id]; ok {
			out = append(out, clonePerson(p))
		}
	}
	return out
}

func (s *directoryService) GetOrganization(orgID uuid.UUID) *types.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org, ok := s.orgs[orgID]; ok {
		return cloneOrganization(org)
	}
	return nil
}

func (s *directoryService) GetPerson(personID uuid.UUID) *types.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.people[personID]; ok {
		return clonePerson(p)
	}
	return nil
}

func (s *directoryService) CreateOrganization(ctx context.Context, org *types.Organization) *types.Organization {
	if org == nil || strings.TrimSpace(org.Name) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := s.createOrganizationLocked(ctx, org)
	return cloneOrganization(created)
}

func (s *directoryService) createOrganizationLocked(ctx context.Context, org *types.Organization) *types.Organization {
	stored := cloneOrganization(org)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	// Link lists are owned by the graph; a fresh record starts unlinked.
	stored.PersonIDs = nil

	s.orgs[stored.ID] = stored
	s.orgOrder = append(s.orgOrder, stored.ID)
	s.registry.Register(stored.Tags)
	s.persistOrganization(ctx, stored)
	s.notifyCreated(types.RecordKindOrganization, stored.ID)
	return stored
}

func (s *directoryService) UpdateOrganization(ctx context.Context, org *types.Organization) {
	if org == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.orgs[org.ID]
	if !ok {
		return
	}

	renamed := stored.Name != org.Name || stored.OriginalName != org.OriginalName

	updated := cloneOrganization(org)
	// Link, photo, and provenance state only change through their own paths.
	updated.PersonIDs = stored.PersonIDs
	updated.PhotoIDs = stored.PhotoIDs
	updated.EnrichedFields = stored.EnrichedFields
	updated.PreEnrichment = stored.PreEnrichment
	updated.EnrichedAt = stored.EnrichedAt
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.orgs[org.ID] = updated

	if renamed {
		s.refreshDenormalizedNamesLocked(ctx, updated)
	}

	s.registry.Register(updated.Tags)
	s.persistOrganization(ctx, updated)
	s.notifyUpdated(types.RecordKindOrganization, updated.ID)
}

// refreshDenormalizedNamesLocked re-resolves the cached organization names on
// every person linked to org after a rename.
func (s *directoryService) refreshDenormalizedNamesLocked(ctx context.Context, org *types.Organization) {
	for _, pid := range s.pplOrder {
		p, ok := s.people[pid]
		if !ok {
			continue
		}
		touched := false
		if p.OrgID != nil && *p.OrgID == org.ID {
			p.OrgName = org.Name
			p.OrgOriginalName = org.OriginalName
			touched = true
		}
		for i, sid := range p.SecondaryOrgIDs {
			if sid == org.ID && i < len(p.SecondaryOrgNames) {
				p.SecondaryOrgNames[i] = org.Name
				touched = true
			}
		}
		if touched {
			s.persistPerson(ctx, p)
		}
	}
}

func (s *directoryService) DeleteOrganization(ctx context.Context, orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[orgID]; !ok {
		return
	}

	// Drop the record first so promotion lookups never resolve to it.
	delete(s.orgs, orgID)
	s.orgOrder = removeID(s.orgOrder, orgID)

	for _, pid := range s.pplOrder {
		p, ok := s.people[pid]
		if !ok {
			continue
		}
		if s.removeOrgFromPersonLocked(p, orgID) {
			s.persistPerson(ctx, p)
		}
	}

	if err := s.orgRepo.Delete(ctx, nil, orgID); err != nil {
		s.log.Warn("Failed to delete organization from storage", "org_id", orgID, "error", err)
	}
	s.rebuildTagPoolLocked()
	s.notifyDeleted(types.RecordKindOrganization, orgID)
}

func (s *directoryService) CreatePerson(ctx context.Context, person *types.Person) *types.Person {
	if person == nil || strings.TrimSpace(person.Name) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clonePerson(person)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	// The graph owns all link state; a referenced organization name is
	// resolved (or auto-created) and linked below.
	orgName := strings.TrimSpace(stored.OrgName)
	stored.OrgID = nil
	stored.OrgName = ""
	stored.OrgOriginalName = ""
	stored.SecondaryOrgIDs = nil
	stored.SecondaryOrgNames = nil

	s.people[stored.ID] = stored
	s.pplOrder = append(s.pplOrder, stored.ID)

	if orgName != "" {
		org := s.ensureOrganizationLocked(ctx, orgName)
		if org != nil {
			s.linkLocked(ctx, stored, org)
		}
	}

	s.registry.Register(stored.Tags)
	s.persistPerson(ctx, stored)
	s.notifyCreated(types.RecordKindPerson, stored.ID)
	return clonePerson(stored)
}

func (s *directoryService) UpdatePerson(ctx context.Context, person *types.Person) {
	if person == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.people[person.ID]
	if !ok {
		return
	}

	updated := clonePerson(person)
	// Link, photo, and provenance state only change through their own paths.
	updated.OrgID = stored.OrgID
	updated.OrgName = stored.OrgName
	updated.OrgOriginalName = stored.OrgOriginalName
	updated.SecondaryOrgIDs = stored.SecondaryOrgIDs
	updated.SecondaryOrgNames = stored.SecondaryOrgNames
	updated.PhotoIDs = stored.PhotoIDs
	updated.EnrichedFields = stored.EnrichedFields
	updated.PreEnrichment = stored.PreEnrichment
	updated.EnrichedAt = stored.EnrichedAt
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.people[person.ID] = updated

	s.registry.Register(updated.Tags)
	s.persistPerson(ctx, updated)
	s.notifyUpdated(types.RecordKindPerson, updated.ID)
}

func (s *directoryService) DeletePerson(ctx context.Context, personID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[personID]; !ok {
		return
	}
	delete(s.people, personID)
	s.pplOrder = removeID(s.pplOrder, personID)

	for _, oid := range s.orgOrder {
		org, ok := s.orgs[oid]
		if !ok {
			continue
		}
		if containsID(org.PersonIDs, personID) {
			org.PersonIDs = removeID(org.PersonIDs, personID)
			s.persistOrganization(ctx, org)
		}
	}

	if err := s.pplRepo.Delete(ctx, nil, personID); err != nil {
		s.log.Warn("Failed to delete person from storage", "person_id", personID, "error", err)
	}
	s.rebuildTagPoolLocked()
	s.notifyDeleted(types.RecordKindPerson, personID)
}

// EnsureOrganization looks up an organization by name case-insensitively,
// creating it if it does not exist yet.
func (s *directoryService) EnsureOrganization(ctx context.Context, name string) *types.Organization {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.ensureOrganizationLocked(ctx, name)
	return cloneOrganization(org)
}

func (s *directoryService) ensureOrganizationLocked(ctx context.Context, name string) *types.Organization {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	lowered := strings.ToLower(name)
	for _, id := range s.orgOrder {
		if org, ok := s.orgs[id]; ok && strings.ToLower(org.Name) == lowered {
			return org
		}
	}
	return s.createOrganizationLocked(ctx, &types.Organization{Name: name})
}

func (s *directoryService) LinkPerson(ctx context.Context, personID, orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, pok := s.people[personID]
	org, ook := s.orgs[orgID]
	if !pok || !ook {
		return
	}
	if s.linkLocked(ctx, p, org) {
		s.persistPerson(ctx, p)
		s.persistOrganization(ctx, org)
		s.notifyUpdated(types.RecordKindPerson, personID)
		s.notifyUpdated(types.RecordKindOrganization, orgID)
	}
}

// linkLocked links both sides. Idempotent on the organization side; on the
// person side the organization becomes the primary link if none exists yet,
// otherwise it is appended to the secondary lists in lock-step.
func (s *directoryService) linkLocked(ctx context.Context, p *types.Person, org *types.Organization) bool {
	changed := false
	if !containsID(org.PersonIDs, p.ID) {
		org.PersonIDs = append(org.PersonIDs, p.ID)
		changed = true
	}

	switch {
	case p.OrgID == nil:
		orgID := org.ID
		p.OrgID = &orgID
		p.OrgName = org.Name
		p.OrgOriginalName = org.OriginalName
		changed = true
	case *p.OrgID == org.ID:
		// already the primary link
	case !containsID(p.SecondaryOrgIDs, org.ID):
		p.SecondaryOrgIDs = append(p.SecondaryOrgIDs, org.ID)
		p.SecondaryOrgNames = append(p.SecondaryOrgNames, org.Name)
		changed = true
	}
	return changed
}

func (s *directoryService) UnlinkPerson(ctx context.Context, personID, orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, pok := s.people[personID]
	if !pok {
		return
	}
	changed := false
	if org, ok := s.orgs[orgID]; ok && containsID(org.PersonIDs, personID) {
		org.PersonIDs = removeID(org.PersonIDs, personID)
		s.persistOrganization(ctx, org)
		s.notifyUpdated(types.RecordKindOrganization, orgID)
		changed = true
	}
	if s.removeOrgFromPersonLocked(p, orgID) {
		changed = true
	}
	if changed {
		s.persistPerson(ctx, p)
		s.notifyUpdated(types.RecordKindPerson, personID)
	}
}

// removeOrgFromPersonLocked drops orgID from the person's link sets. If it
// was the primary link the first secondary (if any) is promoted, its name
// taken from the stored secondary name or resolved from the live record.
// Secondary entries are removed by identifier match, not position.
func (s *directoryService) removeOrgFromPersonLocked(p *types.Person, orgID uuid.UUID) bool {
	if p.OrgID != nil && *p.OrgID == orgID {
		if len(p.SecondaryOrgIDs) > 0 {
			promoted := p.SecondaryOrgIDs[0]
			name := ""
			if len(p.SecondaryOrgNames) > 0 {
				name = p.SecondaryOrgNames[0]
			}
			originalName := ""
			if live, ok := s.orgs[promoted]; ok {
				if name == "" {
					name = live.Name
				}
				originalName = live.OriginalName
			}
			p.OrgID = &promoted
			p.OrgName = name
			p.OrgOriginalName = originalName
			p.SecondaryOrgIDs = removeID(p.SecondaryOrgIDs, promoted)
			if len(p.SecondaryOrgNames) > 0 {
				p.SecondaryOrgNames = append([]string(nil), p.SecondaryOrgNames[1:]...)
			}
		} else {
			p.OrgID = nil
			p.OrgName = ""
			p.OrgOriginalName = ""
		}
		return true
	}

	for i, sid := range p.SecondaryOrgIDs {
		if sid == orgID {
			p.SecondaryOrgIDs = append(append([]uuid.UUID(nil), p.SecondaryOrgIDs[:i]...), p.SecondaryOrgIDs[i+1:]...)
			if i < len(p.SecondaryOrgNames) {
				p.SecondaryOrgNames = append(append([]string(nil), p.SecondaryOrgNames[:i]...), p.SecondaryOrgNames[i+1:]...)
			}
			return true
		}
	}
	return false
}

// AddPhoto appends an attachment id to a record, refusing past the bound.
func (s *directoryService) AddPhoto(ctx context.Context, kind types.RecordKind, ownerID uuid.UUID, photoID string) error {
	if strings.TrimSpace(photoID) == "" {
		return errs.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case types.RecordKindOrganization:
		org, ok := s.orgs[ownerID]
		if !ok {
			return nil
		}
		if len(org.PhotoIDs) >= maxAttachments {
			return errs.ErrAttachmentLimit
		}
		org.PhotoIDs = append(org.PhotoIDs, photoID)
		s.persistOrganization(ctx, org)
		s.notifyUpdated(kind, ownerID)
	case types.RecordKindPerson:
		p, ok := s.people[ownerID]
		if !ok {
			return nil
		}
		if len(p.PhotoIDs) >= maxAttachments {
			return errs.ErrAttachmentLimit
		}
		p.PhotoIDs = append(p.PhotoIDs, photoID)
		s.persistPerson(ctx, p)
		s.notifyUpdated(kind, ownerID)
	}
	return nil
}

// MergePerson folds an incoming person record into an existing one: incoming
// non-empty fields win, notes concatenate, tags union. A referenced
// organization name is resolved or auto-created and linked. Extra photo ids
// are appended up to the attachment bound.
func (s *directoryService) MergePerson(ctx context.Context, existingID uuid.UUID, incoming *types.Person, photoIDs []string) *types.Person {
	if incoming == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.people[existingID]
	if !ok {
		return nil
	}

	changed := MergeContactFields(existing, incoming)

	if orgName := strings.TrimSpace(incoming.OrgName); orgName != "" {
		if org := s.ensureOrganizationLocked(ctx, orgName); org != nil {
			if s.linkLocked(ctx, existing, org) {
				s.persistOrganization(ctx, org)
				changed = true
			}
		}
	}

	for _, photoID := range photoIDs {
		if len(existing.PhotoIDs) >= maxAttachments {
			break
		}
		if strings.TrimSpace(photoID) == "" {
			continue
		}
		existing.PhotoIDs = append(existing.PhotoIDs, photoID)
		changed = true
	}

	if changed {
		existing.UpdatedAt = time.Now().UTC()
		s.registry.Register(existing.Tags)
		s.persistPerson(ctx, existing)
		s.notifyUpdated(types.RecordKindPerson, existingID)
	}
	return clonePerson(existing)
}

func (s *directoryService) FindDuplicatePerson(name, phone, email string) *types.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := make([]*types.Person, 0, len(s.pplOrder))
	for _, id := range s.pplOrder {
		if p, ok := s.people[id]; ok {
			ordered = append(ordered, p)
		}
	}
	if match := FindDuplicate(ordered, name, phone, email); match != nil {
		return clonePerson(match)
	}
	return nil
}

// ApplyEnrichment merges an enrichment result into the live record. Returns
// found=false when the record no longer exists (the merge is silently
// aborted) and changed=false when the result produced no delta, in which
// case neither stored state nor provenance is touched.
func (s *directoryService) ApplyEnrichment(ctx context.Context, kind types.RecordKind, recordID uuid.UUID, res *types.EnrichmentResult) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	switch kind {
	case types.RecordKindOrganization:
		org, ok := s.orgs[recordID]
		if !ok {
			return false, false
		}
		outcome := MergeEnrichmentIntoOrganization(org, res, s.registry.Canonicalize, now)
		if !outcome.Changed {
			return true, false
		}
		org.UpdatedAt = now
		s.registry.Register(org.Tags)
		s.persistOrganization(ctx, org)
		s.notifyUpdated(kind, recordID)
		return true, true
	case types.RecordKindPerson:
		p, ok := s.people[recordID]
		if !ok {
			return false, false
		}
		outcome := MergeEnrichmentIntoPerson(p, res, s.registry.Canonicalize, now)
		if !outcome.Changed {
			return true, false
		}
		p.UpdatedAt = now
		s.registry.Register(p.Tags)
		s.persistPerson(ctx, p)
		s.notifyUpdated(kind, recordID)
		return true, true
	}
	return false, false
}

// RevertEnrichment restores the values saved in the record's provenance map
// and clears the provenance state. Summaries are derived text and are left
// in place; a changed field with no backup entry had no prior value and is
// cleared.
func (s *directoryService) RevertEnrichment(ctx context.Context, kind types.RecordKind, recordID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case types.RecordKindOrganization:
		org, ok := s.orgs[recordID]
		if !ok || len(org.EnrichedFields) == 0 {
			return false
		}
		for _, field := range org.EnrichedFields {
			restoreOrganizationField(org, field, org.PreEnrichment[field])
		}
		org.EnrichedFields = nil
		org.PreEnrichment = nil
		org.EnrichedAt = nil
		org.UpdatedAt = time.Now().UTC()
		s.persistOrganization(ctx, org)
		s.rebuildTagPoolLocked()
		s.notifyUpdated(kind, recordID)
		return true
	case types.RecordKindPerson:
		p, ok := s.people[recordID]
		if !ok || len(p.EnrichedFields) == 0 {
			return false
		}
		for _, field := range p.EnrichedFields {
			restorePersonField(p, field, p.PreEnrichment[field])
		}
		p.EnrichedFields = nil
		p.PreEnrichment = nil
		p.EnrichedAt = nil
		p.UpdatedAt = time.Now().UTC()
		s.persistPerson(ctx, p)
		s.rebuildTagPoolLocked()
		s.notifyUpdated(kind, recordID)
		return true
	}
	return false
}

func (s *directoryService) TagPool() []string {
	return s.registry.All()
}

func (s *directoryService) Canonicalize(tag string) string {
	return s.registry.Canonicalize(tag)
}

func restoreOrganizationField(org *types.Organization, field, prior string) {
	switch field {
	case FieldWebsite:
		org.Website = prior
	case FieldLinkedIn:
		org.LinkedInURL = prior
	case FieldPhone:
		org.Phone = prior
	case FieldAddress:
		org.Address = prior
	case FieldIndustry:
		org.Industry = prior
	case FieldSizeBand:
		org.SizeBand = prior
	case FieldRevenueBand:
		org.RevenueBand = prior
	case FieldFoundedYear:
		org.FoundedYear = prior
	case FieldHeadquarters:
		org.Headquarters = prior
	case FieldTags:
		org.Tags = splitTagBackup(prior)
	}
}

func restorePersonField(p *types.Person, field, prior string) {
	switch field {
	case FieldTitle:
		p.Title = prior
	case FieldDepartment:
		p.Department = prior
	case FieldLocation:
		p.Location = prior
	case FieldPhone:
		p.Phone = prior
	case FieldEmail:
		p.Email = prior
	case FieldWebsite:
		p.Website = prior
	case FieldLinkedIn:
		p.LinkedInURL = prior
	case FieldTags:
		p.Tags = splitTagBackup(prior)
	}
}

func splitTagBackup(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, tagBackupSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// rebuildTagPoolLocked recomputes the registry from every live record.
func (s *directoryService) rebuildTagPoolLocked() {
	sets := make([][]string, 0, len(s.orgs)+len(s.people))
	for _, org := range s.orgs {
		sets = append(sets, org.Tags)
	}
	for _, p := range s.people {
		sets = append(sets, p.Tags)
	}
	s.registry.Rebuild(sets...)
}

func (s *directoryService) persistOrganization(ctx context.Context, org *types.Organization) {
	if err := s.orgRepo.Save(ctx, nil, org); err != nil {
		s.log.Warn("Failed to save organization", "org_id", org.ID, "error", err)
	}
}

func (s *directoryService) persistPerson(ctx context.Context, p *types.Person) {
	if err := s.pplRepo.Save(ctx, nil, p); err != nil {
		s.log.Warn("Failed to save person", "person_id", p.ID, "error", err)
	}
}

func (s *directoryService) notifyCreated(kind types.RecordKind, id uuid.UUID) {
	if s.notifier != nil {
		s.notifier.RecordCreated(kind, id)
	}
}

func (s *directoryService) notifyUpdated(kind types.RecordKind, id uuid.UUID) {
	if s.notifier != nil {
		s.notifier.RecordUpdated(kind, id)
	}
}

func (s *directoryService) notifyDeleted(kind types.RecordKind, id uuid.UUID) {
	if s.notifier != nil {
		s.notifier.RecordDeleted(kind, id)
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

func cloneOrganization(org *types.Organization) *types.Organization {
	if org == nil {
		return nil
	}
	clone := *org
	clone.Services = append([]string(nil), org.Services...)
	clone.Tags = append([]string(nil), org.Tags...)
	clone.PersonIDs = append([]uuid.UUID(nil), org.PersonIDs...)
	clone.PhotoIDs = append([]string(nil), org.PhotoIDs...)
	clone.EnrichedFields = append([]string(nil), org.EnrichedFields...)
	if org.PreEnrichment != nil {
		clone.PreEnrichment = make(map[string]string, len(org.PreEnrichment))
		for k, v := range org.PreEnrichment {
			clone.PreEnrichment[k] = v
		}
	}
	return &clone
}

func clonePerson(p *types.Person) *types.Person {
	if p == nil {
		return nil
	}
	clone := *p
	if p.OrgID != nil {
		orgID := *p.OrgID
		clone.OrgID = &orgID
	}
	clone.Tags = append([]string(nil), p.Tags...)
	clone.SecondaryOrgIDs = append([]uuid.UUID(nil), p.SecondaryOrgIDs...)
	clone.SecondaryOrgNames = append([]string(nil), p.SecondaryOrgNames...)
	clone.PhotoIDs = append([]string(nil), p.PhotoIDs...)
	clone.EnrichedFields = append([]string(nil), p.EnrichedFields...)
	if p.PreEnrichment != nil {
		clone.PreEnrichment = make(map[string]string, len(p.PreEnrichment))
		for k, v := range p.PreEnrichment {
			clone.PreEnrichment[k] = v
		}
	}
	return &clone
}
