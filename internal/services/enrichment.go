package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type EnrichmentStage string

const (
	StageIdle      EnrichmentStage = "idle"
	StageAnalyzing EnrichmentStage = "analyzing"
	StageSearching EnrichmentStage = "searching"
	StageMerging   EnrichmentStage = "merging"
	StageComplete  EnrichmentStage = "complete"
)

type EnrichmentOutcome string

const (
	OutcomeEnriched          EnrichmentOutcome = "enriched"
	OutcomeNoChanges         EnrichmentOutcome = "no_changes"
	OutcomeFailed            EnrichmentOutcome = "failed"
	OutcomeMissingCredential EnrichmentOutcome = "missing_credential"
	OutcomeAborted           EnrichmentOutcome = "aborted"
)

// EnrichmentStatus is a snapshot of the orchestrator state machine.
type EnrichmentStatus struct {
	Stage      EnrichmentStage   `json:"stage"`
	Step       int               `json:"step,omitempty"`
	TotalSteps int               `json:"total_steps,omitempty"`
	Kind       types.RecordKind  `json:"kind,omitempty"`
	RecordID   uuid.UUID         `json:"record_id,omitempty"`
	Outcome    EnrichmentOutcome `json:"outcome,omitempty"`
}

// Progress maps the current stage to an observable fraction. It is a pure
// function of state, not of elapsed time.
func (st EnrichmentStatus) Progress() float64 {
	switch st.Stage {
	case StageIdle:
		return 0
	case StageAnalyzing:
		return 0.1
	case StageSearching:
		if st.TotalSteps <= 0 {
			return 0.1
		}
		return 0.1 + 0.7*float64(st.Step)/float64(st.TotalSteps)
	case StageMerging:
		return 0.9
	case StageComplete:
		return 1
	}
	return 0
}

// EnrichmentClient is the external enrichment/translation backend.
type EnrichmentClient interface {
	Enrich(ctx context.Context, req *types.EnrichmentRequest) (*types.EnrichmentResult, error)
}

// EnrichmentProgressNotifier receives stage transitions and terminal outcomes.
type EnrichmentProgressNotifier interface {
	EnrichmentStage(status EnrichmentStatus)
	EnrichmentDone(status EnrichmentStatus)
}

type EnrichmentConfig struct {
	// SearchSteps is N in the cosmetic Searching(1/N)..Searching(N/N) run.
	SearchSteps int
	// StepInterval is the fixed cadence of the cosmetic progression.
	StepInterval time.Duration
	// CompleteHold is how long Complete is shown before returning to Idle.
	CompleteHold time.Duration
}

func DefaultEnrichmentConfig() EnrichmentConfig {
	return EnrichmentConfig{
		SearchSteps:  4,
		StepInterval: 2 * time.Second,
		CompleteHold: 1500 * time.Millisecond,
	}
}

// EnrichmentService sequences one enrichment operation end to end. Only one
// may be in flight process-wide: Start rejects with ErrEnrichmentActive
// while any state other than Idle is active.
type EnrichmentService interface {
	Start(ctx context.Context, kind types.RecordKind, recordID uuid.UUID) error
	Status() EnrichmentStatus
}

type enrichmentService struct {
	mu sync.Mutex

	log       *logger.Logger
	directory DirectoryService
	client    EnrichmentClient
	notifier  EnrichmentProgressNotifier
	cfg       EnrichmentConfig

	status EnrichmentStatus
}

func NewEnrichmentService(log *logger.Logger, directory DirectoryService, client EnrichmentClient, notifier EnrichmentProgressNotifier, cfg EnrichmentConfig) EnrichmentService {
	if cfg.SearchSteps <= 0 {
		cfg.SearchSteps = 4
	}
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = 2 * time.Second
	}
	if cfg.CompleteHold <= 0 {
		cfg.CompleteHold = 1500 * time.Millisecond
	}
	return &enrichmentService{
		log:       log.With("service", "EnrichmentService"),
		directory: directory,
		client:    client,
		notifier:  notifier,
		cfg:       cfg,
		status:    EnrichmentStatus{Stage: StageIdle},
	}
}

func (s *enrichmentService) Status() EnrichmentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *enrichmentService) Start(ctx context.Context, kind types.RecordKind, recordID uuid.UUID) error {
	var req *types.EnrichmentRequest
	switch kind {
	case types.RecordKindOrganization:
		org := s.directory.GetOrganization(recordID)
		if org == nil {
			return errs.ErrNotFound
		}
		req = s.buildOrganizationRequest(org)
	case types.RecordKindPerson:
		p := s.directory.GetPerson(recordID)
		if p == nil {
			return errs.ErrNotFound
		}
		req = s.buildPersonRequest(p)
	default:
		return errs.ErrInvalidArgument
	}

	s.mu.Lock()
	if s.status.Stage != StageIdle {
		s.mu.Unlock()
		return errs.ErrEnrichmentActive
	}
	s.status = EnrichmentStatus{
		Stage:      StageAnalyzing,
		TotalSteps: s.cfg.SearchSteps,
		Kind:       kind,
		RecordID:   recordID,
	}
	status := s.status
	s.mu.Unlock()

	s.notifyStage(status)
	s.log.Info("Enrichment started", "kind", kind, "record_id", recordID)

	// Detached from the request context: the external call outlives the
	// HTTP request that started it.
	go s.run(context.Background(), kind, recordID, req)
	return nil
}

func (s *enrichmentService) run(ctx context.Context, kind types.RecordKind, recordID uuid.UUID, req *types.EnrichmentRequest) {
	done := make(chan struct{})
	go s.advanceCosmetic(done)

	res, err := s.client.Enrich(ctx, req)
	close(done)

	var outcome EnrichmentOutcome
	switch {
	case errors.Is(err, errs.ErrMissingCredential):
		outcome = OutcomeMissingCredential
	case err != nil:
		s.log.Warn("Enrichment call failed", "kind", kind, "record_id", recordID, "error", err)
		outcome = OutcomeFailed
	default:
		s.setActiveStage(StageMerging, s.cfg.SearchSteps)
		found, changed := s.directory.ApplyEnrichment(ctx, kind, recordID, res)
		switch {
		case !found:
			// The record vanished between start and completion; the
			// result is discarded.
			outcome = OutcomeAborted
		case changed:
			outcome = OutcomeEnriched
		default:
			outcome = OutcomeNoChanges
		}
	}

	s.mu.Lock()
	s.status.Stage = StageComplete
	s.status.Step = s.cfg.SearchSteps
	s.status.Outcome = outcome
	status := s.status
	s.mu.Unlock()
	s.notifyStage(status)
	s.notifyDone(status)
	s.log.Info("Enrichment finished", "kind", kind, "record_id", recordID, "outcome", outcome)

	// Hold Complete briefly so observers can render a completion flash.
	time.Sleep(s.cfg.CompleteHold)

	s.mu.Lock()
	s.status = EnrichmentStatus{Stage: StageIdle, Outcome: outcome}
	status = s.status
	s.mu.Unlock()
	s.notifyStage(status)
}

// advanceCosmetic walks Searching(1/N)..Searching(N/N) then Merging on a
// fixed cadence. It stops immediately once the real call resolves.
func (s *enrichmentService) advanceCosmetic(done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.StepInterval)
	defer ticker.Stop()
	step := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			step++
			if step <= s.cfg.SearchSteps {
				s.setActiveStage(StageSearching, step)
			} else {
				s.setActiveStage(StageMerging, s.cfg.SearchSteps)
				return
			}
		}
	}
}

// setActiveStage advances the displayed stage while a run is active. It
// never moves the machine out of Complete or Idle, and a straggling
// cosmetic tick cannot step Merging back to Searching.
func (s *enrichmentService) setActiveStage(stage EnrichmentStage, step int) {
	s.mu.Lock()
	if s.status.Stage == StageIdle || s.status.Stage == StageComplete {
		s.mu.Unlock()
		return
	}
	if s.status.Stage == StageMerging && stage == StageSearching {
		s.mu.Unlock()
		return
	}
	s.status.Stage = stage
	s.status.Step = step
	status := s.status
	s.mu.Unlock()
	s.notifyStage(status)
}

func (s *enrichmentService) notifyStage(status EnrichmentStatus) {
	if s.notifier != nil {
		s.notifier.EnrichmentStage(status)
	}
}

func (s *enrichmentService) notifyDone(status EnrichmentStatus) {
	if s.notifier != nil {
		s.notifier.EnrichmentDone(status)
	}
}

func (s *enrichmentService) buildOrganizationRequest(org *types.Organization) *types.EnrichmentRequest {
	var contextParts []string
	addContext := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			contextParts = append(contextParts, fmt.Sprintf("%s: %s", label, value))
		}
	}
	addContext("website", org.Website)
	addContext("industry", org.Industry)
	addContext("address", org.Address)
	addContext("location", org.Location)
	addContext("service type", org.ServiceType)
	addContext("audience", org.Audience)
	addContext("market region", org.MarketRegion)
	if len(org.Services) > 0 {
		addContext("services", strings.Join(org.Services, ", "))
	}

	var links []string
	for _, pid := range org.PersonIDs {
		if p := s.directory.GetPerson(pid); p != nil {
			links = append(links, p.Name)
		}
	}

	return &types.EnrichmentRequest{
		Kind:           types.RecordKindOrganization,
		RecordID:       org.ID,
		Name:           org.Name,
		OriginalName:   org.OriginalName,
		Summary:        org.Summary,
		Notes:          org.Notes,
		Tags:           org.Tags,
		TagPool:        s.directory.TagPool(),
		Context:        strings.Join(contextParts, "\n"),
		PreferredLinks: links,
		SourceLanguage: org.SourceLanguage,
	}
}

func (s *enrichmentService) buildPersonRequest(p *types.Person) *types.EnrichmentRequest {
	var contextParts []string
	addContext := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			contextParts = append(contextParts, fmt.Sprintf("%s: %s", label, value))
		}
	}
	addContext("title", p.Title)
	addContext("department", p.Department)
	addContext("email", p.Email)
	addContext("location", p.Location)
	addContext("website", p.Website)

	var links []string
	if p.OrgName != "" {
		links = append(links, p.OrgName)
	}
	links = append(links, p.SecondaryOrgNames...)

	return &types.EnrichmentRequest{
		Kind:           types.RecordKindPerson,
		RecordID:       p.ID,
		Name:           p.Name,
		OriginalName:   p.OriginalName,
		Summary:        p.SummaryEN,
		Notes:          p.Notes,
		Tags:           p.Tags,
		TagPool:        s.directory.TagPool(),
		Context:        strings.Join(contextParts, "\n"),
		PreferredLinks: links,
		SourceLanguage: p.SourceLanguage,
	}
}
