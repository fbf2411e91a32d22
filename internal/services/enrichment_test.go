package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type fakeEnrichmentClient struct {
	mu      sync.Mutex
	block   chan struct{}
	result  *types.EnrichmentResult
	err     error
	lastReq *types.EnrichmentRequest
}

func (c *fakeEnrichmentClient) Enrich(ctx context.Context, req *types.EnrichmentRequest) (*types.EnrichmentResult, error) {
	c.mu.Lock()
	c.lastReq = req
	block := c.block
	c.mu.Unlock()
	if block != nil {
		<-block
	}
	return c.result, c.err
}

func (c *fakeEnrichmentClient) setBlock(ch chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block = ch
}

func (c *fakeEnrichmentClient) request() *types.EnrichmentRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReq
}

type fakeProgressNotifier struct {
	mu     sync.Mutex
	stages []EnrichmentStatus
	done   []EnrichmentStatus
}

func (n *fakeProgressNotifier) EnrichmentStage(status EnrichmentStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stages = append(n.stages, status)
}

func (n *fakeProgressNotifier) EnrichmentDone(status EnrichmentStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.done = append(n.done, status)
}

func (n *fakeProgressNotifier) doneCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.done)
}

func (n *fakeProgressNotifier) lastDone() EnrichmentStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.done[len(n.done)-1]
}

func (n *fakeProgressNotifier) sawStage(stage EnrichmentStage) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, st := range n.stages {
		if st.Stage == stage {
			return true
		}
	}
	return false
}

func testEnrichmentConfig() EnrichmentConfig {
	return EnrichmentConfig{
		SearchSteps:  3,
		StepInterval: 5 * time.Millisecond,
		CompleteHold: 5 * time.Millisecond,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEnrichmentHappyPath(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	p := dir.CreatePerson(context.Background(), &types.Person{Name: "Aiko", Title: "Manager"})

	client := &fakeEnrichmentClient{
		result: &types.EnrichmentResult{
			SummaryEN: "summary",
			Fields:    map[string]string{FieldTitle: "Director"},
		},
	}
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, client, notifier, testEnrichmentConfig())

	if err := svc.Start(context.Background(), types.RecordKindPerson, p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, "completion", func() bool { return notifier.doneCount() == 1 })
	if got := notifier.lastDone(); got.Outcome != OutcomeEnriched || got.Stage != StageComplete {
		t.Fatalf("done status: %+v", got)
	}

	waitFor(t, "return to idle", func() bool { return svc.Status().Stage == StageIdle })
	if got := svc.Status(); got.Outcome != OutcomeEnriched {
		t.Fatalf("idle status must keep the outcome: %+v", got)
	}

	enriched := dir.GetPerson(p.ID)
	if enriched.Title != "Director" || enriched.SummaryEN != "summary" {
		t.Fatalf("result not merged: %+v", enriched)
	}

	req := client.request()
	if req == nil || req.Kind != types.RecordKindPerson || req.Name != "Aiko" {
		t.Fatalf("request not built from record: %+v", req)
	}
}

func TestEnrichmentSingleFlight(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	p := dir.CreatePerson(context.Background(), &types.Person{Name: "Aiko"})
	other := dir.CreatePerson(context.Background(), &types.Person{Name: "Ben"})

	block := make(chan struct{})
	client := &fakeEnrichmentClient{block: block, result: &types.EnrichmentResult{}}
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, client, notifier, testEnrichmentConfig())

	if err := svc.Start(context.Background(), types.RecordKindPerson, p.ID); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := svc.Start(context.Background(), types.RecordKindPerson, other.ID); !errors.Is(err, errs.ErrEnrichmentActive) {
		t.Fatalf("second start: want ErrEnrichmentActive, got=%v", err)
	}

	close(block)
	waitFor(t, "return to idle", func() bool { return svc.Status().Stage == StageIdle })

	// Once idle, a new run is accepted again.
	client.setBlock(nil)
	if err := svc.Start(context.Background(), types.RecordKindPerson, other.ID); err != nil {
		t.Fatalf("start after idle: %v", err)
	}
	waitFor(t, "second completion", func() bool { return svc.Status().Stage == StageIdle })
}

func TestEnrichmentCosmeticStagesAdvance(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	p := dir.CreatePerson(context.Background(), &types.Person{Name: "Aiko"})

	block := make(chan struct{})
	client := &fakeEnrichmentClient{block: block, result: &types.EnrichmentResult{}}
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, client, notifier, testEnrichmentConfig())

	if err := svc.Start(context.Background(), types.RecordKindPerson, p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, "searching stage", func() bool { return notifier.sawStage(StageSearching) })
	close(block)
	waitFor(t, "return to idle", func() bool { return svc.Status().Stage == StageIdle })
}

func TestEnrichmentOutcomeNoChanges(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	p := dir.CreatePerson(context.Background(), &types.Person{Name: "Aiko", Title: "Director"})

	client := &fakeEnrichmentClient{result: &types.EnrichmentResult{
		Fields: map[string]string{FieldTitle: "Director"},
	}}
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, client, notifier, testEnrichmentConfig())

	if err := svc.Start(context.Background(), types.RecordKindPerson, p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "completion", func() bool { return notifier.doneCount() == 1 })
	if got := notifier.lastDone().Outcome; got != OutcomeNoChanges {
		t.Fatalf("outcome: want=%s got=%s", OutcomeNoChanges, got)
	}
	if dir.GetPerson(p.ID).EnrichedAt != nil {
		t.Fatalf("no-change run must not stamp provenance")
	}
}

func TestEnrichmentOutcomeMissingCredential(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	p := dir.CreatePerson(context.Background(), &types.Person{Name: "Aiko"})

	client := &fakeEnrichmentClient{err: errs.ErrMissingCredential}
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, client, notifier, testEnrichmentConfig())

	if err := svc.Start(context.Background(), types.RecordKindPerson, p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "completion", func() bool { return notifier.doneCount() == 1 })
	if got := notifier.lastDone().Outcome; got != OutcomeMissingCredential {
		t.Fatalf("outcome: want=%s got=%s", OutcomeMissingCredential, got)
	}
}

func TestEnrichmentOutcomeFailed(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	p := dir.CreatePerson(context.Background(), &types.Person{Name: "Aiko"})

	client := &fakeEnrichmentClient{err: errors.New("backend unavailable")}
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, client, notifier, testEnrichmentConfig())

	if err := svc.Start(context.Background(), types.RecordKindPerson, p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "completion", func() bool { return notifier.doneCount() == 1 })
	if got := notifier.lastDone().Outcome; got != OutcomeFailed {
		t.Fatalf("outcome: want=%s got=%s", OutcomeFailed, got)
	}
}

func TestEnrichmentOutcomeAbortedWhenRecordDeleted(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	ctx := context.Background()
	p := dir.CreatePerson(ctx, &types.Person{Name: "Aiko"})

	block := make(chan struct{})
	client := &fakeEnrichmentClient{block: block, result: &types.EnrichmentResult{
		Fields: map[string]string{FieldTitle: "Director"},
	}}
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, client, notifier, testEnrichmentConfig())

	if err := svc.Start(ctx, types.RecordKindPerson, p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	dir.DeletePerson(ctx, p.ID)
	close(block)

	waitFor(t, "completion", func() bool { return notifier.doneCount() == 1 })
	if got := notifier.lastDone().Outcome; got != OutcomeAborted {
		t.Fatalf("outcome: want=%s got=%s", OutcomeAborted, got)
	}
}

func TestEnrichmentStartMissingRecord(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	svc := NewEnrichmentService(newTestLogger(t), dir, &fakeEnrichmentClient{}, &fakeProgressNotifier{}, testEnrichmentConfig())

	if err := svc.Start(context.Background(), types.RecordKindPerson, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got=%v", err)
	}
	if got := svc.Status().Stage; got != StageIdle {
		t.Fatalf("failed start must leave the machine idle, got=%s", got)
	}
}

func TestEnrichmentProgressMapping(t *testing.T) {
	cases := []struct {
		status EnrichmentStatus
		want   float64
	}{
		{EnrichmentStatus{Stage: StageIdle}, 0},
		{EnrichmentStatus{Stage: StageAnalyzing}, 0.1},
		{EnrichmentStatus{Stage: StageSearching, Step: 2, TotalSteps: 4}, 0.45},
		{EnrichmentStatus{Stage: StageSearching, Step: 4, TotalSteps: 4}, 0.8},
		{EnrichmentStatus{Stage: StageSearching}, 0.1},
		{EnrichmentStatus{Stage: StageMerging}, 0.9},
		{EnrichmentStatus{Stage: StageComplete}, 1},
	}
	for _, tc := range cases {
		if got := tc.status.Progress(); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s step=%d: want=%v got=%v", tc.status.Stage, tc.status.Step, tc.want, got)
		}
	}
}

func TestStragglingCosmeticTickCannotRegressMerging(t *testing.T) {
	dir, _, _, _ := newTestDirectory(t)
	notifier := &fakeProgressNotifier{}
	svc := NewEnrichmentService(newTestLogger(t), dir, &fakeEnrichmentClient{}, notifier, testEnrichmentConfig())

	// Put the machine where the real call has already resolved: a cosmetic
	// tick selected just before its stop signal must not step back.
	impl := svc.(*enrichmentService)
	impl.mu.Lock()
	impl.status = EnrichmentStatus{Stage: StageMerging, Step: 3, TotalSteps: 3, Kind: types.RecordKindPerson, RecordID: uuid.New()}
	impl.mu.Unlock()

	impl.setActiveStage(StageSearching, 2)

	if got := svc.Status().Stage; got != StageMerging {
		t.Fatalf("merging regressed to %s", got)
	}
	if notifier.sawStage(StageSearching) {
		t.Fatalf("out-of-order searching event emitted")
	}
}
