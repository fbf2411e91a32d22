package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

type fakeOrgRepo struct {
	mu      sync.Mutex
	saved   map[uuid.UUID]*types.Organization
	deleted []uuid.UUID
	initial []*types.Organization
	saveErr error
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{saved: make(map[uuid.UUID]*types.Organization)}
}

func (r *fakeOrgRepo) LoadAll(ctx context.Context, tx *gorm.DB) ([]*types.Organization, error) {
	return r.initial, nil
}

func (r *fakeOrgRepo) Save(ctx context.Context, tx *gorm.DB, org *types.Organization) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[org.ID] = org
	return nil
}

func (r *fakeOrgRepo) Delete(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, orgID)
	return nil
}

type fakePersonRepo struct {
	mu      sync.Mutex
	saved   map[uuid.UUID]*types.Person
	deleted []uuid.UUID
	initial []*types.Person
	saveErr error
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{saved: make(map[uuid.UUID]*types.Person)}
}

func (r *fakePersonRepo) LoadAll(ctx context.Context, tx *gorm.DB) ([]*types.Person, error) {
	return r.initial, nil
}

func (r *fakePersonRepo) Save(ctx context.Context, tx *gorm.DB, person *types.Person) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[person.ID] = person
	return nil
}

func (r *fakePersonRepo) Delete(ctx context.Context, tx *gorm.DB, personID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, personID)
	return nil
}

type recordedEvent struct {
	op   string
	kind types.RecordKind
	id   uuid.UUID
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) record(op string, kind types.RecordKind, id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{op: op, kind: kind, id: id})
}

func (n *recordingNotifier) RecordCreated(kind types.RecordKind, id uuid.UUID) {
	n.record("created", kind, id)
}

func (n *recordingNotifier) RecordUpdated(kind types.RecordKind, id uuid.UUID) {
	n.record("updated", kind, id)
}

func (n *recordingNotifier) RecordDeleted(kind types.RecordKind, id uuid.UUID) {
	n.record("deleted", kind, id)
}

func (n *recordingNotifier) count(op string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.op == op {
			c++
		}
	}
	return c
}

func newTestDirectory(t *testing.T) (DirectoryService, *fakeOrgRepo, *fakePersonRepo, *recordingNotifier) {
	t.Helper()
	orgRepo := newFakeOrgRepo()
	pplRepo := newFakePersonRepo()
	notifier := &recordingNotifier{}
	dir := NewDirectoryService(newTestLogger(t), orgRepo, pplRepo, NewTagRegistry(), notifier)
	return dir, orgRepo, pplRepo, notifier
}
