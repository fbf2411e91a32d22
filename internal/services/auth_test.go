package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type fakeUserRepo struct {
	users map[string]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*types.User)}
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	if user, ok := r.users[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) error {
	r.users[strings.ToLower(user.Email)] = user
	return nil
}

func TestEnsureOwnerBootstrapsOnce(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("OWNER_PASSWORD", "hunter2-secret")

	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)

	if err := svc.EnsureOwner(context.Background()); err != nil {
		t.Fatalf("ensure owner: %v", err)
	}
	created := repo.users["owner@example.com"]
	if created == nil {
		t.Fatalf("owner not created")
	}
	if created.PasswordHash == "hunter2-secret" {
		t.Fatalf("password stored in the clear")
	}

	// Second call finds the account and creates nothing new.
	if err := svc.EnsureOwner(context.Background()); err != nil {
		t.Fatalf("second ensure owner: %v", err)
	}
	if repo.users["owner@example.com"].ID != created.ID {
		t.Fatalf("owner recreated")
	}
}

func TestEnsureOwnerWithoutEnvIsNoop(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "")
	t.Setenv("OWNER_PASSWORD", "")

	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)
	if err := svc.EnsureOwner(context.Background()); err != nil {
		t.Fatalf("want nil, got=%v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("no account should exist without env config")
	}
}

func TestLoginAndValidateTokenRoundtrip(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("OWNER_PASSWORD", "hunter2-secret")

	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)
	if err := svc.EnsureOwner(context.Background()); err != nil {
		t.Fatalf("ensure owner: %v", err)
	}

	token, err := svc.Login(context.Background(), "owner@example.com", "hunter2-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != repo.users["owner@example.com"].ID {
		t.Fatalf("subject mismatch: %v", userID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("OWNER_PASSWORD", "hunter2-secret")

	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)
	if err := svc.EnsureOwner(context.Background()); err != nil {
		t.Fatalf("ensure owner: %v", err)
	}

	if _, err := svc.Login(context.Background(), "owner@example.com", "wrong"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("wrong password: want ErrUnauthorized, got=%v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "hunter2-secret"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("unknown user: want ErrUnauthorized, got=%v", err)
	}
}

func TestValidateTokenRejectsGarbageAndWrongKey(t *testing.T) {
	t.Setenv("OWNER_EMAIL", "owner@example.com")
	t.Setenv("OWNER_PASSWORD", "hunter2-secret")

	repo := newFakeUserRepo()
	svc := NewAuthService(newTestLogger(t), repo, "test-secret", time.Hour)
	if err := svc.EnsureOwner(context.Background()); err != nil {
		t.Fatalf("ensure owner: %v", err)
	}

	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("garbage token: want ErrUnauthorized, got=%v", err)
	}

	token, err := svc.Login(context.Background(), "owner@example.com", "hunter2-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	other := NewAuthService(newTestLogger(t), repo, "different-secret", time.Hour)
	if _, err := other.ValidateToken(token); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("wrong key: want ErrUnauthorized, got=%v", err)
	}
}
