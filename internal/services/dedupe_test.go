package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/cardfolio-backend/internal/types"
)

func personWith(name, phone, email string) *types.Person {
	return &types.Person{ID: uuid.New(), Name: name, Phone: phone, Email: email}
}

func TestFindDuplicateEmailBeatsPhoneAndName(t *testing.T) {
	byName := personWith("Aiko Tanaka", "", "")
	byPhone := personWith("Someone Else", "03-1234-5678", "")
	byEmail := personWith("Another Person", "", "aiko@example.co.jp")
	people := []*types.Person{byName, byPhone, byEmail}

	got := FindDuplicate(people, "Aiko Tanaka", "03-1234-5678", "AIKO@example.co.jp")
	if got == nil || got.ID != byEmail.ID {
		t.Fatalf("want email match %v, got=%+v", byEmail.ID, got)
	}
}

func TestFindDuplicatePhoneBeatsName(t *testing.T) {
	byName := personWith("Aiko Tanaka", "", "")
	byPhone := personWith("Someone Else", "03-1234-5678", "")
	people := []*types.Person{byName, byPhone}

	got := FindDuplicate(people, "Aiko Tanaka", "03-1234-5678", "")
	if got == nil || got.ID != byPhone.ID {
		t.Fatalf("want phone match %v, got=%+v", byPhone.ID, got)
	}
}

func TestFindDuplicateNameCaseInsensitive(t *testing.T) {
	target := personWith("Aiko Tanaka", "", "")
	people := []*types.Person{personWith("Bob", "", ""), target}

	got := FindDuplicate(people, "  aiko tanaka ", "", "")
	if got == nil || got.ID != target.ID {
		t.Fatalf("want name match %v, got=%+v", target.ID, got)
	}
}

func TestFindDuplicateEmptyFieldsNeverMatch(t *testing.T) {
	// Records with empty identity fields must not match an empty candidate.
	people := []*types.Person{personWith("", "", "")}
	if got := FindDuplicate(people, "", "", ""); got != nil {
		t.Fatalf("want no match, got=%+v", got)
	}
}

func TestFindDuplicateFirstInStoredOrder(t *testing.T) {
	first := personWith("Dup", "", "")
	second := personWith("Dup", "", "")
	got := FindDuplicate([]*types.Person{first, second}, "Dup", "", "")
	if got == nil || got.ID != first.ID {
		t.Fatalf("want first match %v, got=%+v", first.ID, got)
	}
}

func TestFindDuplicateNoMatch(t *testing.T) {
	people := []*types.Person{personWith("Aiko", "03-1", "a@example.com")}
	if got := FindDuplicate(people, "Ben", "04-2", "b@example.com"); got != nil {
		t.Fatalf("want nil, got=%+v", got)
	}
}
