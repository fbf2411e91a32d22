package services

import (
	"strings"

	"github.com/yungbote/cardfolio-backend/internal/types"
)

// FindDuplicate returns the first person, in stored order, that matches the
// candidate identity fields. Matching is exact case-insensitive equality per
// field, checked in priority order: email, then phone, then name. This is a
// heuristic against obvious re-scans of the same card, not a fuzzy match.
func FindDuplicate(people []*types.Person, name, phone, email string) *types.Person {
	name = normalizeIdentity(name)
	phone = normalizeIdentity(phone)
	email = normalizeIdentity(email)

	if email != "" {
		for _, p := range people {
			if normalizeIdentity(p.Email) == email {
				return p
			}
		}
	}
	if phone != "" {
		for _, p := range people {
			if normalizeIdentity(p.Phone) == phone {
				return p
			}
		}
	}
	if name != "" {
		for _, p := range people {
			if normalizeIdentity(p.Name) == name {
				return p
			}
		}
	}
	return nil
}

func normalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
