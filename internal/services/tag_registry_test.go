package services

import (
	"reflect"
	"testing"
)

func TestTagRegistryFirstSeenSpellingWins(t *testing.T) {
	registry := NewTagRegistry()
	registry.Register([]string{"Logistics"})
	registry.Register([]string{"logistics", "LOGISTICS"})

	if got := registry.Canonicalize("lOgIsTiCs"); got != "Logistics" {
		t.Fatalf("canonicalize: want=%q got=%q", "Logistics", got)
	}
	if got := registry.All(); !reflect.DeepEqual(got, []string{"Logistics"}) {
		t.Fatalf("pool: want one spelling, got=%v", got)
	}
}

func TestTagRegistryCanonicalizeUnknownTagPassesThrough(t *testing.T) {
	registry := NewTagRegistry()
	if got := registry.Canonicalize("  Fintech  "); got != "Fintech" {
		t.Fatalf("want trimmed passthrough, got=%q", got)
	}
}

func TestTagRegistryAllSorted(t *testing.T) {
	registry := NewTagRegistry()
	registry.Register([]string{"zebra", "Alpha", "midway"})

	want := []string{"Alpha", "midway", "zebra"}
	if got := registry.All(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
}

func TestTagRegistryRegisterSkipsBlanks(t *testing.T) {
	registry := NewTagRegistry()
	registry.Register([]string{"", "  ", "real"})

	if got := registry.All(); !reflect.DeepEqual(got, []string{"real"}) {
		t.Fatalf("want only real tag, got=%v", got)
	}
}

func TestTagRegistryRebuildDropsOrphans(t *testing.T) {
	registry := NewTagRegistry()
	registry.Register([]string{"keep", "drop"})

	registry.Rebuild([]string{"keep"}, []string{"New"})

	want := []string{"New", "keep"}
	if got := registry.All(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
	if got := registry.Canonicalize("drop"); got != "drop" {
		t.Fatalf("dropped tag should no longer canonicalize, got=%q", got)
	}
}
