package services

import (
	"sort"
	"strings"
	"sync"
)

// TagRegistry maintains the canonical tag vocabulary across all records.
// Tags are unique case-insensitively; the first-seen spelling wins and is
// returned for every later case variant.
type TagRegistry interface {
	Register(tags []string)
	Canonicalize(tag string) string
	All() []string
	Rebuild(tagSets ...[]string)
}

type tagRegistry struct {
	mu        sync.RWMutex
	canonical map[string]string // lowercased -> first-seen spelling
}

func NewTagRegistry() TagRegistry {
	return &tagRegistry{canonical: make(map[string]string)}
}

func (tr *tagRegistry) Register(tags []string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, exists := tr.canonical[key]; !exists {
			tr.canonical[key] = tag
		}
	}
}

func (tr *tagRegistry) Canonicalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tag
	}
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	if existing, ok := tr.canonical[strings.ToLower(tag)]; ok {
		return existing
	}
	return tag
}

func (tr *tagRegistry) All() []string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	out := make([]string, 0, len(tr.canonical))
	for _, spelling := range tr.canonical {
		out = append(out, spelling)
	}
	sort.Strings(out)
	return out
}

// Rebuild recomputes the pool from scratch as the union of the given tag
// sets. Called after a record delete so tags no longer carried by any live
// record drop out of the pool.
func (tr *tagRegistry) Rebuild(tagSets ...[]string) {
	tr.mu.Lock()
	tr.canonical = make(map[string]string)
	tr.mu.Unlock()
	for _, set := range tagSets {
		tr.Register(set)
	}
}
