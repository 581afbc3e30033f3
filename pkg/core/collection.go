package core

import (
	"path/filepath"
	"strings"
)

// Collection identifies a source document set results originate from.
// The backend exposes several identifiers for the encyclopedia corpus
// (ECALL, ECALL_DEF, ECWV); they all denote the same logical collection
// and are folded to EC for display purposes.
type Collection string

const (
	CollectionLO       Collection = "LO"
	CollectionDAC      Collection = "DAC"
	CollectionCCG      Collection = "CCG"
	CollectionEC       Collection = "EC"
	CollectionECAll    Collection = "ECALL"
	CollectionECAllDef Collection = "ECALL_DEF"
	CollectionECWV     Collection = "ECWV"
)

// Canonical folds the encyclopedia aliases to EC. Folding is idempotent:
// Canonical(Canonical(c)) == Canonical(c) for any collection.
func (c Collection) Canonical() Collection {
	switch c {
	case CollectionECAll, CollectionECAllDef, CollectionECWV:
		return CollectionEC
	default:
		return c
	}
}

// IsEncyclopedia reports whether the collection belongs to the EC family.
func (c Collection) IsEncyclopedia() bool {
	return c.Canonical() == CollectionEC
}

// Strings converts a collection list to the plain string slice the
// backend request bodies expect.
func Strings(cols []Collection) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

// NormalizeSourceName derives the display name for a raw source/book/file
// value: directory components and a trailing .md/.markdown extension are
// stripped. Empty input maps to the generic "Results" bucket.
func NormalizeSourceName(src string) string {
	if src == "" {
		return "Results"
	}
	s := src
	// Source values may carry either separator depending on the backend host.
	if idx := strings.LastIndexAny(s, `/\`); idx >= 0 {
		s = s[idx+1:]
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".md", ".markdown":
		s = strings.TrimSuffix(s, filepath.Ext(s))
	}
	if s == "" {
		return "Results"
	}
	return s
}
