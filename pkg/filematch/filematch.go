// Package filematch routes file paths to a named configuration (an LSP, a
// filetype, a formatter) by extension, glob pattern, or language ID.
package filematch

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// matcher holds the compiled matching rules for a single registered name.
type matcher struct {
	name        string
	extensions  map[string]bool
	patterns    []glob.Glob
	languageIDs map[string]bool
}

// MatcherSet holds every registered matcher and resolves a file to the
// first one (in registration order) whose rules apply.
type MatcherSet struct {
	matchers []*matcher
}

// NewMatcherSet returns an empty set ready for Add calls.
func NewMatcherSet() *MatcherSet {
	return &MatcherSet{}
}

// Add registers extensions, glob patterns, and language IDs under name.
// Extensions are compared case-insensitively and may be given with or
// without a leading dot. Patterns are compiled with gobwas/glob using '/'
// as the path separator, matching against the full file path.
func (s *MatcherSet) Add(name string, extensions, patterns, languageIDs []string) error {
	m := &matcher{
		name:        name,
		extensions:  make(map[string]bool, len(extensions)),
		languageIDs: make(map[string]bool, len(languageIDs)),
	}

	for _, ext := range extensions {
		m.extensions[normalizeExt(ext)] = true
	}

	for _, langID := range languageIDs {
		m.languageIDs[langID] = true
	}

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return fmt.Errorf("compiling pattern %q for %s: %w", pattern, name, err)
		}
		m.patterns = append(m.patterns, g)
	}

	s.matchers = append(s.matchers, m)
	return nil
}

// Match returns the name of the first registered matcher whose language ID,
// extension, or pattern matches, in that priority order, or "" if none
// match. Registration order breaks ties within a priority tier.
func (s *MatcherSet) Match(path, ext, languageID string) string {
	if languageID != "" {
		if name := s.MatchByLanguageID(languageID); name != "" {
			return name
		}
	}

	if ext != "" {
		if name := s.MatchByExtension(ext); name != "" {
			return name
		}
	}

	for _, m := range s.matchers {
		for _, g := range m.patterns {
			if g.Match(path) {
				return m.name
			}
		}
	}

	return ""
}

// MatchByExtension returns the name of the first matcher registered for
// ext, or "".
func (s *MatcherSet) MatchByExtension(ext string) string {
	ext = normalizeExt(ext)
	for _, m := range s.matchers {
		if m.extensions[ext] {
			return m.name
		}
	}
	return ""
}

// MatchByLanguageID returns the name of the first matcher registered for
// languageID, or "".
func (s *MatcherSet) MatchByLanguageID(languageID string) string {
	for _, m := range s.matchers {
		if m.languageIDs[languageID] {
			return m.name
		}
	}
	return ""
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	return strings.TrimPrefix(ext, ".")
}
