package content

import "github.com/google/uuid"

// NewLanguageGroup mints an opaque, URL/path-safe grouping token. Variants of
// one logical alert share it so uploaded resources can live under a common
// folder addressed by the token.
func NewLanguageGroup() string {
	return uuid.NewString()
}

// EnsureLanguageGroup assigns a language group if the record has none and
// returns the active identifier. Once assigned the identifier never changes
// for the lifetime of the record, since external resources are addressed
// relative to it.
func (r *Record) EnsureLanguageGroup() string {
	if r.LanguageGroup == "" {
		r.LanguageGroup = NewLanguageGroup()
	}
	return r.LanguageGroup
}
