package content

import (
	"errors"
	"strings"
)

var (
	// ErrLanguageExists indicates an attempt to add a variant for a locale
	// that is already present. Callers pre-filter the offerable set, but the
	// operation rejects duplicates regardless.
	ErrLanguageExists = errors.New("content: language variant already exists")

	// ErrLanguageMissing indicates the locale has no matching variant.
	ErrLanguageMissing = errors.New("content: language variant not found")
)

// VariantField names the per-variant fields UpdateVariantField may replace.
type VariantField string

const (
	VariantTitle           VariantField = "title"
	VariantDescription     VariantField = "description"
	VariantLinkDescription VariantField = "linkDescription"
)

// WorkflowPolicy carries the tenant settings that seed new variants.
type WorkflowPolicy struct {
	TenantDefaultLanguage string
	WorkflowEnabled       bool
	DefaultStatus         TranslationStatus
}

// NormalizeLocale lower-cases and trims a locale code so that comparisons and
// composed field keys are stable regardless of input casing.
func NormalizeLocale(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// AddLanguage appends a new variant for the locale. The variant is marked as
// the fallback content when the locale matches the tenant default, and seeded
// with the workflow's default translation status when the workflow is active.
func AddLanguage(variants []Variant, language string, policy WorkflowPolicy) ([]Variant, error) {
	locale := NormalizeLocale(language)
	if locale == "" {
		return nil, ErrLanguageMissing
	}

	if _, ok := localeIndex(variants)[locale]; ok {
		return nil, ErrLanguageExists
	}

	variant := Variant{
		Language:        locale,
		AvailableForAll: locale == NormalizeLocale(policy.TenantDefaultLanguage),
	}
	if policy.WorkflowEnabled {
		status := policy.DefaultStatus
		if status == "" {
			status = StatusDraft
		}
		variant.TranslationStatus = status
	}

	out := make([]Variant, 0, len(variants)+1)
	out = append(out, variants...)
	out = append(out, variant)
	return out, nil
}

// RemoveLanguage removes the matching variant and returns the remaining
// sequence plus the locale the editor should select next: the first remaining
// variant in sequence order, or empty when none remain.
func RemoveLanguage(variants []Variant, language string) ([]Variant, string, error) {
	locale := NormalizeLocale(language)
	if _, ok := localeIndex(variants)[locale]; !ok {
		return nil, "", ErrLanguageMissing
	}

	out := make([]Variant, 0, len(variants)-1)
	for _, variant := range variants {
		if NormalizeLocale(variant.Language) == locale {
			continue
		}
		out = append(out, variant)
	}

	next := ""
	if len(out) > 0 {
		next = NormalizeLocale(out[0].Language)
	}
	return out, next, nil
}

// UpdateVariantField replaces one field of exactly one matching variant,
// leaving sequence order and all other variants untouched.
func UpdateVariantField(variants []Variant, language string, field VariantField, value string) ([]Variant, error) {
	locale := NormalizeLocale(language)
	idx, ok := localeIndex(variants)[locale]
	if !ok {
		return nil, ErrLanguageMissing
	}

	out := make([]Variant, len(variants))
	copy(out, variants)

	switch field {
	case VariantTitle:
		out[idx].Title = value
	case VariantDescription:
		out[idx].Description = value
	case VariantLinkDescription:
		out[idx].LinkDescription = value
	default:
		return nil, errors.New("content: unknown variant field " + string(field))
	}
	return out, nil
}

// CollapseToSingleLanguage switches a record out of multi-language mode by
// copying the first variant's content back into the single-language fields and
// clearing the variants and the language group. All variants beyond the first
// are discarded; they are returned so the caller can warn before committing.
func CollapseToSingleLanguage(rec *Record) []Variant {
	if rec == nil || len(rec.LanguageContent) == 0 {
		return nil
	}

	first := rec.LanguageContent[0]
	rec.Title = first.Title
	rec.Description = first.Description
	rec.LinkDescription = first.LinkDescription
	rec.TargetLanguage = NormalizeLocale(first.Language)

	discarded := rec.LanguageContent[1:]
	rec.LanguageContent = nil
	rec.LanguageGroup = ""
	return discarded
}

// ExpandToMultiLanguage seeds the variant sequence from the single-language
// fields using the tenant default locale, and mints a language group when the
// record does not already have one.
func ExpandToMultiLanguage(rec *Record, policy WorkflowPolicy) {
	if rec == nil || len(rec.LanguageContent) > 0 {
		return
	}

	seed := Variant{
		Language:        NormalizeLocale(policy.TenantDefaultLanguage),
		Title:           rec.Title,
		Description:     rec.Description,
		LinkDescription: rec.LinkDescription,
		AvailableForAll: true,
	}
	if policy.WorkflowEnabled {
		status := policy.DefaultStatus
		if status == "" {
			status = StatusDraft
		}
		seed.TranslationStatus = status
	}

	rec.LanguageContent = []Variant{seed}
	rec.EnsureLanguageGroup()
}

func localeIndex(variants []Variant) map[string]int {
	index := make(map[string]int, len(variants))
	for i, variant := range variants {
		locale := NormalizeLocale(variant.Language)
		if _, ok := index[locale]; ok {
			continue // first occurrence wins; validation reports the duplicate
		}
		index[locale] = i
	}
	return index
}
