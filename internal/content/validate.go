package content

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	titleMinLength       = 3
	titleMaxLength       = 100
	descriptionMinLength = 10
)

// Mode selects which rule set ValidateForCreate applies.
type Mode struct {
	UseMultiLanguage bool
}

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// ValidateForCreate decides whether a record is well-formed enough to publish.
// It is a pure function: no side effects, same inputs always produce the same
// error map. An empty result means the record may be handed to the store.
func ValidateForCreate(rec Record, mode Mode) FieldErrors {
	errs := FieldErrors{}

	if trimmed(rec.AlertTypeName) == "" {
		errs.add(FieldAlertType, "Alert type is required")
	}

	if len(siteSet(rec.TargetSites)) == 0 {
		errs.add(FieldTargetSites, "Select at least one target site")
	}

	if rec.ScheduledStart != nil && rec.ScheduledEnd != nil && !rec.ScheduledStart.Before(*rec.ScheduledEnd) {
		errs.add(FieldSchedule, "Scheduled start must be before scheduled end")
	}

	linkURL := trimmed(rec.LinkURL)
	if linkURL != "" && !validLinkURL(linkURL) {
		errs.add(FieldLinkURL, "Link URL must be a valid URL")
	}

	if mode.UseMultiLanguage {
		validateLanguageContent(rec, linkURL, errs)
	} else {
		validateSingleLanguage(rec, linkURL, errs)
	}

	return errs
}

// ValidateForDraft applies the relaxed rule set for work-in-progress records.
// Drafts must be saveable at any point so only the minimum needed to find the
// record again is enforced.
func ValidateForDraft(rec Record) FieldErrors {
	errs := FieldErrors{}

	title := trimmed(rec.Title)
	if utf8.RuneCountInString(title) < titleMinLength {
		errs.add(FieldTitle, fmt.Sprintf("Title must be at least %d characters", titleMinLength))
	}

	if trimmed(rec.AlertTypeName) == "" {
		errs.add(FieldAlertType, "Alert type is required")
	}

	return errs
}

func validateSingleLanguage(rec Record, linkURL string, errs FieldErrors) {
	title := trimmed(rec.Title)
	switch {
	case utf8.RuneCountInString(title) < titleMinLength:
		errs.add(FieldTitle, fmt.Sprintf("Title must be at least %d characters", titleMinLength))
	case utf8.RuneCountInString(title) > titleMaxLength:
		errs.add(FieldTitle, fmt.Sprintf("Title must be %d characters or fewer", titleMaxLength))
	}

	description := StripMarkup(rec.Description)
	if utf8.RuneCountInString(description) < descriptionMinLength {
		errs.add(FieldDescription, fmt.Sprintf("Description must be at least %d characters", descriptionMinLength))
	}

	if linkURL != "" && trimmed(rec.LinkDescription) == "" {
		errs.add(FieldLinkDescription, "Link description is required when a link URL is set")
	}
}

func validateLanguageContent(rec Record, linkURL string, errs FieldErrors) {
	if len(rec.LanguageContent) == 0 {
		errs.add(FieldLanguageContent, "Add at least one language")
		return
	}

	// Uniqueness is checked against a set keyed by locale; a collision is an
	// error, never a silent merge.
	seen := make(map[string]struct{}, len(rec.LanguageContent))
	for _, variant := range rec.LanguageContent {
		locale := NormalizeLocale(variant.Language)
		if locale == "" {
			errs.add(FieldLanguageContent, "Language variants must carry a locale code")
			continue
		}
		if _, dup := seen[locale]; dup {
			errs.add(FieldLanguageContent.ForLanguage(locale), fmt.Sprintf("Duplicate language: %s", locale))
			continue
		}
		seen[locale] = struct{}{}

		if trimmed(variant.Title) == "" {
			errs.add(FieldTitle.ForLanguage(locale), "Title is required")
		}
		if trimmed(variant.Description) == "" {
			errs.add(FieldDescription.ForLanguage(locale), "Description is required")
		}
		if linkURL != "" && trimmed(variant.LinkDescription) == "" {
			errs.add(FieldLinkDescription.ForLanguage(locale), "Link description is required when a link URL is set")
		}
	}
}

// StripMarkup removes HTML tags and entities so length rules apply to the
// visible text, not the markup the rich-text editor produces.
func StripMarkup(s string) string {
	s = markupPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

func validLinkURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

func siteSet(sites []string) map[string]struct{} {
	set := make(map[string]struct{}, len(sites))
	for _, site := range sites {
		site = trimmed(site)
		if site == "" {
			continue
		}
		set[site] = struct{}{}
	}
	return set
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
