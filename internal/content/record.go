package content

import (
	"time"
)

// Priority controls the visual weight of a rendered banner.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// NotificationType selects how consumers are notified about a published alert.
type NotificationType string

const (
	NotifyNone    NotificationType = "None"
	NotifyBrowser NotificationType = "Browser"
	NotifyEmail   NotificationType = "Email"
	NotifyBoth    NotificationType = "Both"
)

// WantsEmail reports whether email delivery is requested.
func (n NotificationType) WantsEmail() bool {
	return n == NotifyEmail || n == NotifyBoth
}

// WantsBrowser reports whether browser delivery is requested.
func (n NotificationType) WantsBrowser() bool {
	return n == NotifyBrowser || n == NotifyBoth
}

// ContentType distinguishes published alerts from templates and drafts.
type ContentType string

const (
	TypeAlert    ContentType = "Alert"
	TypeTemplate ContentType = "Template"
	TypeDraft    ContentType = "Draft"
)

// TranslationStatus tracks a variant through the translation workflow when the
// workflow policy is enabled. Absent otherwise.
type TranslationStatus string

const (
	StatusDraft    TranslationStatus = "Draft"
	StatusInReview TranslationStatus = "InReview"
	StatusApproved TranslationStatus = "Approved"
)

// AllLanguages is the target-language sentinel meaning "every locale".
const AllLanguages = "All"

// Variant holds one locale's content within a multi-language record.
type Variant struct {
	Language          string            `json:"language"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	LinkDescription   string            `json:"linkDescription,omitempty"`
	AvailableForAll   bool              `json:"availableForAll"`
	TranslationStatus TranslationStatus `json:"translationStatus,omitempty"`
}

// Complete reports whether the variant carries enough content to publish.
func (v Variant) Complete() bool {
	return trimmed(v.Title) != "" && trimmed(v.Description) != ""
}

// Record is the in-memory representation of one alert, draft, or template.
// It has no identity before its first save; ID is assigned by the store.
type Record struct {
	ID               string           `json:"id,omitempty"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	AlertTypeName    string           `json:"alertTypeName"`
	Priority         Priority         `json:"priority"`
	IsPinned         bool             `json:"isPinned"`
	NotificationType NotificationType `json:"notificationType"`
	LinkURL          string           `json:"linkUrl,omitempty"`
	LinkDescription  string           `json:"linkDescription,omitempty"`
	TargetSites      []string         `json:"targetSites"`
	ScheduledStart   *time.Time       `json:"scheduledStart,omitempty"`
	ScheduledEnd     *time.Time       `json:"scheduledEnd,omitempty"`
	ContentType      ContentType      `json:"contentType"`
	TargetLanguage   string           `json:"targetLanguage,omitempty"`
	LanguageContent  []Variant        `json:"languageContent,omitempty"`
	LanguageGroup    string           `json:"languageGroup,omitempty"`
}

// MultiLanguage reports whether the record carries per-locale variants.
func (r Record) MultiLanguage() bool {
	return len(r.LanguageContent) > 0
}

// VisibleAt reports whether the record's schedule window covers the given time.
// Records without a window are always visible.
func (r Record) VisibleAt(at time.Time) bool {
	if r.ScheduledStart != nil && at.Before(*r.ScheduledStart) {
		return false
	}
	if r.ScheduledEnd != nil && !at.Before(*r.ScheduledEnd) {
		return false
	}
	return true
}
