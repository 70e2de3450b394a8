package content

// FieldKey addresses a single editable control in the authoring UI. Keys for
// language-scoped errors are composed as <field>_<locale> (e.g. title_fr-fr)
// so the UI can route the message to the matching editor pane.
type FieldKey string

const (
	FieldTitle           FieldKey = "title"
	FieldDescription     FieldKey = "description"
	FieldAlertType       FieldKey = "alertTypeName"
	FieldLinkURL         FieldKey = "linkUrl"
	FieldLinkDescription FieldKey = "linkDescription"
	FieldTargetSites     FieldKey = "targetSites"
	FieldSchedule        FieldKey = "scheduledEnd"
	FieldLanguageContent FieldKey = "languageContent"
)

// ForLanguage composes the per-locale variant of the key.
func (k FieldKey) ForLanguage(locale string) FieldKey {
	return k + FieldKey("_"+NormalizeLocale(locale))
}

// FieldErrors maps field keys to human-readable messages. A record is safe to
// submit to the store if and only if the map is empty.
type FieldErrors map[FieldKey]string

func (e FieldErrors) add(key FieldKey, message string) {
	if _, exists := e[key]; exists {
		return
	}
	e[key] = message
}

// OK reports whether validation passed.
func (e FieldErrors) OK() bool {
	return len(e) == 0
}

// Strings converts the typed map to the plain form used in API payloads.
func (e FieldErrors) Strings() map[string]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]string, len(e))
	for key, message := range e {
		out[string(key)] = message
	}
	return out
}
