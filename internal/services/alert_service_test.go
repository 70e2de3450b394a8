package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/internal/database/testutil"
)

var testPolicy = content.WorkflowPolicy{TenantDefaultLanguage: "en-us"}

func newTestAlertService(t *testing.T) *AlertService {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAlertService(db, testPolicy)
	require.NoError(t, err)
	return svc
}

func publishableRecord() content.Record {
	return content.Record{
		Title:            "Network Maintenance",
		Description:      "The network will be down for maintenance this weekend.",
		AlertTypeName:    "Info",
		Priority:         content.PriorityHigh,
		NotificationType: content.NotifyNone,
		TargetSites:      []string{"site1"},
		ContentType:      content.TypeAlert,
	}
}

func TestAlertServiceCreateAndGetRoundTrip(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	rec := publishableRecord()
	rec.LinkURL = "https://contoso.sharepoint.com/sites/hr"
	rec.LinkDescription = "Read more"

	dto, err := svc.Create(ctx, rec, content.Mode{}, "author@contoso.com")
	require.NoError(t, err)
	require.NotEmpty(t, dto.ID)
	require.Equal(t, "author@contoso.com", dto.CreatedBy)

	loaded, err := svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Title, loaded.Title)
	require.Equal(t, rec.LinkURL, loaded.LinkURL)
	require.Equal(t, rec.LinkDescription, loaded.LinkDescription)
	require.Equal(t, []string{"site1"}, loaded.TargetSites)
	require.Equal(t, content.PriorityHigh, loaded.Priority)
}

func TestAlertServiceCreateMultiLanguage(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	rec := publishableRecord()
	rec.Title, rec.Description = "", ""
	rec.LanguageContent = []content.Variant{
		{Language: "en-us", Title: "Maintenance", Description: "Network down", AvailableForAll: true},
		{Language: "fr-fr", Title: "Entretien", Description: "Réseau indisponible"},
	}

	dto, err := svc.Create(ctx, rec, content.Mode{UseMultiLanguage: true}, "")
	require.NoError(t, err)
	require.NotEmpty(t, dto.LanguageGroup, "multi-language create must mint a language group")

	loaded, err := svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, loaded.LanguageContent, 2)
	require.Equal(t, "fr-fr", loaded.LanguageContent[1].Language)
	require.Equal(t, dto.LanguageGroup, loaded.LanguageGroup)
}

func TestAlertServiceCreateRejectsInvalidRecord(t *testing.T) {
	svc := newTestAlertService(t)

	rec := publishableRecord()
	rec.Title = "Hi"
	rec.TargetSites = nil

	_, err := svc.Create(context.Background(), rec, content.Mode{}, "")
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, content.FieldTitle)
	require.Contains(t, ve.Fields, content.FieldTargetSites)
}

func TestAlertServiceCreateRejectsDuplicateLanguages(t *testing.T) {
	svc := newTestAlertService(t)

	rec := publishableRecord()
	rec.LanguageContent = []content.Variant{
		{Language: "en-us", Title: "A", Description: "desc"},
		{Language: "en-us", Title: "B", Description: "desc2"},
	}

	_, err := svc.Create(context.Background(), rec, content.Mode{UseMultiLanguage: true}, "")
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, content.FieldLanguageContent.ForLanguage("en-us"))
}

func TestAlertServiceDefaultsTargetLanguage(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, publishableRecord(), content.Mode{}, "")
	require.NoError(t, err)
	require.Equal(t, content.AllLanguages, dto.TargetLanguage)

	loaded, err := svc.Get(ctx, dto.ID)
	require.NoError(t, err)
	require.Equal(t, content.AllLanguages, loaded.TargetLanguage)
}

func TestAlertServiceAddAndRemoveLanguage(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	rec := publishableRecord()
	rec.Title, rec.Description = "", ""
	rec.LanguageContent = []content.Variant{
		{Language: "en-us", Title: "Maintenance", Description: "Network down", AvailableForAll: true},
	}
	dto, err := svc.Create(ctx, rec, content.Mode{UseMultiLanguage: true}, "")
	require.NoError(t, err)

	added, err := svc.AddLanguage(ctx, dto.ID, "fr-FR")
	require.NoError(t, err)
	require.Len(t, added.LanguageContent, 2)
	require.Equal(t, "fr-fr", added.LanguageContent[1].Language)
	require.Equal(t, dto.LanguageGroup, added.LanguageGroup, "language group survives variant changes")

	_, err = svc.AddLanguage(ctx, dto.ID, "fr-fr")
	require.ErrorIs(t, err, content.ErrLanguageExists)

	removed, next, err := svc.RemoveLanguage(ctx, dto.ID, "en-us")
	require.NoError(t, err)
	require.Len(t, removed.LanguageContent, 1)
	require.Equal(t, "fr-fr", next)

	_, _, err = svc.RemoveLanguage(ctx, dto.ID, "de-de")
	require.ErrorIs(t, err, content.ErrLanguageMissing)

	_, err = svc.AddLanguage(ctx, "missing-id", "de-de")
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestAlertServiceSaveDraftUpsert(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	// Draft validation requires an alert type.
	_, err := svc.SaveDraft(ctx, content.Record{Title: "My draft"}, "")
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, content.FieldAlertType)

	dto, err := svc.SaveDraft(ctx, content.Record{Title: "My draft", AlertTypeName: "Info"}, "author")
	require.NoError(t, err)
	require.Equal(t, content.TypeDraft, dto.ContentType)
	require.NotEmpty(t, dto.ID)

	// Upsert by id replaces the document wholesale.
	updated := dto.Record
	updated.Title = "My draft, revised"
	saved, err := svc.SaveDraft(ctx, updated, "author")
	require.NoError(t, err)
	require.Equal(t, dto.ID, saved.ID)
	require.Equal(t, "My draft, revised", saved.Title)

	drafts, err := svc.ListDrafts(ctx, "")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
}

func TestAlertServiceListAlertsVisibilityAndOrdering(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	visible := publishableRecord()
	visible.Title = "Visible alert"
	_, err := svc.Create(ctx, visible, content.Mode{}, "")
	require.NoError(t, err)

	pinned := publishableRecord()
	pinned.Title = "Pinned alert"
	pinned.IsPinned = true
	_, err = svc.Create(ctx, pinned, content.Mode{}, "")
	require.NoError(t, err)

	future := publishableRecord()
	future.Title = "Future alert"
	start := now.Add(time.Hour)
	end := now.Add(2 * time.Hour)
	future.ScheduledStart = &start
	future.ScheduledEnd = &end
	_, err = svc.Create(ctx, future, content.Mode{}, "")
	require.NoError(t, err)

	ended := publishableRecord()
	ended.Title = "Ended alert"
	endedStart := now.Add(-2 * time.Hour)
	endedEnd := now.Add(-time.Hour)
	ended.ScheduledStart = &endedStart
	ended.ScheduledEnd = &endedEnd
	_, err = svc.Create(ctx, ended, content.Mode{}, "")
	require.NoError(t, err)

	otherSite := publishableRecord()
	otherSite.Title = "Other site"
	otherSite.TargetSites = []string{"site2"}
	_, err = svc.Create(ctx, otherSite, content.Mode{}, "")
	require.NoError(t, err)

	items, err := svc.ListAlerts(ctx, []string{"site1"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Pinned alert", items[0].Title, "pinned records sort first")
	require.Equal(t, "Visible alert", items[1].Title)

	all, err := svc.ListAlerts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3, "no site filter returns every visible alert")
}

func TestAlertServiceTemplates(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	tmpl := publishableRecord()
	tmpl.Title = "Outage template"
	tmpl.ContentType = content.TypeTemplate
	tmpl.LanguageContent = []content.Variant{
		{Language: "en-us", Title: "Outage", Description: "Service disruption notice", AvailableForAll: true},
	}

	created, err := svc.Create(ctx, tmpl, content.Mode{UseMultiLanguage: true}, "")
	require.NoError(t, err)

	templates, err := svc.ListTemplates(ctx, "site1")
	require.NoError(t, err)
	require.Len(t, templates, 1)

	rec, err := svc.CreateFromTemplate(ctx, created.ID)
	require.NoError(t, err)
	require.Empty(t, rec.ID, "template copies have no identity before first save")
	require.Equal(t, content.TypeAlert, rec.ContentType)
	require.NotEmpty(t, rec.LanguageGroup)
	require.NotEqual(t, created.LanguageGroup, rec.LanguageGroup, "copies get their own language group")

	_, err = svc.CreateFromTemplate(ctx, "missing-id")
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestAlertServiceUpdateReplacesDocument(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, publishableRecord(), content.Mode{}, "author")
	require.NoError(t, err)

	changed := dto.Record
	changed.Title = "Rescheduled Maintenance"
	changed.IsPinned = true

	updated, err := svc.Update(ctx, dto.ID, changed, content.Mode{})
	require.NoError(t, err)
	require.Equal(t, dto.ID, updated.ID)
	require.Equal(t, "Rescheduled Maintenance", updated.Title)
	require.True(t, updated.IsPinned)
	require.Equal(t, "author", updated.CreatedBy, "authorship survives replacement")

	_, err = svc.Update(ctx, "missing-id", changed, content.Mode{})
	require.ErrorIs(t, err, ErrAlertNotFound)
}

func TestAlertServiceDelete(t *testing.T) {
	svc := newTestAlertService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, publishableRecord(), content.Mode{}, "")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, dto.ID)
	require.NoError(t, err)
	require.Equal(t, dto.ID, deleted.ID)

	_, err = svc.Get(ctx, dto.ID)
	require.ErrorIs(t, err, ErrAlertNotFound)
}
