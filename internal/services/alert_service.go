package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/internal/models"
	"github.com/bannerworks/alertbanner/pkg/metrics"
)

// AlertDTO is the API-friendly shape of one persisted record.
type AlertDTO struct {
	content.Record

	CreatedBy  string     `json:"createdBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// AlertService stores and retrieves alert, template, and draft records. Every
// save is a last-write-wins replacement of the persisted document; the service
// performs no merge or conflict detection.
type AlertService struct {
	db     *gorm.DB
	policy content.WorkflowPolicy
	now    func() time.Time
}

// NewAlertService constructs an alert service once a database handle is supplied.
func NewAlertService(db *gorm.DB, policy content.WorkflowPolicy) (*AlertService, error) {
	if db == nil {
		return nil, errors.New("alert service: db is required")
	}
	return &AlertService{db: db, policy: policy, now: time.Now}, nil
}

// Policy exposes the tenant workflow policy so handlers can seed variants.
func (s *AlertService) Policy() content.WorkflowPolicy {
	return s.policy
}

// Create validates the record against the full rule set and persists it. The
// record must not carry an ID; identity is assigned by the store on first save.
func (s *AlertService) Create(ctx context.Context, rec content.Record, mode content.Mode, createdBy string) (*AlertDTO, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(rec.ID) != "" {
		return nil, errors.New("alert service: record already has an id; use Update")
	}

	if rec.ContentType == "" {
		rec.ContentType = content.TypeAlert
	}

	if fieldErrs := content.ValidateForCreate(rec, mode); !fieldErrs.OK() {
		metrics.ValidationFailures.WithLabelValues("create").Inc()
		return nil, &ValidationError{Fields: fieldErrs}
	}

	if mode.UseMultiLanguage {
		rec.EnsureLanguageGroup()
	} else {
		rec.TargetLanguage = defaultIfEmpty(rec.TargetLanguage, content.AllLanguages)
	}

	row, err := alertRow(rec)
	if err != nil {
		return nil, err
	}
	row.CreatedBy = strings.TrimSpace(createdBy)

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("alert service: create: %w", err)
	}

	metrics.AlertsCreated.WithLabelValues(strings.ToLower(string(rec.ContentType))).Inc()
	return mapAlert(row)
}

// SaveDraft upserts a work-in-progress record under the relaxed draft rules.
// Records with an ID are replaced wholesale; records without one are created.
func (s *AlertService) SaveDraft(ctx context.Context, rec content.Record, savedBy string) (*AlertDTO, error) {
	ctx = ensureContext(ctx)

	if fieldErrs := content.ValidateForDraft(rec); !fieldErrs.OK() {
		metrics.ValidationFailures.WithLabelValues("draft").Inc()
		return nil, &ValidationError{Fields: fieldErrs}
	}

	rec.ContentType = content.TypeDraft

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		row, err := alertRow(rec)
		if err != nil {
			return nil, err
		}
		row.CreatedBy = strings.TrimSpace(savedBy)

		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, fmt.Errorf("alert service: save draft: %w", err)
		}
		metrics.AlertsCreated.WithLabelValues("draft").Inc()
		return mapAlert(row)
	}

	return s.replace(ctx, id, rec)
}

// Update replaces an existing record after full validation.
func (s *AlertService) Update(ctx context.Context, id string, rec content.Record, mode content.Mode) (*AlertDTO, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("alert service: id is required")
	}

	if fieldErrs := content.ValidateForCreate(rec, mode); !fieldErrs.OK() {
		metrics.ValidationFailures.WithLabelValues("update").Inc()
		return nil, &ValidationError{Fields: fieldErrs}
	}

	if mode.UseMultiLanguage {
		rec.EnsureLanguageGroup()
	} else {
		rec.TargetLanguage = defaultIfEmpty(rec.TargetLanguage, content.AllLanguages)
	}

	return s.replace(ctx, id, rec)
}

func (s *AlertService) replace(ctx context.Context, id string, rec content.Record) (*AlertDTO, error) {
	var existing models.Alert
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("alert service: load: %w", err)
	}

	row, err := alertRow(rec)
	if err != nil {
		return nil, err
	}
	row.BaseModel = existing.BaseModel
	row.CreatedBy = existing.CreatedBy
	row.ArchivedAt = existing.ArchivedAt

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("alert service: replace: %w", err)
	}
	return mapAlert(row)
}

// Get retrieves one record by identifier.
func (s *AlertService) Get(ctx context.Context, id string) (*AlertDTO, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("alert service: id is required")
	}

	var row models.Alert
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("alert service: get: %w", err)
	}
	return mapAlert(row)
}

// Delete removes a record by identifier.
func (s *AlertService) Delete(ctx context.Context, id string) (*AlertDTO, error) {
	ctx = ensureContext(ctx)

	dto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Alert{}, "id = ?", dto.ID).Error; err != nil {
		return nil, fmt.Errorf("alert service: delete: %w", err)
	}
	return dto, nil
}

// ListAlerts returns published alerts visible right now on any of the supplied
// sites. Pinned records sort first, then most recently created.
func (s *AlertService) ListAlerts(ctx context.Context, siteIDs []string) ([]AlertDTO, error) {
	ctx = ensureContext(ctx)
	now := s.now().UTC()

	var rows []models.Alert
	if err := s.db.WithContext(ctx).
		Where("content_type = ? AND archived_at IS NULL", string(content.TypeAlert)).
		Where("scheduled_start IS NULL OR scheduled_start <= ?", now).
		Where("scheduled_end IS NULL OR scheduled_end > ?", now).
		Order("is_pinned DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("alert service: list alerts: %w", err)
	}

	return mapRowsForSites(rows, siteIDs)
}

// ListTemplates returns reusable templates offered for the site.
func (s *AlertService) ListTemplates(ctx context.Context, siteID string) ([]AlertDTO, error) {
	return s.listByType(ctx, content.TypeTemplate, siteID)
}

// ListDrafts returns unfinished records saved for the site.
func (s *AlertService) ListDrafts(ctx context.Context, siteID string) ([]AlertDTO, error) {
	return s.listByType(ctx, content.TypeDraft, siteID)
}

func (s *AlertService) listByType(ctx context.Context, kind content.ContentType, siteID string) ([]AlertDTO, error) {
	ctx = ensureContext(ctx)

	var rows []models.Alert
	if err := s.db.WithContext(ctx).
		Where("content_type = ? AND archived_at IS NULL", string(kind)).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("alert service: list %s: %w", strings.ToLower(string(kind)), err)
	}

	var sites []string
	if siteID = strings.TrimSpace(siteID); siteID != "" {
		sites = []string{siteID}
	}
	return mapRowsForSites(rows, sites)
}

// CreateFromTemplate returns an unsaved record pre-filled from the template.
// The copy gets no identity and, when multi-language, a fresh language group
// so its uploaded resources never collide with the template's.
func (s *AlertService) CreateFromTemplate(ctx context.Context, templateID string) (*content.Record, error) {
	dto, err := s.Get(ensureContext(ctx), templateID)
	if err != nil {
		return nil, err
	}
	if dto.ContentType != content.TypeTemplate {
		return nil, fmt.Errorf("alert service: record %s is not a template", templateID)
	}

	rec := dto.Record
	rec.ID = ""
	rec.ContentType = content.TypeAlert
	if rec.MultiLanguage() {
		rec.LanguageGroup = content.NewLanguageGroup()
	} else {
		rec.LanguageGroup = ""
	}
	return &rec, nil
}

// AddLanguage appends a new locale variant to a stored record and persists the
// result. The variant is seeded per the tenant workflow policy; duplicates are
// rejected with content.ErrLanguageExists.
func (s *AlertService) AddLanguage(ctx context.Context, id, language string) (*AlertDTO, error) {
	ctx = ensureContext(ctx)

	dto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := dto.Record
	variants, err := content.AddLanguage(rec.LanguageContent, language, s.policy)
	if err != nil {
		return nil, err
	}
	rec.LanguageContent = variants
	rec.EnsureLanguageGroup()

	return s.replace(ctx, rec.ID, rec)
}

// RemoveLanguage drops a locale variant from a stored record and persists the
// result. It also reports which locale the editor should select next.
func (s *AlertService) RemoveLanguage(ctx context.Context, id, language string) (*AlertDTO, string, error) {
	ctx = ensureContext(ctx)

	dto, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	rec := dto.Record
	variants, next, err := content.RemoveLanguage(rec.LanguageContent, language)
	if err != nil {
		return nil, "", err
	}
	rec.LanguageContent = variants

	updated, err := s.replace(ctx, rec.ID, rec)
	if err != nil {
		return nil, "", err
	}
	return updated, next, nil
}

func alertRow(rec content.Record) (models.Alert, error) {
	sites, err := json.Marshal(siteList(rec.TargetSites))
	if err != nil {
		return models.Alert{}, fmt.Errorf("alert service: marshal target sites: %w", err)
	}

	row := models.Alert{
		Title:            strings.TrimSpace(rec.Title),
		Description:      rec.Description,
		AlertTypeName:    strings.TrimSpace(rec.AlertTypeName),
		Priority:         string(rec.Priority),
		IsPinned:         rec.IsPinned,
		NotificationType: defaultIfEmpty(string(rec.NotificationType), string(content.NotifyNone)),
		LinkURL:          strings.TrimSpace(rec.LinkURL),
		LinkDescription:  strings.TrimSpace(rec.LinkDescription),
		TargetSites:      datatypes.JSON(sites),
		TargetLanguage:   rec.TargetLanguage,
		LanguageGroup:    rec.LanguageGroup,
		ScheduledStart:   rec.ScheduledStart,
		ScheduledEnd:     rec.ScheduledEnd,
		ContentType:      string(rec.ContentType),
	}
	row.BaseModel.ID = strings.TrimSpace(rec.ID)

	if !rec.Priority.Valid() {
		row.Priority = string(content.PriorityMedium)
	}

	if len(rec.LanguageContent) > 0 {
		variants, err := json.Marshal(rec.LanguageContent)
		if err != nil {
			return models.Alert{}, fmt.Errorf("alert service: marshal language content: %w", err)
		}
		row.LanguageContent = datatypes.JSON(variants)
	}

	return row, nil
}

func mapAlert(row models.Alert) (*AlertDTO, error) {
	rec := content.Record{
		ID:               row.ID,
		Title:            row.Title,
		Description:      row.Description,
		AlertTypeName:    row.AlertTypeName,
		Priority:         content.Priority(row.Priority),
		IsPinned:         row.IsPinned,
		NotificationType: content.NotificationType(row.NotificationType),
		LinkURL:          row.LinkURL,
		LinkDescription:  row.LinkDescription,
		TargetLanguage:   row.TargetLanguage,
		LanguageGroup:    row.LanguageGroup,
		ScheduledStart:   row.ScheduledStart,
		ScheduledEnd:     row.ScheduledEnd,
		ContentType:      content.ContentType(row.ContentType),
	}

	if len(row.TargetSites) > 0 {
		if err := json.Unmarshal(row.TargetSites, &rec.TargetSites); err != nil {
			return nil, fmt.Errorf("alert service: decode target sites: %w", err)
		}
	}
	if len(row.LanguageContent) > 0 {
		if err := json.Unmarshal(row.LanguageContent, &rec.LanguageContent); err != nil {
			return nil, fmt.Errorf("alert service: decode language content: %w", err)
		}
	}

	return &AlertDTO{
		Record:     rec,
		CreatedBy:  row.CreatedBy,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		ArchivedAt: row.ArchivedAt,
	}, nil
}

func mapRowsForSites(rows []models.Alert, siteIDs []string) ([]AlertDTO, error) {
	wanted := make(map[string]struct{}, len(siteIDs))
	for _, site := range siteIDs {
		if site = strings.TrimSpace(site); site != "" {
			wanted[site] = struct{}{}
		}
	}

	items := make([]AlertDTO, 0, len(rows))
	for _, row := range rows {
		dto, err := mapAlert(row)
		if err != nil {
			return nil, err
		}
		if len(wanted) > 0 && !targetsAny(dto.TargetSites, wanted) {
			continue
		}
		items = append(items, *dto)
	}
	return items, nil
}

func targetsAny(sites []string, wanted map[string]struct{}) bool {
	for _, site := range sites {
		if _, ok := wanted[strings.TrimSpace(site)]; ok {
			return true
		}
	}
	return false
}

func siteList(sites []string) []string {
	out := make([]string, 0, len(sites))
	seen := make(map[string]struct{}, len(sites))
	for _, site := range sites {
		site = strings.TrimSpace(site)
		if site == "" {
			continue
		}
		if _, dup := seen[site]; dup {
			continue
		}
		seen[site] = struct{}{}
		out = append(out, site)
	}
	return out
}
