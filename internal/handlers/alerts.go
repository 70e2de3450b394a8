package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/internal/middleware"
	"github.com/bannerworks/alertbanner/internal/services"
	"github.com/bannerworks/alertbanner/pkg/errors"
	"github.com/bannerworks/alertbanner/pkg/response"
)

// alertRequest is the write payload for alerts and templates. The editing mode
// travels with the record so the server applies the matching rule set.
type alertRequest struct {
	content.Record

	UseMultiLanguage bool `json:"useMultiLanguage"`
}

// AlertHandler exposes HTTP endpoints for alerts, templates, and drafts.
type AlertHandler struct {
	service   *services.AlertService
	languages *services.LanguageService
	notifier  *services.NotifierService
}

// NewAlertHandler constructs an alert handler over the shared database handle.
func NewAlertHandler(db *gorm.DB, policy content.WorkflowPolicy, notifier *services.NotifierService) (*AlertHandler, error) {
	service, err := services.NewAlertService(db, policy)
	if err != nil {
		return nil, err
	}
	languages, err := services.NewLanguageService(db)
	if err != nil {
		return nil, err
	}
	return &AlertHandler{
		service:   service,
		languages: languages,
		notifier:  notifier,
	}, nil
}

// List returns alerts currently visible on the requested sites.
func (h *AlertHandler) List(c *gin.Context) {
	items, err := h.service.ListAlerts(requestContext(c), siteQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

// Get returns one record by identifier.
func (h *AlertHandler) Get(c *gin.Context) {
	dto, err := h.service.Get(requestContext(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// Create validates and persists a new alert or template.
func (h *AlertHandler) Create(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("invalid alert payload"))
		return
	}

	ctx := requestContext(c)
	if err := h.ensureLocales(c, req); err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.service.Create(ctx, req.Record, content.Mode{UseMultiLanguage: req.UseMultiLanguage}, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.notifier.AlertCreated(ctx, dto)
	response.Success(c, http.StatusCreated, dto)
}

// Update replaces an existing record after full validation.
func (h *AlertHandler) Update(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("invalid alert payload"))
		return
	}

	ctx := requestContext(c)
	if err := h.ensureLocales(c, req); err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.service.Update(ctx, c.Param("id"), req.Record, content.Mode{UseMultiLanguage: req.UseMultiLanguage})
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.notifier.AlertUpdated(ctx, dto)
	response.Success(c, http.StatusOK, dto)
}

// Delete removes a record and tells subscribed banner clients to drop it.
func (h *AlertHandler) Delete(c *gin.Context) {
	ctx := requestContext(c)

	dto, err := h.service.Delete(ctx, c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.notifier.AlertDeleted(ctx, dto.ID, dto.TargetSites)
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// SaveDraft upserts a work-in-progress record under the relaxed draft rules.
func (h *AlertHandler) SaveDraft(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("invalid draft payload"))
		return
	}

	dto, err := h.service.SaveDraft(requestContext(c), req.Record, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// ListDrafts returns saved drafts, optionally filtered by site.
func (h *AlertHandler) ListDrafts(c *gin.Context) {
	items, err := h.service.ListDrafts(requestContext(c), c.Query("site"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

// ListTemplates returns reusable templates, optionally filtered by site.
func (h *AlertHandler) ListTemplates(c *gin.Context) {
	items, err := h.service.ListTemplates(requestContext(c), c.Query("site"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

// Instantiate returns an unsaved record pre-filled from the template.
func (h *AlertHandler) Instantiate(c *gin.Context) {
	rec, err := h.service.CreateFromTemplate(requestContext(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rec)
}

// AddLanguage appends a locale variant to a stored record. The locale must be
// provisioned before any content can be accepted for it.
func (h *AlertHandler) AddLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Language) == "" {
		response.Error(c, errors.NewBadRequest("invalid language payload"))
		return
	}

	ctx := requestContext(c)
	if err := h.languages.EnsureProvisioned(ctx, []string{req.Language}); err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.service.AddLanguage(ctx, c.Param("id"), req.Language)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// RemoveLanguage drops a locale variant and reports which locale the editor
// should select next.
func (h *AlertHandler) RemoveLanguage(c *gin.Context) {
	dto, next, err := h.service.RemoveLanguage(requestContext(c), c.Param("id"), c.Param("code"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"record": dto, "nextLanguage": next})
}

// ensureLocales rejects multi-language content for locales without a backing column.
func (h *AlertHandler) ensureLocales(c *gin.Context, req alertRequest) error {
	if !req.UseMultiLanguage || len(req.LanguageContent) == 0 {
		return nil
	}

	locales := make([]string, 0, len(req.LanguageContent))
	for _, variant := range req.LanguageContent {
		if locale := strings.TrimSpace(variant.Language); locale != "" {
			locales = append(locales, locale)
		}
	}
	return h.languages.EnsureProvisioned(requestContext(c), locales)
}

func (h *AlertHandler) renderError(c *gin.Context, err error) {
	if ve, ok := services.AsValidationError(err); ok {
		response.ValidationError(c, ve.Fields.Strings())
		return
	}
	if err == services.ErrAlertNotFound {
		response.Error(c, errors.ErrNotFound)
		return
	}
	if err == content.ErrLanguageExists {
		response.Error(c, errors.ErrDuplicateLanguage)
		return
	}
	if err == content.ErrLanguageMissing {
		response.Error(c, errors.ErrNotFound)
		return
	}
	response.Error(c, err)
}
