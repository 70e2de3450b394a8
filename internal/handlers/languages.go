package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/services"
	"github.com/bannerworks/alertbanner/pkg/errors"
	"github.com/bannerworks/alertbanner/pkg/response"
)

// LanguageHandler exposes the supported-language reference set.
type LanguageHandler struct {
	service *services.LanguageService
}

// NewLanguageHandler constructs a language handler.
func NewLanguageHandler(db *gorm.DB) (*LanguageHandler, error) {
	service, err := services.NewLanguageService(db)
	if err != nil {
		return nil, err
	}
	return &LanguageHandler{service: service}, nil
}

// List returns every language the tenant knows about, provisioned or not.
func (h *LanguageHandler) List(c *gin.Context) {
	items, err := h.service.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Provision records that the store now has a backing column for the locale.
func (h *LanguageHandler) Provision(c *gin.Context) {
	dto, err := h.service.MarkProvisioned(requestContext(c), c.Param("code"))
	if err != nil {
		if err == services.ErrLanguageNotFound {
			response.Error(c, errors.ErrNotFound)
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}
