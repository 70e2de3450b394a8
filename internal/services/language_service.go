package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/content"
	"github.com/bannerworks/alertbanner/internal/models"
	apperrors "github.com/bannerworks/alertbanner/pkg/errors"
)

// LanguageDTO is the API-friendly shape of one supported language.
type LanguageDTO struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NativeName   string `json:"nativeName,omitempty"`
	Flag         string `json:"flag,omitempty"`
	IsSupported  bool   `json:"isSupported"`
	ColumnExists bool   `json:"columnExists"`
}

// LanguageService answers which locales the tenant knows about and which are
// actually provisioned in the backing store.
type LanguageService struct {
	db *gorm.DB
}

// NewLanguageService constructs a language service.
func NewLanguageService(db *gorm.DB) (*LanguageService, error) {
	if db == nil {
		return nil, errors.New("language service: db is required")
	}
	return &LanguageService{db: db}, nil
}

// List returns the full language reference set ordered by code.
func (s *LanguageService) List(ctx context.Context) ([]LanguageDTO, error) {
	ctx = ensureContext(ctx)

	var rows []models.SupportedLanguage
	if err := s.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("language service: list: %w", err)
	}

	items := make([]LanguageDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLanguage(row))
	}
	return items, nil
}

// ProvisionedColumns returns the set of locale codes with a backing column.
func (s *LanguageService) ProvisionedColumns(ctx context.Context) (map[string]struct{}, error) {
	ctx = ensureContext(ctx)

	var codes []string
	if err := s.db.WithContext(ctx).
		Model(&models.SupportedLanguage{}).
		Where("column_exists = ?", true).
		Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("language service: provisioned columns: %w", err)
	}

	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[content.NormalizeLocale(code)] = struct{}{}
	}
	return set, nil
}

// EnsureProvisioned verifies every locale has a backing column, so variant
// content is never accepted for a locale the store cannot hold.
func (s *LanguageService) EnsureProvisioned(ctx context.Context, locales []string) error {
	if len(locales) == 0 {
		return nil
	}

	provisioned, err := s.ProvisionedColumns(ctx)
	if err != nil {
		return err
	}

	for _, locale := range locales {
		if _, ok := provisioned[content.NormalizeLocale(locale)]; !ok {
			return apperrors.ErrLanguageNotProvisioned
		}
	}
	return nil
}

// MarkProvisioned records that the store now has a column for the locale.
func (s *LanguageService) MarkProvisioned(ctx context.Context, code string) (*LanguageDTO, error) {
	ctx = ensureContext(ctx)

	code = content.NormalizeLocale(code)
	if code == "" {
		return nil, errors.New("language service: code is required")
	}

	var row models.SupportedLanguage
	if err := s.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLanguageNotFound
		}
		return nil, fmt.Errorf("language service: load %s: %w", code, err)
	}

	if !row.ColumnExists {
		if err := s.db.WithContext(ctx).Model(&row).
			Update("column_exists", true).Error; err != nil {
			return nil, fmt.Errorf("language service: mark provisioned: %w", err)
		}
		row.ColumnExists = true
	}

	dto := mapLanguage(row)
	return &dto, nil
}

func mapLanguage(row models.SupportedLanguage) LanguageDTO {
	return LanguageDTO{
		Code:         strings.ToLower(row.Code),
		Name:         row.Name,
		NativeName:   row.NativeName,
		Flag:         row.Flag,
		IsSupported:  row.IsSupported,
		ColumnExists: row.ColumnExists,
	}
}
