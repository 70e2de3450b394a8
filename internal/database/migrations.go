package database

import (
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Alert{},
		&models.SupportedLanguage{},
	)
}

// SeedLanguages populates the supported-language reference table. Existing
// rows are left untouched so provisioning flags survive restarts.
func SeedLanguages(db *gorm.DB) error {
	languages := []models.SupportedLanguage{
		{Code: "en-us", Name: "English", NativeName: "English", Flag: "🇺🇸", IsSupported: true, ColumnExists: true},
		{Code: "fr-fr", Name: "French", NativeName: "Français", Flag: "🇫🇷", IsSupported: true},
		{Code: "de-de", Name: "German", NativeName: "Deutsch", Flag: "🇩🇪", IsSupported: true},
		{Code: "sv-se", Name: "Swedish", NativeName: "Svenska", Flag: "🇸🇪", IsSupported: true},
		{Code: "fi-fi", Name: "Finnish", NativeName: "Suomi", Flag: "🇫🇮", IsSupported: true},
		{Code: "da-dk", Name: "Danish", NativeName: "Dansk", Flag: "🇩🇰", IsSupported: true},
		{Code: "nb-no", Name: "Norwegian", NativeName: "Norsk", Flag: "🇳🇴", IsSupported: true},
		{Code: "es-es", Name: "Spanish", NativeName: "Español", Flag: "🇪🇸", IsSupported: false},
		{Code: "nl-nl", Name: "Dutch", NativeName: "Nederlands", Flag: "🇳🇱", IsSupported: false},
	}

	for _, language := range languages {
		if err := db.Where(models.SupportedLanguage{Code: language.Code}).
			Attrs(language).
			FirstOrCreate(&models.SupportedLanguage{}).Error; err != nil {
			return err
		}
	}

	return nil
}
