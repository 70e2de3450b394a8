package models

import "time"

// SupportedLanguage is reference data describing one locale the tenant knows
// about. IsSupported marks locales offered in the editor; ColumnExists marks
// locales actually provisioned in the backing store, which is the stricter
// condition for accepting variant content.
type SupportedLanguage struct {
	Code         string    `gorm:"primaryKey;type:varchar(16)" json:"code"`
	Name         string    `gorm:"type:varchar(64);not null" json:"name"`
	NativeName   string    `gorm:"type:varchar(64)" json:"native_name"`
	Flag         string    `gorm:"type:varchar(8)" json:"flag"`
	IsSupported  bool      `gorm:"default:true" json:"is_supported"`
	ColumnExists bool      `gorm:"default:false" json:"column_exists"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
