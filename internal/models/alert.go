package models

import (
	"time"

	"gorm.io/datatypes"
)

// Alert is the persisted form of one alert, template, or draft record. Target
// sites and language variants are stored as JSON documents so field names
// round-trip losslessly between the content model and the store.
type Alert struct {
	BaseModel

	Title            string  `gorm:"type:varchar(255);not null" json:"title"`
	Description      string  `gorm:"type:text" json:"description"`
	AlertTypeName    string  `gorm:"type:varchar(120);not null;index" json:"alert_type_name"`
	Priority         string  `gorm:"type:varchar(16);default:'Medium'" json:"priority"`
	IsPinned         bool    `gorm:"default:false;index" json:"is_pinned"`
	NotificationType string  `gorm:"type:varchar(16);default:'None'" json:"notification_type"`
	LinkURL          string  `gorm:"type:text" json:"link_url"`
	LinkDescription  string  `gorm:"type:text" json:"link_description"`

	TargetSites     datatypes.JSON `json:"target_sites"`
	LanguageContent datatypes.JSON `json:"language_content"`
	TargetLanguage  string         `gorm:"type:varchar(16)" json:"target_language"`
	LanguageGroup   string         `gorm:"type:varchar(64);index" json:"language_group"`

	ScheduledStart *time.Time `gorm:"index" json:"scheduled_start"`
	ScheduledEnd   *time.Time `gorm:"index" json:"scheduled_end"`

	ContentType string `gorm:"type:varchar(16);not null;index" json:"content_type"`
	CreatedBy   string `gorm:"type:varchar(255);index" json:"created_by"`

	ArchivedAt *time.Time `gorm:"index" json:"archived_at,omitempty"`
}
