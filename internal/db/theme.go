package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Theme holds the visual customisation of a profile page. At most one row
// exists per user; a missing row means the default style.
type Theme struct {
	ID                 string  `gorm:"primaryKey;size:36"`
	UserID             string  `gorm:"size:36;not null;uniqueIndex"`
	BackgroundColor    string  `gorm:"size:16;not null"`
	TextColor          string  `gorm:"size:16;not null"`
	AccentColor        string  `gorm:"size:16;not null"`
	FontFamily         string  `gorm:"size:32;not null"`
	CursorURL          *string `gorm:"size:2048"`
	MusicURL           *string `gorm:"size:2048"`
	BackgroundImageURL *string `gorm:"size:2048"`
	NameEffect         string  `gorm:"size:16;not null"`
	RichPresence       *string `gorm:"size:100"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName 返回自定义表名
func (Theme) TableName() string {
	return "themes"
}

// BeforeCreate assigns a UUID when the caller did not.
func (t *Theme) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
