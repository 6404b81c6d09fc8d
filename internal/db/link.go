package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link 是展示在个人主页上的社交链接
// Platform 决定前台使用的图标
// DisplayOrder 越小越靠前，新链接追加为 max+1
// IsVisible 为 false 时不在公开页展示

type Link struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"size:36;not null;index:idx_links_user_order,priority:1"`
	Platform     string `gorm:"size:32;not null"`
	URL          string `gorm:"size:2048;not null"`
	DisplayOrder int    `gorm:"not null;default:0;index:idx_links_user_order,priority:2"`
	IsVisible    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName 返回自定义表名，避免冲突
func (Link) TableName() string {
	return "links"
}

// BeforeCreate assigns a UUID when the caller did not.
func (l *Link) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
