package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredObject records who uploaded a blob so deletes can be authorised
// against the owner instead of the URL shape.
type StoredObject struct {
	ID          string `gorm:"primaryKey;size:36"`
	OwnerID     string `gorm:"size:36;not null;index"`
	Key         string `gorm:"size:512;not null"`
	URL         string `gorm:"size:2048;not null;uniqueIndex"`
	Kind        string `gorm:"size:16;not null"`
	ContentType string `gorm:"size:64"`
	Size        int64
	Width       int
	Height      int
	CreatedAt   time.Time
}

// TableName 指定自定义表名。
func (StoredObject) TableName() string {
	return "stored_objects"
}

// BeforeCreate assigns a UUID when the caller did not.
func (o *StoredObject) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
