package db

import "time"

// ProfileView 记录每一次公开页访问，只追加不去重。
type ProfileView struct {
	ID        uint      `gorm:"primaryKey"`
	ProfileID string    `gorm:"size:36;not null;index:idx_profile_views_profile_time,priority:1"`
	CreatedAt time.Time `gorm:"index:idx_profile_views_profile_time,priority:2"`
}

// TableName 指定自定义表名。
func (ProfileView) TableName() string {
	return "profile_views"
}
