package db

import "time"

// Profile is the public identity rendered at /{username}.
// Discord fields are only written by the OAuth callback and disconnect.
type Profile struct {
	ID                  string  `gorm:"primaryKey;size:36"`
	Username            string  `gorm:"uniqueIndex;size:20;not null"`
	DisplayName         *string `gorm:"size:64"`
	Bio                 *string `gorm:"size:500"`
	AvatarURL           *string `gorm:"size:2048"`
	Location            *string `gorm:"size:100"`
	DiscordUserID       *string `gorm:"size:32"`
	DiscordAccessToken  *string `gorm:"size:255"`
	DiscordRefreshToken *string `gorm:"size:255"`
	DiscordConnectedAt  *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName 返回自定义表名
func (Profile) TableName() string {
	return "profiles"
}

// Name returns the display name, falling back to the username.
func (p Profile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return p.Username
}

// DiscordConnected reports whether the profile carries a Discord identity.
func (p Profile) DiscordConnected() bool {
	return p.DiscordUserID != nil && *p.DiscordUserID != ""
}
