package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dropss/internal/db"
	"gorm.io/gorm"
)

const (
	maxDisplayNameLength = 64
	maxBioLength         = 500
	maxLocationLength    = 100
)

var (
	// ErrProfileNotFound 在指定的个人主页不存在时返回
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileInvalidInput 在输入数据不合法时返回
	ErrProfileInvalidInput = errors.New("invalid profile input")
)

// ProfileService 负责个人主页资料的读取与更新
// 与 handler 解耦

type ProfileService struct {
	db *gorm.DB
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// ProfileInput 描述资料表单可编辑的字段，空字符串会被存为 NULL
type ProfileInput struct {
	DisplayName string
	Bio         string
	AvatarURL   string
	Location    string
}

// DiscordConnection is what the OAuth callback stores on the profile.
type DiscordConnection struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ConnectedAt  time.Time
}

// GetByUsername looks a profile up case-insensitively.
func (s *ProfileService) GetByUsername(username string) (*db.Profile, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" {
		return nil, ErrProfileNotFound
	}

	var profile db.Profile
	if err := s.db.Where("username = ?", normalized).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by username: %w", err)
	}
	return &profile, nil
}

// GetByID 根据主键获取资料
func (s *ProfileService) GetByID(id string) (*db.Profile, error) {
	var profile db.Profile
	if err := s.db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile replaces the editable fields of the profile.
func (s *ProfileService) UpdateProfile(id string, input ProfileInput) (*db.Profile, error) {
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	profile, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"display_name": nullableString(input.DisplayName),
		"bio":          nullableString(input.Bio),
		"avatar_url":   nullableString(input.AvatarURL),
		"location":     nullableString(input.Location),
	}
	if err := s.db.Model(profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return s.GetByID(id)
}

// ConnectDiscord stores the Discord identity and tokens on the profile.
func (s *ProfileService) ConnectDiscord(id string, conn DiscordConnection) error {
	if strings.TrimSpace(conn.UserID) == "" || strings.TrimSpace(conn.AccessToken) == "" {
		return fmt.Errorf("%w: discord user id and access token are required", ErrProfileInvalidInput)
	}
	connectedAt := conn.ConnectedAt
	if connectedAt.IsZero() {
		connectedAt = time.Now()
	}

	result := s.db.Model(&db.Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"discord_user_id":       conn.UserID,
		"discord_access_token":  conn.AccessToken,
		"discord_refresh_token": nullableString(conn.RefreshToken),
		"discord_connected_at":  connectedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("connect discord: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// DisconnectDiscord clears every Discord field.
func (s *ProfileService) DisconnectDiscord(id string) error {
	result := s.db.Model(&db.Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"discord_user_id":       nil,
		"discord_access_token":  nil,
		"discord_refresh_token": nil,
		"discord_connected_at":  nil,
	})
	if result.Error != nil {
		return fmt.Errorf("disconnect discord: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func validateProfileInput(input ProfileInput) error {
	if utf8.RuneCountInString(strings.TrimSpace(input.DisplayName)) > maxDisplayNameLength {
		return fmt.Errorf("%w: display name must be at most %d characters", ErrProfileInvalidInput, maxDisplayNameLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.Bio)) > maxBioLength {
		return fmt.Errorf("%w: bio must be at most %d characters", ErrProfileInvalidInput, maxBioLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.Location)) > maxLocationLength {
		return fmt.Errorf("%w: location must be at most %d characters", ErrProfileInvalidInput, maxLocationLength)
	}
	if avatar := strings.TrimSpace(input.AvatarURL); avatar != "" && !isHTTPURL(avatar) {
		return fmt.Errorf("%w: avatar url must be an http(s) url", ErrProfileInvalidInput)
	}
	return nil
}

func nullableString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
