package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropss/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublicLinkLimit caps the icon row on the public page.
const PublicLinkLimit = 8

// Platforms lists the selectable link platforms in form order.
var Platforms = []string{
	"Twitter",
	"Instagram",
	"TikTok",
	"YouTube",
	"Twitch",
	"Discord",
	"GitHub",
	"LinkedIn",
	"Website",
	"Custom",
}

var (
	// ErrLinkNotFound 在指定的链接不存在或不属于当前用户时返回
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkInvalidInput 在输入数据不完整时返回
	ErrLinkInvalidInput = errors.New("invalid link input")
)

// LinkService 维护个人主页上的社交链接，提供追加、删除与显隐切换
type LinkService struct {
	db *gorm.DB
}

// NewLinkService 构造 LinkService
func NewLinkService(gdb *gorm.DB) *LinkService {
	return &LinkService{db: gdb}
}

// LinkInput 描述新增链接时可设置的字段
type LinkInput struct {
	Platform string
	URL      string
}

// ListLinks returns every link of the user ordered by display order.
func (s *LinkService) ListLinks(userID string) ([]db.Link, error) {
	var items []db.Link
	if err := s.db.Where("user_id = ?", userID).
		Order("display_order ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return items, nil
}

// ListVisibleLinks returns at most limit visible links, lowest order first.
// A non-positive limit returns all of them.
func (s *LinkService) ListVisibleLinks(userID string, limit int) ([]db.Link, error) {
	query := s.db.Where("user_id = ? AND is_visible = ?", userID, true).
		Order("display_order ASC, created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []db.Link
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list visible links: %w", err)
	}
	return items, nil
}

// AddLink appends a visible link with display order max+1 (0 for the first).
// The owner's profile row is locked while the order is computed so concurrent
// adds from several sessions cannot reuse a value.
func (s *LinkService) AddLink(userID string, input LinkInput) (*db.Link, error) {
	platform, err := normalizePlatform(input.Platform)
	if err != nil {
		return nil, err
	}
	target := strings.TrimSpace(input.URL)
	if !isHTTPURL(target) {
		return nil, fmt.Errorf("%w: url must be an http(s) url", ErrLinkInvalidInput)
	}

	link := db.Link{
		UserID:    userID,
		Platform:  platform,
		URL:       target,
		IsVisible: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var owner db.Profile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&owner, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		var last []db.Link
		if err := tx.Select("display_order").
			Where("user_id = ?", userID).
			Order("display_order DESC").
			Limit(1).
			Find(&last).Error; err != nil {
			return err
		}
		if len(last) > 0 {
			link.DisplayOrder = last[0].DisplayOrder + 1
		}

		return tx.Create(&link).Error
	})
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("add link: %w", err)
	}

	return &link, nil
}

// DeleteLink removes a link owned by userID.
func (s *LinkService) DeleteLink(userID, linkID string) error {
	result := s.db.Where("id = ? AND user_id = ?", linkID, userID).Delete(&db.Link{})
	if result.Error != nil {
		return fmt.Errorf("delete link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// SetLinkVisibility shows or hides a link on the public page.
func (s *LinkService) SetLinkVisibility(userID, linkID string, visible bool) (*db.Link, error) {
	var link db.Link
	if err := s.db.Where("id = ? AND user_id = ?", linkID, userID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("find link: %w", err)
	}

	if err := s.db.Model(&link).Update("is_visible", visible).Error; err != nil {
		return nil, fmt.Errorf("update link visibility: %w", err)
	}
	link.IsVisible = visible
	return &link, nil
}

func normalizePlatform(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	for _, platform := range Platforms {
		if strings.EqualFold(platform, trimmed) {
			return platform, nil
		}
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrLinkInvalidInput, trimmed)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
