package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dropss/internal/db"
	"gorm.io/gorm"
)

const maxRichPresenceLength = 100

// FontFamilies and NameEffects are the accepted enum values in form order.
var (
	FontFamilies = []string{"sans-serif", "serif", "monospace"}
	NameEffects  = []string{"none", "gradient", "glitch", "wave", "rainbow"}
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ErrThemeInvalidInput 在主题参数不合法时返回
var ErrThemeInvalidInput = errors.New("invalid theme input")

// ThemeService 负责主题的读取与整体保存
type ThemeService struct {
	db *gorm.DB
}

// NewThemeService 构造 ThemeService
func NewThemeService(gdb *gorm.DB) *ThemeService {
	return &ThemeService{db: gdb}
}

// ThemeInput is the full theme form. Every save replaces all fields.
type ThemeInput struct {
	BackgroundColor    string
	TextColor          string
	AccentColor        string
	FontFamily         string
	CursorURL          string
	MusicURL           string
	BackgroundImageURL string
	NameEffect         string
	RichPresence       string
}

// DefaultThemeInput mirrors the values the theme form starts from.
func DefaultThemeInput() ThemeInput {
	return ThemeInput{
		BackgroundColor: "#ffffff",
		TextColor:       "#000000",
		AccentColor:     "#3b82f6",
		FontFamily:      "sans-serif",
		NameEffect:      "none",
	}
}

// ThemeInputFrom converts a stored theme back to form values.
func ThemeInputFrom(theme *db.Theme) ThemeInput {
	if theme == nil {
		return DefaultThemeInput()
	}
	return ThemeInput{
		BackgroundColor:    theme.BackgroundColor,
		TextColor:          theme.TextColor,
		AccentColor:        theme.AccentColor,
		FontFamily:         theme.FontFamily,
		CursorURL:          derefString(theme.CursorURL),
		MusicURL:           derefString(theme.MusicURL),
		BackgroundImageURL: derefString(theme.BackgroundImageURL),
		NameEffect:         theme.NameEffect,
		RichPresence:       derefString(theme.RichPresence),
	}
}

// GetTheme returns the user's theme, or nil when none was saved yet.
func (s *ThemeService) GetTheme(userID string) (*db.Theme, error) {
	var items []db.Theme
	if err := s.db.Where("user_id = ?", userID).Limit(1).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// SaveTheme updates the user's theme row if it exists, else inserts it.
func (s *ThemeService) SaveTheme(userID string, input ThemeInput) (*db.Theme, error) {
	normalized, err := normalizeThemeInput(input)
	if err != nil {
		return nil, err
	}

	var saved db.Theme
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing []db.Theme
		if err := tx.Where("user_id = ?", userID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) == 0 {
			saved = db.Theme{UserID: userID}
			applyThemeInput(&saved, normalized)
			return tx.Create(&saved).Error
		}

		saved = existing[0]
		applyThemeInput(&saved, normalized)
		return tx.Save(&saved).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save theme: %w", err)
	}
	return &saved, nil
}

func applyThemeInput(theme *db.Theme, input ThemeInput) {
	theme.BackgroundColor = input.BackgroundColor
	theme.TextColor = input.TextColor
	theme.AccentColor = input.AccentColor
	theme.FontFamily = input.FontFamily
	theme.CursorURL = nullableString(input.CursorURL)
	theme.MusicURL = nullableString(input.MusicURL)
	theme.BackgroundImageURL = nullableString(input.BackgroundImageURL)
	theme.NameEffect = input.NameEffect
	theme.RichPresence = nullableString(input.RichPresence)
}

type themeField struct {
	label string
	value string
}

func normalizeThemeInput(input ThemeInput) (ThemeInput, error) {
	out := ThemeInput{
		BackgroundColor:    strings.ToLower(strings.TrimSpace(input.BackgroundColor)),
		TextColor:          strings.ToLower(strings.TrimSpace(input.TextColor)),
		AccentColor:        strings.ToLower(strings.TrimSpace(input.AccentColor)),
		FontFamily:         strings.TrimSpace(input.FontFamily),
		CursorURL:          strings.TrimSpace(input.CursorURL),
		MusicURL:           strings.TrimSpace(input.MusicURL),
		BackgroundImageURL: strings.TrimSpace(input.BackgroundImageURL),
		NameEffect:         strings.TrimSpace(input.NameEffect),
		RichPresence:       strings.TrimSpace(input.RichPresence),
	}
	if out.FontFamily == "" {
		out.FontFamily = "sans-serif"
	}
	if out.NameEffect == "" {
		out.NameEffect = "none"
	}

	for _, field := range []themeField{
		{"background color", out.BackgroundColor},
		{"text color", out.TextColor},
		{"accent color", out.AccentColor},
	} {
		if !hexColorPattern.MatchString(field.value) {
			return ThemeInput{}, fmt.Errorf("%w: %s must be a hex color", ErrThemeInvalidInput, field.label)
		}
	}
	if !containsString(FontFamilies, out.FontFamily) {
		return ThemeInput{}, fmt.Errorf("%w: unknown font family %q", ErrThemeInvalidInput, out.FontFamily)
	}
	if !containsString(NameEffects, out.NameEffect) {
		return ThemeInput{}, fmt.Errorf("%w: unknown name effect %q", ErrThemeInvalidInput, out.NameEffect)
	}
	for _, field := range []themeField{
		{"cursor url", out.CursorURL},
		{"music url", out.MusicURL},
		{"background image url", out.BackgroundImageURL},
	} {
		if field.value != "" && !isHTTPURL(field.value) {
			return ThemeInput{}, fmt.Errorf("%w: %s must be an http(s) url", ErrThemeInvalidInput, field.label)
		}
	}
	if utf8.RuneCountInString(out.RichPresence) > maxRichPresenceLength {
		return ThemeInput{}, fmt.Errorf("%w: rich presence must be at most %d characters", ErrThemeInvalidInput, maxRichPresenceLength)
	}
	return out, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
