package service

import "github.com/dropss/internal/db"

// Default page style used when a profile has no theme row.
const (
	DefaultBackgroundColor = "#0f0f0f"
	DefaultTextColor       = "#ffffff"
	DefaultAccentColor     = "#3b82f6"
	DefaultFontFamily      = "sans-serif"
)

// Style is what the public page applies to its container.
type Style struct {
	BackgroundColor string
	BackgroundImage string
	TextColor       string
	AccentColor     string
	FontFamily      string
	CursorURL       string
	NameEffect      string
}

// HasBackgroundImage reports whether the image replaces the colour.
func (s Style) HasBackgroundImage() bool {
	return s.BackgroundImage != ""
}

// ComputeStyle derives the page style from an optional theme. The colour and
// the image come from separate columns; the image wins when both are set.
func ComputeStyle(theme *db.Theme) Style {
	if theme == nil {
		return Style{
			BackgroundColor: DefaultBackgroundColor,
			TextColor:       DefaultTextColor,
			AccentColor:     DefaultAccentColor,
			FontFamily:      DefaultFontFamily,
			NameEffect:      "none",
		}
	}

	style := Style{
		BackgroundColor: firstNonEmpty(theme.BackgroundColor, DefaultBackgroundColor),
		TextColor:       firstNonEmpty(theme.TextColor, DefaultTextColor),
		AccentColor:     firstNonEmpty(theme.AccentColor, DefaultAccentColor),
		FontFamily:      firstNonEmpty(theme.FontFamily, DefaultFontFamily),
		NameEffect:      firstNonEmpty(theme.NameEffect, "none"),
		BackgroundImage: derefString(theme.BackgroundImageURL),
		CursorURL:       derefString(theme.CursorURL),
	}
	return style
}

func firstNonEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
