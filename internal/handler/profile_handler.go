package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dropss/internal/service"
	"github.com/gin-gonic/gin"
)

const dashboardTrendDays = 7

var dashboardFlashErrors = map[string]string{
	"no_code":                "Discord did not return an authorization code.",
	"discord_failed":         "Connecting Discord failed. Please try again.",
	"discord_not_configured": "Discord is not configured on this server.",
}

var dashboardFlashInfo = map[string]string{
	"connected":    "Discord connected.",
	"disconnected": "Discord disconnected.",
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	Location    string `json:"location"`
}

type themeRequest struct {
	BackgroundColor    string `json:"background_color" binding:"required,hexcolor"`
	TextColor          string `json:"text_color" binding:"required,hexcolor"`
	AccentColor        string `json:"accent_color" binding:"required,hexcolor"`
	FontFamily         string `json:"font_family" binding:"omitempty,oneof=sans-serif serif monospace"`
	CursorURL          string `json:"cursor_url"`
	MusicURL           string `json:"music_url"`
	BackgroundImageURL string `json:"background_image_url"`
	NameEffect         string `json:"name_effect" binding:"omitempty,oneof=none gradient glitch wave rainbow"`
	RichPresence       string `json:"rich_presence" binding:"max=100"`
}

func (r themeRequest) toInput() service.ThemeInput {
	return service.ThemeInput{
		BackgroundColor:    r.BackgroundColor,
		TextColor:          r.TextColor,
		AccentColor:        r.AccentColor,
		FontFamily:         r.FontFamily,
		CursorURL:          r.CursorURL,
		MusicURL:           r.MusicURL,
		BackgroundImageURL: r.BackgroundImageURL,
		NameEffect:         r.NameEffect,
		RichPresence:       r.RichPresence,
	}
}

// ShowDashboard renders the customisation dashboard of the signed-in user.
func (a *API) ShowDashboard(c *gin.Context) {
	userID := mustUserID(c)

	profile, err := a.profiles.GetByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			// 会话指向已不存在的账号
			a.Logout(c)
			return
		}
		a.renderError(c, err)
		return
	}

	links, err := a.links.ListLinks(userID)
	if err != nil {
		a.renderError(c, err)
		return
	}
	theme, err := a.themes.GetTheme(userID)
	if err != nil {
		a.renderError(c, err)
		return
	}
	viewCount, err := a.analytics.CountViews(userID)
	if err != nil {
		a.renderError(c, err)
		return
	}
	daily, err := a.analytics.DailyViews(userID, a.now(), dashboardTrendDays)
	if err != nil {
		a.renderError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":             "Dashboard - " + a.siteName,
		"profile":           profile,
		"links":             links,
		"themeForm":         service.ThemeInputFrom(theme),
		"viewCount":         viewCount,
		"dailyViews":        daily,
		"platforms":         service.Platforms,
		"fontFamilies":      service.FontFamilies,
		"nameEffects":       service.NameEffects,
		"discordConfigured": a.discord.Configured(),
		"flashError":        dashboardFlashErrors[c.Query("error")],
		"flashInfo":         dashboardFlashInfo[c.Query("discord")],
	})
}

// UpdateProfile 保存资料表单
func (a *API) UpdateProfile(c *gin.Context) {
	var payload profileRequest
	if !bindJSON(c, &payload, "Invalid profile data") {
		return
	}

	profile, err := a.profiles.UpdateProfile(mustUserID(c), service.ProfileInput{
		DisplayName: payload.DisplayName,
		Bio:         payload.Bio,
		AvatarURL:   payload.AvatarURL,
		Location:    payload.Location,
	})
	if err != nil {
		handleProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile saved",
		"profile": gin.H{
			"username":     profile.Username,
			"display_name": profile.DisplayName,
			"bio":          profile.Bio,
			"avatar_url":   profile.AvatarURL,
			"location":     profile.Location,
		},
	})
}

// SaveTheme 整体保存主题
func (a *API) SaveTheme(c *gin.Context) {
	var payload themeRequest
	if !bindJSON(c, &payload, "Colours must be hex values and font/effect must be valid options") {
		return
	}

	theme, err := a.themes.SaveTheme(mustUserID(c), payload.toInput())
	if err != nil {
		if errors.Is(err, service.ErrThemeInvalidInput) {
			respondError(c, http.StatusBadRequest, validationDetail(err, service.ErrThemeInvalidInput))
			return
		}
		log.Printf("[theme] save failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to save theme")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Theme saved", "theme": theme})
}

func handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		respondError(c, http.StatusNotFound, "Profile not found")
	case errors.Is(err, service.ErrProfileInvalidInput):
		respondError(c, http.StatusBadRequest, validationDetail(err, service.ErrProfileInvalidInput))
	default:
		log.Printf("[profile] update failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to save profile")
	}
}

// validationDetail strips the sentinel prefix so only the human readable
// reason reaches the client.
func validationDetail(err, sentinel error) string {
	detail := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if detail == "" {
		return sentinel.Error()
	}
	return detail
}
