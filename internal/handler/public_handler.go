package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dropss/internal/service"
	"github.com/dropss/internal/view"
	"github.com/gin-gonic/gin"
)

// ShowProfile renders the public page at /{username}. Every hit records a
// view before the counter is read.
func (a *API) ShowProfile(c *gin.Context) {
	username := c.Param("username")
	if service.IsReservedUsername(username) {
		a.renderNotFound(c)
		return
	}

	profile, err := a.profiles.GetByUsername(username)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			a.renderNotFound(c)
			return
		}
		a.renderError(c, err)
		return
	}

	if err := a.analytics.RecordView(profile.ID, a.now()); err != nil {
		a.renderError(c, err)
		return
	}
	viewCount, err := a.analytics.CountViews(profile.ID)
	if err != nil {
		a.renderError(c, err)
		return
	}

	links, err := a.links.ListVisibleLinks(profile.ID, service.PublicLinkLimit)
	if err != nil {
		a.renderError(c, err)
		return
	}

	theme, err := a.themes.GetTheme(profile.ID)
	if err != nil {
		a.renderError(c, err)
		return
	}

	name := profile.Name()
	bio := ""
	if profile.Bio != nil {
		bio = *profile.Bio
	}
	description := strings.TrimSpace(bio)
	if description == "" {
		description = fmt.Sprintf("Check out %s's links", name)
	}

	data := gin.H{
		"title":            fmt.Sprintf("%s - %s", name, a.siteName),
		"description":      description,
		"profile":          profile,
		"name":             name,
		"initial":          initialOf(name),
		"bio":              view.RenderBio(bio),
		"links":            links,
		"style":            service.ComputeStyle(theme),
		"viewCount":        viewCount,
		"discordConnected": profile.DiscordConnected(),
	}
	if theme != nil {
		if theme.MusicURL != nil {
			data["musicURL"] = *theme.MusicURL
		}
		if theme.RichPresence != nil {
			data["richPresence"] = *theme.RichPresence
		}
	}

	a.renderHTML(c, http.StatusOK, "profile.html", data)
}

func initialOf(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
