package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dropss/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionOAuthStateKey = "discord_oauth_state"

// ConnectDiscord stores a fresh state in the session and redirects to the
// Discord authorize page.
func (a *API) ConnectDiscord(c *gin.Context) {
	if !a.discord.Configured() {
		c.Redirect(http.StatusFound, "/dashboard?error=discord_not_configured")
		return
	}

	state, err := randomState()
	if err != nil {
		log.Printf("[discord] generate state: %v", err)
		c.Redirect(http.StatusFound, "/dashboard?error=discord_failed")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionOAuthStateKey, state)
	if err := session.Save(); err != nil {
		log.Printf("[discord] save state: %v", err)
		c.Redirect(http.StatusFound, "/dashboard?error=discord_failed")
		return
	}

	target, err := a.discord.AuthCodeURL(state)
	if err != nil {
		c.Redirect(http.StatusFound, "/dashboard?error=discord_not_configured")
		return
	}
	c.Redirect(http.StatusFound, target)
}

// DiscordCallback completes the OAuth flow and stores the connection.
func (a *API) DiscordCallback(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		c.Redirect(http.StatusFound, "/dashboard?error=no_code")
		return
	}

	fail := func(reason string, err error) {
		log.Printf("[discord] callback failed (%s): %v", reason, err)
		c.Redirect(http.StatusFound, "/dashboard?error=discord_failed")
	}

	userID, ok := currentUserID(c)
	if !ok {
		fail("no session", errors.New("unauthenticated callback"))
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(sessionOAuthStateKey).(string)
	session.Delete(sessionOAuthStateKey)
	_ = session.Save()
	if expected == "" || c.Query("state") != expected {
		fail("state", errors.New("state mismatch"))
		return
	}

	ctx := c.Request.Context()
	tokens, err := a.discord.Exchange(ctx, code)
	if err != nil {
		fail("exchange", err)
		return
	}
	user, err := a.discord.FetchUser(ctx, tokens.AccessToken)
	if err != nil {
		fail("fetch user", err)
		return
	}

	if err := a.profiles.ConnectDiscord(userID, service.DiscordConnection{
		UserID:       user.ID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ConnectedAt:  a.now(),
	}); err != nil {
		fail("persist", err)
		return
	}

	c.Redirect(http.StatusFound, "/dashboard?discord=connected")
}

// DisconnectDiscord clears the stored Discord identity.
func (a *API) DisconnectDiscord(c *gin.Context) {
	err := a.profiles.DisconnectDiscord(mustUserID(c))
	if wantsJSON(c) {
		if err != nil {
			handleProfileError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err != nil {
		log.Printf("[discord] disconnect failed: %v", err)
		c.Redirect(http.StatusSeeOther, "/dashboard?error=discord_failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard?discord=disconnected")
}

// DiscordPresence fetches presence for an explicit user id and token.
func (a *API) DiscordPresence(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	token := strings.TrimSpace(c.Query("accessToken"))
	if userID == "" || token == "" {
		respondError(c, http.StatusBadRequest, "Missing parameters")
		return
	}

	presence, err := a.discord.FetchPresence(c.Request.Context(), token)
	if err != nil {
		log.Printf("[discord] presence for %s: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch presence")
		return
	}
	c.JSON(http.StatusOK, presence)
}

// DiscordPresenceStream pushes presence events for a public profile until
// the client goes away.
func (a *API) DiscordPresenceStream(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		respondError(c, http.StatusBadRequest, "Missing parameters")
		return
	}

	fetch, err := a.presence.FetcherFor(username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrPresenceUnavailable):
			respondError(c, http.StatusNotFound, "Presence unavailable")
		default:
			log.Printf("[discord] presence stream for %s: %v", username, err)
			respondError(c, http.StatusInternalServerError, "Failed to fetch presence")
		}
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	service.PollPresence(ctx, a.presence.Interval(), fetch, func(presence *service.Presence, err error) bool {
		if ctx.Err() != nil {
			return false
		}
		if err != nil {
			c.SSEvent("error", gin.H{"error": "Failed to fetch presence"})
		} else {
			c.SSEvent("presence", presence)
		}
		c.Writer.Flush()
		return true
	})
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
