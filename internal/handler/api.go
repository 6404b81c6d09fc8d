package handler

import (
	"net/http"
	"time"

	"github.com/dropss/internal/service"
	"github.com/dropss/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultSiteName = "dropss"

// Options carries the collaborators that are not derived from the database.
type Options struct {
	SiteName         string
	Store            storage.Store
	MaxUploadBytes   int64
	Discord          *service.DiscordClient
	PresenceInterval time.Duration
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	accounts  *service.AccountService
	profiles  *service.ProfileService
	links     *service.LinkService
	themes    *service.ThemeService
	analytics analyticsProvider
	media     *service.MediaService
	discord   *service.DiscordClient
	presence  *service.PresenceService
	siteName  string
	now       func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	RegisterValidators()
	profiles := service.NewProfileService(db)

	discord := opts.Discord
	if discord == nil {
		discord = service.NewDiscordClient("", "", "", "")
	}

	siteName := opts.SiteName
	if siteName == "" {
		siteName = defaultSiteName
	}

	return &API{
		db:        db,
		accounts:  service.NewAccountService(db),
		profiles:  profiles,
		links:     service.NewLinkService(db),
		themes:    service.NewThemeService(db),
		analytics: service.NewAnalyticsService(db),
		media:     service.NewMediaService(db, opts.Store, opts.MaxUploadBytes),
		discord:   discord,
		presence:  service.NewPresenceService(profiles, discord, opts.PresenceInterval),
		siteName:  siteName,
		now:       time.Now,
	}
}

// DB exposes the underlying gorm instance for scripts and tests.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Accounts exposes the account service for seeding.
func (a *API) Accounts() *service.AccountService {
	return a.accounts
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["title"]; !exists {
		payload["title"] = a.siteName
	}
	if _, exists := payload["signedIn"]; !exists {
		_, ok := currentUserID(c)
		payload["signedIn"] = ok
	}

	c.HTML(status, template, payload)
}

// RenderHTML 在向模板渲染时自动附加站点名称与登录状态。
func (a *API) RenderHTML(c *gin.Context, status int, template string, data gin.H) {
	a.renderHTML(c, status, template, data)
}

func (a *API) renderNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title": "Not found - " + a.siteName,
	})
}

func (a *API) renderError(c *gin.Context, err error) {
	if err != nil {
		c.Error(err)
	}
	a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{
		"title": "Error - " + a.siteName,
	})
}
