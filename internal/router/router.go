package router

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dropss/internal/handler"
	"github.com/dropss/internal/view"
	"github.com/dropss/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "dropss_session"

// Options 描述路由层需要的外部配置
type Options struct {
	SessionSecret string
	UploadDir     string
	UploadURLPath string
	SecureCookie  bool
}

// TemplateFuncs 返回页面模板可用的辅助函数
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"platformIcon": func(platform string) template.HTML {
			return template.HTML(view.PlatformIconSVG(platform))
		},
		"deref": func(value *string) string {
			if value == nil {
				return ""
			}
			return *value
		},
	}
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	tmpl, err := web.Templates(TemplateFuncs())
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.StaticFS("/static", http.FS(web.Static()))
	if opts.UploadDir != "" {
		uploadPath := "/" + strings.Trim(opts.UploadURLPath, "/")
		if uploadPath == "/" {
			uploadPath = "/uploads"
		}
		r.Static(uploadPath, opts.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/", api.ShowHome)

	auth := r.Group("/auth")
	{
		auth.GET("/login", api.ShowLoginPage)
		auth.POST("/login", api.Login)
		auth.GET("/sign-up", api.ShowSignUpPage)
		auth.POST("/sign-up", api.SignUp)
		auth.GET("/logout", api.Logout)
	}

	r.GET("/dashboard", handler.AuthRequired(), api.ShowDashboard)

	apiGroup := r.Group("/api")
	{
		// OAuth 回调与公开 presence 不要求 API 会话
		apiGroup.GET("/discord/callback", api.DiscordCallback)
		apiGroup.GET("/discord/presence", api.DiscordPresence)
		apiGroup.GET("/discord/presence/stream", api.DiscordPresenceStream)
		apiGroup.GET("/discord/connect", handler.AuthRequired(), api.ConnectDiscord)

		authed := apiGroup.Group("")
		authed.Use(handler.APIAuthRequired())
		{
			authed.PUT("/profile", api.UpdateProfile)
			authed.PUT("/theme", api.SaveTheme)

			authed.GET("/links", api.ListLinks)
			authed.POST("/links", api.CreateLink)
			authed.DELETE("/links/:id", api.DeleteLink)
			authed.PATCH("/links/:id", api.UpdateLinkVisibility)

			authed.POST("/upload", api.UploadMedia)
			authed.DELETE("/delete", api.DeleteMedia)

			authed.POST("/discord/disconnect", api.DisconnectDiscord)
		}
	}

	r.GET("/:username", api.ShowProfile)

	return r, nil
}
