package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dropss/internal/config"
	"github.com/dropss/internal/db"
	"github.com/dropss/internal/handler"
	"github.com/dropss/internal/router"
	"github.com/dropss/internal/service"
	"github.com/dropss/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDSN, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL())
	if err != nil {
		log.Fatalf("failed to initialize upload storage: %v", err)
	}

	discord := service.NewDiscordClient(
		cfg.Discord.ClientID,
		cfg.Discord.ClientSecret,
		cfg.Discord.RedirectURL,
		cfg.Discord.APIBaseURL,
	)
	if !discord.Configured() {
		log.Printf("discord credentials missing, connect flow disabled")
	}

	api := handler.NewAPI(gdb, handler.Options{
		Store:            store,
		MaxUploadBytes:   cfg.MaxUploadBytes(),
		Discord:          discord,
		PresenceInterval: cfg.Discord.PresenceInterval,
	})

	if cfg.DemoEmail != "" && cfg.DemoPassword != "" {
		profile, created, err := api.Accounts().EnsureAccount(cfg.DemoEmail, "demo", cfg.DemoPassword)
		if err != nil {
			log.Printf("failed to seed demo account: %v", err)
		} else if created {
			log.Printf("demo account created at /%s", profile.Username)
		}
	}

	// 设置并运行 Gin 服务器
	r, err := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		UploadDir:     store.Root(),
		UploadURLPath: cfg.UploadURLPath,
		SecureCookie:  strings.HasPrefix(cfg.SiteBaseURL, "https://"),
	})
	if err != nil {
		log.Fatalf("failed to set up router: %v", err)
	}

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}

	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	log.Println("server stopped")
}
