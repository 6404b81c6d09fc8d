package main

import (
	"fmt"
	"time"

	"github.com/dropss/internal/db"
	"github.com/dropss/internal/service"
	"gorm.io/gorm"
)

var demoLinks = []service.LinkInput{
	{Platform: "GitHub", URL: "https://github.com/dropss"},
	{Platform: "Twitter", URL: "https://twitter.com/dropss"},
	{Platform: "YouTube", URL: "https://youtube.com/@dropss"},
	{Platform: "Twitch", URL: "https://twitch.tv/dropss"},
	{Platform: "Website", URL: "https://dropss.example.com"},
}

// seedDemoData 为账号生成资料、链接、主题与两周的访问记录，已有链接时跳过链接部分
func seedDemoData(gdb *gorm.DB, userID string) error {
	profiles := service.NewProfileService(gdb)
	if _, err := profiles.UpdateProfile(userID, service.ProfileInput{
		DisplayName: "Demo",
		Bio:         "Hi! This page was **seeded** by `init_user -demo-data`.",
		Location:    "The Internet",
	}); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	links := service.NewLinkService(gdb)
	existing, err := links.ListLinks(userID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, input := range demoLinks {
			if _, err := links.AddLink(userID, input); err != nil {
				return fmt.Errorf("add link %s: %w", input.Platform, err)
			}
		}
	}

	theme := service.DefaultThemeInput()
	theme.BackgroundColor = "#0f0f0f"
	theme.TextColor = "#ffffff"
	theme.AccentColor = "#8b5cf6"
	theme.NameEffect = "gradient"
	theme.RichPresence = "Building something new"
	if _, err := service.NewThemeService(gdb).SaveTheme(userID, theme); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}

	return seedViews(gdb, userID, time.Now(), 14)
}

// seedViews 按天递增写入访问记录，让仪表盘趋势图有数据
func seedViews(gdb *gorm.DB, userID string, now time.Time, days int) error {
	views := make([]db.ProfileView, 0, days*(days+1)/2)
	for day := 0; day < days; day++ {
		stamp := now.AddDate(0, 0, -day).Add(-time.Hour)
		for i := 0; i < days-day; i++ {
			views = append(views, db.ProfileView{ProfileID: userID, CreatedAt: stamp})
		}
	}
	if len(views) == 0 {
		return nil
	}
	return gdb.CreateInBatches(views, 100).Error
}
