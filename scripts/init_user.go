package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dropss/internal/config"
	"github.com/dropss/internal/db"
	"github.com/dropss/internal/service"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	email := flag.String("email", "demo@dropss.local", "account email")
	username := flag.String("username", "demo", "profile username")
	password := flag.String("password", "demo123", "account password")
	withData := flag.Bool("demo-data", false, "seed links, theme and views for the account")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("读取 .env 失败: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDSN, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	accounts := service.NewAccountService(gdb)
	profile, created, err := accounts.EnsureAccount(*email, *username, *password)
	if err != nil {
		log.Fatal("创建用户失败:", err)
	}
	if !created {
		fmt.Printf("用户已存在: /%s\n", profile.Username)
	} else {
		fmt.Println("用户创建成功")
		fmt.Println("邮箱:", *email)
		fmt.Println("密码:", *password)
	}

	if *withData {
		if err := seedDemoData(gdb, profile.ID); err != nil {
			log.Fatal("生成演示数据失败:", err)
		}
		fmt.Println("✅ 演示数据生成完成")
	}
	fmt.Printf("主页: %s/%s\n", cfg.SiteBaseURL, profile.Username)
}
