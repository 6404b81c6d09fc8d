package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dropss/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func createTestAccount(t *testing.T, gdb *gorm.DB, email, username string) *db.Profile {
	t.Helper()

	_, profile, err := NewAccountService(gdb).WithHashCost(bcrypt.MinCost).SignUp(SignUpInput{
		Email:          email,
		Username:       username,
		Password:       "secret123",
		RepeatPassword: "secret123",
	})
	if err != nil {
		t.Fatalf("failed to create account %s: %v", username, err)
	}
	return profile
}
