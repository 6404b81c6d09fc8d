package db

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestIsPostgresDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{dsn: "postgres://u:p@localhost:5432/dropss?sslmode=disable", want: true},
		{dsn: "postgresql://localhost/dropss", want: true},
		{dsn: "host=localhost user=u dbname=dropss", want: true},
		{dsn: "'postgres://quoted/db'", want: true},
		{dsn: "data/dropss.db", want: false},
		{dsn: "file::memory:?cache=shared", want: false},
		{dsn: "", want: false},
	}

	for _, tt := range tests {
		if got := IsPostgresDSN(tt.dsn); got != tt.want {
			t.Fatalf("IsPostgresDSN(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}

func TestOpenCreatesSqliteParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dropss.db")

	gdb, err := Open(path, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, table := range []string{"users", "profiles", "links", "themes", "profile_views", "stored_objects"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to be migrated", table)
		}
	}
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	gdb, err := Open("file:db-ids?mode=memory&cache=shared", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	user := User{Email: "a@example.com", Password: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user id to be generated")
	}

	link := Link{UserID: user.ID, Platform: "GitHub", URL: "https://github.com/a"}
	if err := gdb.Create(&link).Error; err != nil {
		t.Fatalf("create link: %v", err)
	}
	if link.ID == "" || link.ID == user.ID {
		t.Fatalf("expected a fresh link id, got %q", link.ID)
	}
}
