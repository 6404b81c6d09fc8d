package db

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultDatabasePath = "dropss.db"

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// Open connects to the configured database and runs the schema migration.
// A postgres URL or key=value DSN selects the postgres driver; anything else
// is treated as a sqlite file path. An empty DSN falls back to dropss.db.
func Open(dsn string, config *gorm.Config) (*gorm.DB, error) {
	if config == nil {
		config = &gorm.Config{}
	}

	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates or updates the tables backing the profile site.
func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}
	return gdb.AutoMigrate(
		&User{},
		&Profile{},
		&Link{},
		&Theme{},
		&ProfileView{},
		&StoredObject{},
	)
}

// IsPostgresDSN reports whether the DSN targets postgres rather than sqlite.
func IsPostgresDSN(dsn string) bool {
	s := strings.Trim(strings.TrimSpace(dsn), "\"'")
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return true
	}
	return kvPairRegex.MatchString(s)
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	trimmed := strings.Trim(strings.TrimSpace(dsn), "\"'")
	if IsPostgresDSN(trimmed) {
		return postgres.Open(trimmed), nil
	}

	path := trimmed
	if path == "" {
		path = defaultDatabasePath
	}
	if !strings.HasPrefix(path, "file:") {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
	}
	return sqlite.Open(path), nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
