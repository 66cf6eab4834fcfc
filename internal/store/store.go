// Package store is the shared record store behind both front ends. It is
// backed by GORM over the pure-Go SQLite driver; every write is a single
// statement so concurrent access from the bot and the web server cannot
// lose updates.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for errors.Is checks across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrInviteUsed is returned when an invite code has already been redeemed.
var ErrInviteUsed = errors.New("invite already used")

// Open opens (or creates) the SQLite database and applies PRAGMAs.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates the five tables if absent. No further migration logic.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Recipe{},
		&Comment{},
		&ChatMessage{},
		&Invite{},
	)
}

// Store wraps the database handle with the operations both front ends share.
// Safe for concurrent use; SQLite serializes conflicting writes.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
