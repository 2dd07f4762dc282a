// Package app wires the club engine runtime and storage lifecycle.
package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/bookclub.space/internal/platform/config"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/club"
	"github.com/louisbranch/bookclub.space/internal/services/club/service"
	clubsqlite "github.com/louisbranch/bookclub.space/internal/services/club/storage/sqlite"
)

type appEnv struct {
	DBPath           string `env:"BOOKCLUB_SPACE_DB_PATH"`
	InviteCodeLength int    `env:"BOOKCLUB_SPACE_INVITE_CODE_LENGTH"`
}

func loadAppEnv() appEnv {
	var cfg appEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "club.db")
	}
	if cfg.InviteCodeLength <= 0 {
		cfg.InviteCodeLength = club.InviteCodeLength
	}
	return cfg
}

// App owns the club engine and its storage handle.
type App struct {
	store   *clubsqlite.Store
	service *service.Service
}

// New creates a configured club engine using environment settings.
func New() (*App, error) {
	env := loadAppEnv()
	return NewWithDBPath(env.DBPath, env.InviteCodeLength)
}

// NewWithDBPath creates a configured club engine backed by the given
// SQLite path.
func NewWithDBPath(dbPath string, inviteCodeLength int) (*App, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if inviteCodeLength <= 0 {
		inviteCodeLength = club.InviteCodeLength
	}

	store, err := clubsqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open club store: %w", err)
	}

	return &App{
		store:   store,
		service: service.NewWithInviteCodeLength(store, inviteCodeLength),
	}, nil
}

// Service returns the club engine operations.
func (a *App) Service() *service.Service {
	if a == nil {
		return nil
	}
	return a.service
}

// Close releases the storage handle.
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}
