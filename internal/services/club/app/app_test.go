package app

import (
	"path/filepath"
	"testing"

	"github.com/louisbranch/bookclub.space/internal/platform/requestctx"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/club"
	"github.com/louisbranch/bookclub.space/internal/services/club/service"
)

func TestLoadAppEnvDefaults(t *testing.T) {
	t.Setenv("BOOKCLUB_SPACE_DB_PATH", "")
	t.Setenv("BOOKCLUB_SPACE_INVITE_CODE_LENGTH", "")

	env := loadAppEnv()
	if env.DBPath != filepath.Join("data", "club.db") {
		t.Errorf("DBPath = %q, want default", env.DBPath)
	}
	if env.InviteCodeLength != club.InviteCodeLength {
		t.Errorf("InviteCodeLength = %d, want %d", env.InviteCodeLength, club.InviteCodeLength)
	}
}

func TestLoadAppEnvOverrides(t *testing.T) {
	t.Setenv("BOOKCLUB_SPACE_DB_PATH", "/tmp/other.db")
	t.Setenv("BOOKCLUB_SPACE_INVITE_CODE_LENGTH", "8")

	env := loadAppEnv()
	if env.DBPath != "/tmp/other.db" {
		t.Errorf("DBPath = %q", env.DBPath)
	}
	if env.InviteCodeLength != 8 {
		t.Errorf("InviteCodeLength = %d, want 8", env.InviteCodeLength)
	}
}

func TestNewWithDBPath(t *testing.T) {
	application, err := NewWithDBPath(filepath.Join(t.TempDir(), "club.db"), 8)
	if err != nil {
		t.Fatalf("NewWithDBPath() error = %v", err)
	}
	defer func() { _ = application.Close() }()

	ctx := requestctx.WithUserID(t.Context(), "user-1")
	created, err := application.Service().CreateClub(ctx, service.CreateClubInput{Name: "Readers"})
	if err != nil {
		t.Fatalf("CreateClub() error = %v", err)
	}
	if len(created.InviteCode) != 8 {
		t.Errorf("invite code length = %d, want 8", len(created.InviteCode))
	}
}

func TestNewWithDBPathRequiresPath(t *testing.T) {
	if _, err := NewWithDBPath("", 6); err == nil {
		t.Fatal("expected error for empty db path")
	}
}
