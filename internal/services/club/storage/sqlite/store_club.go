package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/bookclub.space/internal/services/club/domain/club"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// CreateClub inserts a club together with its founding membership.
func (s *Store) CreateClub(ctx context.Context, record storage.ClubRecord, founder storage.MembershipRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	clubID := strings.TrimSpace(record.ID)
	name := strings.TrimSpace(record.Name)
	adminID := strings.TrimSpace(record.AdminID)
	inviteCode := strings.TrimSpace(record.InviteCode)
	if clubID == "" {
		return fmt.Errorf("club id is required")
	}
	if name == "" {
		return fmt.Errorf("club name is required")
	}
	if adminID == "" {
		return fmt.Errorf("admin id is required")
	}
	if inviteCode == "" {
		return fmt.Errorf("invite code is required")
	}
	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	joinedAt := founder.JoinedAt.UTC()
	if joinedAt.IsZero() {
		joinedAt = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create club: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO clubs (id, name, description, admin_id, invite_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		clubID,
		name,
		strings.TrimSpace(record.Description),
		adminID,
		inviteCode,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create club: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO club_members (club_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?)`,
		clubID,
		adminID,
		roleToLabel(founder.Role),
		toMillis(joinedAt),
	)
	if err != nil {
		return fmt.Errorf("create founding membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create club: %w", err)
	}
	return nil
}

// GetClub returns one club by ID.
func (s *Store) GetClub(ctx context.Context, clubID string) (storage.ClubRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ClubRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ClubRecord{}, fmt.Errorf("storage is not configured")
	}
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return storage.ClubRecord{}, fmt.Errorf("club id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, description, admin_id, invite_code, created_at
		   FROM clubs
		  WHERE id = ?`,
		clubID,
	)
	return scanClub(row)
}

// GetClubByInviteCode returns one club by its invite code.
func (s *Store) GetClubByInviteCode(ctx context.Context, inviteCode string) (storage.ClubRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ClubRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ClubRecord{}, fmt.Errorf("storage is not configured")
	}
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return storage.ClubRecord{}, fmt.Errorf("invite code is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, description, admin_id, invite_code, created_at
		   FROM clubs
		  WHERE invite_code = ?`,
		inviteCode,
	)
	return scanClub(row)
}

func scanClub(row *sql.Row) (storage.ClubRecord, error) {
	var record storage.ClubRecord
	var createdAt int64
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Description,
		&record.AdminID,
		&record.InviteCode,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ClubRecord{}, storage.ErrNotFound
		}
		return storage.ClubRecord{}, fmt.Errorf("get club: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func roleToLabel(role club.Role) string {
	return strings.ToLower(role.Label())
}

func roleFromLabel(value string) club.Role {
	role, err := club.RoleFromLabel(value)
	if err != nil {
		return club.RoleUnspecified
	}
	return role
}
