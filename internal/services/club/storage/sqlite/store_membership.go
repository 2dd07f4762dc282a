package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// AddMembership inserts one membership record.
func (s *Store) AddMembership(ctx context.Context, record storage.MembershipRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	clubID := strings.TrimSpace(record.ClubID)
	userID := strings.TrimSpace(record.UserID)
	if clubID == "" {
		return fmt.Errorf("club id is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	joinedAt := record.JoinedAt.UTC()
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO club_members (club_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?)`,
		clubID,
		userID,
		roleToLabel(record.Role),
		toMillis(joinedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// GetMembership returns one user's membership in a club.
func (s *Store) GetMembership(ctx context.Context, clubID, userID string) (storage.MembershipRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.MembershipRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MembershipRecord{}, fmt.Errorf("storage is not configured")
	}
	clubID = strings.TrimSpace(clubID)
	userID = strings.TrimSpace(userID)
	if clubID == "" || userID == "" {
		return storage.MembershipRecord{}, fmt.Errorf("club id and user id are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT club_id, user_id, role, joined_at
		   FROM club_members
		  WHERE club_id = ? AND user_id = ?`,
		clubID,
		userID,
	)

	var record storage.MembershipRecord
	var role string
	var joinedAt int64
	if err := row.Scan(&record.ClubID, &record.UserID, &role, &joinedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MembershipRecord{}, storage.ErrNotFound
		}
		return storage.MembershipRecord{}, fmt.Errorf("get membership: %w", err)
	}
	record.Role = roleFromLabel(role)
	record.JoinedAt = fromMillis(joinedAt)
	return record, nil
}

// ListMemberships returns all memberships of a club ordered by join time.
func (s *Store) ListMemberships(ctx context.Context, clubID string) ([]storage.MembershipRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return nil, fmt.Errorf("club id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT club_id, user_id, role, joined_at
		   FROM club_members
		  WHERE club_id = ?
		  ORDER BY joined_at ASC, user_id ASC`,
		clubID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// ListUserMemberships returns all memberships held by a user.
func (s *Store) ListUserMemberships(ctx context.Context, userID string) ([]storage.MembershipRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT club_id, user_id, role, joined_at
		   FROM club_members
		  WHERE user_id = ?
		  ORDER BY joined_at ASC, club_id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user memberships: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// CountMembers returns the club's membership size.
func (s *Store) CountMembers(ctx context.Context, clubID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return 0, fmt.Errorf("club id is required")
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM club_members WHERE club_id = ?`,
		clubID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func collectMemberships(rows *sql.Rows) ([]storage.MembershipRecord, error) {
	var memberships []storage.MembershipRecord
	for rows.Next() {
		var record storage.MembershipRecord
		var role string
		var joinedAt int64
		if err := rows.Scan(&record.ClubID, &record.UserID, &role, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		record.Role = roleFromLabel(role)
		record.JoinedAt = fromMillis(joinedAt)
		memberships = append(memberships, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return memberships, nil
}
