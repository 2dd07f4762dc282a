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

// UpsertProgress stores a member's progress, replacing any previous
// record for the same book and member.
func (s *Store) UpsertProgress(ctx context.Context, record storage.ProgressRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	bookID := strings.TrimSpace(record.BookID)
	memberID := strings.TrimSpace(record.MemberID)
	if bookID == "" {
		return fmt.Errorf("book id is required")
	}
	if memberID == "" {
		return fmt.Errorf("member id is required")
	}
	if record.CurrentPage < 0 || record.TotalPages < 0 {
		return fmt.Errorf("page counts cannot be negative")
	}
	updatedAt := record.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO progress (book_id, member_id, current_page, total_pages, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (book_id, member_id) DO UPDATE SET
		   current_page = excluded.current_page,
		   total_pages = excluded.total_pages,
		   updated_at = excluded.updated_at`,
		bookID,
		memberID,
		record.CurrentPage,
		record.TotalPages,
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// GetProgress returns one member's progress on a book.
func (s *Store) GetProgress(ctx context.Context, bookID, memberID string) (storage.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ProgressRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ProgressRecord{}, fmt.Errorf("storage is not configured")
	}
	bookID = strings.TrimSpace(bookID)
	memberID = strings.TrimSpace(memberID)
	if bookID == "" || memberID == "" {
		return storage.ProgressRecord{}, fmt.Errorf("book id and member id are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT book_id, member_id, current_page, total_pages, updated_at
		   FROM progress
		  WHERE book_id = ? AND member_id = ?`,
		bookID,
		memberID,
	)

	var record storage.ProgressRecord
	var updatedAt int64
	err := row.Scan(&record.BookID, &record.MemberID, &record.CurrentPage, &record.TotalPages, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ProgressRecord{}, storage.ErrNotFound
		}
		return storage.ProgressRecord{}, fmt.Errorf("get progress: %w", err)
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// ListProgress returns all members' progress on a book.
func (s *Store) ListProgress(ctx context.Context, bookID string) ([]storage.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, fmt.Errorf("book id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT book_id, member_id, current_page, total_pages, updated_at
		   FROM progress
		  WHERE book_id = ?
		  ORDER BY member_id ASC`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var records []storage.ProgressRecord
	for rows.Next() {
		var record storage.ProgressRecord
		var updatedAt int64
		if err := rows.Scan(&record.BookID, &record.MemberID, &record.CurrentPage, &record.TotalPages, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return records, nil
}
