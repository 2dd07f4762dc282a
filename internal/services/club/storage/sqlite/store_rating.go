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

// UpsertRating stores a member's rating, replacing any previous record
// for the same book and member.
func (s *Store) UpsertRating(ctx context.Context, record storage.RatingRecord) error {
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
	ratedAt := record.RatedAt.UTC()
	if ratedAt.IsZero() {
		ratedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO ratings (book_id, member_id, storyline, characters, spice, rated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (book_id, member_id) DO UPDATE SET
		   storyline = excluded.storyline,
		   characters = excluded.characters,
		   spice = excluded.spice,
		   rated_at = excluded.rated_at`,
		bookID,
		memberID,
		record.Storyline,
		record.Characters,
		record.Spice,
		toMillis(ratedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// GetRating returns one member's rating of a book.
func (s *Store) GetRating(ctx context.Context, bookID, memberID string) (storage.RatingRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RatingRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RatingRecord{}, fmt.Errorf("storage is not configured")
	}
	bookID = strings.TrimSpace(bookID)
	memberID = strings.TrimSpace(memberID)
	if bookID == "" || memberID == "" {
		return storage.RatingRecord{}, fmt.Errorf("book id and member id are required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT book_id, member_id, storyline, characters, spice, rated_at
		   FROM ratings
		  WHERE book_id = ? AND member_id = ?`,
		bookID,
		memberID,
	)

	var record storage.RatingRecord
	var ratedAt int64
	err := row.Scan(&record.BookID, &record.MemberID, &record.Storyline, &record.Characters, &record.Spice, &ratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RatingRecord{}, storage.ErrNotFound
		}
		return storage.RatingRecord{}, fmt.Errorf("get rating: %w", err)
	}
	record.RatedAt = fromMillis(ratedAt)
	return record, nil
}

// ListRatings returns all ratings of a book.
func (s *Store) ListRatings(ctx context.Context, bookID string) ([]storage.RatingRecord, error) {
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
		`SELECT book_id, member_id, storyline, characters, spice, rated_at
		   FROM ratings
		  WHERE book_id = ?
		  ORDER BY rated_at ASC, member_id ASC`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var records []storage.RatingRecord
	for rows.Next() {
		var record storage.RatingRecord
		var ratedAt int64
		if err := rows.Scan(&record.BookID, &record.MemberID, &record.Storyline, &record.Characters, &record.Spice, &ratedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		record.RatedAt = fromMillis(ratedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return records, nil
}
