package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/bookclub.space/internal/services/club/core/filter"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/book"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

const bookColumns = `id, club_id, title, author, summary, cover_url,
		        spice_rating, suggested_by, status, suggested_at,
		        selected_at, completed_at`

// CreateBook inserts one pending book suggestion.
func (s *Store) CreateBook(ctx context.Context, record storage.BookRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	bookID := strings.TrimSpace(record.ID)
	clubID := strings.TrimSpace(record.ClubID)
	title := strings.TrimSpace(record.Title)
	author := strings.TrimSpace(record.Author)
	if bookID == "" {
		return fmt.Errorf("book id is required")
	}
	if clubID == "" {
		return fmt.Errorf("club id is required")
	}
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if author == "" {
		return fmt.Errorf("author is required")
	}
	suggestedAt := record.SuggestedAt.UTC()
	if suggestedAt.IsZero() {
		suggestedAt = time.Now().UTC()
	}
	status := record.Status
	if status == book.StatusUnspecified {
		status = book.StatusPending
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO books (
		   id, club_id, title, author, summary, cover_url,
		   spice_rating, suggested_by, status, suggested_at,
		   selected_at, completed_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bookID,
		clubID,
		title,
		author,
		strings.TrimSpace(record.Summary),
		strings.TrimSpace(record.CoverURL),
		record.SpiceRating,
		strings.TrimSpace(record.SuggestedBy),
		statusToLabel(status),
		toMillis(suggestedAt),
		toNullMillis(record.SelectedAt),
		toNullMillis(record.CompletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// GetBook returns one book by ID.
func (s *Store) GetBook(ctx context.Context, bookID string) (storage.BookRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BookRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BookRecord{}, fmt.Errorf("storage is not configured")
	}
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return storage.BookRecord{}, fmt.Errorf("book id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+bookColumns+`
		   FROM books
		  WHERE id = ?`,
		bookID,
	)
	return scanBook(row.Scan)
}

// ListBooksByStatus returns a club's books in the given status, ordered
// by suggestion time. Completed books come back newest finish first.
func (s *Store) ListBooksByStatus(ctx context.Context, clubID string, status book.Status) ([]storage.BookRecord, error) {
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

	orderBy := `suggested_at ASC, id ASC`
	if status == book.StatusCompleted {
		orderBy = `completed_at DESC, id DESC`
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+bookColumns+`
		   FROM books
		  WHERE club_id = ? AND status = ?
		  ORDER BY `+orderBy,
		clubID,
		statusToLabel(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// GetCurrentBook returns the club's current read.
func (s *Store) GetCurrentBook(ctx context.Context, clubID string) (storage.BookRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BookRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BookRecord{}, fmt.Errorf("storage is not configured")
	}
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return storage.BookRecord{}, fmt.Errorf("club id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+bookColumns+`
		   FROM books
		  WHERE club_id = ? AND status = 'current'`,
		clubID,
	)
	return scanBook(row.Scan)
}

// SelectNextBook completes the current read, if any, and promotes one
// approved book chosen by pick. The whole selection runs in one
// transaction so concurrent selections cannot promote two books.
func (s *Store) SelectNextBook(ctx context.Context, clubID string, pick func(n int) (int, error), now time.Time) (storage.SelectNextResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.SelectNextResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SelectNextResult{}, fmt.Errorf("storage is not configured")
	}
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return storage.SelectNextResult{}, fmt.Errorf("club id is required")
	}
	if pick == nil {
		return storage.SelectNextResult{}, fmt.Errorf("pick function is required")
	}
	now = now.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.SelectNextResult{}, fmt.Errorf("begin select next book: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+bookColumns+`
		   FROM books
		  WHERE club_id = ? AND status = 'approved'
		  ORDER BY suggested_at ASC, id ASC`,
		clubID,
	)
	if err != nil {
		return storage.SelectNextResult{}, fmt.Errorf("list approved books: %w", err)
	}
	approved, err := collectBooks(rows)
	rows.Close()
	if err != nil {
		return storage.SelectNextResult{}, err
	}
	if len(approved) == 0 {
		return storage.SelectNextResult{}, storage.ErrNoApprovedBooks
	}

	index, err := pick(len(approved))
	if err != nil {
		return storage.SelectNextResult{}, fmt.Errorf("pick approved book: %w", err)
	}
	if index < 0 || index >= len(approved) {
		return storage.SelectNextResult{}, fmt.Errorf("picked index %d out of range [0, %d)", index, len(approved))
	}
	chosen := approved[index]

	var result storage.SelectNextResult

	row := tx.QueryRowContext(
		ctx,
		`SELECT `+bookColumns+`
		   FROM books
		  WHERE club_id = ? AND status = 'current'`,
		clubID,
	)
	current, err := scanBook(row.Scan)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE books
			    SET status = 'completed', completed_at = ?
			  WHERE id = ? AND status = 'current'`,
			toMillis(now),
			current.ID,
		); err != nil {
			return storage.SelectNextResult{}, fmt.Errorf("complete current book: %w", err)
		}
		current.Status = book.StatusCompleted
		completedAt := now
		current.CompletedAt = &completedAt
		result.Completed = &current
	case errors.Is(err, storage.ErrNotFound):
		// First selection for this club.
	default:
		return storage.SelectNextResult{}, err
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE books
		    SET status = 'current', selected_at = ?
		  WHERE id = ? AND status = 'approved'`,
		toMillis(now),
		chosen.ID,
	)
	if err != nil {
		return storage.SelectNextResult{}, fmt.Errorf("promote book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.SelectNextResult{}, fmt.Errorf("promote book: %w", err)
	}
	if affected == 0 {
		return storage.SelectNextResult{}, storage.ErrNoApprovedBooks
	}

	if err := tx.Commit(); err != nil {
		return storage.SelectNextResult{}, fmt.Errorf("commit select next book: %w", err)
	}

	chosen.Status = book.StatusCurrent
	selectedAt := now
	chosen.SelectedAt = &selectedAt
	result.Selected = chosen
	return result, nil
}

// ListBooksPage returns a paginated, filtered list of a club's books.
func (s *Store) ListBooksPage(ctx context.Context, req storage.ListBooksPageRequest) (storage.ListBooksPageResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListBooksPageResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ListBooksPageResult{}, fmt.Errorf("storage is not configured")
	}
	clubID := strings.TrimSpace(req.ClubID)
	if clubID == "" {
		return storage.ListBooksPageResult{}, fmt.Errorf("club id is required")
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	pageToken := strings.TrimSpace(req.PageToken)

	condition, err := filter.ParseBookFilter(req.Filter)
	if err != nil {
		return storage.ListBooksPageResult{}, fmt.Errorf("parse book filter: %w", err)
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE club_id = ?`
	params := []any{clubID}
	if condition.Clause != "" {
		query += ` AND ` + condition.Clause
		params = append(params, condition.Params...)
	}
	if pageToken != "" {
		query += ` AND id > ?`
		params = append(params, pageToken)
	}
	query += ` ORDER BY id ASC LIMIT ?`
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.ListBooksPageResult{}, fmt.Errorf("list books page: %w", err)
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	if err != nil {
		return storage.ListBooksPageResult{}, err
	}

	result := storage.ListBooksPageResult{Books: books}
	if len(result.Books) > pageSize {
		result.NextPageToken = result.Books[pageSize-1].ID
		result.Books = result.Books[:pageSize]
	}
	return result, nil
}

func scanBook(scan func(dest ...any) error) (storage.BookRecord, error) {
	var record storage.BookRecord
	var status string
	var suggestedAt int64
	var selectedAt sql.NullInt64
	var completedAt sql.NullInt64
	err := scan(
		&record.ID,
		&record.ClubID,
		&record.Title,
		&record.Author,
		&record.Summary,
		&record.CoverURL,
		&record.SpiceRating,
		&record.SuggestedBy,
		&status,
		&suggestedAt,
		&selectedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BookRecord{}, storage.ErrNotFound
		}
		return storage.BookRecord{}, fmt.Errorf("scan book: %w", err)
	}
	record.Status = statusFromLabel(status)
	record.SuggestedAt = fromMillis(suggestedAt)
	record.SelectedAt = fromNullMillis(selectedAt)
	record.CompletedAt = fromNullMillis(completedAt)
	return record, nil
}

func collectBooks(rows *sql.Rows) ([]storage.BookRecord, error) {
	var books []storage.BookRecord
	for rows.Next() {
		record, err := scanBook(rows.Scan)
		if err != nil {
			return nil, err
		}
		books = append(books, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func statusToLabel(status book.Status) string {
	return strings.ToLower(status.Label())
}

func statusFromLabel(value string) book.Status {
	status, err := book.StatusFromLabel(value)
	if err != nil {
		return book.StatusUnspecified
	}
	return status
}
