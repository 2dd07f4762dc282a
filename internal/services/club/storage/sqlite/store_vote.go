package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/bookclub.space/internal/services/club/domain/book"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/vote"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// CastVote upserts a member's vote and evaluates consensus in one
// transaction. The status change is guarded on the book still being
// pending, so concurrent votes cannot resolve the same book twice.
func (s *Store) CastVote(ctx context.Context, record storage.VoteRecord, memberCount int) (storage.CastVoteResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.CastVoteResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CastVoteResult{}, fmt.Errorf("storage is not configured")
	}
	bookID := strings.TrimSpace(record.BookID)
	memberID := strings.TrimSpace(record.MemberID)
	if bookID == "" {
		return storage.CastVoteResult{}, fmt.Errorf("book id is required")
	}
	if memberID == "" {
		return storage.CastVoteResult{}, fmt.Errorf("member id is required")
	}
	if memberCount < 0 {
		return storage.CastVoteResult{}, fmt.Errorf("member count cannot be negative")
	}
	castAt := record.CastAt.UTC()
	if castAt.IsZero() {
		castAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.CastVoteResult{}, fmt.Errorf("begin cast vote: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	row := tx.QueryRowContext(ctx, `SELECT status FROM books WHERE id = ?`, bookID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CastVoteResult{}, storage.ErrNotFound
		}
		return storage.CastVoteResult{}, fmt.Errorf("load book status: %w", err)
	}
	if status != "pending" {
		return storage.CastVoteResult{}, storage.ErrBookNotPending
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO votes (book_id, member_id, decision, reason, cast_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (book_id, member_id) DO UPDATE SET
		   decision = excluded.decision,
		   reason = excluded.reason,
		   cast_at = excluded.cast_at`,
		bookID,
		memberID,
		decisionToLabel(record.Decision),
		reasonToLabel(record.Reason),
		toMillis(castAt),
	)
	if err != nil {
		return storage.CastVoteResult{}, fmt.Errorf("upsert vote: %w", err)
	}

	var voteCount, vetoCount int
	row = tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN decision = 'veto' THEN 1 ELSE 0 END), 0)
		   FROM votes
		  WHERE book_id = ?`,
		bookID,
	)
	if err := row.Scan(&voteCount, &vetoCount); err != nil {
		return storage.CastVoteResult{}, fmt.Errorf("tally votes: %w", err)
	}

	tally := book.Consensus{
		MemberCount: memberCount,
		VoteCount:   voteCount,
		VetoCount:   vetoCount,
	}
	result := storage.CastVoteResult{Status: book.StatusPending, Tally: tally}

	if target, resolved := tally.Evaluate(); resolved {
		res, err := tx.ExecContext(
			ctx,
			`UPDATE books SET status = ? WHERE id = ? AND status = 'pending'`,
			statusToLabel(target),
			bookID,
		)
		if err != nil {
			return storage.CastVoteResult{}, fmt.Errorf("resolve book status: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return storage.CastVoteResult{}, fmt.Errorf("resolve book status: %w", err)
		}
		if affected == 0 {
			return storage.CastVoteResult{}, storage.ErrBookNotPending
		}
		result.Status = target
		result.Resolved = true
	}

	if err := tx.Commit(); err != nil {
		return storage.CastVoteResult{}, fmt.Errorf("commit cast vote: %w", err)
	}
	return result, nil
}

// ListVotes returns all votes on a book ordered by cast time.
func (s *Store) ListVotes(ctx context.Context, bookID string) ([]storage.VoteRecord, error) {
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
		`SELECT book_id, member_id, decision, reason, cast_at
		   FROM votes
		  WHERE book_id = ?
		  ORDER BY cast_at ASC, member_id ASC`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []storage.VoteRecord
	for rows.Next() {
		var record storage.VoteRecord
		var decision, reason string
		var castAt int64
		if err := rows.Scan(&record.BookID, &record.MemberID, &decision, &reason, &castAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		record.Decision = decisionFromLabel(decision)
		record.Reason = reasonFromLabel(reason)
		record.CastAt = fromMillis(castAt)
		votes = append(votes, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	return votes, nil
}

func decisionToLabel(decision vote.Decision) string {
	return strings.ToLower(decision.Label())
}

func decisionFromLabel(value string) vote.Decision {
	decision, err := vote.DecisionFromLabel(value)
	if err != nil {
		return vote.DecisionUnspecified
	}
	return decision
}

func reasonToLabel(reason vote.VetoReason) string {
	return strings.ToLower(reason.Label())
}

func reasonFromLabel(value string) vote.VetoReason {
	reason, err := vote.VetoReasonFromLabel(value)
	if err != nil {
		return vote.VetoReasonUnspecified
	}
	return reason
}
