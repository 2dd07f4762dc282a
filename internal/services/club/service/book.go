package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
	"github.com/louisbranch/bookclub.space/internal/platform/telemetry"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/book"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/rating"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/vote"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// SuggestBookInput describes a book suggestion request.
type SuggestBookInput struct {
	ClubID      string
	Title       string
	Author      string
	Summary     string
	CoverURL    string
	SpiceRating int
}

// PendingBook pairs a pending suggestion with its votes so far.
type PendingBook struct {
	Book  storage.BookRecord
	Votes []storage.VoteRecord
	// CallerVote is the caller's own vote, nil when they have not voted.
	CallerVote *storage.VoteRecord
}

// CompletedBook pairs a finished book with its rating aggregates.
// Ratings.Count carries the number of submitted reviews.
type CompletedBook struct {
	Book    storage.BookRecord
	Ratings rating.Averages
}

// Bookshelf groups a club's books by lifecycle state.
type Bookshelf struct {
	// Current is nil when the club has no current read.
	Current   *CurrentRead
	Approved  []storage.BookRecord
	Completed []CompletedBook
	Rejected  []storage.BookRecord
}

// SuggestBook adds a pending book suggestion to the club. The caller
// must be a member.
func (s *Service) SuggestBook(ctx context.Context, input SuggestBookInput) (storage.BookRecord, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return storage.BookRecord{}, err
	}
	clubRecord, err := s.loadClub(ctx, input.ClubID)
	if err != nil {
		return storage.BookRecord{}, err
	}
	if _, err := s.requireMembership(ctx, clubRecord.ID, userID); err != nil {
		return storage.BookRecord{}, err
	}

	suggested, err := book.Suggest(book.SuggestInput{
		ClubID:      clubRecord.ID,
		Title:       input.Title,
		Author:      input.Author,
		Summary:     input.Summary,
		CoverURL:    input.CoverURL,
		SpiceRating: input.SpiceRating,
		SuggestedBy: userID,
	}, s.clock, s.idGenerator)
	if err != nil {
		return storage.BookRecord{}, err
	}

	record := storage.BookRecord{
		ID:          suggested.ID,
		ClubID:      suggested.ClubID,
		Title:       suggested.Title,
		Author:      suggested.Author,
		Summary:     suggested.Summary,
		CoverURL:    suggested.CoverURL,
		SpiceRating: suggested.SpiceRating,
		SuggestedBy: suggested.SuggestedBy,
		Status:      suggested.Status,
		SuggestedAt: suggested.SuggestedAt,
	}
	if err := s.store.CreateBook(ctx, record); err != nil {
		return storage.BookRecord{}, fmt.Errorf("persist book: %w", err)
	}

	s.emit(ctx, storage.TelemetryEvent{
		EventName: "book.suggested",
		Severity:  string(telemetry.SeverityInfo),
		ClubID:    record.ClubID,
		BookID:    record.ID,
		ActorID:   userID,
	})
	return record, nil
}

// GetPendingBooks returns the club's pending suggestions with their
// votes. Non-members receive an empty list instead of an error.
func (s *Service) GetPendingBooks(ctx context.Context, clubID string) ([]PendingBook, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}
	clubRecord, err := s.loadClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	member, err := s.isMember(ctx, clubRecord.ID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return []PendingBook{}, nil
	}

	books, err := s.store.ListBooksByStatus(ctx, clubRecord.ID, book.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending books: %w", err)
	}

	pending := make([]PendingBook, 0, len(books))
	for _, record := range books {
		votes, err := s.store.ListVotes(ctx, record.ID)
		if err != nil {
			return nil, fmt.Errorf("list votes: %w", err)
		}
		entry := PendingBook{Book: record, Votes: votes}
		for i := range votes {
			if votes[i].MemberID == userID {
				entry.CallerVote = &votes[i]
				break
			}
		}
		pending = append(pending, entry)
	}
	return pending, nil
}

// GetBookshelf returns the club's books grouped by lifecycle state:
// the current read with member progress, the approved to-be-read pile,
// completed books newest first with their rating averages, and
// rejected suggestions. Non-members receive an empty shelf instead of
// an error.
func (s *Service) GetBookshelf(ctx context.Context, clubID string) (Bookshelf, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return Bookshelf{}, err
	}
	clubRecord, err := s.loadClub(ctx, clubID)
	if err != nil {
		return Bookshelf{}, err
	}
	member, err := s.isMember(ctx, clubRecord.ID, userID)
	if err != nil {
		return Bookshelf{}, err
	}
	if !member {
		return Bookshelf{}, nil
	}

	var shelf Bookshelf
	current, err := s.store.GetCurrentBook(ctx, clubRecord.ID)
	switch {
	case err == nil:
		read, err := s.currentRead(ctx, current, userID)
		if err != nil {
			return Bookshelf{}, err
		}
		shelf.Current = read
	case errors.Is(err, storage.ErrNotFound):
	default:
		return Bookshelf{}, fmt.Errorf("load current book: %w", err)
	}

	if shelf.Approved, err = s.store.ListBooksByStatus(ctx, clubRecord.ID, book.StatusApproved); err != nil {
		return Bookshelf{}, fmt.Errorf("list approved books: %w", err)
	}

	completed, err := s.store.ListBooksByStatus(ctx, clubRecord.ID, book.StatusCompleted)
	if err != nil {
		return Bookshelf{}, fmt.Errorf("list completed books: %w", err)
	}
	shelf.Completed = make([]CompletedBook, 0, len(completed))
	for _, record := range completed {
		reviews, err := s.store.ListRatings(ctx, record.ID)
		if err != nil {
			return Bookshelf{}, fmt.Errorf("list ratings: %w", err)
		}
		shelf.Completed = append(shelf.Completed, CompletedBook{
			Book:    record,
			Ratings: ratingAverages(reviews),
		})
	}

	if shelf.Rejected, err = s.store.ListBooksByStatus(ctx, clubRecord.ID, book.StatusRejected); err != nil {
		return Bookshelf{}, fmt.Errorf("list rejected books: %w", err)
	}
	return shelf, nil
}

// ListBooksPage returns a filtered, paginated view of the club's books.
// The caller must be a member.
func (s *Service) ListBooksPage(ctx context.Context, req storage.ListBooksPageRequest) (storage.ListBooksPageResult, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return storage.ListBooksPageResult{}, err
	}
	clubRecord, err := s.loadClub(ctx, req.ClubID)
	if err != nil {
		return storage.ListBooksPageResult{}, err
	}
	if _, err := s.requireMembership(ctx, clubRecord.ID, userID); err != nil {
		return storage.ListBooksPageResult{}, err
	}

	req.ClubID = clubRecord.ID
	result, err := s.store.ListBooksPage(ctx, req)
	if err != nil {
		return storage.ListBooksPageResult{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "list books page", err)
	}
	return result, nil
}

// SelectNextBook completes the current read and promotes one approved
// book chosen uniformly at random. Only the club admin may select.
func (s *Service) SelectNextBook(ctx context.Context, clubID string) (storage.SelectNextResult, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return storage.SelectNextResult{}, err
	}
	clubRecord, err := s.loadClub(ctx, clubID)
	if err != nil {
		return storage.SelectNextResult{}, err
	}
	if _, err := s.requireMembership(ctx, clubRecord.ID, userID); err != nil {
		return storage.SelectNextResult{}, err
	}
	if clubRecord.AdminID != userID {
		return storage.SelectNextResult{}, apperrors.New(apperrors.CodeClubAdminOnly, "only the club admin can select the next book")
	}

	result, err := s.store.SelectNextBook(ctx, clubRecord.ID, s.pick, s.clock().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNoApprovedBooks) {
			return storage.SelectNextResult{}, apperrors.New(apperrors.CodeBookNoApprovedBooks, "no approved books available for selection")
		}
		return storage.SelectNextResult{}, fmt.Errorf("select next book: %w", err)
	}

	evt := storage.TelemetryEvent{
		EventName: "book.selected",
		Severity:  string(telemetry.SeverityInfo),
		ClubID:    clubRecord.ID,
		BookID:    result.Selected.ID,
		ActorID:   userID,
	}
	if result.Completed != nil {
		evt.Attributes = map[string]any{"completed_book_id": result.Completed.ID}
	}
	s.emit(ctx, evt)
	return result, nil
}

// voteDecisionAttributes builds telemetry attributes for a vote.
func voteDecisionAttributes(decision vote.Decision, reason vote.VetoReason, resolved bool, status book.Status) map[string]any {
	attrs := map[string]any{
		"decision": decision.Label(),
	}
	if reason != vote.VetoReasonUnspecified {
		attrs["reason"] = reason.Label()
	}
	if resolved {
		attrs["resolved_status"] = status.Label()
	}
	return attrs
}
