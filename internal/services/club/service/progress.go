package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/bookclub.space/internal/services/club/domain/progress"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// UpdateProgressInput describes a reading progress report.
type UpdateProgressInput struct {
	BookID      string
	CurrentPage int
	// TotalPages set to zero keeps the previously recorded page count.
	TotalPages int
}

// UpdateProgress records the caller's reading progress on a club book.
// The caller must be a member of the book's club; the book's lifecycle
// status is not checked.
func (s *Service) UpdateProgress(ctx context.Context, input UpdateProgressInput) (storage.ProgressRecord, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return storage.ProgressRecord{}, err
	}
	bookRecord, err := s.loadBook(ctx, input.BookID)
	if err != nil {
		return storage.ProgressRecord{}, err
	}
	if _, err := s.requireMembership(ctx, bookRecord.ClubID, userID); err != nil {
		return storage.ProgressRecord{}, err
	}

	var existing progress.Progress
	previous, err := s.store.GetProgress(ctx, bookRecord.ID, userID)
	switch {
	case err == nil:
		existing = progress.Progress{
			BookID:      previous.BookID,
			MemberID:    previous.MemberID,
			CurrentPage: previous.CurrentPage,
			TotalPages:  previous.TotalPages,
		}
	case errors.Is(err, storage.ErrNotFound):
		// First report for this member.
	default:
		return storage.ProgressRecord{}, fmt.Errorf("load progress: %w", err)
	}

	updated, err := progress.Update(existing, bookRecord.ID, userID, input.CurrentPage, input.TotalPages, s.clock)
	if err != nil {
		return storage.ProgressRecord{}, err
	}

	record := storage.ProgressRecord{
		BookID:      updated.BookID,
		MemberID:    updated.MemberID,
		CurrentPage: updated.CurrentPage,
		TotalPages:  updated.TotalPages,
		UpdatedAt:   updated.UpdatedAt,
	}
	if err := s.store.UpsertProgress(ctx, record); err != nil {
		return storage.ProgressRecord{}, fmt.Errorf("persist progress: %w", err)
	}
	return record, nil
}
