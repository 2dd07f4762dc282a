package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
	"github.com/louisbranch/bookclub.space/internal/platform/telemetry"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/book"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/vote"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// CastVoteInput describes a vote on a pending book.
type CastVoteInput struct {
	BookID   string
	Decision vote.Decision
	Reason   vote.VetoReason
}

// VoteOutcome reports the vote and any consensus it triggered.
type VoteOutcome struct {
	// Status is the book's status after the vote.
	Status book.Status
	// Resolved reports whether this vote moved the book out of pending.
	Resolved bool
	// Tally is the vote count consensus evaluation saw.
	Tally book.Consensus
}

// CastVote records the caller's vote on a pending book and evaluates
// consensus. A veto rejects the book immediately; unanimous approval
// across all members approves it. The caller must be a member of the
// book's club, and recasting replaces the caller's previous vote.
func (s *Service) CastVote(ctx context.Context, input CastVoteInput) (VoteOutcome, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return VoteOutcome{}, err
	}
	bookRecord, err := s.loadBook(ctx, input.BookID)
	if err != nil {
		return VoteOutcome{}, err
	}
	if _, err := s.requireMembership(ctx, bookRecord.ClubID, userID); err != nil {
		return VoteOutcome{}, err
	}
	if bookRecord.Status != book.StatusPending {
		return VoteOutcome{}, apperrors.WithMetadata(
			apperrors.CodeBookStatusDisallowsOp,
			"votes are only accepted on pending books",
			map[string]string{"Status": bookRecord.Status.Label()},
		)
	}

	cast, err := vote.Cast(bookRecord.ID, userID, input.Decision, input.Reason, s.clock)
	if err != nil {
		return VoteOutcome{}, err
	}

	memberCount, err := s.store.CountMembers(ctx, bookRecord.ClubID)
	if err != nil {
		return VoteOutcome{}, fmt.Errorf("count members: %w", err)
	}

	result, err := s.store.CastVote(ctx, storage.VoteRecord{
		BookID:   cast.BookID,
		MemberID: cast.MemberID,
		Decision: cast.Decision,
		Reason:   cast.Reason,
		CastAt:   cast.CastAt,
	}, memberCount)
	if err != nil {
		if errors.Is(err, storage.ErrBookNotPending) {
			return VoteOutcome{}, apperrors.New(apperrors.CodeBookStatusDisallowsOp, "votes are only accepted on pending books")
		}
		if errors.Is(err, storage.ErrNotFound) {
			return VoteOutcome{}, apperrors.WithMetadata(apperrors.CodeNotFound, "book not found", map[string]string{"BookID": input.BookID})
		}
		return VoteOutcome{}, fmt.Errorf("cast vote: %w", err)
	}

	s.emit(ctx, storage.TelemetryEvent{
		EventName:  "vote.cast",
		Severity:   string(telemetry.SeverityInfo),
		ClubID:     bookRecord.ClubID,
		BookID:     bookRecord.ID,
		ActorID:    userID,
		Attributes: voteDecisionAttributes(cast.Decision, cast.Reason, result.Resolved, result.Status),
	})

	return VoteOutcome{
		Status:   result.Status,
		Resolved: result.Resolved,
		Tally:    result.Tally,
	}, nil
}
