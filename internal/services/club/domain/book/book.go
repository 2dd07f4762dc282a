// Package book models a club book and its voting lifecycle.
//
// A book enters the shelf as a suggestion, leaves the pending state
// through a unanimous member vote, and is then carried forward by the
// admin: approved books wait on the to-be-read pile until one is
// selected as the current read, and the current read is completed when
// the next selection happens. Transitions are forward-only; a book
// never returns to pending.
package book

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
	"github.com/louisbranch/bookclub.space/internal/platform/id"
)

// Status describes the lifecycle of a book within its club.
type Status int

const (
	// StatusUnspecified represents an invalid book status value.
	StatusUnspecified Status = iota
	// StatusPending indicates the book is waiting for votes.
	StatusPending
	// StatusApproved indicates unanimous approval; the book is on the to-be-read pile.
	StatusApproved
	// StatusRejected indicates at least one member vetoed the book.
	StatusRejected
	// StatusCurrent indicates the club is currently reading the book.
	StatusCurrent
	// StatusCompleted indicates the club finished reading the book.
	StatusCompleted
)

const (
	// MinSpiceRating is the lowest allowed suggestion spice rating.
	MinSpiceRating = 1
	// MaxSpiceRating is the highest allowed suggestion spice rating.
	MaxSpiceRating = 5
)

var (
	// ErrEmptyTitle indicates a missing book title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeBookTitleEmpty, "book title is required")
	// ErrEmptyAuthor indicates a missing book author.
	ErrEmptyAuthor = apperrors.New(apperrors.CodeBookAuthorEmpty, "book author is required")
	// ErrInvalidSpiceRating indicates a suggestion spice rating outside 1..5.
	ErrInvalidSpiceRating = apperrors.New(apperrors.CodeBookInvalidSpiceRating, "spice rating must be between 1 and 5")
	// ErrInvalidStatusTransition indicates a disallowed book status change.
	ErrInvalidStatusTransition = apperrors.New(apperrors.CodeBookInvalidStatusTransition, "book status transition is not allowed")
)

// Book represents metadata for a suggested book.
type Book struct {
	ID     string
	ClubID string
	Title  string
	Author string
	// Summary and CoverURL are opaque display metadata.
	Summary  string
	CoverURL string
	// SpiceRating is the suggester-supplied 1..5 rating, distinct from
	// member-submitted review ratings.
	SpiceRating int
	SuggestedBy string
	Status      Status
	SuggestedAt time.Time
	// SelectedAt is the timestamp when the book became the current read.
	SelectedAt *time.Time
	// CompletedAt is the timestamp when the club finished the book.
	CompletedAt *time.Time
}

// SuggestInput describes the metadata needed to suggest a book.
type SuggestInput struct {
	ClubID      string
	Title       string
	Author      string
	Summary     string
	CoverURL    string
	SpiceRating int
	SuggestedBy string
}

// Suggest creates a new pending book with a generated ID and timestamps.
func Suggest(input SuggestInput, now func() time.Time, idGenerator func() (string, error)) (Book, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeSuggestInput(input)
	if err != nil {
		return Book{}, err
	}

	bookID, err := idGenerator()
	if err != nil {
		return Book{}, fmt.Errorf("generate book id: %w", err)
	}

	return Book{
		ID:          bookID,
		ClubID:      normalized.ClubID,
		Title:       normalized.Title,
		Author:      normalized.Author,
		Summary:     normalized.Summary,
		CoverURL:    normalized.CoverURL,
		SpiceRating: normalized.SpiceRating,
		SuggestedBy: normalized.SuggestedBy,
		Status:      StatusPending,
		SuggestedAt: now().UTC(),
	}, nil
}

// NormalizeSuggestInput trims and validates suggestion metadata.
func NormalizeSuggestInput(input SuggestInput) (SuggestInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Author = strings.TrimSpace(input.Author)
	input.Summary = strings.TrimSpace(input.Summary)
	input.CoverURL = strings.TrimSpace(input.CoverURL)
	if input.Title == "" {
		return SuggestInput{}, ErrEmptyTitle
	}
	if input.Author == "" {
		return SuggestInput{}, ErrEmptyAuthor
	}
	if input.SpiceRating < MinSpiceRating || input.SpiceRating > MaxSpiceRating {
		return SuggestInput{}, ErrInvalidSpiceRating
	}
	return input, nil
}

// TransitionStatus applies a status transition and stamps timestamps.
func TransitionStatus(b Book, target Status, now func() time.Time) (Book, error) {
	if now == nil {
		now = time.Now
	}
	if !isStatusTransitionAllowed(b.Status, target) {
		fromStatus := statusLabel(b.Status)
		toStatus := statusLabel(target)
		return Book{}, apperrors.WithMetadata(
			apperrors.CodeBookInvalidStatusTransition,
			fmt.Sprintf("book status transition not allowed: %s -> %s", fromStatus, toStatus),
			map[string]string{"FromStatus": fromStatus, "ToStatus": toStatus},
		)
	}

	updated := b
	updated.Status = target
	stamp := now().UTC()
	if target == StatusCurrent && updated.SelectedAt == nil {
		updated.SelectedAt = &stamp
	}
	if target == StatusCompleted && updated.CompletedAt == nil {
		updated.CompletedAt = &stamp
	}
	return updated, nil
}

// isStatusTransitionAllowed reports whether a status transition is permitted.
// Paths are forward-only: pending resolves by vote, approved books can be
// selected, and only the current read completes.
func isStatusTransitionAllowed(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusCurrent
	case StatusCurrent:
		return to == StatusCompleted
	default:
		return false
	}
}

// statusLabel returns a stable label for a book status.
func statusLabel(status Status) string {
	switch status {
	case StatusPending:
		return "PENDING"
	case StatusApproved:
		return "APPROVED"
	case StatusRejected:
		return "REJECTED"
	case StatusCurrent:
		return "CURRENT"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}

// Label returns the stable string label for a status.
func (s Status) Label() string {
	return statusLabel(s)
}

// StatusFromLabel parses a string label into a Status.
// It trims whitespace and matches case-insensitively. Both short
// ("PENDING") and prefixed ("BOOK_STATUS_PENDING") forms are accepted.
func StatusFromLabel(value string) (Status, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StatusUnspecified, fmt.Errorf("book status is required")
	}
	upper := strings.ToUpper(trimmed)
	switch upper {
	case "PENDING", "BOOK_STATUS_PENDING":
		return StatusPending, nil
	case "APPROVED", "BOOK_STATUS_APPROVED":
		return StatusApproved, nil
	case "REJECTED", "BOOK_STATUS_REJECTED":
		return StatusRejected, nil
	case "CURRENT", "BOOK_STATUS_CURRENT":
		return StatusCurrent, nil
	case "COMPLETED", "BOOK_STATUS_COMPLETED":
		return StatusCompleted, nil
	default:
		return StatusUnspecified, fmt.Errorf("unknown book status: %s", trimmed)
	}
}
