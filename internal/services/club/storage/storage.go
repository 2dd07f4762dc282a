// Package storage defines persistence contracts for club service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/bookclub.space/internal/services/club/domain/book"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/club"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/vote"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrBookNotPending indicates a vote against a book that already left
	// the pending state.
	ErrBookNotPending = errors.New("book is not pending")
	// ErrNoApprovedBooks indicates a selection attempt with an empty
	// to-be-read pile.
	ErrNoApprovedBooks = errors.New("no approved books")
)

// ClubRecord stores one book club.
type ClubRecord struct {
	ID          string
	Name        string
	Description string
	AdminID     string
	InviteCode  string
	CreatedAt   time.Time
}

// MembershipRecord stores one user's membership in a club.
type MembershipRecord struct {
	ClubID   string
	UserID   string
	Role     club.Role
	JoinedAt time.Time
}

// BookRecord stores one suggested book and its lifecycle state.
type BookRecord struct {
	ID          string
	ClubID      string
	Title       string
	Author      string
	Summary     string
	CoverURL    string
	SpiceRating int
	SuggestedBy string
	Status      book.Status
	SuggestedAt time.Time
	SelectedAt  *time.Time
	CompletedAt *time.Time
}

// VoteRecord stores one member's vote on a pending book.
type VoteRecord struct {
	BookID   string
	MemberID string
	Decision vote.Decision
	Reason   vote.VetoReason
	CastAt   time.Time
}

// CastVoteResult reports the outcome of a transactional vote.
type CastVoteResult struct {
	// Status is the book's status after consensus evaluation.
	Status book.Status
	// Resolved reports whether this vote moved the book out of pending.
	Resolved bool
	// Tally is the vote count the evaluation saw.
	Tally book.Consensus
}

// SelectNextResult reports the outcome of a book selection.
type SelectNextResult struct {
	// Selected is the newly current book.
	Selected BookRecord
	// Completed is the previously current book, if there was one.
	Completed *BookRecord
}

// ProgressRecord stores one member's reading progress on a book.
type ProgressRecord struct {
	BookID      string
	MemberID    string
	CurrentPage int
	TotalPages  int
	UpdatedAt   time.Time
}

// RatingRecord stores one member's review scores for a book.
type RatingRecord struct {
	BookID     string
	MemberID   string
	Storyline  int
	Characters int
	Spice      int
	RatedAt    time.Time
}

// ListBooksPageRequest describes a filtered, paginated book listing.
type ListBooksPageRequest struct {
	ClubID string
	// Filter is an AIP-160 filter expression over status, suggested_by,
	// and suggested_at.
	Filter    string
	PageSize  int
	PageToken string
}

// ListBooksPageResult stores one page of book records.
type ListBooksPageResult struct {
	Books         []BookRecord
	NextPageToken string
}

// TelemetryEvent captures operational observations emitted during command execution.
type TelemetryEvent struct {
	Timestamp  time.Time
	EventName  string
	Severity   string
	ClubID     string
	BookID     string
	ActorID    string
	Attributes map[string]any
}

// ClubStore persists club records.
type ClubStore interface {
	// CreateClub stores a club together with its founding membership in
	// one transaction.
	CreateClub(ctx context.Context, record ClubRecord, founder MembershipRecord) error
	// GetClub retrieves a club by ID. Returns ErrNotFound when missing.
	GetClub(ctx context.Context, clubID string) (ClubRecord, error)
	// GetClubByInviteCode retrieves a club by its invite code.
	GetClubByInviteCode(ctx context.Context, inviteCode string) (ClubRecord, error)
}

// MembershipStore persists club membership records.
type MembershipStore interface {
	// AddMembership stores a membership. Returns ErrAlreadyExists when
	// the user already belongs to the club.
	AddMembership(ctx context.Context, record MembershipRecord) error
	// GetMembership retrieves one user's membership in a club.
	GetMembership(ctx context.Context, clubID, userID string) (MembershipRecord, error)
	// ListMemberships returns all memberships of a club ordered by join time.
	ListMemberships(ctx context.Context, clubID string) ([]MembershipRecord, error)
	// ListUserMemberships returns all memberships held by a user.
	ListUserMemberships(ctx context.Context, userID string) ([]MembershipRecord, error)
	// CountMembers returns the club's membership size.
	CountMembers(ctx context.Context, clubID string) (int, error)
}

// BookStore persists book records and lifecycle transitions.
type BookStore interface {
	// CreateBook stores a new pending book suggestion.
	CreateBook(ctx context.Context, record BookRecord) error
	// GetBook retrieves a book by ID. Returns ErrNotFound when missing.
	GetBook(ctx context.Context, bookID string) (BookRecord, error)
	// ListBooksByStatus returns a club's books in the given status,
	// ordered by suggestion time.
	ListBooksByStatus(ctx context.Context, clubID string, status book.Status) ([]BookRecord, error)
	// GetCurrentBook returns the club's current read. Returns
	// ErrNotFound when the club has none.
	GetCurrentBook(ctx context.Context, clubID string) (BookRecord, error)
	// SelectNextBook completes the current read, if any, and promotes
	// one approved book chosen by pick, all in one transaction. pick
	// receives the number of approved candidates and returns an index.
	// Returns ErrNoApprovedBooks when no candidate exists.
	SelectNextBook(ctx context.Context, clubID string, pick func(n int) (int, error), now time.Time) (SelectNextResult, error)
	// ListBooksPage returns a paginated, filtered list of a club's books.
	ListBooksPage(ctx context.Context, req ListBooksPageRequest) (ListBooksPageResult, error)
}

// VoteStore persists votes and resolves consensus.
type VoteStore interface {
	// CastVote upserts a member's vote and evaluates consensus in one
	// transaction. When the tally resolves, the book's status changes
	// atomically with the vote. Returns ErrBookNotPending when the book
	// already left the pending state.
	CastVote(ctx context.Context, record VoteRecord, memberCount int) (CastVoteResult, error)
	// ListVotes returns all votes on a book.
	ListVotes(ctx context.Context, bookID string) ([]VoteRecord, error)
}

// ProgressStore persists reading progress records.
type ProgressStore interface {
	// UpsertProgress stores a member's progress, replacing any previous
	// record for the same book and member.
	UpsertProgress(ctx context.Context, record ProgressRecord) error
	// GetProgress retrieves one member's progress on a book. Returns
	// ErrNotFound when the member never reported progress.
	GetProgress(ctx context.Context, bookID, memberID string) (ProgressRecord, error)
	// ListProgress returns all members' progress on a book.
	ListProgress(ctx context.Context, bookID string) ([]ProgressRecord, error)
}

// RatingStore persists book rating records.
type RatingStore interface {
	// UpsertRating stores a member's rating, replacing any previous
	// record for the same book and member.
	UpsertRating(ctx context.Context, record RatingRecord) error
	// GetRating retrieves one member's rating of a book.
	GetRating(ctx context.Context, bookID, memberID string) (RatingRecord, error)
	// ListRatings returns all ratings of a book.
	ListRatings(ctx context.Context, bookID string) ([]RatingRecord, error)
}

// TelemetryStore persists operational telemetry records for audits and incident analysis.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}

// Store aggregates all club service persistence contracts.
type Store interface {
	ClubStore
	MembershipStore
	BookStore
	VoteStore
	ProgressStore
	RatingStore
	TelemetryStore

	// Close releases the underlying database resources.
	Close() error
}
