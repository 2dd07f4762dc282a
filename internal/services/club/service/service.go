// Package service implements the club engine operations on top of the
// storage contracts. Every operation authenticates the caller through
// the request context and authorizes it against club membership before
// touching state.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
	"github.com/louisbranch/bookclub.space/internal/platform/id"
	"github.com/louisbranch/bookclub.space/internal/platform/random"
	"github.com/louisbranch/bookclub.space/internal/platform/requestctx"
	"github.com/louisbranch/bookclub.space/internal/platform/telemetry"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/club"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// Service coordinates club lifecycle, voting, and reading operations.
type Service struct {
	store         storage.Store
	emitter       *telemetry.Emitter
	clock         func() time.Time
	idGenerator   func() (string, error)
	codeGenerator func() (string, error)
	pick          func(n int) (int, error)
}

// New creates a Service with default dependencies.
func New(store storage.Store) *Service {
	return &Service{
		store:         store,
		emitter:       telemetry.NewEmitter(store),
		clock:         time.Now,
		idGenerator:   id.NewID,
		codeGenerator: club.NewInviteCode,
		pick:          random.Intn,
	}
}

// NewWithEmitter creates a Service that records telemetry through the
// provided emitter.
func NewWithEmitter(store storage.Store, emitter *telemetry.Emitter) *Service {
	service := New(store)
	service.emitter = emitter
	return service
}

// NewWithInviteCodeLength creates a Service generating invite codes of
// the given length.
func NewWithInviteCodeLength(store storage.Store, length int) *Service {
	service := New(store)
	service.codeGenerator = func() (string, error) {
		return club.NewInviteCodeWithLength(length)
	}
	return service
}

// callerID extracts the authenticated user from the request context.
func (s *Service) callerID(ctx context.Context) (string, error) {
	userID := strings.TrimSpace(requestctx.UserIDFromContext(ctx))
	if userID == "" {
		return "", apperrors.New(apperrors.CodeUnauthenticated, "caller identity is required")
	}
	return userID, nil
}

// requireMembership loads the caller's membership in a club. Returns a
// permission error when the caller does not belong to the club.
func (s *Service) requireMembership(ctx context.Context, clubID, userID string) (storage.MembershipRecord, error) {
	membership, err := s.store.GetMembership(ctx, clubID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.MembershipRecord{}, apperrors.New(apperrors.CodeClubNotMember, "caller is not a member of the club")
		}
		return storage.MembershipRecord{}, fmt.Errorf("load membership: %w", err)
	}
	return membership, nil
}

// isMember reports whether the user belongs to the club. Used by reads
// that degrade to empty results instead of failing for non-members.
func (s *Service) isMember(ctx context.Context, clubID, userID string) (bool, error) {
	_, err := s.store.GetMembership(ctx, clubID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load membership: %w", err)
	}
	return true, nil
}

// loadClub fetches a club, mapping missing records to a not-found error.
func (s *Service) loadClub(ctx context.Context, clubID string) (storage.ClubRecord, error) {
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return storage.ClubRecord{}, apperrors.New(apperrors.CodeNotFound, "club id is required")
	}
	record, err := s.store.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ClubRecord{}, apperrors.WithMetadata(apperrors.CodeNotFound, "club not found", map[string]string{"ClubID": clubID})
		}
		return storage.ClubRecord{}, fmt.Errorf("load club: %w", err)
	}
	return record, nil
}

// loadBook fetches a book, mapping missing records to a not-found error.
func (s *Service) loadBook(ctx context.Context, bookID string) (storage.BookRecord, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return storage.BookRecord{}, apperrors.New(apperrors.CodeNotFound, "book id is required")
	}
	record, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.BookRecord{}, apperrors.WithMetadata(apperrors.CodeNotFound, "book not found", map[string]string{"BookID": bookID})
		}
		return storage.BookRecord{}, fmt.Errorf("load book: %w", err)
	}
	return record, nil
}

// emit records an operational telemetry event. Telemetry failures never
// fail the operation that produced them.
func (s *Service) emit(ctx context.Context, evt storage.TelemetryEvent) {
	_ = s.emitter.Emit(ctx, evt)
}
