package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
	"github.com/louisbranch/bookclub.space/internal/platform/telemetry"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/club"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/progress"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// CreateClubInput describes a club creation request.
type CreateClubInput struct {
	Name        string
	Description string
}

// MemberProgress pairs a member with their progress on the current read.
type MemberProgress struct {
	MemberID    string
	CurrentPage int
	TotalPages  int
	Percent     int
}

// CurrentRead describes the club's current book and member progress.
type CurrentRead struct {
	Book     storage.BookRecord
	Progress []MemberProgress
	// CallerProgress is nil when the caller has not reported progress.
	CallerProgress *MemberProgress
}

// ClubDetails aggregates a club, its members, and the current read.
type ClubDetails struct {
	Club        storage.ClubRecord
	Members     []storage.MembershipRecord
	MemberCount int
	// CurrentRead is nil when the club has no current book.
	CurrentRead *CurrentRead
}

// CreateClub creates a club with the caller as admin and first member.
func (s *Service) CreateClub(ctx context.Context, input CreateClubInput) (storage.ClubRecord, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return storage.ClubRecord{}, err
	}

	created, founder, err := club.Create(club.CreateInput{
		Name:        input.Name,
		Description: input.Description,
		AdminID:     userID,
	}, s.clock, s.idGenerator, s.codeGenerator)
	if err != nil {
		return storage.ClubRecord{}, err
	}

	record := storage.ClubRecord{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		AdminID:     created.AdminID,
		InviteCode:  created.InviteCode,
		CreatedAt:   created.CreatedAt,
	}
	founderRecord := storage.MembershipRecord{
		ClubID:   founder.ClubID,
		UserID:   founder.UserID,
		Role:     founder.Role,
		JoinedAt: founder.JoinedAt,
	}
	if err := s.store.CreateClub(ctx, record, founderRecord); err != nil {
		return storage.ClubRecord{}, fmt.Errorf("persist club: %w", err)
	}

	s.emit(ctx, storage.TelemetryEvent{
		EventName: "club.created",
		Severity:  string(telemetry.SeverityInfo),
		ClubID:    record.ID,
		ActorID:   userID,
	})
	return record, nil
}

// JoinClub adds the caller to the club matching the invite code.
func (s *Service) JoinClub(ctx context.Context, inviteCode string) (storage.ClubRecord, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return storage.ClubRecord{}, err
	}

	normalized, err := club.NormalizeInviteCode(inviteCode)
	if err != nil {
		return storage.ClubRecord{}, err
	}

	record, err := s.store.GetClubByInviteCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ClubRecord{}, club.ErrInvalidInviteCode
		}
		return storage.ClubRecord{}, fmt.Errorf("lookup invite code: %w", err)
	}

	membership := club.Join(record.ID, userID, s.clock)
	err = s.store.AddMembership(ctx, storage.MembershipRecord{
		ClubID:   membership.ClubID,
		UserID:   membership.UserID,
		Role:     membership.Role,
		JoinedAt: membership.JoinedAt,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return storage.ClubRecord{}, apperrors.New(apperrors.CodeClubAlreadyMember, "caller already belongs to the club")
		}
		return storage.ClubRecord{}, fmt.Errorf("persist membership: %w", err)
	}

	s.emit(ctx, storage.TelemetryEvent{
		EventName: "club.joined",
		Severity:  string(telemetry.SeverityInfo),
		ClubID:    record.ID,
		ActorID:   userID,
	})
	return record, nil
}

// GetClubDetails returns a club with its members and current read. The
// caller must be a member.
func (s *Service) GetClubDetails(ctx context.Context, clubID string) (ClubDetails, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return ClubDetails{}, err
	}
	record, err := s.loadClub(ctx, clubID)
	if err != nil {
		return ClubDetails{}, err
	}
	if _, err := s.requireMembership(ctx, record.ID, userID); err != nil {
		return ClubDetails{}, err
	}

	members, err := s.store.ListMemberships(ctx, record.ID)
	if err != nil {
		return ClubDetails{}, fmt.Errorf("list memberships: %w", err)
	}

	details := ClubDetails{
		Club:        record,
		Members:     members,
		MemberCount: len(members),
	}

	current, err := s.store.GetCurrentBook(ctx, record.ID)
	switch {
	case err == nil:
		read, err := s.currentRead(ctx, current, userID)
		if err != nil {
			return ClubDetails{}, err
		}
		details.CurrentRead = read
	case errors.Is(err, storage.ErrNotFound):
		// Club has no current read yet.
	default:
		return ClubDetails{}, fmt.Errorf("load current book: %w", err)
	}

	return details, nil
}

// currentRead assembles the current book with each member's progress
// percentage, marking the caller's own report when present.
func (s *Service) currentRead(ctx context.Context, current storage.BookRecord, userID string) (*CurrentRead, error) {
	read := &CurrentRead{Book: current}
	reports, err := s.store.ListProgress(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	for _, report := range reports {
		p := progress.Progress{
			BookID:      report.BookID,
			MemberID:    report.MemberID,
			CurrentPage: report.CurrentPage,
			TotalPages:  report.TotalPages,
		}
		read.Progress = append(read.Progress, MemberProgress{
			MemberID:    report.MemberID,
			CurrentPage: report.CurrentPage,
			TotalPages:  report.TotalPages,
			Percent:     p.Percent(),
		})
		if report.MemberID == userID {
			own := read.Progress[len(read.Progress)-1]
			read.CallerProgress = &own
		}
	}
	return read, nil
}

// ListUserClubs returns every club the caller belongs to.
func (s *Service) ListUserClubs(ctx context.Context) ([]storage.ClubRecord, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return nil, err
	}

	memberships, err := s.store.ListUserMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user memberships: %w", err)
	}

	clubs := make([]storage.ClubRecord, 0, len(memberships))
	for _, membership := range memberships {
		record, err := s.store.GetClub(ctx, membership.ClubID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load club: %w", err)
		}
		clubs = append(clubs, record)
	}
	return clubs, nil
}
