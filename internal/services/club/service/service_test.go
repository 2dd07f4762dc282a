package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
	"github.com/louisbranch/bookclub.space/internal/platform/requestctx"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/book"
	"github.com/louisbranch/bookclub.space/internal/services/club/domain/vote"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "club.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	svc := New(store)
	svc.clock = func() time.Time {
		return time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	}
	var ids int
	svc.idGenerator = func() (string, error) {
		ids++
		return fmt.Sprintf("id-%04d", ids), nil
	}
	var codes int
	svc.codeGenerator = func() (string, error) {
		codes++
		return fmt.Sprintf("CODE%02d", codes), nil
	}
	svc.pick = func(n int) (int, error) { return 0, nil }
	return svc
}

func asUser(userID string) context.Context {
	return requestctx.WithUserID(context.Background(), userID)
}

func mustCreateClub(t *testing.T, svc *Service, adminID string) storage.ClubRecord {
	t.Helper()
	created, err := svc.CreateClub(asUser(adminID), CreateClubInput{Name: "Readers"})
	if err != nil {
		t.Fatalf("CreateClub() error = %v", err)
	}
	return created
}

func mustJoinClub(t *testing.T, svc *Service, inviteCode, userID string) {
	t.Helper()
	if _, err := svc.JoinClub(asUser(userID), inviteCode); err != nil {
		t.Fatalf("JoinClub(%s) error = %v", userID, err)
	}
}

func mustSuggestBook(t *testing.T, svc *Service, clubID, userID, title string) storage.BookRecord {
	t.Helper()
	suggested, err := svc.SuggestBook(asUser(userID), SuggestBookInput{
		ClubID:      clubID,
		Title:       title,
		Author:      "Some Author",
		SpiceRating: 3,
	})
	if err != nil {
		t.Fatalf("SuggestBook() error = %v", err)
	}
	return suggested
}

func approveUnanimously(t *testing.T, svc *Service, bookID string, memberIDs ...string) {
	t.Helper()
	for _, memberID := range memberIDs {
		if _, err := svc.CastVote(asUser(memberID), CastVoteInput{
			BookID:   bookID,
			Decision: vote.DecisionApprove,
		}); err != nil {
			t.Fatalf("CastVote(%s) error = %v", memberID, err)
		}
	}
}

func TestOperationsRequireCallerIdentity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	checks := map[string]func() error{
		"CreateClub": func() error {
			_, err := svc.CreateClub(ctx, CreateClubInput{Name: "Readers"})
			return err
		},
		"JoinClub": func() error {
			_, err := svc.JoinClub(ctx, "CODE01")
			return err
		},
		"SuggestBook": func() error {
			_, err := svc.SuggestBook(ctx, SuggestBookInput{ClubID: "club-1"})
			return err
		},
		"CastVote": func() error {
			_, err := svc.CastVote(ctx, CastVoteInput{BookID: "book-1", Decision: vote.DecisionApprove})
			return err
		},
		"SelectNextBook": func() error {
			_, err := svc.SelectNextBook(ctx, "club-1")
			return err
		},
		"UpdateProgress": func() error {
			_, err := svc.UpdateProgress(ctx, UpdateProgressInput{BookID: "book-1"})
			return err
		},
		"GetPendingBooks": func() error {
			_, err := svc.GetPendingBooks(ctx, "club-1")
			return err
		},
	}

	for name, call := range checks {
		t.Run(name, func(t *testing.T) {
			if code := apperrors.GetCode(call()); code != apperrors.CodeUnauthenticated {
				t.Fatalf("error code = %v, want CodeUnauthenticated", code)
			}
		})
	}
}

func TestCreateClubMakesCallerAdminMember(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")

	if created.AdminID != "user-1" {
		t.Errorf("AdminID = %q, want user-1", created.AdminID)
	}
	if created.InviteCode == "" {
		t.Error("expected invite code to be generated")
	}

	details, err := svc.GetClubDetails(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("GetClubDetails() error = %v", err)
	}
	if details.MemberCount != 1 {
		t.Errorf("MemberCount = %d, want 1", details.MemberCount)
	}
}

func TestJoinClub(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")

	// Invite codes match case-insensitively.
	joined, err := svc.JoinClub(asUser("user-2"), "code01")
	if err != nil {
		t.Fatalf("JoinClub() error = %v", err)
	}
	if joined.ID != created.ID {
		t.Errorf("joined club = %q, want %q", joined.ID, created.ID)
	}

	_, err = svc.JoinClub(asUser("user-2"), created.InviteCode)
	if code := apperrors.GetCode(err); code != apperrors.CodeClubAlreadyMember {
		t.Errorf("duplicate join code = %v, want CodeClubAlreadyMember", code)
	}

	_, err = svc.JoinClub(asUser("user-3"), "ZZZZZZ")
	if code := apperrors.GetCode(err); code != apperrors.CodeClubInviteInvalid {
		t.Errorf("unknown code = %v, want CodeClubInviteInvalid", code)
	}
}

func TestGetClubDetailsRequiresMembership(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")

	_, err := svc.GetClubDetails(asUser("stranger"), created.ID)
	if code := apperrors.GetCode(err); code != apperrors.CodeClubNotMember {
		t.Fatalf("error code = %v, want CodeClubNotMember", code)
	}

	_, err = svc.GetClubDetails(asUser("user-1"), "missing")
	if code := apperrors.GetCode(err); code != apperrors.CodeNotFound {
		t.Fatalf("error code = %v, want CodeNotFound", code)
	}
}

func TestListUserClubs(t *testing.T) {
	svc := newTestService(t)
	first := mustCreateClub(t, svc, "user-1")
	second := mustCreateClub(t, svc, "user-2")
	mustJoinClub(t, svc, second.InviteCode, "user-1")

	clubs, err := svc.ListUserClubs(asUser("user-1"))
	if err != nil {
		t.Fatalf("ListUserClubs() error = %v", err)
	}
	if len(clubs) != 2 {
		t.Fatalf("ListUserClubs() returned %d clubs, want 2", len(clubs))
	}
	if clubs[0].ID != first.ID {
		t.Errorf("first club = %q, want %q", clubs[0].ID, first.ID)
	}
}

func TestSuggestBookRequiresMembership(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")

	_, err := svc.SuggestBook(asUser("stranger"), SuggestBookInput{
		ClubID:      created.ID,
		Title:       "Dune",
		Author:      "Frank Herbert",
		SpiceRating: 1,
	})
	if code := apperrors.GetCode(err); code != apperrors.CodeClubNotMember {
		t.Fatalf("error code = %v, want CodeClubNotMember", code)
	}

	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	if suggested.Status != book.StatusPending {
		t.Errorf("Status = %v, want StatusPending", suggested.Status)
	}
	if suggested.SuggestedBy != "user-1" {
		t.Errorf("SuggestedBy = %q, want user-1", suggested.SuggestedBy)
	}
}

func TestCastVoteVetoRejectsOnFinalBallot(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	mustJoinClub(t, svc, created.InviteCode, "user-3")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	outcome, err := svc.CastVote(asUser("user-2"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionVeto,
		Reason:   vote.VetoReasonAlreadyRead,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if outcome.Resolved {
		t.Fatalf("outcome = %+v, want pending until all members vote", outcome)
	}

	if _, err := svc.CastVote(asUser("user-1"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	}); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	outcome, err = svc.CastVote(asUser("user-3"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if !outcome.Resolved || outcome.Status != book.StatusRejected {
		t.Fatalf("outcome = %+v, want resolved rejection", outcome)
	}

	// The rejected book no longer accepts votes.
	_, err = svc.CastVote(asUser("user-3"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	})
	if code := apperrors.GetCode(err); code != apperrors.CodeBookStatusDisallowsOp {
		t.Fatalf("error code = %v, want CodeBookStatusDisallowsOp", code)
	}
}

func TestCastVoteVetoReplacedBeforeConsensus(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	outcome, err := svc.CastVote(asUser("user-2"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionVeto,
		Reason:   vote.VetoReasonNotInterested,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if outcome.Resolved {
		t.Fatalf("outcome = %+v, want pending until all members vote", outcome)
	}

	// The vetoing member changes their mind before the tally closes.
	outcome, err = svc.CastVote(asUser("user-2"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	})
	if err != nil {
		t.Fatalf("re-vote error = %v", err)
	}
	if outcome.Resolved {
		t.Fatalf("outcome = %+v, want pending with one ballot", outcome)
	}
	if outcome.Tally.VoteCount != 1 || outcome.Tally.VetoCount != 0 {
		t.Fatalf("tally = %+v, want single approve ballot", outcome.Tally)
	}

	outcome, err = svc.CastVote(asUser("user-1"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if !outcome.Resolved || outcome.Status != book.StatusApproved {
		t.Fatalf("outcome = %+v, want resolved approval", outcome)
	}
}

func TestCastVoteUnanimousApproval(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	mustJoinClub(t, svc, created.InviteCode, "user-3")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	for _, memberID := range []string{"user-1", "user-2"} {
		outcome, err := svc.CastVote(asUser(memberID), CastVoteInput{
			BookID:   suggested.ID,
			Decision: vote.DecisionApprove,
		})
		if err != nil {
			t.Fatalf("CastVote(%s) error = %v", memberID, err)
		}
		if outcome.Resolved {
			t.Fatalf("vote by %s resolved early: %+v", memberID, outcome)
		}
	}

	outcome, err := svc.CastVote(asUser("user-3"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	})
	if err != nil {
		t.Fatalf("CastVote(user-3) error = %v", err)
	}
	if !outcome.Resolved || outcome.Status != book.StatusApproved {
		t.Fatalf("outcome = %+v, want resolved approval", outcome)
	}
	if outcome.Tally.VoteCount != 3 || outcome.Tally.MemberCount != 3 {
		t.Errorf("tally = %+v", outcome.Tally)
	}
}

func TestCastVoteApproveWithReasonRejected(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	_, err := svc.CastVote(asUser("user-1"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
		Reason:   vote.VetoReasonNotForMe,
	})
	if !errors.Is(err, vote.ErrReasonWithoutVeto) {
		t.Fatalf("error = %v, want ErrReasonWithoutVeto", err)
	}
}

func TestCastVoteMembershipGrowsBeforeConsensus(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	if _, err := svc.CastVote(asUser("user-1"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	}); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	// A third member joins mid-vote; their approval is now required too.
	mustJoinClub(t, svc, created.InviteCode, "user-3")

	outcome, err := svc.CastVote(asUser("user-2"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if outcome.Resolved {
		t.Fatalf("outcome = %+v, want pending until all members vote", outcome)
	}

	outcome, err = svc.CastVote(asUser("user-3"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if !outcome.Resolved || outcome.Status != book.StatusApproved {
		t.Fatalf("outcome = %+v, want resolved approval", outcome)
	}
}

func TestSelectNextBookAdminOnly(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	approveUnanimously(t, svc, suggested.ID, "user-1", "user-2")

	_, err := svc.SelectNextBook(asUser("user-2"), created.ID)
	if code := apperrors.GetCode(err); code != apperrors.CodeClubAdminOnly {
		t.Fatalf("error code = %v, want CodeClubAdminOnly", code)
	}

	_, err = svc.SelectNextBook(asUser("stranger"), created.ID)
	if code := apperrors.GetCode(err); code != apperrors.CodeClubNotMember {
		t.Fatalf("error code = %v, want CodeClubNotMember", code)
	}

	result, err := svc.SelectNextBook(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}
	if result.Selected.ID != suggested.ID || result.Selected.Status != book.StatusCurrent {
		t.Fatalf("Selected = %+v", result.Selected)
	}
}

func TestSelectNextBookCompletesCurrentRead(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	first := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	second := mustSuggestBook(t, svc, created.ID, "user-1", "Hyperion")
	approveUnanimously(t, svc, first.ID, "user-1")
	approveUnanimously(t, svc, second.ID, "user-1")

	initial, err := svc.SelectNextBook(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}
	if initial.Completed != nil {
		t.Fatalf("Completed = %+v, want nil on first selection", initial.Completed)
	}

	next, err := svc.SelectNextBook(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}
	if next.Completed == nil || next.Completed.ID != initial.Selected.ID {
		t.Fatalf("Completed = %+v, want %q", next.Completed, initial.Selected.ID)
	}
	if next.Selected.ID == initial.Selected.ID {
		t.Error("selected the same book twice")
	}
}

func TestSelectNextBookNoApproved(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	_, err := svc.SelectNextBook(asUser("user-1"), created.ID)
	if code := apperrors.GetCode(err); code != apperrors.CodeBookNoApprovedBooks {
		t.Fatalf("error code = %v, want CodeBookNoApprovedBooks", code)
	}
}

func TestUpdateProgress(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	approveUnanimously(t, svc, suggested.ID, "user-1")
	if _, err := svc.SelectNextBook(asUser("user-1"), created.ID); err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}

	first, err := svc.UpdateProgress(asUser("user-1"), UpdateProgressInput{
		BookID:      suggested.ID,
		CurrentPage: 50,
		TotalPages:  400,
	})
	if err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	if first.CurrentPage != 50 || first.TotalPages != 400 {
		t.Errorf("progress = %+v", first)
	}

	// Omitting the page count keeps the recorded one.
	second, err := svc.UpdateProgress(asUser("user-1"), UpdateProgressInput{
		BookID:      suggested.ID,
		CurrentPage: 120,
	})
	if err != nil {
		t.Fatalf("UpdateProgress() update error = %v", err)
	}
	if second.TotalPages != 400 {
		t.Errorf("TotalPages = %d, want retained 400", second.TotalPages)
	}

	details, err := svc.GetClubDetails(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("GetClubDetails() error = %v", err)
	}
	if details.CurrentRead == nil || len(details.CurrentRead.Progress) != 1 {
		t.Fatalf("CurrentRead = %+v", details.CurrentRead)
	}
	if got := details.CurrentRead.Progress[0].Percent; got != 30 {
		t.Errorf("Percent = %d, want 30", got)
	}
}

func TestProgressAndRatingIgnoreBookStatus(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	// Membership is the only gate; a pending book takes reports too.
	record, err := svc.UpdateProgress(asUser("user-1"), UpdateProgressInput{
		BookID:      suggested.ID,
		CurrentPage: 10,
		TotalPages:  200,
	})
	if err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	if record.CurrentPage != 10 {
		t.Errorf("progress = %+v", record)
	}

	if _, err := svc.RateBook(asUser("user-1"), RateBookInput{
		BookID: suggested.ID, Storyline: 4, Characters: 4, Spice: 2,
	}); err != nil {
		t.Fatalf("RateBook() error = %v", err)
	}
	reviews, err := svc.GetBookReviews(asUser("user-1"), suggested.ID)
	if err != nil {
		t.Fatalf("GetBookReviews() error = %v", err)
	}
	if reviews.Averages.Count != 1 {
		t.Errorf("Count = %d, want 1", reviews.Averages.Count)
	}

	_, err = svc.UpdateProgress(asUser("stranger"), UpdateProgressInput{
		BookID:      suggested.ID,
		CurrentPage: 5,
	})
	if code := apperrors.GetCode(err); code != apperrors.CodeClubNotMember {
		t.Fatalf("error code = %v, want CodeClubNotMember", code)
	}
}

func TestRateBookAndReviews(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	approveUnanimously(t, svc, suggested.ID, "user-1", "user-2")
	if _, err := svc.SelectNextBook(asUser("user-1"), created.ID); err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}

	// No ratings yet: averages default to zero.
	empty, err := svc.GetBookReviews(asUser("user-1"), suggested.ID)
	if err != nil {
		t.Fatalf("GetBookReviews() error = %v", err)
	}
	if empty.Averages.Storyline != 0 || empty.Averages.Count != 0 {
		t.Errorf("empty averages = %+v", empty.Averages)
	}

	if _, err := svc.RateBook(asUser("user-1"), RateBookInput{
		BookID: suggested.ID, Storyline: 5, Characters: 4, Spice: 1,
	}); err != nil {
		t.Fatalf("RateBook() error = %v", err)
	}
	if _, err := svc.RateBook(asUser("user-2"), RateBookInput{
		BookID: suggested.ID, Storyline: 4, Characters: 4, Spice: 2,
	}); err != nil {
		t.Fatalf("RateBook() error = %v", err)
	}

	reviews, err := svc.GetBookReviews(asUser("user-1"), suggested.ID)
	if err != nil {
		t.Fatalf("GetBookReviews() error = %v", err)
	}
	if reviews.Averages.Count != 2 {
		t.Fatalf("Count = %d, want 2", reviews.Averages.Count)
	}
	if reviews.Averages.Storyline != 4.5 || reviews.Averages.Spice != 1.5 {
		t.Errorf("averages = %+v", reviews.Averages)
	}

	// Resubmission replaces the previous scores.
	if _, err := svc.RateBook(asUser("user-1"), RateBookInput{
		BookID: suggested.ID, Storyline: 3, Characters: 3, Spice: 3,
	}); err != nil {
		t.Fatalf("RateBook() resubmit error = %v", err)
	}
	reviews, err = svc.GetBookReviews(asUser("user-1"), suggested.ID)
	if err != nil {
		t.Fatalf("GetBookReviews() error = %v", err)
	}
	if reviews.Averages.Count != 2 {
		t.Errorf("Count = %d, want 2 after resubmission", reviews.Averages.Count)
	}
}

func TestRateBookValidation(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	approveUnanimously(t, svc, suggested.ID, "user-1")
	if _, err := svc.SelectNextBook(asUser("user-1"), created.ID); err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}

	_, err := svc.RateBook(asUser("user-1"), RateBookInput{
		BookID: suggested.ID, Storyline: 6, Characters: 3, Spice: 3,
	})
	if code := apperrors.GetCode(err); code != apperrors.CodeRatingOutOfRange {
		t.Fatalf("error code = %v, want CodeRatingOutOfRange", code)
	}

	_, err = svc.RateBook(asUser("stranger"), RateBookInput{
		BookID: suggested.ID, Storyline: 3, Characters: 3, Spice: 3,
	})
	if code := apperrors.GetCode(err); code != apperrors.CodeClubNotMember {
		t.Fatalf("error code = %v, want CodeClubNotMember", code)
	}
}

func TestGetPendingBooksDegradesForNonMembers(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	pending, err := svc.GetPendingBooks(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("GetPendingBooks() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Book.ID != suggested.ID {
		t.Fatalf("pending = %+v", pending)
	}

	degraded, err := svc.GetPendingBooks(asUser("stranger"), created.ID)
	if err != nil {
		t.Fatalf("GetPendingBooks() non-member error = %v", err)
	}
	if len(degraded) != 0 {
		t.Errorf("non-member pending = %+v, want empty", degraded)
	}
}

func TestGetPendingBooksIncludesCallerVote(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	mustJoinClub(t, svc, created.InviteCode, "user-2")
	suggested := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")

	if _, err := svc.CastVote(asUser("user-2"), CastVoteInput{
		BookID:   suggested.ID,
		Decision: vote.DecisionApprove,
	}); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	pending, err := svc.GetPendingBooks(asUser("user-2"), created.ID)
	if err != nil {
		t.Fatalf("GetPendingBooks() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %+v", pending)
	}
	if pending[0].CallerVote == nil || pending[0].CallerVote.Decision != vote.DecisionApprove {
		t.Errorf("CallerVote = %+v", pending[0].CallerVote)
	}

	asOther, err := svc.GetPendingBooks(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("GetPendingBooks() error = %v", err)
	}
	if asOther[0].CallerVote != nil {
		t.Errorf("CallerVote = %+v, want nil for member who has not voted", asOther[0].CallerVote)
	}
}

func TestGetBookshelf(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	first := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	second := mustSuggestBook(t, svc, created.ID, "user-1", "Hyperion")
	third := mustSuggestBook(t, svc, created.ID, "user-1", "Middlemarch")
	approveUnanimously(t, svc, first.ID, "user-1")
	approveUnanimously(t, svc, second.ID, "user-1")
	if _, err := svc.CastVote(asUser("user-1"), CastVoteInput{
		BookID:   third.ID,
		Decision: vote.DecisionVeto,
		Reason:   vote.VetoReasonNotInterested,
	}); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if _, err := svc.SelectNextBook(asUser("user-1"), created.ID); err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}
	if _, err := svc.SelectNextBook(asUser("user-1"), created.ID); err != nil {
		t.Fatalf("SelectNextBook() error = %v", err)
	}

	if _, err := svc.RateBook(asUser("user-1"), RateBookInput{
		BookID: first.ID, Storyline: 5, Characters: 3, Spice: 2,
	}); err != nil {
		t.Fatalf("RateBook() error = %v", err)
	}
	if _, err := svc.UpdateProgress(asUser("user-1"), UpdateProgressInput{
		BookID:      second.ID,
		CurrentPage: 25,
		TotalPages:  100,
	}); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}

	shelf, err := svc.GetBookshelf(asUser("user-1"), created.ID)
	if err != nil {
		t.Fatalf("GetBookshelf() error = %v", err)
	}
	if shelf.Current == nil || shelf.Current.Book.ID != second.ID {
		t.Fatalf("Current = %+v, want %q", shelf.Current, second.ID)
	}
	if len(shelf.Current.Progress) != 1 || shelf.Current.Progress[0].Percent != 25 {
		t.Errorf("current progress = %+v", shelf.Current.Progress)
	}
	if shelf.Current.CallerProgress == nil || shelf.Current.CallerProgress.CurrentPage != 25 {
		t.Errorf("CallerProgress = %+v", shelf.Current.CallerProgress)
	}
	if len(shelf.Completed) != 1 || shelf.Completed[0].Book.ID != first.ID {
		t.Fatalf("Completed = %+v", shelf.Completed)
	}
	if got := shelf.Completed[0].Ratings; got.Count != 1 || got.Storyline != 5 || got.Spice != 2 {
		t.Errorf("completed ratings = %+v", got)
	}
	if len(shelf.Rejected) != 1 || shelf.Rejected[0].ID != third.ID {
		t.Errorf("Rejected = %+v", shelf.Rejected)
	}
	if len(shelf.Approved) != 0 {
		t.Errorf("Approved = %+v, want empty", shelf.Approved)
	}

	degraded, err := svc.GetBookshelf(asUser("stranger"), created.ID)
	if err != nil {
		t.Fatalf("GetBookshelf() non-member error = %v", err)
	}
	if degraded.Current != nil || degraded.Completed != nil || degraded.Rejected != nil {
		t.Errorf("non-member shelf = %+v, want empty", degraded)
	}
}

func TestListBooksPage(t *testing.T) {
	svc := newTestService(t)
	created := mustCreateClub(t, svc, "user-1")
	first := mustSuggestBook(t, svc, created.ID, "user-1", "Dune")
	mustSuggestBook(t, svc, created.ID, "user-1", "Hyperion")
	approveUnanimously(t, svc, first.ID, "user-1")

	result, err := svc.ListBooksPage(asUser("user-1"), storage.ListBooksPageRequest{
		ClubID: created.ID,
		Filter: `status = "approved"`,
	})
	if err != nil {
		t.Fatalf("ListBooksPage() error = %v", err)
	}
	if len(result.Books) != 1 || result.Books[0].ID != first.ID {
		t.Fatalf("Books = %+v", result.Books)
	}

	_, err = svc.ListBooksPage(asUser("user-1"), storage.ListBooksPageRequest{
		ClubID: created.ID,
		Filter: `publisher = "tor"`,
	})
	if code := apperrors.GetCode(err); code != apperrors.CodeFilterInvalid {
		t.Fatalf("error code = %v, want CodeFilterInvalid", code)
	}

	_, err = svc.ListBooksPage(asUser("stranger"), storage.ListBooksPageRequest{ClubID: created.ID})
	if code := apperrors.GetCode(err); code != apperrors.CodeClubNotMember {
		t.Fatalf("error code = %v, want CodeClubNotMember", code)
	}
}
