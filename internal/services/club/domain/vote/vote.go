// Package vote models member votes on pending book suggestions.
package vote

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
)

// Decision is a member's stance on a pending book.
type Decision int

const (
	// DecisionUnspecified represents an invalid decision value.
	DecisionUnspecified Decision = iota
	// DecisionApprove indicates the member wants to read the book.
	DecisionApprove
	// DecisionVeto indicates the member blocks the book.
	DecisionVeto
)

// VetoReason explains a veto. It accompanies veto decisions only.
type VetoReason int

const (
	// VetoReasonUnspecified indicates no reason was given.
	VetoReasonUnspecified VetoReason = iota
	// VetoReasonAlreadyRead indicates the member has read the book before.
	VetoReasonAlreadyRead
	// VetoReasonNotForMe indicates the book does not suit the member.
	VetoReasonNotForMe
	// VetoReasonNotInterested indicates the member is not interested.
	VetoReasonNotInterested
)

var (
	// ErrInvalidDecision indicates a vote without a valid decision.
	ErrInvalidDecision = apperrors.New(apperrors.CodeVoteInvalidDecision, "vote decision must be approve or veto")
	// ErrInvalidReason indicates an unknown veto reason value.
	ErrInvalidReason = apperrors.New(apperrors.CodeVoteInvalidReason, "unknown veto reason")
	// ErrReasonWithoutVeto indicates a reason attached to an approve vote.
	ErrReasonWithoutVeto = apperrors.New(apperrors.CodeVoteReasonWithoutVeto, "veto reason requires a veto decision")
)

// Vote records a single member's decision on a book. A member holds at
// most one vote per book; recasting replaces the previous decision.
type Vote struct {
	BookID   string
	MemberID string
	Decision Decision
	Reason   VetoReason
	CastAt   time.Time
}

// Cast builds a validated vote stamped with the current time.
func Cast(bookID, memberID string, decision Decision, reason VetoReason, now func() time.Time) (Vote, error) {
	if now == nil {
		now = time.Now
	}
	if err := Validate(decision, reason); err != nil {
		return Vote{}, err
	}
	return Vote{
		BookID:   bookID,
		MemberID: memberID,
		Decision: decision,
		Reason:   reason,
		CastAt:   now().UTC(),
	}, nil
}

// Validate checks a decision and reason pairing. Reasons only make
// sense on vetoes; an approve vote carrying a reason is rejected rather
// than silently dropped.
func Validate(decision Decision, reason VetoReason) error {
	switch decision {
	case DecisionApprove, DecisionVeto:
	default:
		return ErrInvalidDecision
	}
	switch reason {
	case VetoReasonUnspecified, VetoReasonAlreadyRead, VetoReasonNotForMe, VetoReasonNotInterested:
	default:
		return ErrInvalidReason
	}
	if decision == DecisionApprove && reason != VetoReasonUnspecified {
		return ErrReasonWithoutVeto
	}
	return nil
}

// Label returns the stable string label for a decision.
func (d Decision) Label() string {
	switch d {
	case DecisionApprove:
		return "APPROVE"
	case DecisionVeto:
		return "VETO"
	default:
		return "UNSPECIFIED"
	}
}

// DecisionFromLabel parses a string label into a Decision.
func DecisionFromLabel(value string) (Decision, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "APPROVE":
		return DecisionApprove, nil
	case "VETO":
		return DecisionVeto, nil
	default:
		return DecisionUnspecified, fmt.Errorf("unknown vote decision: %s", value)
	}
}

// Label returns the stable string label for a veto reason.
func (r VetoReason) Label() string {
	switch r {
	case VetoReasonAlreadyRead:
		return "ALREADY_READ"
	case VetoReasonNotForMe:
		return "NOT_FOR_ME"
	case VetoReasonNotInterested:
		return "NOT_INTERESTED"
	default:
		return "UNSPECIFIED"
	}
}

// VetoReasonFromLabel parses a string label into a VetoReason. The
// empty string maps to VetoReasonUnspecified.
func VetoReasonFromLabel(value string) (VetoReason, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "UNSPECIFIED":
		return VetoReasonUnspecified, nil
	case "ALREADY_READ":
		return VetoReasonAlreadyRead, nil
	case "NOT_FOR_ME":
		return VetoReasonNotForMe, nil
	case "NOT_INTERESTED":
		return VetoReasonNotInterested, nil
	default:
		return VetoReasonUnspecified, fmt.Errorf("unknown veto reason: %s", value)
	}
}
