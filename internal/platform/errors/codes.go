// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeUnauthenticated indicates the caller carries no identity.
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// Club errors
	CodeClubNameEmpty     Code = "CLUB_NAME_EMPTY"
	CodeClubAdminMissing  Code = "CLUB_ADMIN_MISSING"
	CodeClubInviteInvalid Code = "CLUB_INVITE_CODE_INVALID"
	CodeClubNotMember     Code = "CLUB_NOT_MEMBER"
	CodeClubAlreadyMember Code = "CLUB_ALREADY_MEMBER"
	CodeClubAdminOnly     Code = "CLUB_ADMIN_ONLY"

	// Book errors
	CodeBookTitleEmpty              Code = "BOOK_TITLE_EMPTY"
	CodeBookAuthorEmpty             Code = "BOOK_AUTHOR_EMPTY"
	CodeBookInvalidSpiceRating      Code = "BOOK_INVALID_SPICE_RATING"
	CodeBookInvalidStatusTransition Code = "BOOK_INVALID_STATUS_TRANSITION"
	CodeBookNoApprovedBooks         Code = "BOOK_NO_APPROVED_BOOKS"
	CodeBookStatusDisallowsOp       Code = "BOOK_STATUS_DISALLOWS_OPERATION"

	// Vote errors
	CodeVoteInvalidDecision   Code = "VOTE_INVALID_DECISION"
	CodeVoteInvalidReason     Code = "VOTE_INVALID_REASON"
	CodeVoteReasonWithoutVeto Code = "VOTE_REASON_WITHOUT_VETO"

	// Progress errors
	CodeProgressNegativePage Code = "PROGRESS_NEGATIVE_PAGE"

	// Rating errors
	CodeRatingOutOfRange Code = "RATING_OUT_OF_RANGE"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// Filter errors
	CodeFilterInvalid Code = "FILTER_INVALID"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeClubNameEmpty,
		CodeClubInviteInvalid,
		CodeBookTitleEmpty,
		CodeBookAuthorEmpty,
		CodeBookInvalidSpiceRating,
		CodeVoteInvalidDecision,
		CodeVoteInvalidReason,
		CodeVoteReasonWithoutVeto,
		CodeProgressNegativePage,
		CodeRatingOutOfRange,
		CodeFilterInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeBookInvalidStatusTransition,
		CodeBookStatusDisallowsOp,
		CodeBookNoApprovedBooks,
		CodeClubAlreadyMember,
		CodeAlreadyExists:
		return codes.FailedPrecondition

	// PermissionDenied - caller is authenticated but lacks access
	case CodeClubNotMember,
		CodeClubAdminOnly:
		return codes.PermissionDenied

	// Unauthenticated - caller identity is missing
	case CodeUnauthenticated:
		return codes.Unauthenticated

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeClubAdminMissing:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
