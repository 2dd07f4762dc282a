package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"

	CodeClubNameEmpty     = "CLUB_NAME_EMPTY"
	CodeClubAdminMissing  = "CLUB_ADMIN_MISSING"
	CodeClubInviteInvalid = "CLUB_INVITE_CODE_INVALID"
	CodeClubNotMember     = "CLUB_NOT_MEMBER"
	CodeClubAlreadyMember = "CLUB_ALREADY_MEMBER"
	CodeClubAdminOnly     = "CLUB_ADMIN_ONLY"

	CodeBookTitleEmpty              = "BOOK_TITLE_EMPTY"
	CodeBookAuthorEmpty             = "BOOK_AUTHOR_EMPTY"
	CodeBookInvalidSpiceRating      = "BOOK_INVALID_SPICE_RATING"
	CodeBookInvalidStatusTransition = "BOOK_INVALID_STATUS_TRANSITION"
	CodeBookNoApprovedBooks         = "BOOK_NO_APPROVED_BOOKS"
	CodeBookStatusDisallowsOp       = "BOOK_STATUS_DISALLOWS_OPERATION"

	CodeVoteInvalidDecision   = "VOTE_INVALID_DECISION"
	CodeVoteInvalidReason     = "VOTE_INVALID_REASON"
	CodeVoteReasonWithoutVeto = "VOTE_REASON_WITHOUT_VETO"

	CodeProgressNegativePage = "PROGRESS_NEGATIVE_PAGE"

	CodeRatingOutOfRange = "RATING_OUT_OF_RANGE"

	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"

	CodeFilterInvalid = "FILTER_INVALID"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnauthenticated: "You must be logged in",

		// Club errors
		CodeClubNameEmpty:     "Club name cannot be empty",
		CodeClubAdminMissing:  "Club admin was not found",
		CodeClubInviteInvalid: "Invalid invite code",
		CodeClubNotMember:     "You are not a member of this club",
		CodeClubAlreadyMember: "You are already a member of this club",
		CodeClubAdminOnly:     "Only the club admin can do that",

		// Book errors
		CodeBookTitleEmpty:              "Book title cannot be empty",
		CodeBookAuthorEmpty:             "Book author cannot be empty",
		CodeBookInvalidSpiceRating:      "Spice rating must be between 1 and 5",
		CodeBookInvalidStatusTransition: "Cannot move book from {{.FromStatus}} to {{.ToStatus}}",
		CodeBookNoApprovedBooks:         "No approved books available",
		CodeBookStatusDisallowsOp:       "Book status {{.Status}} does not allow {{.Operation}}",

		// Vote errors
		CodeVoteInvalidDecision:   "Vote must be approve or veto",
		CodeVoteInvalidReason:     "Unknown veto reason",
		CodeVoteReasonWithoutVeto: "A veto reason requires a veto vote",

		// Progress errors
		CodeProgressNegativePage: "Page numbers cannot be negative",

		// Rating errors
		CodeRatingOutOfRange: "Ratings must be between 1 and 5",

		// Storage errors
		CodeNotFound:      "The requested resource was not found",
		CodeAlreadyExists: "The resource already exists",

		// Filter errors
		CodeFilterInvalid: "Filter expression is invalid",
	},
}
