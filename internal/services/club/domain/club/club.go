// Package club models book clubs and their memberships.
package club

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
	"github.com/louisbranch/bookclub.space/internal/platform/id"
)

// Role describes the privileges of a club member.
type Role int

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = iota
	// RoleMember is a regular club member.
	RoleMember
	// RoleAdmin can select the next book on top of member privileges.
	RoleAdmin
)

// InviteCodeLength is the default length of generated invite codes.
const InviteCodeLength = 6

// inviteCodeAlphabet is the character set for invite codes. Uppercase
// letters and digits only, so codes survive being read aloud.
const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	// ErrEmptyName indicates a missing club name.
	ErrEmptyName = apperrors.New(apperrors.CodeClubNameEmpty, "club name is required")
	// ErrMissingAdmin indicates a club created without an admin user.
	ErrMissingAdmin = apperrors.New(apperrors.CodeClubAdminMissing, "club admin is required")
	// ErrInvalidInviteCode indicates a malformed or unknown invite code.
	ErrInvalidInviteCode = apperrors.New(apperrors.CodeClubInviteInvalid, "invalid invite code")
)

// Club represents a book club.
type Club struct {
	ID          string
	Name        string
	Description string
	// AdminID is the user who created the club and selects books.
	AdminID    string
	InviteCode string
	CreatedAt  time.Time
}

// Membership ties a user to a club.
type Membership struct {
	ClubID   string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

// CreateInput describes the metadata needed to create a club.
type CreateInput struct {
	Name        string
	Description string
	AdminID     string
}

// Create builds a new club and the admin's founding membership. The
// creator is always the club's first member.
func Create(input CreateInput, now func() time.Time, idGenerator func() (string, error), codeGenerator func() (string, error)) (Club, Membership, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if codeGenerator == nil {
		codeGenerator = NewInviteCode
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" {
		return Club{}, Membership{}, ErrEmptyName
	}
	if strings.TrimSpace(input.AdminID) == "" {
		return Club{}, Membership{}, ErrMissingAdmin
	}

	clubID, err := idGenerator()
	if err != nil {
		return Club{}, Membership{}, fmt.Errorf("generate club id: %w", err)
	}
	code, err := codeGenerator()
	if err != nil {
		return Club{}, Membership{}, fmt.Errorf("generate invite code: %w", err)
	}

	createdAt := now().UTC()
	created := Club{
		ID:          clubID,
		Name:        input.Name,
		Description: input.Description,
		AdminID:     input.AdminID,
		InviteCode:  code,
		CreatedAt:   createdAt,
	}
	founder := Membership{
		ClubID:   clubID,
		UserID:   input.AdminID,
		Role:     RoleAdmin,
		JoinedAt: createdAt,
	}
	return created, founder, nil
}

// Join builds a membership for a user joining an existing club.
func Join(clubID, userID string, now func() time.Time) Membership {
	if now == nil {
		now = time.Now
	}
	return Membership{
		ClubID:   clubID,
		UserID:   userID,
		Role:     RoleMember,
		JoinedAt: now().UTC(),
	}
}

// NewInviteCode generates a random invite code of the default length.
func NewInviteCode() (string, error) {
	return NewInviteCodeWithLength(InviteCodeLength)
}

// NewInviteCodeWithLength generates a random invite code of the given
// length from the invite code alphabet.
func NewInviteCodeWithLength(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invite code length must be positive, got %d", length)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	code := make([]byte, length)
	for i, b := range buf {
		code[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(code), nil
}

// NormalizeInviteCode canonicalizes a user-supplied invite code. Codes
// are matched case-insensitively.
func NormalizeInviteCode(code string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return "", ErrInvalidInviteCode
	}
	for _, r := range trimmed {
		if !strings.ContainsRune(inviteCodeAlphabet, r) {
			return "", ErrInvalidInviteCode
		}
	}
	return trimmed, nil
}

// Label returns the stable string label for a role.
func (r Role) Label() string {
	switch r {
	case RoleMember:
		return "MEMBER"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNSPECIFIED"
	}
}

// RoleFromLabel parses a string label into a Role.
func RoleFromLabel(value string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "MEMBER":
		return RoleMember, nil
	case "ADMIN":
		return RoleAdmin, nil
	default:
		return RoleUnspecified, fmt.Errorf("unknown member role: %s", value)
	}
}
