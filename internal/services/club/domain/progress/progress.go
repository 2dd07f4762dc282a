// Package progress models per-member reading progress on a book.
package progress

import (
	"math"
	"time"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
)

// ErrNegativePage indicates a negative page count.
var ErrNegativePage = apperrors.New(apperrors.CodeProgressNegativePage, "page counts cannot be negative")

// Progress tracks how far a member has read into a book.
type Progress struct {
	BookID      string
	MemberID    string
	CurrentPage int
	// TotalPages is the member's recorded page count for their edition.
	// Zero means the member never reported one.
	TotalPages int
	UpdatedAt  time.Time
}

// Update applies a progress report on top of the existing record. A
// zero totalPages keeps the previously recorded page count, so members
// only need to report it once.
func Update(existing Progress, bookID, memberID string, currentPage, totalPages int, now func() time.Time) (Progress, error) {
	if now == nil {
		now = time.Now
	}
	if currentPage < 0 || totalPages < 0 {
		return Progress{}, ErrNegativePage
	}
	if totalPages == 0 {
		totalPages = existing.TotalPages
	}
	return Progress{
		BookID:      bookID,
		MemberID:    memberID,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		UpdatedAt:   now().UTC(),
	}, nil
}

// Percent reports reading completion as a whole percentage, rounded to
// the nearest integer. Unknown page counts read as 0 percent.
func (p Progress) Percent() int {
	if p.TotalPages <= 0 {
		return 0
	}
	return int(math.Round(float64(p.CurrentPage) / float64(p.TotalPages) * 100))
}
