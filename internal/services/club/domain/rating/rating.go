// Package rating models member reviews of completed and current books.
package rating

import (
	"math"
	"time"

	apperrors "github.com/louisbranch/bookclub.space/internal/platform/errors"
)

const (
	// Min is the lowest allowed rating value.
	Min = 1
	// Max is the highest allowed rating value.
	Max = 5
)

// ErrOutOfRange indicates a rating value outside 1..5.
var ErrOutOfRange = apperrors.New(apperrors.CodeRatingOutOfRange, "ratings must be between 1 and 5")

// Rating is one member's review of a book. Each of the three axes is
// scored 1..5. A member holds at most one rating per book; resubmitting
// replaces the previous scores.
type Rating struct {
	BookID     string
	MemberID   string
	Storyline  int
	Characters int
	Spice      int
	RatedAt    time.Time
}

// Averages aggregates ratings across members. Axes with no ratings
// report 0.
type Averages struct {
	Storyline  float64
	Characters float64
	Spice      float64
	Count      int
}

// New builds a validated rating stamped with the current time.
func New(bookID, memberID string, storyline, characters, spice int, now func() time.Time) (Rating, error) {
	if now == nil {
		now = time.Now
	}
	if err := Validate(storyline, characters, spice); err != nil {
		return Rating{}, err
	}
	return Rating{
		BookID:     bookID,
		MemberID:   memberID,
		Storyline:  storyline,
		Characters: characters,
		Spice:      spice,
		RatedAt:    now().UTC(),
	}, nil
}

// Validate checks that all three axes fall within 1..5.
func Validate(storyline, characters, spice int) error {
	for _, value := range []int{storyline, characters, spice} {
		if value < Min || value > Max {
			return ErrOutOfRange
		}
	}
	return nil
}

// Average computes per-axis averages over a set of ratings, rounded to
// one decimal place. An empty set yields zero averages.
func Average(ratings []Rating) Averages {
	if len(ratings) == 0 {
		return Averages{}
	}
	var storyline, characters, spice int
	for _, r := range ratings {
		storyline += r.Storyline
		characters += r.Characters
		spice += r.Spice
	}
	count := len(ratings)
	return Averages{
		Storyline:  roundTenth(float64(storyline) / float64(count)),
		Characters: roundTenth(float64(characters) / float64(count)),
		Spice:      roundTenth(float64(spice) / float64(count)),
		Count:      count,
	}
}

func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}
