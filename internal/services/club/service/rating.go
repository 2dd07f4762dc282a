package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/bookclub.space/internal/services/club/domain/rating"
	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// RateBookInput describes a member's review scores for a book.
type RateBookInput struct {
	BookID     string
	Storyline  int
	Characters int
	Spice      int
}

// BookReviews aggregates a book's ratings with their averages.
type BookReviews struct {
	Ratings  []storage.RatingRecord
	Averages rating.Averages
}

// RateBook records the caller's rating of a club book, regardless of
// the book's lifecycle status. Resubmitting replaces the caller's
// previous scores.
func (s *Service) RateBook(ctx context.Context, input RateBookInput) (storage.RatingRecord, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return storage.RatingRecord{}, err
	}
	bookRecord, err := s.loadBook(ctx, input.BookID)
	if err != nil {
		return storage.RatingRecord{}, err
	}
	if _, err := s.requireMembership(ctx, bookRecord.ClubID, userID); err != nil {
		return storage.RatingRecord{}, err
	}

	rated, err := rating.New(bookRecord.ID, userID, input.Storyline, input.Characters, input.Spice, s.clock)
	if err != nil {
		return storage.RatingRecord{}, err
	}

	record := storage.RatingRecord{
		BookID:     rated.BookID,
		MemberID:   rated.MemberID,
		Storyline:  rated.Storyline,
		Characters: rated.Characters,
		Spice:      rated.Spice,
		RatedAt:    rated.RatedAt,
	}
	if err := s.store.UpsertRating(ctx, record); err != nil {
		return storage.RatingRecord{}, fmt.Errorf("persist rating: %w", err)
	}
	return record, nil
}

// GetBookReviews returns a book's ratings and per-axis averages. The
// caller must be a member of the book's club. Axes with no ratings
// average to zero.
func (s *Service) GetBookReviews(ctx context.Context, bookID string) (BookReviews, error) {
	userID, err := s.callerID(ctx)
	if err != nil {
		return BookReviews{}, err
	}
	bookRecord, err := s.loadBook(ctx, bookID)
	if err != nil {
		return BookReviews{}, err
	}
	if _, err := s.requireMembership(ctx, bookRecord.ClubID, userID); err != nil {
		return BookReviews{}, err
	}

	records, err := s.store.ListRatings(ctx, bookRecord.ID)
	if err != nil {
		return BookReviews{}, fmt.Errorf("list ratings: %w", err)
	}

	return BookReviews{
		Ratings:  records,
		Averages: ratingAverages(records),
	}, nil
}

// ratingAverages computes per-axis averages over stored ratings.
func ratingAverages(records []storage.RatingRecord) rating.Averages {
	ratings := make([]rating.Rating, 0, len(records))
	for _, record := range records {
		ratings = append(ratings, rating.Rating{
			BookID:     record.BookID,
			MemberID:   record.MemberID,
			Storyline:  record.Storyline,
			Characters: record.Characters,
			Spice:      record.Spice,
			RatedAt:    record.RatedAt,
		})
	}
	return rating.Average(ratings)
}
