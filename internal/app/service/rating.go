package service

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/pkg/logger"
)

// replyAuthorFallback is the display name used when a replier's account no
// longer resolves. One policy for both the listing and detail paths.
const replyAuthorFallback = "Venue Owner"

// RatingSummary is the aggregate rating for one venue.
type RatingSummary struct {
	Count   int64
	Average float64 // one decimal place
}

// RatingAggregator computes per-venue review aggregates for a page of
// candidates. It never fails a search: when the review store is unreachable
// for a venue, the venue's stored snapshot is substituted instead.
type RatingAggregator struct {
	reviewRepo *repository.ReviewRepository
	workers    int
}

func NewRatingAggregator(reviewRepo *repository.ReviewRepository, workers int) *RatingAggregator {
	if workers < 1 {
		workers = 1
	}
	return &RatingAggregator{reviewRepo: reviewRepo, workers: workers}
}

// Aggregate fans out one stats query per venue across a bounded worker pool
// and gathers results keyed by venue id. Output order is the caller's
// concern; completion order never leaks into it.
func (a *RatingAggregator) Aggregate(ctx context.Context, venues []model.Venue) map[uint]RatingSummary {
	out := make(map[uint]RatingSummary, len(venues))
	if len(venues) == 0 {
		return out
	}

	type keyed struct {
		venueID uint
		summary RatingSummary
	}

	jobs := make(chan model.Venue)
	results := make(chan keyed, len(venues))

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for venue := range jobs {
				results <- keyed{venueID: venue.ID, summary: a.aggregateOne(ctx, venue)}
			}
		}()
	}

	for _, venue := range venues {
		jobs <- venue
	}
	close(jobs)
	wg.Wait()
	close(results)

	for r := range results {
		out[r.venueID] = r.summary
	}
	return out
}

func (a *RatingAggregator) aggregateOne(ctx context.Context, venue model.Venue) RatingSummary {
	stats, err := a.reviewRepo.StatsForVenue(ctx, venue.ID)
	if err != nil {
		logger.Warn("Rating aggregation failed, using stored snapshot", map[string]interface{}{
			"venue_id": venue.ID,
			"error":    err.Error(),
		})
		return RatingSummary{Count: venue.RatingCount, Average: venue.RatingAverage}
	}

	return RatingSummary{
		Count:   stats.Count,
		Average: roundRating(stats.Average),
	}
}

// ReviewsWithReplies returns a venue's reviews newest first, each annotated
// with its owner reply when one exists. A reply exists only when its trimmed
// message is non-empty.
func (a *RatingAggregator) ReviewsWithReplies(ctx context.Context, venueID uint) ([]model.ReviewEntry, error) {
	reviews, err := a.reviewRepo.FindAllByVenueID(ctx, venueID)
	if err != nil {
		return nil, err
	}

	entries := make([]model.ReviewEntry, 0, len(reviews))
	for _, review := range reviews {
		entries = append(entries, reviewEntry(review))
	}
	return entries, nil
}

func reviewEntry(review model.VenueReview) model.ReviewEntry {
	entry := model.ReviewEntry{
		UserID:   review.UserID,
		UserName: review.User.Name,
		Rating:   review.Rating,
		Comment:  review.Comment,
		Date:     review.CreatedAt,
	}

	message := strings.TrimSpace(review.ReplyMessage)
	if message == "" {
		return entry
	}

	reply := &model.ReviewReply{
		Message:   message,
		RepliedBy: replyAuthorFallback,
	}
	if review.ReplyUser != nil && review.ReplyUser.Name != "" {
		reply.RepliedBy = review.ReplyUser.Name
	}
	if review.RepliedAt != nil {
		reply.RepliedAt = *review.RepliedAt
	}
	entry.Reply = reply

	return entry
}

// roundRating rounds an average to one decimal place.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
