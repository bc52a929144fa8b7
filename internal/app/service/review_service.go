package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound     = errors.New("review not found")
	ErrReviewAccessDenied = errors.New("review access denied")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrEmptyReply         = errors.New("reply message must not be empty")
)

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	venueRepo  repository.VenueRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, venueRepo repository.VenueRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		venueRepo:  venueRepo,
	}
}

// CreateReview records a customer review. The same user may review a venue
// more than once.
func (s *ReviewService) CreateReview(ctx context.Context, userID, venueID uint, rating int, comment string) (*model.VenueReview, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.venueRepo.FindByID(ctx, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	review := &model.VenueReview{
		VenueID: venueID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		logger.Error("Failed to create review", err, map[string]interface{}{
			"venue_id": venueID,
			"user_id":  userID,
		})
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"review_id": review.ID,
		"venue_id":  venueID,
	})
	return s.reviewRepo.FindByID(ctx, review.ID)
}

// GetVenueReviews returns one page of a venue's reviews, newest first.
func (s *ReviewService) GetVenueReviews(ctx context.Context, venueID uint, page, pageSize int) ([]model.VenueReview, int64, error) {
	if _, err := s.venueRepo.FindByID(ctx, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrVenueNotFound
		}
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	return s.reviewRepo.FindByVenueID(ctx, venueID, offset, pageSize)
}

// ReplyToReview attaches (or overwrites) the owner reply on a review. Only
// the venue owner or an admin may reply.
func (s *ReviewService) ReplyToReview(ctx context.Context, userID uint, isAdmin bool, reviewID uint, message string) (*model.VenueReview, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyReply
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	venue, err := s.venueRepo.FindByID(ctx, review.VenueID)
	if err != nil {
		return nil, err
	}

	isOwner := venue.OwnerID != nil && *venue.OwnerID == userID
	if !isOwner && !isAdmin {
		return nil, ErrReviewAccessDenied
	}

	now := time.Now()
	review.ReplyMessage = message
	review.ReplyUserID = &userID
	review.RepliedAt = &now

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		logger.Error("Failed to save review reply", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return nil, err
	}

	logger.Info("Review reply saved", map[string]interface{}{
		"review_id": reviewID,
		"venue_id":  review.VenueID,
	})
	return review, nil
}

// DeleteReview removes a review. Only the author or an admin may delete.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID uint, isAdmin bool) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.UserID != userID && !isAdmin {
		return ErrReviewAccessDenied
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": reviewID,
	})
	return nil
}
