package repository

import (
	"context"

	"github.com/venuebook/venuebook-backend/internal/app/model"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.VenueReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (*model.VenueReview, error) {
	var review model.VenueReview
	err := r.db.WithContext(ctx).Preload("User").First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *model.VenueReview) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.VenueReview{}, id).Error
}

// FindByVenueID returns one page of a venue's reviews, newest first, with
// the author and any replier preloaded.
func (r *ReviewRepository) FindByVenueID(ctx context.Context, venueID uint, offset, limit int) ([]model.VenueReview, int64, error) {
	var reviews []model.VenueReview
	var total int64

	query := r.db.WithContext(ctx).Model(&model.VenueReview{}).Where("venue_id = ?", venueID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").Preload("ReplyUser").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// FindAllByVenueID returns every review for a venue, newest first. Used by
// the detail path where the full reply-annotated list is exposed.
func (r *ReviewRepository) FindAllByVenueID(ctx context.Context, venueID uint) ([]model.VenueReview, error) {
	var reviews []model.VenueReview
	err := r.db.WithContext(ctx).
		Preload("User").Preload("ReplyUser").
		Where("venue_id = ?", venueID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// RatingStats holds the aggregate for one venue.
type RatingStats struct {
	VenueID uint
	Count   int64
	Average float64
}

// StatsForVenue computes the review count and mean rating for one venue.
func (r *ReviewRepository) StatsForVenue(ctx context.Context, venueID uint) (*RatingStats, error) {
	stats := RatingStats{VenueID: venueID}

	if err := r.db.WithContext(ctx).Model(&model.VenueReview{}).
		Where("venue_id = ?", venueID).
		Count(&stats.Count).Error; err != nil {
		return nil, err
	}

	if stats.Count > 0 {
		if err := r.db.WithContext(ctx).Model(&model.VenueReview{}).
			Where("venue_id = ?", venueID).
			Select("AVG(rating)").
			Scan(&stats.Average).Error; err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
