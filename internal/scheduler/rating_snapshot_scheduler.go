package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/pkg/logger"
)

// RatingSnapshotScheduler periodically recomputes the denormalized rating
// columns on venues. The snapshots back rating-based filtering and sorting,
// and serve as the fallback when live aggregation fails for a venue.
type RatingSnapshotScheduler struct {
	cron      *cron.Cron
	venueRepo repository.VenueRepository
}

func NewRatingSnapshotScheduler(venueRepo repository.VenueRepository) *RatingSnapshotScheduler {
	return &RatingSnapshotScheduler{
		cron:      cron.New(),
		venueRepo: venueRepo,
	}
}

// Start registers the hourly refresh job and starts the cron loop.
func (s *RatingSnapshotScheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", s.refresh)
	if err != nil {
		logger.Error("Failed to add cron job for rating snapshot refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Rating snapshot scheduler started successfully (hourly)", nil)

	// Warm the snapshots once on boot so a fresh deployment does not wait
	// up to an hour for rating sorts to work.
	go s.refresh()

	return nil
}

func (s *RatingSnapshotScheduler) refresh() {
	logger.Info("Starting scheduled rating snapshot refresh", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	updated, err := s.venueRepo.RefreshRatingSnapshots(ctx)
	if err != nil {
		logger.Error("Failed to refresh rating snapshots", err)
		return
	}

	logger.Info("Rating snapshots refreshed successfully", map[string]interface{}{
		"venues_updated": updated,
	})
}

// Stop stops the scheduler
func (s *RatingSnapshotScheduler) Stop() {
	logger.Info("Stopping rating snapshot scheduler...", nil)
	s.cron.Stop()
	logger.Info("Rating snapshot scheduler stopped", nil)
}
