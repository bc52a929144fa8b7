package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/venuebook/venuebook-backend/config"
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/normalizer"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/pkg/logger"
	"github.com/venuebook/venuebook-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	// ErrStoreUnavailable means the venue store could not be reached.
	// Fatal for the request; the caller decides whether to retry.
	ErrStoreUnavailable = errors.New("venue store unavailable")
	// ErrQueryTimeout means one store operation exceeded its bound. Also
	// fatal, but distinct so callers can apply a different retry policy.
	ErrQueryTimeout = errors.New("store query timed out")

	ErrVenueNotFound = errors.New("venue not found")
)

// SearchResultPage is the only thing the search core emits.
type SearchResultPage struct {
	Results    []model.CanonicalVenue `json:"results"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalCount int64                  `json:"total_count"`
	TotalPages int64                  `json:"total_pages"`
}

type SearchService interface {
	Search(ctx context.Context, req SearchRequest, role CallerRole) (*SearchResultPage, error)
	VenueDetail(ctx context.Context, id uint, role CallerRole) (*model.CanonicalVenue, error)
}

type searchService struct {
	venueRepo  repository.VenueRepository
	aggregator *RatingAggregator
	cfg        config.SearchConfig
}

func NewSearchService(venueRepo repository.VenueRepository, aggregator *RatingAggregator, cfg config.SearchConfig) SearchService {
	return &searchService{
		venueRepo:  venueRepo,
		aggregator: aggregator,
		cfg:        cfg,
	}
}

// Search runs one request through build, fetch, enrich, geo-refine and
// respond. It holds no state across requests.
func (s *searchService) Search(ctx context.Context, req SearchRequest, role CallerRole) (*SearchResultPage, error) {
	req.Page, req.Limit = s.clampPagination(req.Page, req.Limit)

	logger.Debug("Searching venues", map[string]interface{}{
		"query": req.Query,
		"city":  req.City,
		"page":  req.Page,
		"limit": req.Limit,
		"role":  string(role),
	})

	pred := BuildPredicate(req, role)
	sortBy := BuildSort(req)

	venues, total, err := s.fetch(ctx, repository.VenueQuery{
		Predicate: pred,
		Sort:      sortBy,
		Page:      req.Page,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}

	// Enrich only the fetched page: batch-aggregate ratings and normalize
	// each record. Aggregation failures are absorbed per venue.
	summaries := s.aggregator.Aggregate(ctx, venues)

	results := make([]model.CanonicalVenue, 0, len(venues))
	for i := range venues {
		canon := normalizer.Normalize(&venues[i])
		if summary, ok := summaries[venues[i].ID]; ok {
			canon.Rating.Average = summary.Average
			canon.Rating.TotalReviews = summary.Count
		}
		results = append(results, canon)
	}

	if lat, lng, radius, ok := req.GeoOrigin(); ok {
		results, total = geoRefine(results, lat, lng, radius)
	}

	page := &SearchResultPage{
		Results:    results,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalCount: total,
		TotalPages: totalPages(total, req.Limit),
	}

	logger.Info("Venues searched", map[string]interface{}{
		"count":       len(page.Results),
		"total_count": page.TotalCount,
		"page":        page.Page,
	})
	return page, nil
}

// fetch runs the page query and the unpaged count concurrently; the two are
// independent. Each carries its own timeout.
func (s *searchService) fetch(ctx context.Context, q repository.VenueQuery) ([]model.Venue, int64, error) {
	var (
		venues   []model.Venue
		total    int64
		pageErr  error
		countErr error
		wg       sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		defer cancel()
		venues, pageErr = s.venueRepo.FindPage(opCtx, q)
	}()
	go func() {
		defer wg.Done()
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		defer cancel()
		total, countErr = s.venueRepo.Count(opCtx, q.Predicate)
	}()
	wg.Wait()

	for _, err := range []error{pageErr, countErr} {
		if err != nil {
			logger.Error("Venue store fetch failed", err, map[string]interface{}{
				"page": q.Page,
			})
			return nil, 0, classifyStoreError(err)
		}
	}

	return venues, total, nil
}

// geoRefine filters the already-fetched page by radius, orders it by
// ascending distance and replaces the reported total with the post-filter
// count of this page. The cross-page total is deliberately not recomputed;
// doing so would need an unpaged scan per request.
func geoRefine(results []model.CanonicalVenue, lat, lng, radius float64) ([]model.CanonicalVenue, int64) {
	kept := make([]model.CanonicalVenue, 0, len(results))
	for _, r := range results {
		distance := util.DistanceTo(lat, lng, r.Location.Latitude, r.Location.Longitude)
		if !util.WithinRadius(distance, radius) {
			continue
		}
		r.DistanceKm = distance
		kept = append(kept, r)
	}

	// Stable: ties and unlocated venues keep their fetch order.
	sort.SliceStable(kept, func(i, j int) bool {
		return util.LessByDistance(kept[i].DistanceKm, kept[j].DistanceKm)
	})

	return kept, int64(len(kept))
}

// VenueDetail returns the canonical record for one venue with its full
// reply-annotated review list. Non-privileged callers only see publicly
// visible venues.
func (s *searchService) VenueDetail(ctx context.Context, id uint, role CallerRole) (*model.CanonicalVenue, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	venue, err := s.venueRepo.FindByID(opCtx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		logger.Error("Failed to fetch venue detail", err, map[string]interface{}{
			"venue_id": id,
		})
		return nil, classifyStoreError(err)
	}

	if !role.Privileged() && !publiclyVisible(venue) {
		return nil, ErrVenueNotFound
	}

	canon := normalizer.Normalize(venue)

	summaries := s.aggregator.Aggregate(ctx, []model.Venue{*venue})
	if summary, ok := summaries[venue.ID]; ok {
		canon.Rating.Average = summary.Average
		canon.Rating.TotalReviews = summary.Count
	}

	reviews, err := s.aggregator.ReviewsWithReplies(ctx, venue.ID)
	if err != nil {
		// Same degradation as aggregation: detail still renders with the
		// snapshot numbers and an empty review list.
		logger.Warn("Failed to load reviews for venue detail", map[string]interface{}{
			"venue_id": venue.ID,
			"error":    err.Error(),
		})
		reviews = []model.ReviewEntry{}
	}
	canon.Rating.Reviews = reviews

	return &canon, nil
}

func publiclyVisible(v *model.Venue) bool {
	if v.Status != model.VenueStatusApproved && v.Status != model.VenueStatusActive {
		return false
	}
	return v.Visibility == nil || *v.Visibility
}

func (s *searchService) clampPagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// classifyStoreError maps a store failure onto the error taxonomy without
// leaking the store's own message.
func classifyStoreError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrQueryTimeout
	}
	return ErrStoreUnavailable
}
