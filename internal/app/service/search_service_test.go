package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venuebook/venuebook-backend/config"
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/internal/db"
	"gorm.io/gorm"
)

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		DefaultPageSize:    12,
		MaxPageSize:        100,
		AggregationWorkers: 4,
		StoreTimeout:       5 * time.Second,
		DefaultRadiusKm:    10,
	}
}

func setupSearchServiceTest(t *testing.T) (*gorm.DB, SearchService) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gdb) })

	venueRepo := repository.NewVenueRepository(gdb)
	aggregator := NewRatingAggregator(repository.NewReviewRepository(gdb), 4)
	return gdb, NewSearchService(venueRepo, aggregator, testSearchConfig())
}

func ptrF(f float64) *float64 { return &f }
func ptrB(b bool) *bool       { return &b }

func TestSearch_TextAndCityFilter(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	createVenue(t, gdb, model.Venue{
		Name: "Royal Garden Palace", City: "Mumbai", Status: model.VenueStatusApproved,
	})
	createVenue(t, gdb, model.Venue{
		Name: "Garden Retreat", City: "Pune", Status: model.VenueStatusApproved,
	})
	createVenue(t, gdb, model.Venue{
		Name: "City Banquet", City: "Mumbai", Status: model.VenueStatusApproved,
	})

	page, err := svc.Search(context.Background(), SearchRequest{
		Query: "garden",
		City:  "mumbai",
	}, CallerAnonymous)
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "Royal Garden Palace", page.Results[0].Name)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestSearch_StatusClampHidesModeratedAndHidden(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	createVenue(t, gdb, model.Venue{Name: "Visible", City: "Delhi", Status: model.VenueStatusApproved})
	createVenue(t, gdb, model.Venue{Name: "Active Too", City: "Delhi", Status: model.VenueStatusActive})
	createVenue(t, gdb, model.Venue{Name: "Pending", City: "Delhi", Status: model.VenueStatusPending})
	createVenue(t, gdb, model.Venue{Name: "Rejected", City: "Delhi", Status: model.VenueStatusRejected})
	createVenue(t, gdb, model.Venue{
		Name: "Hidden", City: "Delhi", Status: model.VenueStatusApproved, Visibility: ptrB(false),
	})

	// Even an explicit status request must not widen visibility
	page, err := svc.Search(context.Background(), SearchRequest{Status: "pending"}, CallerUser)
	require.NoError(t, err)

	names := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Visible", "Active Too"}, names)
}

func TestSearch_AdminStatusFilter(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	createVenue(t, gdb, model.Venue{Name: "Approved", City: "Delhi", Status: model.VenueStatusApproved})
	createVenue(t, gdb, model.Venue{Name: "Awaiting", City: "Delhi", Status: model.VenueStatusPending})

	page, err := svc.Search(context.Background(), SearchRequest{Status: "pending"}, CallerAdmin)
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "Awaiting", page.Results[0].Name)
}

func TestSearch_RangeAndTagFilters(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	createVenue(t, gdb, model.Venue{
		Name: "Budget Lawn", City: "Jaipur", Status: model.VenueStatusApproved,
		BasePrice: 20000, CapacityMinGuests: 50, CapacityMaxGuests: 300,
		Tags: model.StringArray{"wedding", "outdoor"},
	})
	createVenue(t, gdb, model.Venue{
		Name: "Premium Palace", City: "Jaipur", Status: model.VenueStatusApproved,
		BasePrice: 90000, CapacityMinGuests: 100, CapacityMaxGuests: 1000,
		Tags: model.StringArray{"wedding", "luxury"},
	})
	createVenue(t, gdb, model.Venue{
		Name: "Tiny Hall", City: "Jaipur", Status: model.VenueStatusApproved,
		BasePrice: 15000, CapacityMinGuests: 10, CapacityMaxGuests: 80,
		Tags: model.StringArray{"corporate"},
	})

	minCap := 100
	page, err := svc.Search(context.Background(), SearchRequest{
		MaxPrice:    ptrF(50000),
		MinCapacity: &minCap,
		Tags:        []string{"Wedding"},
	}, CallerAnonymous)
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "Budget Lawn", page.Results[0].Name)
}

func TestSearch_NormalizesLegacyShapes(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	createVenue(t, gdb, model.Venue{
		Name: "Legacy Hall", City: "Kolkata", Status: model.VenueStatusApproved,
		LocationRaw:   model.RawJSON(`{"City": "Kolkata", "pincode": "700001"}`),
		CapacityRaw:   model.RawJSON(`250`),
		PricePerPlate: model.RawJSON(`{"veg": 600, "nonVeg": 800}`),
	})

	page, err := svc.Search(context.Background(), SearchRequest{City: "Kolkata"}, CallerAnonymous)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	canon := page.Results[0]
	assert.Equal(t, "Kolkata", canon.Location.City)
	assert.Equal(t, "700001", canon.Location.PostalCode)
	assert.Equal(t, 1, canon.Capacity.MinGuests)
	assert.Equal(t, 250, canon.Capacity.MaxGuests)
	assert.Equal(t, 600.0, canon.Pricing.VegPerPlate)
}

func TestSearch_RatingsAggregatedPerPage(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	venue := createVenue(t, gdb, model.Venue{
		Name: "Rated", City: "Delhi", Status: model.VenueStatusApproved,
	})
	user := createUser(t, gdb, "rater", model.RoleUser)
	createReview(t, gdb, venue.ID, user.ID, 5)
	createReview(t, gdb, venue.ID, user.ID, 4)

	page, err := svc.Search(context.Background(), SearchRequest{}, CallerAnonymous)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, 4.5, page.Results[0].Rating.Average)
	assert.Equal(t, int64(2), page.Results[0].Rating.TotalReviews)
	assert.Empty(t, page.Results[0].Rating.Reviews, "listing omits review bodies")
}

func TestSearch_GeoRefinement(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	// Origin: Connaught Place, Delhi
	near := createVenue(t, gdb, model.Venue{
		Name: "Near", City: "Delhi", Status: model.VenueStatusApproved,
		Latitude: ptrF(28.64), Longitude: ptrF(77.22),
	})
	nearer := createVenue(t, gdb, model.Venue{
		Name: "Nearer", City: "Delhi", Status: model.VenueStatusApproved,
		Latitude: ptrF(28.633), Longitude: ptrF(77.220),
	})
	createVenue(t, gdb, model.Venue{
		Name: "Far Mumbai", City: "Mumbai", Status: model.VenueStatusApproved,
		Latitude: ptrF(19.07), Longitude: ptrF(72.87),
	})
	unlocated := createVenue(t, gdb, model.Venue{
		Name: "Unlocated", City: "Delhi", Status: model.VenueStatusApproved,
	})

	page, err := svc.Search(context.Background(), SearchRequest{
		Latitude:  ptrF(28.6315),
		Longitude: ptrF(77.2167),
		RadiusKm:  25,
	}, CallerAnonymous)
	require.NoError(t, err)

	require.Len(t, page.Results, 3, "out-of-radius venue is dropped, unlocated kept")
	assert.Equal(t, nearer.Name, page.Results[0].Name)
	assert.Equal(t, near.Name, page.Results[1].Name)
	assert.Equal(t, unlocated.Name, page.Results[2].Name, "unlocated sorts last")

	require.NotNil(t, page.Results[0].DistanceKm)
	require.NotNil(t, page.Results[1].DistanceKm)
	assert.Less(t, *page.Results[0].DistanceKm, *page.Results[1].DistanceKm)
	assert.Nil(t, page.Results[2].DistanceKm)

	assert.Equal(t, int64(3), page.TotalCount, "total reflects the refined page")
}

func TestSearch_InvalidOriginDisablesGeo(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	createVenue(t, gdb, model.Venue{
		Name: "Anywhere", City: "Delhi", Status: model.VenueStatusApproved,
		Latitude: ptrF(28.64), Longitude: ptrF(77.22),
	})

	page, err := svc.Search(context.Background(), SearchRequest{
		Latitude:  ptrF(999),
		Longitude: ptrF(77.2),
		RadiusKm:  1,
	}, CallerAnonymous)
	require.NoError(t, err)

	require.Len(t, page.Results, 1, "invalid origin must not filter anything")
	assert.Nil(t, page.Results[0].DistanceKm)
}

func TestSearch_PaginationClamps(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	for i := 0; i < 15; i++ {
		createVenue(t, gdb, model.Venue{Name: "Hall", City: "Delhi", Status: model.VenueStatusApproved})
	}

	page, err := svc.Search(context.Background(), SearchRequest{Page: -3, Limit: 0}, CallerAnonymous)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.Limit, "default page size")
	assert.Len(t, page.Results, 12)
	assert.Equal(t, int64(15), page.TotalCount)
	assert.Equal(t, int64(2), page.TotalPages)

	page, err = svc.Search(context.Background(), SearchRequest{Limit: 5000}, CallerAnonymous)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit, "limit clamped to maximum")

	page, err = svc.Search(context.Background(), SearchRequest{Page: 2, Limit: 12}, CallerAnonymous)
	require.NoError(t, err)
	assert.Len(t, page.Results, 3)
}

func TestSearch_EmptyResultPage(t *testing.T) {
	_, svc := setupSearchServiceTest(t)

	page, err := svc.Search(context.Background(), SearchRequest{City: "Nowhere"}, CallerAnonymous)
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
	assert.Equal(t, int64(0), page.TotalCount)
	assert.Equal(t, int64(0), page.TotalPages)
}

func TestSearch_StoreUnavailable(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	// Closing the store makes both fetch legs fail
	db.CleanupTestDB(gdb)

	_, err := svc.Search(context.Background(), SearchRequest{}, CallerAnonymous)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSearch_Timeout(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)
	createVenue(t, gdb, model.Venue{Name: "Hall", City: "Delhi", Status: model.VenueStatusApproved})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.Search(ctx, SearchRequest{}, CallerAnonymous)
	assert.ErrorIs(t, err, ErrQueryTimeout)
}

func TestVenueDetail_PublicVisibility(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	pending := createVenue(t, gdb, model.Venue{
		Name: "Pending Hall", City: "Delhi", Status: model.VenueStatusPending,
	})
	hidden := createVenue(t, gdb, model.Venue{
		Name: "Hidden Hall", City: "Delhi", Status: model.VenueStatusApproved, Visibility: ptrB(false),
	})
	public := createVenue(t, gdb, model.Venue{
		Name: "Public Hall", City: "Delhi", Status: model.VenueStatusApproved,
	})

	_, err := svc.VenueDetail(context.Background(), pending.ID, CallerAnonymous)
	assert.ErrorIs(t, err, ErrVenueNotFound)

	_, err = svc.VenueDetail(context.Background(), hidden.ID, CallerUser)
	assert.ErrorIs(t, err, ErrVenueNotFound)

	canon, err := svc.VenueDetail(context.Background(), public.ID, CallerAnonymous)
	require.NoError(t, err)
	assert.Equal(t, "Public Hall", canon.Name)

	// Admins see everything
	canon, err = svc.VenueDetail(context.Background(), pending.ID, CallerAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Pending Hall", canon.Name)
}

func TestVenueDetail_NotFound(t *testing.T) {
	_, svc := setupSearchServiceTest(t)

	_, err := svc.VenueDetail(context.Background(), 9999, CallerAdmin)
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestVenueDetail_IncludesRepliedReviews(t *testing.T) {
	gdb, svc := setupSearchServiceTest(t)

	owner := createUser(t, gdb, "owner", model.RoleVendor)
	venue := createVenue(t, gdb, model.Venue{
		Name: "Detail Hall", City: "Delhi", Status: model.VenueStatusApproved, OwnerID: &owner.ID,
	})
	user := createUser(t, gdb, "guest", model.RoleUser)

	review := createReview(t, gdb, venue.ID, user.ID, 5)
	now := time.Now()
	require.NoError(t, gdb.Model(&review).Updates(map[string]interface{}{
		"reply_message": "Glad you enjoyed it",
		"reply_user_id": owner.ID,
		"replied_at":    now,
	}).Error)
	createReview(t, gdb, venue.ID, user.ID, 3)

	canon, err := svc.VenueDetail(context.Background(), venue.ID, CallerAnonymous)
	require.NoError(t, err)

	require.Len(t, canon.Rating.Reviews, 2)
	assert.Equal(t, 4.0, canon.Rating.Average)
	assert.Equal(t, int64(2), canon.Rating.TotalReviews)

	var replied *model.ReviewEntry
	for i := range canon.Rating.Reviews {
		if canon.Rating.Reviews[i].Reply != nil {
			replied = &canon.Rating.Reviews[i]
		}
	}
	require.NotNil(t, replied)
	assert.Equal(t, "Glad you enjoyed it", replied.Reply.Message)
	assert.Equal(t, "owner", replied.Reply.RepliedBy)
}
