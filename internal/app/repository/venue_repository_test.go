package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/db"
	"gorm.io/gorm"
)

func setupVenueRepoTest(t *testing.T) (*gorm.DB, VenueRepository) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gdb) })

	return gdb, NewVenueRepository(gdb)
}

func seedVenue(t *testing.T, gdb *gorm.DB, venue model.Venue) model.Venue {
	require.NoError(t, gdb.Create(&venue).Error)
	return venue
}

func venueNames(venues []model.Venue) []string {
	names := make([]string, 0, len(venues))
	for _, v := range venues {
		names = append(names, v.Name)
	}
	return names
}

func TestFindPage_LikeIsCaseInsensitive(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)
	seedVenue(t, gdb, model.Venue{Name: "ROYAL Garden Palace", City: "Delhi"})
	seedVenue(t, gdb, model.Venue{Name: "Seaside Pavilion", City: "Mumbai"})

	var pred Predicate
	pred.And(Like("name", "royal garden"))

	venues, err := repo.FindPage(context.Background(), VenueQuery{
		Predicate: pred, Sort: Sort{Field: "created_at", Desc: true}, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "ROYAL Garden Palace", venues[0].Name)
}

func TestFindPage_OrWithinClause(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)
	seedVenue(t, gdb, model.Venue{Name: "Hall A", City: "Delhi"})
	seedVenue(t, gdb, model.Venue{Name: "Hall B", City: "Mumbai", Address: "Delhi Road 5"})
	seedVenue(t, gdb, model.Venue{Name: "Hall C", City: "Pune"})

	// City clause: stored city OR address may carry the term
	var pred Predicate
	pred.And(Like("city", "delhi"), Like("address", "delhi"))

	venues, err := repo.FindPage(context.Background(), VenueQuery{
		Predicate: pred, Sort: Sort{Field: "name"}, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hall A", "Hall B"}, venueNames(venues))
}

func TestFindPage_TagAnyMatchesWholeTags(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)
	seedVenue(t, gdb, model.Venue{
		Name: "Tagged Hall", City: "Delhi",
		Tags: model.StringArray{"wedding", "outdoor"},
	})
	seedVenue(t, gdb, model.Venue{
		Name: "Partial Hall", City: "Delhi",
		Tags: model.StringArray{"weddington"},
	})

	var pred Predicate
	pred.And(TagAny([]string{"Wedding"}))

	venues, err := repo.FindPage(context.Background(), VenueQuery{
		Predicate: pred, Sort: Sort{Field: "name"}, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, venues, 1, "quoted substring match must not hit weddington")
	assert.Equal(t, "Tagged Hall", venues[0].Name)
}

func TestFindPage_InAndRanges(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)
	seedVenue(t, gdb, model.Venue{Name: "Cheap Approved", City: "Delhi", Status: model.VenueStatusApproved, BasePrice: 20000})
	seedVenue(t, gdb, model.Venue{Name: "Cheap Pending", City: "Delhi", Status: model.VenueStatusPending, BasePrice: 20000})
	seedVenue(t, gdb, model.Venue{Name: "Pricey Active", City: "Delhi", Status: model.VenueStatusActive, BasePrice: 90000})

	var pred Predicate
	pred.And(In("status", []string{"approved", "active"}))
	pred.And(GTE("base_price", 10000.0))
	pred.And(LTE("base_price", 50000.0))

	venues, err := repo.FindPage(context.Background(), VenueQuery{
		Predicate: pred, Sort: Sort{Field: "name"}, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheap Approved"}, venueNames(venues))
}

func TestFindPage_NotFalseTreatsNullAsVisible(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)
	hidden := false
	shown := true
	seedVenue(t, gdb, model.Venue{Name: "Null Visibility", City: "Delhi"})
	seedVenue(t, gdb, model.Venue{Name: "Shown", City: "Delhi", Visibility: &shown})
	seedVenue(t, gdb, model.Venue{Name: "Hidden", City: "Delhi", Visibility: &hidden})

	var pred Predicate
	pred.And(NotFalse("visibility"))

	venues, err := repo.FindPage(context.Background(), VenueQuery{
		Predicate: pred, Sort: Sort{Field: "name"}, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Null Visibility", "Shown"}, venueNames(venues))
}

func TestFindPage_UnfilterableFieldRejected(t *testing.T) {
	_, repo := setupVenueRepoTest(t)

	var pred Predicate
	pred.And(Eq("password_hash", "x"))

	_, err := repo.FindPage(context.Background(), VenueQuery{
		Predicate: pred, Sort: Sort{}, Page: 1, Limit: 10,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unfilterable field")

	_, err = repo.Count(context.Background(), pred)
	require.Error(t, err)
}

func TestFindPage_SortAndPagination(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)
	seedVenue(t, gdb, model.Venue{Name: "Mid", City: "Delhi", BasePrice: 50000})
	seedVenue(t, gdb, model.Venue{Name: "Low", City: "Delhi", BasePrice: 10000})
	seedVenue(t, gdb, model.Venue{Name: "High", City: "Delhi", BasePrice: 90000})

	q := VenueQuery{
		Predicate: Predicate{},
		Sort:      Sort{Field: "base_price"},
		Page:      1, Limit: 2,
	}
	venues, err := repo.FindPage(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Low", "Mid"}, venueNames(venues))

	q.Page = 2
	venues, err = repo.FindPage(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"High"}, venueNames(venues))
}

func TestSortClause_UnknownFieldFallsBack(t *testing.T) {
	assert.Equal(t, "created_at DESC", sortClause(Sort{Field: "password_hash"}))
	assert.Equal(t, "created_at DESC", sortClause(Sort{}))
	assert.Equal(t, "base_price ASC", sortClause(Sort{Field: "base_price"}))
	assert.Equal(t, "rating_average DESC", sortClause(Sort{Field: "rating_average", Desc: true}))
}

func TestCount_MatchesFindPagePredicate(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)
	for i := 0; i < 7; i++ {
		seedVenue(t, gdb, model.Venue{Name: "Counted Hall", City: "Delhi", Status: model.VenueStatusApproved})
	}
	seedVenue(t, gdb, model.Venue{Name: "Uncounted Hall", City: "Delhi", Status: model.VenueStatusPending})

	var pred Predicate
	pred.And(Eq("status", "approved"))

	total, err := repo.Count(context.Background(), pred)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
}

func TestBulkCreate_GeneratesSlugsPerRow(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)

	venues := []model.Venue{
		{Name: "Batch Hall", City: "Delhi"},
		{Name: "Batch Hall", City: "Delhi"},
		{Name: "Batch Hall", City: "Jaipur"},
	}
	require.NoError(t, repo.BulkCreate(context.Background(), venues, 2))

	var stored []model.Venue
	require.NoError(t, gdb.Order("id").Find(&stored).Error)
	require.Len(t, stored, 3)
	assert.Equal(t, "delhi-batch-hall", stored[0].Slug)
	assert.Equal(t, "delhi-batch-hall-2", stored[1].Slug)
	assert.Equal(t, "jaipur-batch-hall", stored[2].Slug)
}

func TestRefreshRatingSnapshots(t *testing.T) {
	gdb, repo := setupVenueRepoTest(t)

	user := model.User{Email: "snap@example.com", PasswordHash: "x", Name: "snap", Role: model.RoleUser}
	require.NoError(t, gdb.Create(&user).Error)

	rated := seedVenue(t, gdb, model.Venue{Name: "Snapshot Hall", City: "Delhi"})
	unrated := seedVenue(t, gdb, model.Venue{Name: "Quiet Hall", City: "Delhi"})

	for _, rating := range []int{5, 4, 4} {
		review := model.VenueReview{VenueID: rated.ID, UserID: user.ID, Rating: rating, Comment: "ok"}
		require.NoError(t, gdb.Create(&review).Error)
	}

	updated, err := repo.RefreshRatingSnapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	var refreshed model.Venue
	require.NoError(t, gdb.First(&refreshed, rated.ID).Error)
	assert.Equal(t, 4.3, refreshed.RatingAverage)
	assert.Equal(t, int64(3), refreshed.RatingCount)

	var untouched model.Venue
	require.NoError(t, gdb.First(&untouched, unrated.ID).Error)
	assert.Equal(t, 0.0, untouched.RatingAverage)
	assert.Equal(t, int64(0), untouched.RatingCount)
}
