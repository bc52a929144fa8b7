package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venuebook/venuebook-backend/internal/app/model"
)

func raw(s string) model.RawJSON {
	return model.RawJSON([]byte(s))
}

func TestNormalizeLocation_AbsentFallsBackToColumns(t *testing.T) {
	lat, lng := 28.6139, 77.2090
	v := &model.Venue{
		Address:    "12 MG Road",
		City:       "Bangalore",
		State:      "Karnataka",
		PostalCode: "560001",
		Latitude:   &lat,
		Longitude:  &lng,
	}

	loc := NormalizeLocation(v)
	assert.Equal(t, "12 MG Road", loc.Address)
	assert.Equal(t, "Bangalore", loc.City)
	assert.Equal(t, "560001", loc.PostalCode)
	require.NotNil(t, loc.Latitude)
	assert.Equal(t, lat, *loc.Latitude)
}

func TestNormalizeLocation_BareString(t *testing.T) {
	v := &model.Venue{LocationRaw: raw(`"45 Park Street, Kolkata"`)}

	loc := NormalizeLocation(v)
	assert.Equal(t, "45 Park Street, Kolkata", loc.Address)
	assert.Empty(t, loc.City)
	assert.Nil(t, loc.Latitude)
}

func TestNormalizeLocation_KeyedObject(t *testing.T) {
	v := &model.Venue{LocationRaw: raw(`{
		"address": "7 Residency Road",
		"city": "Pune",
		"state": "Maharashtra",
		"pincode": "411001",
		"lat": 18.52,
		"lng": 73.85,
		"mapLink": "https://maps.example.com/x"
	}`)}

	loc := NormalizeLocation(v)
	assert.Equal(t, "7 Residency Road", loc.Address)
	assert.Equal(t, "Pune", loc.City)
	assert.Equal(t, "411001", loc.PostalCode, "pincode variant maps to postal code")
	require.NotNil(t, loc.Latitude)
	assert.Equal(t, 18.52, *loc.Latitude)
	require.NotNil(t, loc.Longitude)
	assert.Equal(t, 73.85, *loc.Longitude)
	assert.Equal(t, "https://maps.example.com/x", loc.MapLink)
}

func TestNormalizeLocation_MixedCaseKeys(t *testing.T) {
	v := &model.Venue{LocationRaw: raw(`{"City": "Jaipur", "PostalCode": "302001"}`)}

	loc := NormalizeLocation(v)
	assert.Equal(t, "Jaipur", loc.City)
	assert.Equal(t, "302001", loc.PostalCode)
}

func TestNormalizeLocation_CoordinatesAsStrings(t *testing.T) {
	v := &model.Venue{LocationRaw: raw(`{"latitude": "18.52", "longitude": "73.85"}`)}

	loc := NormalizeLocation(v)
	require.NotNil(t, loc.Latitude)
	assert.Equal(t, 18.52, *loc.Latitude)
	require.NotNil(t, loc.Longitude)
	assert.Equal(t, 73.85, *loc.Longitude)
}

func TestNormalizeCapacity_BareNumber(t *testing.T) {
	v := &model.Venue{CapacityRaw: raw(`350`)}

	capacity := NormalizeCapacity(v)
	assert.Equal(t, 1, capacity.MinGuests)
	assert.Equal(t, 350, capacity.MaxGuests)
}

func TestNormalizeCapacity_StructuredObject(t *testing.T) {
	v := &model.Venue{CapacityRaw: raw(`{"minGuests": 50, "maxGuests": 500}`)}

	capacity := NormalizeCapacity(v)
	assert.Equal(t, 50, capacity.MinGuests)
	assert.Equal(t, 500, capacity.MaxGuests)
}

func TestNormalizeCapacity_MinMaxVariants(t *testing.T) {
	v := &model.Venue{CapacityRaw: raw(`{"min": 20, "max": 200}`)}

	capacity := NormalizeCapacity(v)
	assert.Equal(t, 20, capacity.MinGuests)
	assert.Equal(t, 200, capacity.MaxGuests)
}

func TestNormalizeCapacity_AbsentFallsBackToColumns(t *testing.T) {
	v := &model.Venue{CapacityMinGuests: 10, CapacityMaxGuests: 100}

	capacity := NormalizeCapacity(v)
	assert.Equal(t, 10, capacity.MinGuests)
	assert.Equal(t, 100, capacity.MaxGuests)
}

func TestNormalizePricing_StructuredObjectWins(t *testing.T) {
	v := &model.Venue{
		PricingInfo:   raw(`{"vegPerPlate": 900, "nonVegPerPlate": 1200, "rentalPrice": 50000, "taxIncluded": true}`),
		PricePerPlate: raw(`{"veg": 111, "nonVeg": 222}`),
		RentalPrice:   99999,
	}

	pricing := NormalizePricing(v)
	assert.Equal(t, 900.0, pricing.VegPerPlate)
	assert.Equal(t, 1200.0, pricing.NonVegPerPlate)
	assert.Equal(t, 50000.0, pricing.RentalPrice)
	assert.True(t, pricing.TaxIncluded)
}

func TestNormalizePricing_FlatPerPlateBackfills(t *testing.T) {
	v := &model.Venue{
		PricePerPlate: raw(`{"veg": 650, "nonVeg": 850}`),
		RentalPrice:   25000,
	}

	pricing := NormalizePricing(v)
	assert.Equal(t, 650.0, pricing.VegPerPlate)
	assert.Equal(t, 850.0, pricing.NonVegPerPlate)
	assert.Equal(t, 25000.0, pricing.RentalPrice, "rental column backfills when no source set it")
}

func TestNormalizePricing_PartialBackfill(t *testing.T) {
	// Structured object set veg only; flat per-plate fills non-veg
	v := &model.Venue{
		PricingInfo:   raw(`{"vegPerPlate": 700}`),
		PricePerPlate: raw(`{"veg": 1, "nonVeg": 950}`),
	}

	pricing := NormalizePricing(v)
	assert.Equal(t, 700.0, pricing.VegPerPlate)
	assert.Equal(t, 950.0, pricing.NonVegPerPlate)
}

func TestNormalizeMedia_StructuredGalleryWins(t *testing.T) {
	v := &model.Venue{
		GalleryRaw: raw(`{"photos": ["p1.jpg", "p2.jpg"], "videos": ["v1.mp4"]}`),
		Images:     model.StringArray{"i1.jpg"},
	}

	media := NormalizeMedia(v)
	assert.Equal(t, []string{"p1.jpg", "p2.jpg"}, media.Gallery.Photos)
	assert.Equal(t, []string{"v1.mp4"}, media.Gallery.Videos)
	assert.Equal(t, []string{"i1.jpg"}, media.Images)
}

func TestNormalizeMedia_FlatGalleryList(t *testing.T) {
	v := &model.Venue{GalleryRaw: raw(`["a.jpg", "b.jpg"]`)}

	media := NormalizeMedia(v)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, media.Gallery.Photos)
	assert.Empty(t, media.Gallery.Videos)
}

func TestNormalizeMedia_ImagesFallback(t *testing.T) {
	v := &model.Venue{Images: model.StringArray{"x.jpg", "y.jpg"}}

	media := NormalizeMedia(v)
	assert.Equal(t, []string{"x.jpg", "y.jpg"}, media.Gallery.Photos)
}

func TestNormalizeMedia_CoverPreference(t *testing.T) {
	tests := []struct {
		name  string
		venue model.Venue
		want  string
	}{
		{"explicit cover", model.Venue{CoverImage: "cover.jpg", ImageURL: "legacy.jpg", Images: model.StringArray{"first.jpg"}}, "cover.jpg"},
		{"legacy image url", model.Venue{ImageURL: "legacy.jpg", Images: model.StringArray{"first.jpg"}}, "legacy.jpg"},
		{"first image", model.Venue{Images: model.StringArray{"first.jpg"}}, "first.jpg"},
		{"nothing", model.Venue{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			media := NormalizeMedia(&tt.venue)
			assert.Equal(t, tt.want, media.CoverImage)
		})
	}
}

func TestNormalizeAmenities_UnionKeepsDuplicates(t *testing.T) {
	v := &model.Venue{
		Amenities:  model.StringArray{"parking", "wifi"},
		Facilities: model.StringArray{"wifi", "catering"},
	}

	got := NormalizeAmenities(v)
	assert.Equal(t, []string{"parking", "wifi", "wifi", "catering"}, got)
}

func TestNormalize_CompleteRecord(t *testing.T) {
	visible := false
	v := &model.Venue{
		ID:          7,
		Name:        "Grand Palace",
		Slug:        "mumbai-grand-palace",
		VenueType:   "banquet",
		Tags:        model.StringArray{"Wedding", " corporate "},
		LocationRaw: raw(`{"city": "Mumbai", "state": "Maharashtra"}`),
		CapacityRaw: raw(`200`),
		PricingInfo: raw(`{"vegPerPlate": 800}`),
		Status:      model.VenueStatusApproved,
		Visibility:  &visible,
		Featured:    true,

		RatingAverage: 4.2,
		RatingCount:   17,
	}

	canon := Normalize(v)
	assert.Equal(t, uint(7), canon.ID)
	assert.Equal(t, []string{"wedding", "corporate"}, canon.Tags)
	assert.Equal(t, "Mumbai", canon.Location.City)
	assert.Equal(t, 1, canon.Capacity.MinGuests)
	assert.Equal(t, 200, canon.Capacity.MaxGuests)
	assert.Equal(t, 800.0, canon.Pricing.VegPerPlate)
	assert.False(t, canon.Visibility)
	assert.True(t, canon.Featured)
	assert.Equal(t, 4.2, canon.Rating.Average, "snapshot numbers until the aggregator overwrites them")
	assert.Equal(t, int64(17), canon.Rating.TotalReviews)
	assert.NotNil(t, canon.Rating.Reviews)
	assert.Empty(t, canon.Rating.Reviews)
	assert.Nil(t, canon.DistanceKm)
}

func TestNormalize_EmptyRecordIsFullyPopulated(t *testing.T) {
	canon := Normalize(&model.Venue{ID: 1, Name: "Bare"})

	assert.Equal(t, "Bare", canon.Name)
	assert.NotNil(t, canon.Tags)
	assert.NotNil(t, canon.Amenities)
	assert.NotNil(t, canon.Media.Images)
	assert.NotNil(t, canon.Media.Gallery.Photos)
	assert.True(t, canon.Visibility, "absent visibility reads as visible")
	assert.Zero(t, canon.Capacity.MaxGuests)
	assert.Zero(t, canon.Pricing.VegPerPlate)
}
