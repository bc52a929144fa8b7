package model

import "time"

// CanonicalVenue is the single output shape all read paths expose, regardless
// of how the row was historically stored. Every field is always present in
// the JSON payload so consumers never null-check.
type CanonicalVenue struct {
	ID         uint  `json:"id"`
	OwnerID    *uint `json:"owner_id"`
	CategoryID *uint `json:"category_id"`
	MenuID     *uint `json:"menu_id"`
	SubmenuID  *uint `json:"submenu_id"`

	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	VenueType   string   `json:"venue_type"`
	Tags        []string `json:"tags"`

	Location  VenueLocation `json:"location"`
	Capacity  VenueCapacity `json:"capacity"`
	Pricing   VenuePricing  `json:"pricing_info"`
	Media     VenueMedia    `json:"media"`
	Amenities []string      `json:"amenities"`
	Rating    VenueRating   `json:"rating"`

	Status     VenueStatus `json:"status"`
	Visibility bool        `json:"visibility"`
	Featured   bool        `json:"featured"`

	// Set only when the search request carried a geo origin
	DistanceKm *float64 `json:"distance_km,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VenueLocation struct {
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	MapLink    string   `json:"map_link"`
}

type VenueCapacity struct {
	MinGuests int `json:"min_guests"`
	MaxGuests int `json:"max_guests"`
}

type VenuePricing struct {
	VegPerPlate    float64 `json:"veg_per_plate"`
	NonVegPerPlate float64 `json:"non_veg_per_plate"`
	RentalPrice    float64 `json:"rental_price"`
	TaxIncluded    bool    `json:"tax_included"`
	DecorationCost float64 `json:"decoration_cost"`
	DJCost         float64 `json:"dj_cost"`
}

type VenueMedia struct {
	CoverImage string       `json:"cover_image"`
	Images     []string     `json:"images"`
	Gallery    VenueGallery `json:"gallery"`
}

type VenueGallery struct {
	Photos []string `json:"photos"`
	Videos []string `json:"videos"`
}

type VenueRating struct {
	Average      float64       `json:"average"`       // 0-5, one decimal
	TotalReviews int64         `json:"total_reviews"` // >= 0
	Reviews      []ReviewEntry `json:"reviews"`       // newest first
}

// ReviewEntry is a review as exposed on the canonical venue.
type ReviewEntry struct {
	UserID   uint         `json:"user_id"`
	UserName string       `json:"user_name"`
	Rating   int          `json:"rating"`
	Comment  string       `json:"comment"`
	Date     time.Time    `json:"date"`
	Reply    *ReviewReply `json:"reply"` // nil when the review has no reply
}

type ReviewReply struct {
	Message   string    `json:"message"`
	RepliedBy string    `json:"replied_by"` // display name, "Venue Owner" fallback
	RepliedAt time.Time `json:"replied_at"`
}
