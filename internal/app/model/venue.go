package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray handles PostgreSQL TEXT[]-style data stored as a JSON array
type StringArray []string

// Value implements the database/sql/driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements the database/sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return errors.New("failed to scan StringArray")
		}
	}

	return json.Unmarshal(bytes, s)
}

// RawJSON stores a legacy column whose shape drifted over time (string,
// number, object or array depending on when the row was written). The
// normalizer is the only reader that interprets it.
type RawJSON json.RawMessage

// Value implements the database/sql/driver.Valuer interface
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

// Scan implements the database/sql.Scanner interface
func (r *RawJSON) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*r = append((*r)[:0], v...)
		return nil
	case string:
		*r = RawJSON(v)
		return nil
	default:
		return errors.New("failed to scan RawJSON")
	}
}

// MarshalJSON passes the raw bytes through unchanged
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON stores the raw bytes unchanged
func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// VenueStatus is the moderation state of a venue
type VenueStatus string

const (
	VenueStatusPending  VenueStatus = "pending"
	VenueStatusApproved VenueStatus = "approved"
	VenueStatusRejected VenueStatus = "rejected"
	VenueStatusActive   VenueStatus = "active"
)

// Venue is the stored venue row. Filterable fields live in first-class
// columns kept in sync on every write; the Raw-suffixed columns carry the
// record exactly as legacy writers produced it and feed the normalizer.
type Venue struct {
	ID        uint  `gorm:"primarykey" json:"id"`
	OwnerID   *uint `gorm:"index" json:"owner_id"`
	Owner     User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	CategoryID *uint `gorm:"index" json:"category_id"`
	MenuID     *uint `gorm:"index" json:"menu_id"`
	SubmenuID  *uint `gorm:"index" json:"submenu_id"`

	Name        string      `gorm:"not null" json:"name"`
	Slug        string      `gorm:"uniqueIndex" json:"slug"`
	Description string      `gorm:"type:text" json:"description"`
	VenueType   string      `gorm:"type:varchar(50);index" json:"venue_type"`
	Tags        StringArray `gorm:"type:text" json:"tags"`

	// Filterable location columns, denormalized from LocationRaw on write
	Address    string   `gorm:"type:text" json:"address"`
	City       string   `gorm:"index" json:"city"`
	State      string   `gorm:"index" json:"state"`
	PostalCode string   `gorm:"type:varchar(20)" json:"postal_code"`
	Latitude   *float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude  *float64 `gorm:"type:decimal(11,8)" json:"longitude"`

	// Filterable capacity and pricing columns
	CapacityMinGuests int     `gorm:"default:0" json:"capacity_min_guests"`
	CapacityMaxGuests int     `gorm:"default:0;index" json:"capacity_max_guests"`
	VegPerPlate       float64 `gorm:"default:0" json:"veg_per_plate"`
	NonVegPerPlate    float64 `gorm:"default:0" json:"non_veg_per_plate"`
	BasePrice         float64 `gorm:"default:0;index" json:"base_price"`

	// Legacy columns in their historical shapes
	LocationRaw   RawJSON     `gorm:"type:text" json:"-"` // string, keyed object, or absent
	CapacityRaw   RawJSON     `gorm:"type:text" json:"-"` // bare number or {minGuests,maxGuests}
	PricingInfo   RawJSON     `gorm:"type:text" json:"-"` // structured pricing object
	PricePerPlate RawJSON     `gorm:"type:text" json:"-"` // legacy {veg,nonVeg}
	RentalPrice   float64     `gorm:"default:0" json:"-"` // legacy flat rental price
	GalleryRaw    RawJSON     `gorm:"type:text" json:"-"` // {photos,videos} or flat list
	Images        StringArray `gorm:"type:text" json:"-"`
	CoverImage    string      `json:"-"`
	ImageURL      string      `json:"-"` // legacy single-image field
	Amenities     StringArray `gorm:"type:text" json:"-"`
	Facilities    StringArray `gorm:"type:text" json:"-"` // legacy amenities list

	Status     VenueStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Visibility *bool       `gorm:"default:true" json:"visibility"` // vendor-controlled, independent of Status
	Featured   bool        `gorm:"default:false;index" json:"featured"`

	// Rating snapshot, refreshed by the scheduler and used when live
	// aggregation is unavailable. Never vendor-editable.
	RatingAverage float64 `gorm:"default:0" json:"rating_average"`
	RatingCount   int64   `gorm:"default:0" json:"rating_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Venue) TableName() string {
	return "venues"
}

// generateSlug builds a URL slug from the city and venue name
func generateSlug(city, name string) string {
	slug := fmt.Sprintf("%s-%s", city, name)

	reg := regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slug = reg.ReplaceAllString(slug, "-")

	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	slug = strings.Trim(slug, "-")
	slug = strings.ToLower(slug)

	return slug
}

// BeforeCreate generates a unique slug when none was provided
func (v *Venue) BeforeCreate(tx *gorm.DB) error {
	if v.Slug == "" {
		baseSlug := generateSlug(v.City, v.Name)
		slug := baseSlug

		counter := 1
		for {
			var count int64
			if err := tx.Model(&Venue{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				break
			}

			counter++
			slug = fmt.Sprintf("%s-%d", baseSlug, counter)
		}

		v.Slug = slug
	}
	return nil
}
