// Package normalizer maps stored venue rows, whatever historical shape they
// were written in, to the canonical venue structure. Every function here is
// pure; nothing reads or writes the database.
package normalizer

import (
	"encoding/json"
	"strings"

	"github.com/venuebook/venuebook-backend/internal/app/model"
)

// Normalize produces the canonical shape for a stored venue row. All output
// fields are populated even when the source row lacks them.
func Normalize(v *model.Venue) model.CanonicalVenue {
	visible := true
	if v.Visibility != nil {
		visible = *v.Visibility
	}

	return model.CanonicalVenue{
		ID:          v.ID,
		OwnerID:     v.OwnerID,
		CategoryID:  v.CategoryID,
		MenuID:      v.MenuID,
		SubmenuID:   v.SubmenuID,
		Name:        v.Name,
		Slug:        v.Slug,
		Description: v.Description,
		VenueType:   v.VenueType,
		Tags:        normalizeTags(v.Tags),
		Location:    NormalizeLocation(v),
		Capacity:    NormalizeCapacity(v),
		Pricing:     NormalizePricing(v),
		Media:       NormalizeMedia(v),
		Amenities:   NormalizeAmenities(v),
		Rating: model.VenueRating{
			Average:      v.RatingAverage,
			TotalReviews: v.RatingCount,
			Reviews:      []model.ReviewEntry{},
		},
		Status:     v.Status,
		Visibility: visible,
		Featured:   v.Featured,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
}

func normalizeTags(tags model.StringArray) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ToLower(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NormalizeLocation reconciles the legacy location column. Historical shapes:
// absent, a bare address string, or a keyed object with case-drifted keys.
// Anything else is stringified into the address field as a last resort.
func NormalizeLocation(v *model.Venue) model.VenueLocation {
	raw := json.RawMessage(v.LocationRaw)
	if isEmptyJSON(raw) {
		// Modern writers keep the flat columns in sync; legacy rows
		// without a raw value simply have whatever the columns hold.
		return model.VenueLocation{
			Address:    v.Address,
			City:       v.City,
			State:      v.State,
			PostalCode: v.PostalCode,
			Latitude:   v.Latitude,
			Longitude:  v.Longitude,
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return model.VenueLocation{Address: s}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := lowerKeyIndex(obj)
		return model.VenueLocation{
			Address:    stringKey(keys, "address", "addr", "full_address", "fulladdress"),
			City:       stringKey(keys, "city"),
			State:      stringKey(keys, "state"),
			PostalCode: stringKey(keys, "postalcode", "postal_code", "pincode", "zip"),
			Latitude:   floatKeyPtr(keys, "latitude", "lat"),
			Longitude:  floatKeyPtr(keys, "longitude", "lng", "lon"),
			MapLink:    stringKey(keys, "maplink", "map_link", "mapurl"),
		}
	}

	return model.VenueLocation{Address: strings.TrimSpace(string(raw))}
}

// NormalizeCapacity reconciles the legacy capacity column. A bare number N
// means "up to N guests" and maps to {1, N}. Structured values read the
// minGuests/min and maxGuests/max variants in that precedence order.
func NormalizeCapacity(v *model.Venue) model.VenueCapacity {
	raw := json.RawMessage(v.CapacityRaw)
	if isEmptyJSON(raw) {
		return model.VenueCapacity{
			MinGuests: v.CapacityMinGuests,
			MaxGuests: v.CapacityMaxGuests,
		}
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return model.VenueCapacity{MinGuests: 1, MaxGuests: int(n)}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := lowerKeyIndex(obj)
		return model.VenueCapacity{
			MinGuests: intKey(keys, "minguests", "min"),
			MaxGuests: intKey(keys, "maxguests", "max"),
		}
	}

	return model.VenueCapacity{}
}

// NormalizePricing merges the up to three legacy pricing sources
// left-to-right: the structured pricingInfo object first, then the flat
// per-plate object, then the flat rental price column. A later source only
// backfills money fields the earlier ones left at zero.
func NormalizePricing(v *model.Venue) model.VenuePricing {
	out := model.VenuePricing{}

	if raw := json.RawMessage(v.PricingInfo); !isEmptyJSON(raw) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			keys := lowerKeyIndex(obj)
			out.VegPerPlate = floatKey(keys, "vegperplate", "veg_per_plate", "veg")
			out.NonVegPerPlate = floatKey(keys, "nonvegperplate", "non_veg_per_plate", "nonveg")
			out.RentalPrice = floatKey(keys, "rentalprice", "rental_price", "rent")
			out.TaxIncluded = boolKey(keys, "taxincluded", "tax_included")
			out.DecorationCost = floatKey(keys, "decorationcost", "decoration_cost")
			out.DJCost = floatKey(keys, "djcost", "dj_cost")
		}
	}

	if raw := json.RawMessage(v.PricePerPlate); !isEmptyJSON(raw) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			keys := lowerKeyIndex(obj)
			if out.VegPerPlate == 0 {
				out.VegPerPlate = floatKey(keys, "veg")
			}
			if out.NonVegPerPlate == 0 {
				out.NonVegPerPlate = floatKey(keys, "nonveg", "non_veg")
			}
		}
	}

	if out.RentalPrice == 0 {
		out.RentalPrice = v.RentalPrice
	}

	return out
}

// NormalizeMedia reconciles the gallery variants. A structured gallery object
// wins; a flat gallery list becomes photos with no videos; otherwise the
// generic images list is exposed as photos. Cover image preference:
// explicit cover, legacy single-image field, first of the images list, empty.
func NormalizeMedia(v *model.Venue) model.VenueMedia {
	gallery := model.VenueGallery{Photos: []string{}, Videos: []string{}}

	if raw := json.RawMessage(v.GalleryRaw); !isEmptyJSON(raw) {
		var obj struct {
			Photos []string `json:"photos"`
			Videos []string `json:"videos"`
		}
		var flat []string
		if err := json.Unmarshal(raw, &obj); err == nil && (obj.Photos != nil || obj.Videos != nil) {
			if obj.Photos != nil {
				gallery.Photos = obj.Photos
			}
			if obj.Videos != nil {
				gallery.Videos = obj.Videos
			}
		} else if err := json.Unmarshal(raw, &flat); err == nil {
			gallery.Photos = flat
		}
	} else if len(v.Images) > 0 {
		gallery.Photos = append(gallery.Photos, v.Images...)
	}

	images := make([]string, 0, len(v.Images))
	images = append(images, v.Images...)

	cover := v.CoverImage
	if cover == "" {
		cover = v.ImageURL
	}
	if cover == "" && len(images) > 0 {
		cover = images[0]
	}

	return model.VenueMedia{
		CoverImage: cover,
		Images:     images,
		Gallery:    gallery,
	}
}

// NormalizeAmenities unions the current amenities list with the legacy
// facilities list. Duplicates are kept on purpose: existing consumers index
// into the list and depend on its original ordering.
func NormalizeAmenities(v *model.Venue) []string {
	out := make([]string, 0, len(v.Amenities)+len(v.Facilities))
	out = append(out, v.Amenities...)
	out = append(out, v.Facilities...)
	return out
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

// lowerKeyIndex indexes object keys case-insensitively; historical writers
// produced both "city" and "City" for the same field.
func lowerKeyIndex(obj map[string]json.RawMessage) map[string]json.RawMessage {
	idx := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		lk := strings.ToLower(k)
		if _, exists := idx[lk]; !exists {
			idx[lk] = v
		}
	}
	return idx
}

func stringKey(keys map[string]json.RawMessage, variants ...string) string {
	for _, k := range variants {
		raw, ok := keys[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		// Non-string value under a string key: stringify
		trimmed := strings.TrimSpace(string(raw))
		if trimmed != "" && trimmed != "null" {
			return trimmed
		}
	}
	return ""
}

func floatKey(keys map[string]json.RawMessage, variants ...string) float64 {
	if p := floatKeyPtr(keys, variants...); p != nil {
		return *p
	}
	return 0
}

func floatKeyPtr(keys map[string]json.RawMessage, variants ...string) *float64 {
	for _, k := range variants {
		raw, ok := keys[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return &f
		}
		// Numbers were sometimes stored as strings
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			var sf float64
			if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &sf); err == nil {
				return &sf
			}
		}
	}
	return nil
}

func intKey(keys map[string]json.RawMessage, variants ...string) int {
	return int(floatKey(keys, variants...))
}

func boolKey(keys map[string]json.RawMessage, variants ...string) bool {
	for _, k := range variants {
		raw, ok := keys[k]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b
		}
	}
	return false
}
