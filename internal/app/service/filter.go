package service

import (
	"strings"

	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/pkg/util"
)

// CallerRole is the caller's privilege level. It is always passed in
// explicitly, never inferred, so the status clamp stays testable.
type CallerRole string

const (
	CallerAnonymous CallerRole = "anonymous"
	CallerUser      CallerRole = "user"
	CallerVendor    CallerRole = "vendor"
	CallerAdmin     CallerRole = "admin"
)

// Privileged reports whether the caller may filter on arbitrary statuses and
// see hidden venues.
func (r CallerRole) Privileged() bool {
	return r == CallerAdmin
}

// RoleFromUser maps a stored user role onto a caller role.
func RoleFromUser(role model.UserRole) CallerRole {
	switch role {
	case model.RoleAdmin:
		return CallerAdmin
	case model.RoleVendor:
		return CallerVendor
	default:
		return CallerUser
	}
}

// SearchRequest is the immutable set of optional search parameters. Nil
// pointer fields mean "not requested".
type SearchRequest struct {
	Query string
	City  string
	State string

	MinPrice          *float64
	MaxPrice          *float64
	MinVegPerPlate    *float64
	MaxVegPerPlate    *float64
	MinNonVegPerPlate *float64
	MaxNonVegPerPlate *float64
	MinCapacity       *int
	MaxCapacity       *int
	MinRating         *float64

	Status     string
	VenueType  string
	CategoryID *uint
	MenuID     *uint
	SubmenuID  *uint
	Tags       []string
	Featured   *bool

	Latitude  *float64
	Longitude *float64
	RadiusKm  float64

	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// GeoOrigin returns the request's geo origin when it is usable. Non-numeric
// or out-of-range coordinates disable geo refinement silently.
func (r SearchRequest) GeoOrigin() (lat, lng, radius float64, ok bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return 0, 0, 0, false
	}
	if !util.ValidCoordinate(*r.Latitude, *r.Longitude) {
		return 0, 0, 0, false
	}
	return *r.Latitude, *r.Longitude, r.RadiusKm, true
}

// textSearchFields are the columns a free-text query matches against,
// OR-combined. Tag membership joins the group via a tag condition.
var textSearchFields = []string{
	"name", "description", "slug", "address", "city", "state",
	"postal_code", "venue_type",
}

// BuildPredicate translates a search request plus the caller's role into the
// store-agnostic predicate. For non-privileged callers the trailing status
// clamp replaces any requested status filter outright; appending it last and
// ignoring the raw status keeps query parameters from widening visibility.
func BuildPredicate(req SearchRequest, role CallerRole) repository.Predicate {
	var pred repository.Predicate

	if q := strings.TrimSpace(req.Query); q != "" {
		conds := make([]repository.Condition, 0, len(textSearchFields)+1)
		for _, f := range textSearchFields {
			conds = append(conds, repository.Like(f, q))
		}
		conds = append(conds, repository.TagAny([]string{q}))
		pred.And(conds...)
	}

	// City/state combine with the free-text group by AND at the top level;
	// inside, each matches its own column or the legacy string-location
	// address, OR-combined.
	if city := strings.TrimSpace(req.City); city != "" {
		pred.And(repository.Like("city", city), repository.Like("address", city))
	}
	if state := strings.TrimSpace(req.State); state != "" {
		pred.And(repository.Like("state", state), repository.Like("address", state))
	}

	if req.VenueType != "" {
		pred.And(repository.Eq("venue_type", req.VenueType))
	}
	if req.CategoryID != nil {
		pred.And(repository.Eq("category_id", *req.CategoryID))
	}
	if req.MenuID != nil {
		pred.And(repository.Eq("menu_id", *req.MenuID))
	}
	if req.SubmenuID != nil {
		pred.And(repository.Eq("submenu_id", *req.SubmenuID))
	}
	if len(req.Tags) > 0 {
		pred.And(repository.TagAny(req.Tags))
	}
	if req.Featured != nil {
		pred.And(repository.Eq("featured", *req.Featured))
	}

	// Range filters: inclusive when both bounds are given, open-ended when
	// only one is.
	if req.MinPrice != nil {
		pred.And(repository.GTE("base_price", *req.MinPrice))
	}
	if req.MaxPrice != nil {
		pred.And(repository.LTE("base_price", *req.MaxPrice))
	}
	if req.MinVegPerPlate != nil {
		pred.And(repository.GTE("veg_per_plate", *req.MinVegPerPlate))
	}
	if req.MaxVegPerPlate != nil {
		pred.And(repository.LTE("veg_per_plate", *req.MaxVegPerPlate))
	}
	if req.MinNonVegPerPlate != nil {
		pred.And(repository.GTE("non_veg_per_plate", *req.MinNonVegPerPlate))
	}
	if req.MaxNonVegPerPlate != nil {
		pred.And(repository.LTE("non_veg_per_plate", *req.MaxNonVegPerPlate))
	}

	// A venue can host the request when its maximum capacity reaches the
	// requested minimum and its minimum does not exceed the requested cap.
	if req.MinCapacity != nil {
		pred.And(repository.GTE("capacity_max_guests", *req.MinCapacity))
	}
	if req.MaxCapacity != nil {
		pred.And(repository.LTE("capacity_min_guests", *req.MaxCapacity))
	}

	if req.MinRating != nil {
		pred.And(repository.GTE("rating_average", *req.MinRating))
	}

	if role.Privileged() {
		if req.Status != "" {
			pred.And(repository.Eq("status", req.Status))
		}
		return pred
	}

	// Non-overridable clamp for everyone else, regardless of req.Status.
	pred.And(repository.In("status", []string{
		string(model.VenueStatusApproved),
		string(model.VenueStatusActive),
	}))
	pred.And(repository.NotFalse("visibility"))

	return pred
}

// sortFieldAliases maps caller-facing sort names onto columns.
var sortFieldAliases = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"price":      "base_price",
	"veg_plate":  "veg_per_plate",
	"rating":     "rating_average",
	"capacity":   "capacity_max_guests",
}

// BuildSort resolves the requested sort; default is creation time, newest
// first.
func BuildSort(req SearchRequest) repository.Sort {
	if col, ok := sortFieldAliases[req.SortBy]; ok {
		return repository.Sort{Field: col, Desc: req.SortDesc}
	}
	return repository.Sort{Field: "created_at", Desc: true}
}
