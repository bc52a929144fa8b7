package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/venuebook/venuebook-backend/config"
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/service"
	apperrors "github.com/venuebook/venuebook-backend/internal/errors"
	"github.com/venuebook/venuebook-backend/internal/middleware"
)

type VenueController struct {
	searchService service.SearchService
	venueService  service.VenueService
	searchCfg     config.SearchConfig
}

func NewVenueController(searchService service.SearchService, venueService service.VenueService, searchCfg config.SearchConfig) *VenueController {
	return &VenueController{
		searchService: searchService,
		venueService:  venueService,
		searchCfg:     searchCfg,
	}
}

// VenueRequest is a structured vendor payload for creating a venue.
type VenueRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	VenueType   string              `json:"venue_type"`
	CategoryID  *uint               `json:"category_id"`
	MenuID      *uint               `json:"menu_id"`
	SubmenuID   *uint               `json:"submenu_id"`
	Tags        []string            `json:"tags"`
	Location    model.VenueLocation `json:"location"`
	Capacity    model.VenueCapacity `json:"capacity"`
	Pricing     model.VenuePricing  `json:"pricing_info"`
	CoverImage  string              `json:"cover_image"`
	Images      []string            `json:"images"`
	Gallery     model.VenueGallery  `json:"gallery"`
	Amenities   []string            `json:"amenities"`
}

// VenueUpdateRequest carries a partial edit; absent fields stay untouched.
type VenueUpdateRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	VenueType   *string              `json:"venue_type"`
	Tags        []string             `json:"tags"`
	Location    *model.VenueLocation `json:"location"`
	Capacity    *model.VenueCapacity `json:"capacity"`
	Pricing     *model.VenuePricing  `json:"pricing_info"`
	CoverImage  *string              `json:"cover_image"`
	Images      []string             `json:"images"`
	Gallery     *model.VenueGallery  `json:"gallery"`
	Amenities   []string             `json:"amenities"`
}

// callerRole resolves the caller's privilege level from the (optional) auth
// context. Unauthenticated requests are anonymous.
func callerRole(c *gin.Context) service.CallerRole {
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return service.CallerAnonymous
	}
	return service.RoleFromUser(role)
}

// SearchVenues handles GET /venues with the full filter surface.
func (ctrl *VenueController) SearchVenues(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	req := ctrl.parseSearchRequest(c)
	role := callerRole(c)

	page, err := ctrl.searchService.Search(c.Request.Context(), req, role)
	if err != nil {
		if errors.Is(err, service.ErrQueryTimeout) {
			log.Error("Venue search timed out", err, nil)
			apperrors.ServiceUnavailable(c, apperrors.SearchTimeout, "Search timed out, please retry")
			return
		}
		log.Error("Venue search failed", err, nil)
		apperrors.ServiceUnavailable(c, apperrors.SearchStoreUnavailable, "")
		return
	}

	log.Info("Venues searched", map[string]interface{}{
		"count":       len(page.Results),
		"total_count": page.TotalCount,
		"page":        page.Page,
	})

	c.JSON(http.StatusOK, page)
}

// GetVenueByID handles GET /venues/:id and returns the canonical venue with
// its full review list.
func (ctrl *VenueController) GetVenueByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	venue, err := ctrl.searchService.VenueDetail(c.Request.Context(), id, callerRole(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVenueNotFound):
			log.Warn("Venue not found", map[string]interface{}{"venue_id": id})
			apperrors.NotFound(c, apperrors.VenueNotFound, "Venue not found")
		case errors.Is(err, service.ErrQueryTimeout):
			log.Error("Venue detail timed out", err, map[string]interface{}{"venue_id": id})
			apperrors.ServiceUnavailable(c, apperrors.SearchTimeout, "Request timed out, please retry")
		default:
			log.Error("Failed to fetch venue", err, map[string]interface{}{"venue_id": id})
			apperrors.ServiceUnavailable(c, apperrors.SearchStoreUnavailable, "")
		}
		return
	}

	log.Info("Venue fetched", map[string]interface{}{"venue_id": venue.ID})

	c.JSON(http.StatusOK, gin.H{"venue": venue})
}

// CreateVenue handles POST /vendor/venues.
func (ctrl *VenueController) CreateVenue(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid venue creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data: "+err.Error())
		return
	}

	venue, err := ctrl.venueService.CreateVenue(c.Request.Context(), userID, service.VenueInput{
		Name:        req.Name,
		Description: req.Description,
		VenueType:   req.VenueType,
		CategoryID:  req.CategoryID,
		MenuID:      req.MenuID,
		SubmenuID:   req.SubmenuID,
		Tags:        req.Tags,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Pricing:     req.Pricing,
		CoverImage:  req.CoverImage,
		Images:      req.Images,
		Gallery:     req.Gallery,
		Amenities:   req.Amenities,
	})
	if err != nil {
		log.Error("Failed to create venue", err, map[string]interface{}{
			"owner_id": userID,
		})
		apperrors.InternalError(c, "Failed to create venue")
		return
	}

	log.Info("Venue created", map[string]interface{}{
		"venue_id": venue.ID,
		"owner_id": userID,
	})

	c.JSON(http.StatusCreated, gin.H{"venue": venue})
}

// UpdateVenue handles PUT /vendor/venues/:id.
func (ctrl *VenueController) UpdateVenue(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	var req VenueUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid venue update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data: "+err.Error())
		return
	}

	venue, err := ctrl.venueService.UpdateVenue(c.Request.Context(), userID, id, service.VenueMutation{
		Name:        req.Name,
		Description: req.Description,
		VenueType:   req.VenueType,
		Tags:        req.Tags,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Pricing:     req.Pricing,
		CoverImage:  req.CoverImage,
		Images:      req.Images,
		Gallery:     req.Gallery,
		Amenities:   req.Amenities,
	})
	if err != nil {
		ctrl.respondVenueMutationError(c, err, id)
		return
	}

	log.Info("Venue updated", map[string]interface{}{"venue_id": venue.ID})

	c.JSON(http.StatusOK, gin.H{"venue": venue})
}

// DeleteVenue handles DELETE /vendor/venues/:id.
func (ctrl *VenueController) DeleteVenue(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	if err := ctrl.venueService.DeleteVenue(c.Request.Context(), userID, id); err != nil {
		ctrl.respondVenueMutationError(c, err, id)
		return
	}

	log.Info("Venue deleted", map[string]interface{}{"venue_id": id})

	c.JSON(http.StatusOK, gin.H{"message": "Venue deleted successfully"})
}

// MyVenues handles GET /vendor/venues and lists the caller's venues in every
// status, including hidden ones.
func (ctrl *VenueController) MyVenues(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	venues, err := ctrl.venueService.GetVenuesByOwner(c.Request.Context(), userID)
	if err != nil {
		log.Error("Failed to list vendor venues", err, map[string]interface{}{
			"owner_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch venues")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"venues": venues,
		"count":  len(venues),
	})
}

// SetVisibility handles PATCH /vendor/venues/:id/visibility.
func (ctrl *VenueController) SetVisibility(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	id, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	var req struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Field 'visible' is required")
		return
	}

	venue, err := ctrl.venueService.SetVisibility(c.Request.Context(), userID, id, *req.Visible)
	if err != nil {
		ctrl.respondVenueMutationError(c, err, id)
		return
	}

	log.Info("Venue visibility updated", map[string]interface{}{
		"venue_id": venue.ID,
		"visible":  *req.Visible,
	})

	c.JSON(http.StatusOK, gin.H{"venue": venue})
}

// UpdateStatus handles PATCH /admin/venues/:id/status (moderation).
func (ctrl *VenueController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, log)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Field 'status' is required")
		return
	}

	venue, err := ctrl.venueService.UpdateStatus(c.Request.Context(), id, model.VenueStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			apperrors.BadRequest(c, apperrors.VenueInvalidStatus, "Unknown venue status: "+req.Status)
			return
		}
		ctrl.respondVenueMutationError(c, err, id)
		return
	}

	log.Info("Venue status updated", map[string]interface{}{
		"venue_id": venue.ID,
		"status":   venue.Status,
	})

	c.JSON(http.StatusOK, gin.H{"venue": venue})
}

// parseSearchRequest maps query parameters onto a search request. Unparsable
// numeric values are treated as absent rather than rejected.
func (ctrl *VenueController) parseSearchRequest(c *gin.Context) service.SearchRequest {
	req := service.SearchRequest{
		Query: strings.TrimSpace(c.Query("search")),
		City:  strings.TrimSpace(c.Query("city")),
		State: strings.TrimSpace(c.Query("state")),

		MinPrice:          floatQuery(c, "min_price"),
		MaxPrice:          floatQuery(c, "max_price"),
		MinVegPerPlate:    floatQuery(c, "min_veg_per_plate"),
		MaxVegPerPlate:    floatQuery(c, "max_veg_per_plate"),
		MinNonVegPerPlate: floatQuery(c, "min_non_veg_per_plate"),
		MaxNonVegPerPlate: floatQuery(c, "max_non_veg_per_plate"),
		MinCapacity:       intQuery(c, "min_capacity"),
		MaxCapacity:       intQuery(c, "max_capacity"),
		MinRating:         floatQuery(c, "min_rating"),

		Status:     strings.TrimSpace(c.Query("status")),
		VenueType:  strings.TrimSpace(c.Query("venue_type")),
		CategoryID: uintQuery(c, "category_id"),
		MenuID:     uintQuery(c, "menu_id"),
		SubmenuID:  uintQuery(c, "submenu_id"),
		Featured:   boolQuery(c, "featured"),

		Latitude:  floatQuery(c, "latitude"),
		Longitude: floatQuery(c, "longitude"),

		SortBy:   c.Query("sort_by"),
		SortDesc: strings.EqualFold(c.DefaultQuery("sort_order", "asc"), "desc"),
	}

	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if t := strings.TrimSpace(tag); t != "" {
				req.Tags = append(req.Tags, t)
			}
		}
	}

	req.RadiusKm = ctrl.searchCfg.DefaultRadiusKm
	if r := floatQuery(c, "radius_km"); r != nil {
		req.RadiusKm = *r
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		req.Limit = limit
	}

	return req
}

func (ctrl *VenueController) respondVenueMutationError(c *gin.Context, err error, venueID uint) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrVenueNotFound):
		log.Warn("Venue not found", map[string]interface{}{"venue_id": venueID})
		apperrors.NotFound(c, apperrors.VenueNotFound, "Venue not found")
	case errors.Is(err, service.ErrVenueAccessDenied):
		log.Warn("Venue access denied", map[string]interface{}{"venue_id": venueID})
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You do not own this venue")
	default:
		log.Error("Venue mutation failed", err, map[string]interface{}{"venue_id": venueID})
		apperrors.InternalError(c, "")
	}
}
