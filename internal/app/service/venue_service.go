package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrVenueAccessDenied = errors.New("venue access denied")
	ErrInvalidStatus     = errors.New("invalid venue status")
)

// VenueInput is a vendor-supplied venue payload, already structured. The
// service keeps the filterable columns and the raw record in sync; drifted
// shapes only ever enter the store through legacy importers.
type VenueInput struct {
	Name        string
	Description string
	VenueType   string
	CategoryID  *uint
	MenuID      *uint
	SubmenuID   *uint
	Tags        []string
	Location    model.VenueLocation
	Capacity    model.VenueCapacity
	Pricing     model.VenuePricing
	CoverImage  string
	Images      []string
	Gallery     model.VenueGallery
	Amenities   []string
}

// VenueMutation carries a partial vendor edit; nil fields stay untouched.
type VenueMutation struct {
	Name        *string
	Description *string
	VenueType   *string
	Tags        []string
	Location    *model.VenueLocation
	Capacity    *model.VenueCapacity
	Pricing     *model.VenuePricing
	CoverImage  *string
	Images      []string
	Gallery     *model.VenueGallery
	Amenities   []string
}

type VenueService interface {
	CreateVenue(ctx context.Context, ownerID uint, input VenueInput) (*model.Venue, error)
	UpdateVenue(ctx context.Context, ownerID, venueID uint, input VenueMutation) (*model.Venue, error)
	DeleteVenue(ctx context.Context, ownerID, venueID uint) error
	GetVenuesByOwner(ctx context.Context, ownerID uint) ([]model.Venue, error)
	SetVisibility(ctx context.Context, ownerID, venueID uint, visible bool) (*model.Venue, error)
	UpdateStatus(ctx context.Context, venueID uint, status model.VenueStatus) (*model.Venue, error)
}

type venueService struct {
	venueRepo repository.VenueRepository
}

func NewVenueService(venueRepo repository.VenueRepository) VenueService {
	return &venueService{venueRepo: venueRepo}
}

func (s *venueService) CreateVenue(ctx context.Context, ownerID uint, input VenueInput) (*model.Venue, error) {
	logger.Info("Creating venue", map[string]interface{}{
		"name":     input.Name,
		"owner_id": ownerID,
	})

	venue := &model.Venue{
		OwnerID:     &ownerID,
		CategoryID:  input.CategoryID,
		MenuID:      input.MenuID,
		SubmenuID:   input.SubmenuID,
		Name:        input.Name,
		Description: input.Description,
		VenueType:   input.VenueType,
		Status:      model.VenueStatusPending,
		CoverImage:  input.CoverImage,
		Images:      model.StringArray(input.Images),
		Amenities:   model.StringArray(input.Amenities),
	}
	applyTags(venue, input.Tags)
	applyLocation(venue, input.Location)
	applyCapacity(venue, input.Capacity)
	applyPricing(venue, input.Pricing)
	applyGallery(venue, input.Gallery)

	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return nil, err
	}

	logger.Info("Venue created", map[string]interface{}{
		"venue_id": venue.ID,
		"slug":     venue.Slug,
	})
	return venue, nil
}

func (s *venueService) UpdateVenue(ctx context.Context, ownerID, venueID uint, input VenueMutation) (*model.Venue, error) {
	existing, err := s.ownedVenue(ctx, ownerID, venueID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.VenueType != nil {
		existing.VenueType = *input.VenueType
	}
	if input.Tags != nil {
		applyTags(existing, input.Tags)
	}
	if input.Location != nil {
		applyLocation(existing, *input.Location)
	}
	if input.Capacity != nil {
		applyCapacity(existing, *input.Capacity)
	}
	if input.Pricing != nil {
		applyPricing(existing, *input.Pricing)
	}
	if input.CoverImage != nil {
		existing.CoverImage = *input.CoverImage
	}
	if input.Images != nil {
		existing.Images = model.StringArray(input.Images)
	}
	if input.Gallery != nil {
		applyGallery(existing, *input.Gallery)
	}
	if input.Amenities != nil {
		existing.Amenities = model.StringArray(input.Amenities)
	}

	if err := s.venueRepo.Update(ctx, existing); err != nil {
		logger.Error("Failed to update venue", err, map[string]interface{}{
			"venue_id": venueID,
		})
		return nil, err
	}

	logger.Info("Venue updated", map[string]interface{}{
		"venue_id": venueID,
	})
	return existing, nil
}

func (s *venueService) DeleteVenue(ctx context.Context, ownerID, venueID uint) error {
	if _, err := s.ownedVenue(ctx, ownerID, venueID); err != nil {
		return err
	}

	if err := s.venueRepo.Delete(ctx, venueID); err != nil {
		logger.Error("Failed to delete venue", err, map[string]interface{}{
			"venue_id": venueID,
		})
		return err
	}

	logger.Info("Venue deleted", map[string]interface{}{
		"venue_id": venueID,
		"owner_id": ownerID,
	})
	return nil
}

func (s *venueService) GetVenuesByOwner(ctx context.Context, ownerID uint) ([]model.Venue, error) {
	venues, err := s.venueRepo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		logger.Error("Failed to fetch venues by owner", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return venues, nil
}

// SetVisibility flips the vendor-controlled visibility flag. It is
// independent of moderation status.
func (s *venueService) SetVisibility(ctx context.Context, ownerID, venueID uint, visible bool) (*model.Venue, error) {
	existing, err := s.ownedVenue(ctx, ownerID, venueID)
	if err != nil {
		return nil, err
	}

	existing.Visibility = &visible
	if err := s.venueRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	logger.Info("Venue visibility updated", map[string]interface{}{
		"venue_id": venueID,
		"visible":  visible,
	})
	return existing, nil
}

// UpdateStatus moves a venue through moderation. Admin-only; the controller
// enforces the role.
func (s *venueService) UpdateStatus(ctx context.Context, venueID uint, status model.VenueStatus) (*model.Venue, error) {
	switch status {
	case model.VenueStatusPending, model.VenueStatusApproved,
		model.VenueStatusRejected, model.VenueStatusActive:
	default:
		return nil, ErrInvalidStatus
	}

	existing, err := s.venueRepo.FindByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	existing.Status = status
	if err := s.venueRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	logger.Info("Venue status updated", map[string]interface{}{
		"venue_id": venueID,
		"status":   string(status),
	})
	return existing, nil
}

func (s *venueService) ownedVenue(ctx context.Context, ownerID, venueID uint) (*model.Venue, error) {
	existing, err := s.venueRepo.FindByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Venue not found", map[string]interface{}{
				"venue_id": venueID,
			})
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	if existing.OwnerID == nil || *existing.OwnerID != ownerID {
		logger.Warn("Venue access forbidden", map[string]interface{}{
			"venue_id": venueID,
			"owner_id": ownerID,
		})
		return nil, ErrVenueAccessDenied
	}

	return existing, nil
}

// applyTags lowercases and trims tags before storing; tag matching is
// case-insensitive over the stored form.
func applyTags(v *model.Venue, tags []string) {
	cleaned := make(model.StringArray, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ToLower(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	v.Tags = cleaned
}

// applyLocation writes both the filterable columns and the structured raw
// record so reads through the normalizer and reads through the predicate
// agree.
func applyLocation(v *model.Venue, loc model.VenueLocation) {
	v.Address = loc.Address
	v.City = loc.City
	v.State = loc.State
	v.PostalCode = loc.PostalCode
	v.Latitude = loc.Latitude
	v.Longitude = loc.Longitude

	raw, err := json.Marshal(loc)
	if err == nil {
		v.LocationRaw = model.RawJSON(raw)
	}
}

func applyCapacity(v *model.Venue, cap model.VenueCapacity) {
	v.CapacityMinGuests = cap.MinGuests
	v.CapacityMaxGuests = cap.MaxGuests

	raw, err := json.Marshal(map[string]int{
		"minGuests": cap.MinGuests,
		"maxGuests": cap.MaxGuests,
	})
	if err == nil {
		v.CapacityRaw = model.RawJSON(raw)
	}
}

func applyPricing(v *model.Venue, pricing model.VenuePricing) {
	v.VegPerPlate = pricing.VegPerPlate
	v.NonVegPerPlate = pricing.NonVegPerPlate
	v.BasePrice = pricing.RentalPrice

	raw, err := json.Marshal(map[string]interface{}{
		"vegPerPlate":    pricing.VegPerPlate,
		"nonVegPerPlate": pricing.NonVegPerPlate,
		"rentalPrice":    pricing.RentalPrice,
		"taxIncluded":    pricing.TaxIncluded,
		"decorationCost": pricing.DecorationCost,
		"djCost":         pricing.DJCost,
	})
	if err == nil {
		v.PricingInfo = model.RawJSON(raw)
	}
}

func applyGallery(v *model.Venue, gallery model.VenueGallery) {
	raw, err := json.Marshal(map[string][]string{
		"photos": gallery.Photos,
		"videos": gallery.Videos,
	})
	if err == nil {
		v.GalleryRaw = model.RawJSON(raw)
	}
}
