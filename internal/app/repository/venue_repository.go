package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/pkg/logger"
	"gorm.io/gorm"
)

type VenueRepository interface {
	Create(ctx context.Context, venue *model.Venue) error
	BulkCreate(ctx context.Context, venues []model.Venue, batchSize int) error
	Update(ctx context.Context, venue *model.Venue) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Venue, error)
	FindBySlug(ctx context.Context, slug string) (*model.Venue, error)
	FindByOwnerID(ctx context.Context, ownerID uint) ([]model.Venue, error)
	FindPage(ctx context.Context, q VenueQuery) ([]model.Venue, error)
	Count(ctx context.Context, pred Predicate) (int64, error)
	RefreshRatingSnapshots(ctx context.Context) (int64, error)
}

type venueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) VenueRepository {
	return &venueRepository{db: db}
}

func (r *venueRepository) Create(ctx context.Context, venue *model.Venue) error {
	if err := r.db.WithContext(ctx).Create(venue).Error; err != nil {
		logger.Error("Failed to create venue in database", err, map[string]interface{}{
			"name":     venue.Name,
			"city":     venue.City,
			"owner_id": venue.OwnerID,
		})
		return err
	}

	logger.Debug("Venue created in database", map[string]interface{}{
		"venue_id": venue.ID,
		"slug":     venue.Slug,
	})
	return nil
}

// BulkCreate inserts venues in batches. Used by the XLSX importer; slugs are
// still generated per row through the BeforeCreate hook.
func (r *venueRepository) BulkCreate(ctx context.Context, venues []model.Venue, batchSize int) error {
	if err := r.db.WithContext(ctx).CreateInBatches(venues, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create venues", err, map[string]interface{}{
			"count": len(venues),
		})
		return err
	}

	logger.Info("Venues bulk created", map[string]interface{}{
		"count": len(venues),
	})
	return nil
}

func (r *venueRepository) Update(ctx context.Context, venue *model.Venue) error {
	if err := r.db.WithContext(ctx).Save(venue).Error; err != nil {
		logger.Error("Failed to update venue in database", err, map[string]interface{}{
			"venue_id": venue.ID,
		})
		return err
	}
	return nil
}

func (r *venueRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Venue{}, id).Error; err != nil {
		logger.Error("Failed to delete venue from database", err, map[string]interface{}{
			"venue_id": id,
		})
		return err
	}
	return nil
}

func (r *venueRepository) FindByID(ctx context.Context, id uint) (*model.Venue, error) {
	var venue model.Venue
	if err := r.db.WithContext(ctx).First(&venue, id).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *venueRepository) FindBySlug(ctx context.Context, slug string) (*model.Venue, error) {
	var venue model.Venue
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&venue).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *venueRepository) FindByOwnerID(ctx context.Context, ownerID uint) ([]model.Venue, error) {
	var venues []model.Venue
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&venues).Error; err != nil {
		return nil, err
	}
	return venues, nil
}

// FindPage retrieves one page of candidates matching the predicate, ordered
// by the requested sort. Pagination bounds are the caller's responsibility;
// the orchestrator clamps them before calling.
func (r *venueRepository) FindPage(ctx context.Context, q VenueQuery) ([]model.Venue, error) {
	query, err := applyPredicate(r.db.WithContext(ctx).Model(&model.Venue{}), q.Predicate)
	if err != nil {
		return nil, err
	}

	order := sortClause(q.Sort)
	offset := (q.Page - 1) * q.Limit

	var venues []model.Venue
	if err := query.Order(order).Offset(offset).Limit(q.Limit).Find(&venues).Error; err != nil {
		logger.Error("Failed to fetch venue page", err, map[string]interface{}{
			"page":  q.Page,
			"limit": q.Limit,
		})
		return nil, err
	}

	logger.Debug("Venue page fetched", map[string]interface{}{
		"count": len(venues),
		"page":  q.Page,
	})
	return venues, nil
}

// Count runs the unpaged total for the same predicate as FindPage.
func (r *venueRepository) Count(ctx context.Context, pred Predicate) (int64, error) {
	query, err := applyPredicate(r.db.WithContext(ctx).Model(&model.Venue{}), pred)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count venues", err, nil)
		return 0, err
	}
	return total, nil
}

// RefreshRatingSnapshots recomputes the per-venue rating snapshot columns
// from the review table in one grouped pass. The aggregator falls back to
// these columns when live aggregation fails.
func (r *venueRepository) RefreshRatingSnapshots(ctx context.Context) (int64, error) {
	type ratingRow struct {
		VenueID uint
		Count   int64
		Average float64
	}

	var rows []ratingRow
	if err := r.db.WithContext(ctx).Model(&model.VenueReview{}).
		Select("venue_id, COUNT(*) as count, AVG(rating) as average").
		Group("venue_id").
		Scan(&rows).Error; err != nil {
		return 0, err
	}

	var updated int64
	for _, row := range rows {
		res := r.db.WithContext(ctx).Model(&model.Venue{}).
			Where("id = ?", row.VenueID).
			Updates(map[string]interface{}{
				"rating_average": roundToOneDecimal(row.Average),
				"rating_count":   row.Count,
			})
		if res.Error != nil {
			return updated, res.Error
		}
		updated += res.RowsAffected
	}
	return updated, nil
}

func roundToOneDecimal(f float64) float64 {
	return float64(int64(f*10+0.5)) / 10
}

// venueSortFields are the columns a caller may sort by. Anything else falls
// back to creation time.
var venueSortFields = map[string]bool{
	"created_at":          true,
	"name":                true,
	"base_price":          true,
	"veg_per_plate":       true,
	"rating_average":      true,
	"capacity_max_guests": true,
}

func sortClause(s Sort) string {
	field := s.Field
	if !venueSortFields[field] {
		field = "created_at"
		s.Desc = true
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return field + " " + dir
}

// filterableFields guards against arbitrary column names reaching SQL. The
// builder only emits these, but the predicate type is open.
var filterableFields = map[string]bool{
	"name": true, "slug": true, "description": true, "venue_type": true,
	"address": true, "city": true, "state": true, "postal_code": true,
	"status": true, "visibility": true, "featured": true,
	"category_id": true, "menu_id": true, "submenu_id": true, "owner_id": true,
	"capacity_min_guests": true, "capacity_max_guests": true,
	"veg_per_plate": true, "non_veg_per_plate": true, "base_price": true,
	"rating_average": true, "tags": true,
}

// applyPredicate translates the store-agnostic predicate into gorm clauses.
// Clauses AND together; conditions inside a clause OR together.
func applyPredicate(query *gorm.DB, pred Predicate) (*gorm.DB, error) {
	for _, clause := range pred.All {
		var parts []string
		var args []interface{}

		for _, cond := range clause.Any {
			if !filterableFields[cond.Field] {
				return nil, fmt.Errorf("unfilterable field %q", cond.Field)
			}

			switch cond.Op {
			case OpEq:
				parts = append(parts, cond.Field+" = ?")
				args = append(args, cond.Value)
			case OpLike:
				s, _ := cond.Value.(string)
				parts = append(parts, "LOWER("+cond.Field+") LIKE ?")
				args = append(args, "%"+strings.ToLower(s)+"%")
			case OpGTE:
				parts = append(parts, cond.Field+" >= ?")
				args = append(args, cond.Value)
			case OpLTE:
				parts = append(parts, cond.Field+" <= ?")
				args = append(args, cond.Value)
			case OpIn:
				parts = append(parts, cond.Field+" IN ?")
				args = append(args, cond.Value)
			case OpNotFalse:
				parts = append(parts, "("+cond.Field+" IS NULL OR "+cond.Field+" = ?)")
				args = append(args, true)
			case OpTagAny:
				// Tags are stored as a lowercased JSON array; a quoted
				// substring match finds whole-tag membership.
				tags, _ := cond.Value.([]string)
				for _, tag := range tags {
					parts = append(parts, "LOWER("+cond.Field+") LIKE ?")
					args = append(args, `%"`+strings.ToLower(tag)+`"%`)
				}
			default:
				return nil, fmt.Errorf("unsupported predicate op %q", cond.Op)
			}
		}

		if len(parts) == 0 {
			continue
		}
		query = query.Where("("+strings.Join(parts, " OR ")+")", args...)
	}

	return query, nil
}
