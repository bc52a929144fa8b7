package db

import (
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Category{},
		&model.Menu{},
		&model.Submenu{},
		&model.Venue{},
		&model.VenueReview{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedCategories(); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedCategories creates the browse taxonomy used by listing pages.
func seedCategories() error {
	var count int64
	if err := DB.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding category data...")

	taxonomy := map[string][]string{
		"Banquet Hall":   {"AC Banquet Hall", "Non-AC Banquet Hall"},
		"Lawn":           {"Open Lawn", "Lawn with Canopy"},
		"Resort":         {"Destination Resort", "City Resort"},
		"Farmhouse":      {"Farmhouse with Stay", "Day Farmhouse"},
		"Hotel":          {"5 Star", "4 Star", "3 Star"},
		"Community Hall": {"Society Hall", "Kalyana Mandapam"},
	}

	totalInserted := 0
	for categoryName, menuNames := range taxonomy {
		category := model.Category{Name: categoryName}
		if err := DB.Create(&category).Error; err != nil {
			logger.Error("Failed to create category", err, map[string]interface{}{
				"category": categoryName,
			})
			return err
		}
		totalInserted++

		for _, menuName := range menuNames {
			menu := model.Menu{CategoryID: category.ID, Name: menuName}
			if err := DB.Create(&menu).Error; err != nil {
				logger.Error("Failed to create menu", err, map[string]interface{}{
					"menu": menuName,
				})
				return err
			}
			totalInserted++
		}
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_records": totalInserted,
	})

	return nil
}
