package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/venuebook/venuebook-backend/config"
	"github.com/venuebook/venuebook-backend/internal/app/model"
	"github.com/venuebook/venuebook-backend/internal/app/repository"
	"github.com/venuebook/venuebook-backend/internal/db"
	"github.com/venuebook/venuebook-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Expected sheet columns, header row first:
// 0 name, 1 description, 2 venue_type, 3 address, 4 city, 5 state,
// 6 postal_code, 7 latitude, 8 longitude, 9 min_guests, 10 max_guests,
// 11 veg_per_plate, 12 non_veg_per_plate, 13 rental_price, 14 tags,
// 15 cover_image
const expectedColumns = 16

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx := context.Background()

	// Imported venues need an owner; create (or reuse) a seed vendor account.
	ownerID, err := ensureSeedVendor(ctx)
	if err != nil {
		log.Fatal("Failed to create seed vendor:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	venues, err := readVenuesFromXLSX(filePath, ownerID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total venues to import: %d\n", len(venues))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	venueRepo := repository.NewVenueRepository(db.GetDB())

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := venueRepo.BulkCreate(ctx, venues, batchSize); err != nil {
		log.Fatal("Failed to bulk create venues:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total venues imported: %d\n", len(venues))
}

func ensureSeedVendor(ctx context.Context) (uint, error) {
	userRepo := repository.NewUserRepository(db.GetDB())

	const seedEmail = "seed-vendor@venuebook.local"
	if existing, err := userRepo.FindByEmail(ctx, seedEmail); err == nil {
		return existing.ID, nil
	}

	password := os.Getenv("SEED_VENDOR_PASSWORD")
	if password == "" {
		password = "change-me-after-import"
	}
	hash, err := util.HashPassword(password)
	if err != nil {
		return 0, err
	}

	vendor := &model.User{
		Email:        seedEmail,
		PasswordHash: hash,
		Name:         "Imported Venues",
		Role:         model.RoleVendor,
	}
	if err := userRepo.Create(ctx, vendor); err != nil {
		return 0, err
	}
	return vendor.ID, nil
}

func readVenuesFromXLSX(filePath string, ownerID uint) ([]model.Venue, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var venues []model.Venue
	seen := make(map[string]bool)
	skippedCount := 0
	invalidCoordCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < expectedColumns {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		city := strings.TrimSpace(row[4])
		if name == "" || city == "" {
			skippedCount++
			continue
		}

		// Dedupe on name+city
		key := strings.ToLower(name + "|" + city)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		venue := model.Venue{
			OwnerID:     &ownerID,
			Name:        name,
			Description: strings.TrimSpace(row[1]),
			VenueType:   strings.ToLower(strings.TrimSpace(row[2])),
			Address:     strings.TrimSpace(row[3]),
			City:        city,
			State:       strings.TrimSpace(row[5]),
			PostalCode:  strings.TrimSpace(row[6]),
			CoverImage:  strings.TrimSpace(row[15]),
			Status:      model.VenueStatusApproved,
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(row[8]), 64)
		if latErr == nil && lngErr == nil && util.ValidCoordinate(lat, lng) {
			venue.Latitude = &lat
			venue.Longitude = &lng
		} else if strings.TrimSpace(row[7]) != "" || strings.TrimSpace(row[8]) != "" {
			invalidCoordCount++
		}

		minGuests, _ := strconv.Atoi(strings.TrimSpace(row[9]))
		maxGuests, _ := strconv.Atoi(strings.TrimSpace(row[10]))
		venue.CapacityMinGuests = minGuests
		venue.CapacityMaxGuests = maxGuests

		veg, _ := strconv.ParseFloat(strings.TrimSpace(row[11]), 64)
		nonVeg, _ := strconv.ParseFloat(strings.TrimSpace(row[12]), 64)
		rental, _ := strconv.ParseFloat(strings.TrimSpace(row[13]), 64)
		venue.VegPerPlate = veg
		venue.NonVegPerPlate = nonVeg
		venue.RentalPrice = rental
		venue.BasePrice = rental

		if tags := strings.TrimSpace(row[14]); tags != "" {
			for _, tag := range strings.Split(tags, ",") {
				if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
					venue.Tags = append(venue.Tags, t)
				}
			}
		}

		// Historical importers wrote the raw columns in their era's
		// shapes; reproduce them so the normalizer has real input.
		fillLegacyRaw(&venue, i)

		venues = append(venues, venue)
	}

	fmt.Printf("Skipped rows: %d (missing fields or duplicates)\n", skippedCount)
	fmt.Printf("Rows with invalid coordinates: %d\n", invalidCoordCount)

	return venues, nil
}

// fillLegacyRaw writes the drifted raw columns. Alternating rows get the
// older shapes (plain address string, bare-number capacity, flat per-plate
// price) so every schema era is represented in a seeded database.
func fillLegacyRaw(v *model.Venue, rowIdx int) {
	if rowIdx%2 == 0 {
		loc := map[string]interface{}{
			"address":    v.Address,
			"city":       v.City,
			"state":      v.State,
			"postalCode": v.PostalCode,
		}
		if v.Latitude != nil && v.Longitude != nil {
			loc["latitude"] = *v.Latitude
			loc["longitude"] = *v.Longitude
		}
		v.LocationRaw = mustRaw(loc)
		v.CapacityRaw = mustRaw(map[string]int{
			"minGuests": v.CapacityMinGuests,
			"maxGuests": v.CapacityMaxGuests,
		})
		v.PricingInfo = mustRaw(map[string]interface{}{
			"vegPerPlate":    v.VegPerPlate,
			"nonVegPerPlate": v.NonVegPerPlate,
			"rentalPrice":    v.RentalPrice,
		})
	} else {
		v.LocationRaw = mustRaw(v.Address)
		v.CapacityRaw = mustRaw(v.CapacityMaxGuests)
		v.PricePerPlate = mustRaw(map[string]float64{
			"veg":    v.VegPerPlate,
			"nonVeg": v.NonVegPerPlate,
		})
	}
}

func mustRaw(v interface{}) model.RawJSON {
	b, err := json.Marshal(v)
	if err != nil {
		log.Fatal("Failed to marshal raw column:", err)
	}
	return model.RawJSON(b)
}
