package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"equiprent/internal/config"
	"equiprent/internal/database"
	"equiprent/internal/domain"
	"equiprent/internal/pkg/logger"
	"equiprent/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

type seedItem struct {
	name     string
	serial   string
	total    int
	public   bool
	caution  string
	category string
}

var seedCategories = []struct{ name, description string }{
	{"Cameras", "Photo and video cameras"},
	{"Audio", "Microphones, recorders and speakers"},
	{"Lighting", "Studio lights and stands"},
	{"Computing", "Laptops and tablets"},
}

var seedEquipment = []seedItem{
	{"DSLR camera", "CAM-001", 3, true, "Return with the battery charged.", "Cameras"},
	{"Action camera", "CAM-002", 5, true, "", "Cameras"},
	{"Tripod", "CAM-003", 6, true, "", "Cameras"},
	{"Wireless microphone set", "AUD-001", 4, true, "Do not remove the transmitter clips.", "Audio"},
	{"Portable speaker", "AUD-002", 2, true, "", "Audio"},
	{"Field recorder", "AUD-003", 1, false, "", "Audio"},
	{"LED panel", "LGT-001", 4, true, "", "Lighting"},
	{"Light stand", "LGT-002", 8, true, "", "Lighting"},
	{"Laptop", "CMP-001", 10, true, "Log out of every account before returning.", "Computing"},
	{"Drawing tablet", "CMP-002", 3, false, "", "Computing"},
}

var seedRenters = []struct{ name, class, studentID, phone string }{
	{"Kim Minji", "2-1", "S2101", "010-1111-2222"},
	{"Lee Jun", "1-3", "S1307", "010-3333-4444"},
	{"Park Seoyeon", "3-2", "S3205", "010-5555-6666"},
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	zl, err := logger.New("dev", cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zl.Sync()
	log := zl.Sugar()

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	log.Info("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Info("Cleaning old data...")
	for _, table := range []string{"rentals", "equipment", "categories"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s failed: %v", table, err)
		}
	}

	// ================== ADMIN ==================
	email, password := cfg.Admin.Email, cfg.Admin.Password
	if email == "" {
		email, password = "admin@school.example", "admin123"
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	admin := domain.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "name", "role", "is_active", "updated_at"}),
	}).Create(&admin).Error; err != nil {
		log.Fatalf("admin upsert failed: %v", err)
	}
	log.Infof("Admin ready: %s", email)

	// ================== CATALOG ==================
	ctx := context.Background()
	categoryRepo := repository.NewCategoryRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)

	categoryIDs := make(map[string]int64, len(seedCategories))
	for _, c := range seedCategories {
		desc := c.description
		cat := &domain.Category{Name: c.name, Description: &desc}
		if err := categoryRepo.Create(ctx, cat); err != nil {
			log.Fatalf("create category %s: %v", c.name, err)
		}
		categoryIDs[c.name] = cat.ID
	}
	log.Infof("Created %d categories", len(seedCategories))

	equipment := make([]*domain.Equipment, 0, len(seedEquipment))
	for _, it := range seedEquipment {
		catID := categoryIDs[it.category]
		e := &domain.Equipment{
			Name:           it.name,
			SerialNumber:   it.serial,
			Status:         domain.EquipmentAvailable,
			TotalCount:     it.total,
			AvailableCount: it.total,
			CategoryID:     &catID,
			IsPublic:       it.public,
		}
		if it.caution != "" {
			caution := it.caution
			e.Caution = &caution
		}
		if err := equipmentRepo.Create(ctx, e); err != nil {
			log.Fatalf("create equipment %s: %v", it.name, err)
		}
		equipment = append(equipment, e)
	}
	log.Infof("Created %d equipment items", len(equipment))

	// ================== RENTALS ==================
	rentalRepo := repository.NewRentalRepository(db)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	created := 0
	for i, r := range seedRenters {
		e := equipment[rand.Intn(len(equipment))]
		start := today.AddDate(0, 0, -rand.Intn(7))
		rental := &domain.Rental{
			EquipmentID: e.ID,
			RenterName:  r.name,
			RenterClass: r.class,
			StudentID:   r.studentID,
			Phone:       r.phone,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 1+i*3),
		}
		if err := rentalRepo.Apply(ctx, rental); err != nil {
			log.Warnf("skip rental for %s: %v", r.name, err)
			continue
		}
		created++
	}
	log.Infof("Created %d rentals", created)

	log.Info("Seed completed!")
}
