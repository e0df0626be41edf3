package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"mergington/internal/activities"
	"mergington/internal/shared/config"
	"mergington/internal/shared/database"

	"github.com/joho/godotenv"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Mergington Activity Seeder...")

	_ = godotenv.Load()

	// The seeder only makes sense against shared storage
	cfg := config.Load()
	cfg.Registry.Backend = config.BackendRedis

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("\n🧹 Resetting activity registry...")
	seeded, err := seeder.SeedAll(ctx)
	if err != nil {
		log.Fatalf("Failed to seed registry: %v", err)
	}

	for _, activity := range seeded {
		fmt.Printf("  • %-18s %d/%d participants\n", activity.Name, len(activity.Participants), activity.MaxParticipants)
	}

	fmt.Printf("\n🎉 Seeding completed! %d activities loaded into %s\n", len(seeded), cfg.Redis.Addr)
}

// SeedAll replaces whatever is stored with the initial catalog and reads it back
func (s *Seeder) SeedAll(ctx context.Context) (activities.Catalog, error) {
	repo := activities.NewRedisRepository(s.db.GetRedis())

	if err := activities.PreloadScripts(ctx, s.db.GetRedis()); err != nil {
		return nil, fmt.Errorf("failed to load Lua scripts: %w", err)
	}
	if err := repo.Reset(ctx, activities.SeedActivities()); err != nil {
		return nil, err
	}
	return repo.List(ctx)
}
