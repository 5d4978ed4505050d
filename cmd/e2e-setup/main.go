package main

import (
	"context"
	"log"

	"esim-storefront/internal/config"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/infra/db/postgres"
	"esim-storefront/internal/infra/redis"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

// This script is for setting up a clean, predictable database state
// for manual end-to-end testing.
func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[1/4] Applying migrations...")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	log.Println("[2/4] Wiping Redis cache...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}

	log.Println("[3/4] Wiping all existing database data...")
	_, err = pool.Exec(ctx, `
		TRUNCATE
			plans, orders, payments, esims, webhook_events, notifications
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	log.Println("[4/4] Seeding test plans...")
	seedPlans(ctx, pool)

	log.Println("--- ✅ E2E Environment Setup Complete ---")
}

func seedPlans(ctx context.Context, pool *pgxpool.Pool) {
	planRepo := postgres.NewPlanRepo(pool)

	europe, _ := model.NewPlan(uuid.NewString(), "Europe Explorer 5GB", "DE", "Europe", "5GB", 30, 19_99, "USD")
	if err := planRepo.Save(ctx, nil, europe); err != nil {
		log.Printf("failed to save europe plan: %v", err)
	}

	usa, _ := model.NewPlan(uuid.NewString(), "USA Traveler 5GB", "US", "North America", "5GB", 30, 24_99, "USD")
	if err := planRepo.Save(ctx, nil, usa); err != nil {
		log.Printf("failed to save usa plan: %v", err)
	}
}
