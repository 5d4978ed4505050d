package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"esim-storefront/internal/config"
	"esim-storefront/internal/domain/model"
	"esim-storefront/internal/domain/ports/repository"
	pg "esim-storefront/internal/infra/db/postgres"
	"esim-storefront/internal/usecase"

	"github.com/google/uuid"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	planUC := usecase.NewPlanUseCase(pg.NewPlanRepo(pool))

	// If plans already exist, do nothing
	plans, err := planUC.ListActive(ctx, repository.PlanFilter{})
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (%s, %s/%dd, %d %s)\n", p.Name, p.Country, p.DataAmount, p.ValidityDays, p.PriceCents, p.Currency)
		}
		return
	}

	seed := []struct {
		Name       string
		Country    string
		Region     string
		Data       string
		Days       int
		PriceCents int64
	}{
		{"Europe Explorer 5GB", "DE", "Europe", "5GB", 30, 19_99},
		{"Europe Explorer 10GB", "DE", "Europe", "10GB", 30, 29_99},
		{"USA Traveler 5GB", "US", "North America", "5GB", 30, 24_99},
		{"Japan Connect 3GB", "JP", "Asia", "3GB", 15, 14_99},
		{"Global Roamer 10GB", "GLOBAL", "Global", "10GB", 30, 49_99},
	}

	for _, s := range seed {
		p, err := model.NewPlan(uuid.NewString(), s.Name, s.Country, s.Region, s.Data, s.Days, s.PriceCents, "USD")
		if err != nil {
			log.Fatalf("build plan %q: %v", s.Name, err)
		}
		if err := planUC.Save(ctx, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, %s/%dd, %d %s)\n", p.Name, p.ID, p.DataAmount, p.ValidityDays, p.PriceCents, p.Currency)
	}

	fmt.Println("✅ Seeding complete.")
}
