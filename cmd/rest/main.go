package main

import (
	"context"
	"log"

	"greentrip-be/internal/bootstrap"
	"greentrip-be/internal/config"
	"greentrip-be/internal/server"
	"greentrip-be/internal/tracer"
	"greentrip-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (skipped for the memory backend)
	var gormDB *gorm.DB
	if cfg.Database.Backend != "memory" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Pipeline Worker...")
		if err := container.PipelineService.Consume(context.Background()); err != nil {
			log.Printf("Background Pipeline Worker Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
