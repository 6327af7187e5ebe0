package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/brightpath/brightpath-backend/internal/db"
	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/repos"
	"github.com/brightpath/brightpath-backend/internal/services"
)

func main() {
	var dryRun bool
	var limit int
	flag.BoolVar(&dryRun, "dry-run", false, "report repairs without writing them")
	flag.IntVar(&limit, "limit", 0, "limit number of units processed")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		fmt.Printf("init postgres: %v\n", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	unitRepo := repos.NewLearningUnitRepo(thePG, log)
	repairLogRepo := repos.NewRepairLogRepo(thePG, log)
	repairService := services.NewRepairService(thePG, log, unitRepo, repairLogRepo)

	summary, err := repairService.RepairBlockShapes(context.Background(), dryRun, limit)
	if err != nil {
		fmt.Printf("repair block shapes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("scanned=%d problems=%d repaired=%d skipped=%d failed=%d dry_run=%v\n",
		summary.Scanned, summary.Problems, summary.Repaired, summary.Skipped, summary.Failed, summary.DryRun)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
