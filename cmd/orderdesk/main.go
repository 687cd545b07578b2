package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"orderdesk/internal/bus"
	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/database/repository"
	"orderdesk/internal/service"
	"orderdesk/internal/tui"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.Migrate(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDemo(ctx, db, cfg.UI.CatalogPath); err != nil {
		log.Fatalf("seed: %v", err)
	}

	// repositories
	orderRepo := repository.NewOrderRepo(db)
	itemRepo := repository.NewOrderItemRepo(db)
	pricebookRepo := repository.NewPricebookRepo(db)
	jobRepo := repository.NewSaveJobRepo(db)

	backend := &service.OrderEntryService{
		DB:        db,
		Orders:    orderRepo,
		Items:     itemRepo,
		Pricebook: pricebookRepo,
		Jobs:      jobRepo,
	}

	worker := &service.SaveWorker{DB: db, Jobs: jobRepo, Items: itemRepo}
	go worker.Run(ctx, cfg.WorkerInterval())

	orderID := cfg.UI.OrderID
	if orderID == "" {
		order, err := orderRepo.First(ctx)
		if err != nil {
			log.Fatalf("find order: %v", err)
		}
		if order == nil {
			log.Fatal("no orders in database")
		}
		orderID = order.ID
	}

	app := tui.New(ctx, cfg, backend, bus.New(), orderID)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}
