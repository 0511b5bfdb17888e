package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evandrarf/certquiz-be/database"
	"github.com/evandrarf/certquiz-be/internal/config"
	"github.com/evandrarf/certquiz-be/internal/pkg/validate"
	"github.com/evandrarf/certquiz-be/internal/quiz"
)

func main() {
	viperConfig := config.NewViper()

	log := config.NewLogger(viperConfig)
	db := database.New(viperConfig)
	validator := validate.NewValidator()
	api := config.NewAPI(viperConfig, log)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Migrations completed successfully")

	bank, err := quiz.LoadBank(viperConfig.GetString("quiz.bank_path"))
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	single, multi := bank.Count()
	log.WithField("single", single).WithField("multi", multi).Info("Question bank loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	defer stop()

	jobs, err := config.Bootstrap(ctx, &config.BootstrapConfig{
		Config:    viperConfig,
		Log:       log,
		Api:       api,
		Validator: validator,
		DB:        db,
		Bank:      bank,
	})
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	jobs.Start()

	listenAddr := fmt.Sprintf(":%d", viperConfig.GetInt("api.port"))

	go func() {
		if err := api.Listen(listenAddr); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := api.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("API shutdown error: %v", err)
	}
	jobs.Stop(shutdownCtx)
}
