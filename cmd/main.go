package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dandarts/dandarts-backend/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, reading environment variables directly")
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(); err != nil {
		application.Log.Error("Background startup failed", "error", err)
		return
	}

	application.Log.Info("Server listening", "port", application.Cfg.Port)
	if err := application.Run(ctx); err != nil {
		application.Log.Warn("Server exited with error", "error", err)
	}
}
