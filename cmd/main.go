package main

import (
  "fmt"
  "os"
  "os/signal"
  "syscall"

  "github.com/dentiqcloud/dentiq-backend/internal/app"
)

func main() {
  application, err := app.New()
  if err != nil {
    fmt.Printf("Failed to init app: %v\n", err)
    os.Exit(1)
  }
  defer application.Close()

  application.Start()

  go func() {
    sig := make(chan os.Signal, 1)
    signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
    <-sig
    application.Close()
    os.Exit(0)
  }()

  port := os.Getenv("PORT")
  if port == "" {
    port = "8080"
  }
  application.Log.Info("Starting server...", "port", port)
  if err := application.Run(":" + port); err != nil {
    application.Log.Fatal("Server exited", "error", err)
  }
}
