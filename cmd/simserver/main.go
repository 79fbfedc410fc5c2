package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"smartivr/internal/logging"
	"smartivr/internal/rules"
	"smartivr/internal/simserver"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	logging.Init(logging.Config{
		Level:   envOrDefault("SMARTIVR_LOG_LEVEL", "info"),
		Console: true,
	})

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := simserver.New(simserver.Config{
		ConfidenceThreshold: 0.6,
		ProcessingDelay:     parseDelay(os.Getenv("SMARTIVR_SIM_DELAY_MS")),
	}, rules.NewEngine(nil), logging.WithComponent("simserver"))

	port := envOrDefault("SMARTIVR_SIM_PORT", "8000")
	log.Printf("smartivr simserver running on :%s", port)
	if err := server.Router().Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func envOrDefault(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseDelay(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	parsed, err := time.ParseDuration(raw + "ms")
	if err != nil {
		return 0
	}
	return parsed
}
