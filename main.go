package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present so SCHEDULE_ANALYTICS_* overrides can live next to the data
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
