package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/guardai/guardai/internal/cli"
	"github.com/guardai/guardai/internal/logging"
)

func main() {
	// Missing .env is fine; credentials may come from the environment.
	_ = godotenv.Load()

	code := cli.Run()
	logging.Sync()
	os.Exit(code)
}
