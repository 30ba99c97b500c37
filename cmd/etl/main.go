package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/optistock/alegra-etl/internal/cli"
	"github.com/optistock/alegra-etl/internal/logger"
)

func main() {
	// A .env file is a convenience for local runs; deployed runs use real
	// environment variables.
	_ = godotenv.Load()

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	if err := cli.Execute(ctx, log); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
