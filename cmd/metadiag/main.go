package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/metalogic-lab/metadiag/internal/cli"
)

func main() {
	// Optional .env for local development (OPENAI_API_KEY etc.).
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
