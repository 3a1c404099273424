package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/libreshelf/librarian/cmd"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load .env file if it exists; absence is fine outside local development.
	_ = godotenv.Load()

	// Cobra prints the error itself.
	if err := cmd.Execute(Version); err != nil {
		os.Exit(1)
	}
}
