package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Secrets live in the environment; a local .env is a convenience for
	// development and its absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
