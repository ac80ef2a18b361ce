package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
