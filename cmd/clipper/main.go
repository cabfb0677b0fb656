package main

import (
	"log"

	"github.com/MrSnakeDoc/webclipper/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ clipper failed to start: %v", err)
	}
}
