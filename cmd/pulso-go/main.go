package main

import (
	"log"

	"github.com/kladi/pulso-go/internal/application/startup"
)

func main() {
	if err := startup.Initialize(); err != nil {
		log.Fatalf("Application failed to start: %v", err)
	}
}
