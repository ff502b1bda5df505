package main

import (
	"fmt"
	"log"
)

func main() {
	fmt.Println("Collateral Engine v1.0.0")
	fmt.Println("Collateral-backed stable unit issuance engine implemented in Go")

	engine := NewCollateralEngine()
	if err := engine.Start(); err != nil {
		log.Fatalf("Failed to start collateral engine: %v", err)
	}
}

// CollateralEngine represents the main engine
type CollateralEngine struct {
	name    string
	version string
}

// NewCollateralEngine creates a new collateral engine instance
func NewCollateralEngine() *CollateralEngine {
	return &CollateralEngine{
		name:    "Collateral Engine",
		version: "1.0.0",
	}
}

// Start initializes and starts the collateral engine
func (ce *CollateralEngine) Start() error {
	fmt.Printf("Starting %s %s...\n", ce.name, ce.version)
	fmt.Println("Engine started successfully!")
	return nil
}
