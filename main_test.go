package main

import (
	"testing"
)

func TestNewCollateralEngine(t *testing.T) {
	engine := NewCollateralEngine()

	if engine == nil {
		t.Fatal("NewCollateralEngine() returned nil")
	}

	if engine.name != "Collateral Engine" {
		t.Errorf("Expected name 'Collateral Engine', got '%s'", engine.name)
	}

	if engine.version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got '%s'", engine.version)
	}
}

func TestCollateralEngineStart(t *testing.T) {
	engine := NewCollateralEngine()

	err := engine.Start()
	if err != nil {
		t.Errorf("Start() returned an error: %v", err)
	}
}
