package telemetry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	p, err := Init(context.Background(), Config{ServiceName: "gateway"}, zerolog.Nop())
	if err != nil || p != nil {
		t.Fatalf("expected disabled provider, got %v, %v", p, err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil shutdown: %v", err)
	}
}

func TestInit_WithEndpoint(t *testing.T) {
	p, err := Init(context.Background(), Config{ServiceName: "gateway", Environment: "test", Endpoint: "http://127.0.0.1:4318"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if p == nil {
		t.Fatalf("expected provider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
