package services_test

import (
	"context"
	"testing"

	"pitchctl/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPitchID(ctx, "p1")
	ctx = services.WithPipeline(ctx, "synthesis")
	ctx = services.WithStage(ctx, "AUDIO")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.PitchIDFromContext(ctx); !ok || id != "p1" {
		t.Fatalf("unexpected pitch id: %v %v", id, ok)
	}
	if pipeline, ok := services.PipelineFromContext(ctx); !ok || pipeline != "synthesis" {
		t.Fatalf("unexpected pipeline: %v %v", pipeline, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "AUDIO" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithPitchID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.PitchIDFromContext(ctx); ok {
		t.Fatal("expected no pitch id value")
	}
}
