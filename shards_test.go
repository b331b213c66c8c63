package collide

import (
	"context"
	"errors"
	"testing"

	"github.com/akmonengine/collide/volume"
	"github.com/go-gl/mathgl/mgl64"
)

func overlappingWorld(t *testing.T) (*World, *eventCapture) {
	t.Helper()
	world, capture := newTestWorld(t, DefaultConfig())
	world.Create(nil, volume.KindSphere, volume.Sphere{Radius: 1})
	world.Create(nil, volume.KindSphere, volume.Sphere{Center: mgl64.Vec3{1, 0, 0}, Radius: 1})
	return world, capture
}

func TestStepShards(t *testing.T) {
	first, firstCapture := overlappingWorld(t)
	second, secondCapture := overlappingWorld(t)

	if err := StepShards(context.Background(), first, second); err != nil {
		t.Fatalf("StepShards() error = %v", err)
	}

	for i, capture := range []*eventCapture{firstCapture, secondCapture} {
		if capture.countType(OVERLAP_BEGIN) != 1 || capture.countType(CONTACT_ENTER) != 1 {
			t.Errorf("world %d: got %v, want OVERLAP_BEGIN and CONTACT_ENTER", i, capture.events)
		}
	}
}

func TestStepShards_Cancelled(t *testing.T) {
	world, capture := overlappingWorld(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := StepShards(ctx, world); !errors.Is(err, context.Canceled) {
		t.Errorf("StepShards() error = %v, want context.Canceled", err)
	}
	if capture.count() != 0 {
		t.Errorf("cancelled step dispatched %v", capture.events)
	}
}

func TestStepShards_NoWorlds(t *testing.T) {
	if err := StepShards(context.Background()); err != nil {
		t.Errorf("StepShards() error = %v", err)
	}
}
