package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/akmonengine/collide"
	"go.uber.org/zap"
)

const defaultScene = `
ticks: 12
config:
  workers: 2
objects:
  - name: crate
    kind: aabb
    min: [-1, -1, -1]
    max: [1, 1, 1]
    position: [-6, 0, 0]
    velocity: [1, 0, 0]
  - name: ball
    kind: sphere
    radius: 1
    position: [6, 0, 0]
    velocity: [-1, 0, 0]
  - name: plank
    kind: obb
    half_extents: [3, 0.2, 0.5]
    axis: [0, 0, 1]
    spin: 0.3
  - name: pill
    kind: capsule
    a: [0, -1, 0]
    b: [0, 1, 0]
    radius: 0.5
    position: [0, 8, 0]
    velocity: [0, -1, 0]
  - name: rock
    kind: obb
    points: [[0, 0, 0], [1, 0.2, 0], [2, 0.1, 0.3], [0.5, 0.8, 0.2], [1.5, 0.5, 0.9]]
    position: [20, 20, 20]
`

func main() {
	scenePath := flag.String("scene", "", "YAML scene file (built-in scene when empty)")
	ticks := flag.Int("ticks", 0, "number of ticks to run (overrides the scene)")
	dev := flag.Bool("dev", false, "human readable debug logging")
	flag.Parse()

	logger, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *scenePath, *ticks); err != nil {
		logger.Fatal("sweepdemo failed", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(logger *zap.Logger, scenePath string, ticks int) error {
	var r io.Reader = strings.NewReader(defaultScene)
	if scenePath != "" {
		f, err := os.Open(scenePath)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	scene, err := LoadScene(r)
	if err != nil {
		return err
	}
	if ticks > 0 {
		scene.Ticks = ticks
	}

	world, err := collide.NewWorld(*scene.Config, collide.WithLogger(logger))
	if err != nil {
		return err
	}

	specs := make(map[collide.ObjectID]ObjectSpec, len(scene.Objects))
	for _, spec := range scene.Objects {
		id, err := spawn(world, spec)
		if err != nil {
			return err
		}
		specs[id] = spec
	}

	for _, eventType := range []collide.EventType{
		collide.OVERLAP_BEGIN,
		collide.OVERLAP_END,
		collide.CONTACT_ENTER,
		collide.CONTACT_EXIT,
	} {
		world.Events.Subscribe(eventType, func(event collide.Event) {
			a, b := event.Objects()
			logger.Info(event.Type().String(),
				zap.String("a", a.Entity.(*Entity).Name),
				zap.String("b", b.Entity.(*Entity).Name),
			)
		})
	}

	for tick := range scene.Ticks {
		for id, spec := range specs {
			if err := world.SetTransform(id, spec.transformAt(tick)); err != nil {
				return err
			}
		}
		world.Step()
	}

	logger.Info("done",
		zap.Int("ticks", scene.Ticks),
		zap.Int("objects", world.Len()),
		zap.Int("overlapping", len(world.Registry.Overlapping())),
		zap.Uint64("digest", world.Registry.Digest()),
	)
	return nil
}

func spawn(world *collide.World, spec ObjectSpec) (collide.ObjectID, error) {
	entity, err := spec.entity()
	if err != nil {
		return 0, err
	}
	kind, v, err := spec.volume()
	if err != nil {
		return 0, err
	}

	id, err := world.Create(entity, kind, v)
	if err != nil {
		return 0, fmt.Errorf("object %q: %w", spec.Name, err)
	}
	if err := world.SetTransform(id, spec.transformAt(0)); err != nil {
		return 0, err
	}
	return id, nil
}
