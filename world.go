package collide

import (
	"fmt"

	"github.com/akmonengine/collide/volume"
	"go.uber.org/zap"
)

// World owns a set of collision objects and the Registry tracking them.
type World struct {
	Config   Config
	Registry *Registry
	Events   Events

	objects map[ObjectID]*Object
	nextID  ObjectID
	tick    uint64
	logger  *zap.Logger
}

// NewWorld creates an empty world.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	registry, err := NewRegistry(cfg, opts...)
	if err != nil {
		return nil, err
	}

	return &World{
		Config:   cfg,
		Registry: registry,
		Events:   NewEvents(),
		objects:  make(map[ObjectID]*Object),
		logger:   buildOptions(opts).logger,
	}, nil
}

// Create adds a new object holding v and returns its handle. A nil v creates
// an uninitialized object.
func (w *World) Create(entity any, kind volume.Kind, v volume.Volume) (ObjectID, error) {
	id := w.nextID + 1
	object, err := NewObject(id, entity, kind, v)
	if err != nil {
		return 0, err
	}
	if err := w.Registry.Register(object); err != nil {
		return 0, err
	}

	w.nextID = id
	w.objects[id] = object
	return id, nil
}

// Object returns the object behind a handle.
func (w *World) Object(id ObjectID) (*Object, error) {
	object, ok := w.objects[id]
	if !ok {
		return nil, fmt.Errorf("object %d: %w", id, ErrNotRegistered)
	}
	return object, nil
}

// UpdateVolume replaces the local volume of an object.
func (w *World) UpdateVolume(id ObjectID, v volume.Volume) error {
	object, err := w.Object(id)
	if err != nil {
		return err
	}
	return object.UpdateVolume(v)
}

// SetTransform places an object in the world.
func (w *World) SetTransform(id ObjectID, t volume.Transform) error {
	object, err := w.Object(id)
	if err != nil {
		return err
	}
	return object.SetTransform(t)
}

// Destroy deregisters an object and releases its handle. Its OverlapEnd
// events are dispatched by the next Step; its contacts are dropped.
func (w *World) Destroy(id ObjectID) error {
	object, err := w.Object(id)
	if err != nil {
		return err
	}
	if err := object.Destroy(); err != nil {
		return err
	}

	delete(w.objects, id)
	w.Events.forget(id)
	return nil
}

// Len returns the number of live objects.
func (w *World) Len() int {
	return len(w.objects)
}

// Step runs one tick: refit, broad phase, narrow phase, then dispatch of
// every buffered event to the listeners.
func (w *World) Step() {
	w.tick++
	workers := w.Config.workers()

	// Phase 1: refit the objects updated since the last tick
	w.refit(workers)

	// Phase 2: broad phase
	w.Events.emit(w.Registry.Refresh()...)

	// Phase 3: narrow phase on the pairs reported by the broad phase
	if w.Config.NarrowPhase {
		w.Events.recordContacts(narrowPhase(w.Registry, w.Registry.Overlapping(), workers))
	}

	w.logger.Debug("world stepped",
		zap.Uint64("tick", w.tick),
		zap.Int("objects", len(w.objects)),
		zap.Int("events", len(w.Events.buffer)),
	)

	// Phase 4: dispatch
	w.Events.flush()
}

func (w *World) refit(workers int) {
	dirty := make([]*Object, 0, len(w.objects))
	for _, object := range w.objects {
		if object.dirty {
			dirty = append(dirty, object)
		}
	}
	task(workers, dirty, func(object *Object) {
		object.refit()
	})
}
