package collide

import (
	"fmt"
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/akmonengine/collide/volume"
)

// Object binds an entity to one bounding volume and its world transform.
//
// The entity is a weak reference: the object never owns it and the registry
// never touches it. The volume kind is fixed at creation. A nil volume (or
// volume.EmptyAABB()) leaves the object uninitialized: it stays tracked but is
// never reported as overlapping.
type Object struct {
	ID     ObjectID
	Entity any

	kind      volume.Kind
	local     volume.Volume
	transform volume.Transform

	// cached world-space state, refit lazily
	world  volume.Volume
	bounds volume.AABB
	dirty  bool

	version  uint64
	registry *Registry
}

// NewObject creates a collision object holding initial, expressed in the
// object's local frame. The transform starts as identity.
func NewObject(id ObjectID, entity any, kind volume.Kind, initial volume.Volume) (*Object, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown volume kind %d", ErrInvalidArgument, kind)
	}
	if err := checkVolume(kind, initial); err != nil {
		return nil, err
	}

	return &Object{
		ID:        id,
		Entity:    entity,
		kind:      kind,
		local:     initial,
		transform: volume.NewTransform(),
		dirty:     true,
	}, nil
}

func checkVolume(kind volume.Kind, v volume.Volume) error {
	if v == nil {
		return nil
	}
	if v.Kind() != kind {
		return fmt.Errorf("%w: volume kind %s does not match object kind %s", ErrInvalidArgument, v.Kind(), kind)
	}
	if aabb, ok := v.(volume.AABB); ok && aabb == volume.EmptyAABB() {
		return nil
	}
	return v.Validate()
}

func (o *Object) Kind() volume.Kind {
	return o.kind
}

// Volume returns the local volume, nil while uninitialized.
func (o *Object) Volume() volume.Volume {
	return o.local
}

func (o *Object) Transform() volume.Transform {
	return o.transform
}

// Version increases on every accepted update.
func (o *Object) Version() uint64 {
	return o.version
}

// Registry returns the registry the object is enrolled in, if any.
func (o *Object) Registry() *Registry {
	return o.registry
}

// UpdateVolume replaces the local volume. The kind must match the object's
// and the volume must validate; a rejected update leaves the object unchanged.
func (o *Object) UpdateVolume(v volume.Volume) error {
	if err := checkVolume(o.kind, v); err != nil {
		return fmt.Errorf("object %d: %w", o.ID, err)
	}
	o.local = v
	o.touch()
	return nil
}

// SetTransform places the local volume in the world.
func (o *Object) SetTransform(t volume.Transform) error {
	if !validTransform(t) {
		return fmt.Errorf("%w: object %d: transform must be finite", ErrInvalidArgument, o.ID)
	}
	o.transform = t
	o.touch()
	return nil
}

func (o *Object) touch() {
	o.version++
	o.dirty = true
}

// WorldVolume returns the volume in world space, nil while uninitialized.
func (o *Object) WorldVolume() volume.Volume {
	o.refit()
	return o.world
}

// Bounds returns the AABB fit of the world volume. It is empty while the
// object is uninitialized.
func (o *Object) Bounds() volume.AABB {
	o.refit()
	return o.bounds
}

// IsDegenerate reports an empty fit, or a fit with zero extent on every axis.
func (o *Object) IsDegenerate() bool {
	return volume.Degenerate(o.WorldVolume())
}

func (o *Object) refit() {
	if !o.dirty {
		return
	}
	o.dirty = false

	if o.local == nil || o.local.IsEmpty() {
		o.world = o.local
		o.bounds = volume.EmptyAABB()
		return
	}
	if o.transform.IsIdentity() {
		o.world = o.local
	} else {
		o.world = o.local.Transformed(o.transform)
	}
	o.bounds = o.world.Bounds()
}

// Destroy removes the object from the registry it is enrolled in. Destroying
// an object that is not enrolled returns ErrNotRegistered.
func (o *Object) Destroy() error {
	if o.registry == nil {
		return fmt.Errorf("object %d: %w", o.ID, ErrNotRegistered)
	}
	return o.registry.Deregister(o)
}

func validTransform(t volume.Transform) bool {
	w := t.Rotation.W
	return geometry.IsFinite(t.Position) && geometry.IsFinite(t.Rotation.V) && !math.IsNaN(w) && !math.IsInf(w, 0)
}
