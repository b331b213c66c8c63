package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/akmonengine/collide"
	"github.com/akmonengine/collide/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Scene is the YAML description of a demo run.
type Scene struct {
	Ticks   int             `yaml:"ticks"`
	Config  *collide.Config `yaml:"config"`
	Objects []ObjectSpec    `yaml:"objects"`
}

// ObjectSpec describes one object. Which volume fields are read depends on
// Kind; when Points is set the volume is fitted around them instead.
type ObjectSpec struct {
	Name   string `yaml:"name"`
	Entity string `yaml:"entity"`
	Kind   string `yaml:"kind"`

	Min         mgl64.Vec3   `yaml:"min"`
	Max         mgl64.Vec3   `yaml:"max"`
	Center      mgl64.Vec3   `yaml:"center"`
	Radius      float64      `yaml:"radius"`
	HalfExtents mgl64.Vec3   `yaml:"half_extents"`
	A           mgl64.Vec3   `yaml:"a"`
	B           mgl64.Vec3   `yaml:"b"`
	Points      []mgl64.Vec3 `yaml:"points"`

	Position mgl64.Vec3 `yaml:"position"`
	// Axis and Angle (radians) give the initial rotation.
	Axis     mgl64.Vec3 `yaml:"axis"`
	Angle    float64    `yaml:"angle"`
	Velocity mgl64.Vec3 `yaml:"velocity"`
	// Spin is the angular speed around Axis, in radians per tick.
	Spin float64 `yaml:"spin"`
}

// Entity is what the demo hangs on every collision object.
type Entity struct {
	ID   uuid.UUID
	Name string
}

// LoadScene decodes a scene. The config section is decoded over
// collide.DefaultConfig.
func LoadScene(r io.Reader) (Scene, error) {
	cfg := collide.DefaultConfig()
	scene := Scene{Config: &cfg}
	if err := yaml.NewDecoder(r).Decode(&scene); err != nil && !errors.Is(err, io.EOF) {
		return Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	if scene.Config == nil {
		scene.Config = &cfg
	}
	if err := scene.Config.Validate(); err != nil {
		return Scene{}, err
	}
	return scene, nil
}

// entity resolves the entity reference of the object spec, generating one when the
// scene does not name it.
func (s ObjectSpec) entity() (*Entity, error) {
	if s.Entity == "" {
		return &Entity{ID: uuid.New(), Name: s.Name}, nil
	}
	id, err := uuid.Parse(s.Entity)
	if err != nil {
		return nil, fmt.Errorf("object %q: %w", s.Name, err)
	}
	return &Entity{ID: id, Name: s.Name}, nil
}

// volume builds the local volume described by the object spec.
func (s ObjectSpec) volume() (volume.Kind, volume.Volume, error) {
	kind, err := volume.ParseKind(s.Kind)
	if err != nil {
		return 0, nil, fmt.Errorf("object %q: %w", s.Name, err)
	}

	if len(s.Points) > 0 {
		v, err := volume.FromPoints(kind, s.Points)
		return kind, v, err
	}

	var v volume.Volume
	switch kind {
	case volume.KindAABB:
		v, err = volume.NewAABB(s.Min, s.Max)
	case volume.KindSphere:
		v, err = volume.NewSphere(s.Center, s.Radius)
	case volume.KindOBB:
		v, err = volume.NewOBBFromRotation(s.Center, mgl64.QuatIdent(), s.HalfExtents)
	case volume.KindCapsule:
		v, err = volume.NewCapsule(s.A, s.B, s.Radius)
	}
	if err != nil {
		return kind, nil, fmt.Errorf("object %q: %w", s.Name, err)
	}
	return kind, v, nil
}

// rotation returns the rotation around Axis by angle. A zero axis means no
// rotation.
func (s ObjectSpec) rotation(angle float64) mgl64.Quat {
	if s.Axis.Len() == 0 || angle == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, s.Axis.Normalize())
}

// transformAt places the object as it is after tick ticks of motion.
func (s ObjectSpec) transformAt(tick int) volume.Transform {
	t := float64(tick)
	return volume.Transform{
		Position: s.Position.Add(s.Velocity.Mul(t)),
		Rotation: s.rotation(s.Angle + s.Spin*t),
	}
}
