package collide

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/akmonengine/collide/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(DefaultConfig())
	require.NoError(t, err)
	return r
}

// boxObject creates an object holding the box [minX, maxX] x [0, 1] x [0, 1].
func boxObject(t *testing.T, id ObjectID, minX, maxX float64) *Object {
	t.Helper()
	box, err := volume.NewAABB(mgl64.Vec3{minX, 0, 0}, mgl64.Vec3{maxX, 1, 1})
	require.NoError(t, err)
	o, err := NewObject(id, nil, volume.KindAABB, box)
	require.NoError(t, err)
	return o
}

func register(t *testing.T, r *Registry, objects ...*Object) {
	t.Helper()
	for _, o := range objects {
		require.NoError(t, r.Register(o))
	}
}

func countEvents(events []Event) (begins, ends int) {
	for _, e := range events {
		switch e.Type() {
		case OVERLAP_BEGIN:
			begins++
		case OVERLAP_END:
			ends++
		}
	}
	return begins, ends
}

func TestRegistry_Scenarios(t *testing.T) {
	r := newTestRegistry(t)
	first := boxObject(t, 1, 0, 1)
	second := boxObject(t, 2, 0.5, 1.5)
	third := boxObject(t, 3, 10, 11)
	register(t, r, first, second, third)

	// three objects, only the first two overlap
	events := r.Refresh()
	require.Len(t, events, 1)
	assert.Equal(t, OVERLAP_BEGIN, events[0].Type())
	assert.Equal(t, MakePair(1, 2), PairOf(events[0]))
	assert.Equal(t, []Pair{{1, 2}}, r.Overlapping())

	// the first object leaves
	moved, err := volume.NewAABB(mgl64.Vec3{20, 0, 0}, mgl64.Vec3{21, 1, 1})
	require.NoError(t, err)
	require.NoError(t, first.UpdateVolume(moved))

	events = r.Refresh()
	require.Len(t, events, 1)
	assert.Equal(t, OVERLAP_END, events[0].Type())
	assert.Equal(t, MakePair(1, 2), PairOf(events[0]))
	assert.Empty(t, r.Overlapping())
}

func TestRegistry_IdempotentRefresh(t *testing.T) {
	r := newTestRegistry(t)
	register(t, r, boxObject(t, 1, 0, 1), boxObject(t, 2, 0.5, 1.5), boxObject(t, 3, 1.2, 3))

	begins, _ := countEvents(r.Refresh())
	assert.Equal(t, 2, begins)

	digest := r.Digest()
	assert.Empty(t, r.Refresh())
	assert.Empty(t, r.Refresh())
	assert.Equal(t, digest, r.Digest())
}

func TestRegistry_TouchingIntervals(t *testing.T) {
	r := newTestRegistry(t)
	register(t, r, boxObject(t, 1, 0, 1), boxObject(t, 2, 1, 2))
	r.Refresh()
	assert.True(t, r.IsOverlapping(1, 2))
	assert.True(t, r.IsOverlapping(2, 1))

	// touching with no margin at all
	cfg := DefaultConfig()
	cfg.Margin = 0
	exact, err := NewRegistry(cfg)
	require.NoError(t, err)
	register(t, exact, boxObject(t, 1, 0, 1), boxObject(t, 2, 1, 2))
	exact.Refresh()
	assert.True(t, exact.IsOverlapping(1, 2))
}

func TestRegistry_TouchBySweep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Margin = 0
	r, err := NewRegistry(cfg)
	require.NoError(t, err)

	a := boxObject(t, 1, 0, 1)
	b := boxObject(t, 2, 3, 4)
	register(t, r, a, b)
	assert.Empty(t, r.Refresh())

	// b slides left until its min lands exactly on the max of a
	require.NoError(t, b.SetTransform(volume.Transform{Position: mgl64.Vec3{-2, 0, 0}}))
	begins, _ := countEvents(r.Refresh())
	assert.Equal(t, 1, begins)
	assert.True(t, r.IsOverlapping(1, 2))
}

func TestRegistry_Deregister(t *testing.T) {
	r := newTestRegistry(t)
	a := boxObject(t, 1, 0, 1)
	b := boxObject(t, 2, 0.5, 1.5)
	c := boxObject(t, 3, 0.8, 2)
	register(t, r, a, b, c)
	r.Refresh()
	require.Len(t, r.Overlapping(), 3)

	require.NoError(t, r.Deregister(b))
	assert.Equal(t, 2, r.Len())
	assert.Nil(t, b.Registry())
	assert.NotContains(t, r.objects[1].partners, ObjectID(2))
	assert.NotContains(t, r.objects[3].partners, ObjectID(2))
	requirePartnerIndex(t, r)

	events := r.Refresh()
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, OVERLAP_END, e.Type())
		assert.True(t, PairOf(e).Contains(2))
	}
	assert.Equal(t, []Pair{{1, 3}}, r.Overlapping())

	// double deregistration
	assert.ErrorIs(t, r.Deregister(b), ErrNotRegistered)
	assert.ErrorIs(t, b.Destroy(), ErrNotRegistered)
	assert.ErrorIs(t, r.Deregister(nil), ErrNotRegistered)

	// through the object
	require.NoError(t, c.Destroy())
	_, ends := countEvents(r.Refresh())
	assert.Equal(t, 1, ends)
	assert.Empty(t, r.Overlapping())
}

func TestRegistry_DeregisterBeforeRefresh(t *testing.T) {
	r := newTestRegistry(t)
	a := boxObject(t, 1, 0, 1)
	b := boxObject(t, 2, 0.5, 1.5)
	register(t, r, a, b)
	require.NoError(t, r.Deregister(a))

	events := r.Refresh()
	require.Len(t, events, 2)
	assert.Equal(t, OVERLAP_BEGIN, events[0].Type())
	assert.Equal(t, OVERLAP_END, events[1].Type())
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := newTestRegistry(t)
	a := boxObject(t, 1, 0, 1)
	require.NoError(t, r.Register(a))

	assert.ErrorIs(t, r.Register(a), ErrInvalidArgument, "already registered")
	assert.ErrorIs(t, r.Register(boxObject(t, 1, 5, 6)), ErrInvalidArgument, "duplicate id")
	assert.ErrorIs(t, r.Register(nil), ErrInvalidArgument)

	other := newTestRegistry(t)
	assert.ErrorIs(t, other.Register(a), ErrInvalidArgument, "enrolled elsewhere")
	assert.ErrorIs(t, other.Deregister(a), ErrNotRegistered)
}

func TestRegistry_DegenerateObjects(t *testing.T) {
	r := newTestRegistry(t)
	box := boxObject(t, 1, 0, 1)

	point, err := NewObject(2, nil, volume.KindAABB, volume.AABB{Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{0.5, 0.5, 0.5}})
	require.NoError(t, err)
	uninitialized, err := NewObject(3, nil, volume.KindSphere, nil)
	require.NoError(t, err)
	empty, err := NewObject(4, nil, volume.KindAABB, volume.EmptyAABB())
	require.NoError(t, err)

	register(t, r, box, point, uninitialized, empty)
	assert.Empty(t, r.Refresh())
	assert.Equal(t, 4, r.Len())
	assert.False(t, volume.Intersects(box.WorldVolume(), point.WorldVolume()), "exact test agrees on the point")

	// the point grows into a box
	grown, err := volume.NewAABBFromCenter(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0.1, 0.1, 0.1})
	require.NoError(t, err)
	require.NoError(t, point.UpdateVolume(grown))
	events := r.Refresh()
	require.Len(t, events, 1)
	assert.Equal(t, MakePair(1, 2), PairOf(events[0]))

	// the uninitialized sphere gets a volume
	require.NoError(t, uninitialized.UpdateVolume(volume.Sphere{Center: mgl64.Vec3{0.5, 0.5, 0.5}, Radius: 0.2}))
	begins, _ := countEvents(r.Refresh())
	assert.Equal(t, 2, begins)
	assert.Equal(t, []Pair{{1, 2}, {1, 3}, {2, 3}}, r.Overlapping())

	// and collapses again
	require.NoError(t, uninitialized.UpdateVolume(nil))
	_, ends := countEvents(r.Refresh())
	assert.Equal(t, 2, ends)
	assert.Equal(t, []Pair{{1, 2}}, r.Overlapping())

	// a sphere of radius zero is a point
	require.NoError(t, uninitialized.UpdateVolume(volume.Sphere{Center: mgl64.Vec3{0.5, 0.5, 0.5}}))
	assert.Empty(t, r.Refresh())
	assert.True(t, uninitialized.IsDegenerate())
	assert.False(t, volume.Intersects(box.WorldVolume(), uninitialized.WorldVolume()))
}

func TestRegistry_Axes(t *testing.T) {
	a, err := volume.NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	require.NoError(t, err)
	b, err := volume.NewAABB(mgl64.Vec3{0.5, 5, 0}, mgl64.Vec3{1.5, 6, 1})
	require.NoError(t, err)

	tests := []struct {
		name string
		axes []int
		want bool
	}{
		{"all axes", []int{0, 1, 2}, false},
		{"x only", []int{0}, true},
		{"x and z", []int{2, 0}, true},
		{"y only", []int{1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Axes = tt.axes
			r, err := NewRegistry(cfg)
			require.NoError(t, err)

			oa, _ := NewObject(1, nil, volume.KindAABB, a)
			ob, _ := NewObject(2, nil, volume.KindAABB, b)
			register(t, r, oa, ob)
			r.Refresh()
			assert.Equal(t, tt.want, r.IsOverlapping(1, 2))
		})
	}
}

func TestRegistry_Query(t *testing.T) {
	r := newTestRegistry(t)
	register(t, r,
		boxObject(t, 1, 0, 1),
		boxObject(t, 2, 2, 3),
		boxObject(t, 3, 4, 5),
		boxObject(t, 4, -10, 10),
	)
	r.Refresh()

	query := func(minX, maxX float64) []ObjectID {
		var ids []ObjectID
		for _, o := range r.Query(volume.AABB{Min: mgl64.Vec3{minX, 0.2, 0.2}, Max: mgl64.Vec3{maxX, 0.8, 0.8}}) {
			ids = append(ids, o.ID)
		}
		return ids
	}

	assert.Equal(t, []ObjectID{1, 2, 4}, query(0.5, 2.5))
	assert.Equal(t, []ObjectID{3, 4}, query(4.5, 4.6))
	assert.Equal(t, []ObjectID{4}, query(6, 7))
	assert.Nil(t, query(20, 30))
	assert.Nil(t, r.Query(volume.EmptyAABB()))
}

func TestRegistry_DigestDeterminism(t *testing.T) {
	build := func(order []ObjectID) *Registry {
		r := newTestRegistry(t)
		for _, id := range order {
			// identical coordinates so that ties are broken by id
			register(t, r, boxObject(t, id, 0, 1))
		}
		r.Refresh()
		return r
	}

	a := build([]ObjectID{1, 2, 3, 4})
	b := build([]ObjectID{4, 2, 3, 1})
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Overlapping(), b.Overlapping())
	assert.Len(t, a.Overlapping(), 6)

	c := build([]ObjectID{1, 2, 3, 5})
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestRegistry_EndpointOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b endpoint
		less bool
	}{
		{"smaller value", endpoint{value: 0, id: 9, isMax: true}, endpoint{value: 1, id: 1}, true},
		{"min before max", endpoint{value: 1, id: 9}, endpoint{value: 1, id: 1, isMax: true}, true},
		{"max after min", endpoint{value: 1, id: 1, isMax: true}, endpoint{value: 1, id: 9}, false},
		{"id breaks ties", endpoint{value: 1, id: 1}, endpoint{value: 1, id: 2}, true},
		{"equal", endpoint{value: 1, id: 1}, endpoint{value: 1, id: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.less, tt.a.less(tt.b))
		})
	}
}

// randomObject places a random volume around the origin of its frame.
func randomObject(t *testing.T, rng *rand.Rand, id ObjectID) *Object {
	t.Helper()
	r := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	var v volume.Volume
	kind := volume.Kinds[rng.IntN(len(volume.Kinds))]
	switch kind {
	case volume.KindAABB:
		h := mgl64.Vec3{r(0.2, 2), r(0.2, 2), r(0.2, 2)}
		v = volume.AABB{Min: h.Mul(-1), Max: h}
	case volume.KindSphere:
		v = volume.Sphere{Radius: r(0.2, 2)}
	case volume.KindOBB:
		o, err := volume.NewOBBFromRotation(mgl64.Vec3{}, mgl64.QuatRotate(r(0, math.Pi), mgl64.Vec3{1, 2, 3}.Normalize()), mgl64.Vec3{r(0.2, 2), r(0.2, 2), r(0.2, 2)})
		require.NoError(t, err)
		v = o
	case volume.KindCapsule:
		v = volume.Capsule{A: mgl64.Vec3{0, -r(0.2, 2), 0}, B: mgl64.Vec3{0, r(0.2, 2), 0}, Radius: r(0.2, 1)}
	}

	o, err := NewObject(id, nil, kind, v)
	require.NoError(t, err)
	require.NoError(t, o.SetTransform(volume.Transform{
		Position: mgl64.Vec3{r(-15, 15), r(-15, 15), r(-15, 15)},
		Rotation: mgl64.QuatRotate(r(0, 2*math.Pi), mgl64.Vec3{0, 0, 1}),
	}))
	return o
}

// bruteForce lists every pair whose padded fits overlap on all axes.
func bruteForce(objects []*Object, margin float64) []Pair {
	var pairs []Pair
	for i, a := range objects {
		for _, b := range objects[i+1:] {
			if a.IsDegenerate() || b.IsDegenerate() {
				continue
			}
			ba, bb := a.Bounds(), b.Bounds()
			overlap := true
			for k := range 3 {
				if ba.Min[k]-margin > bb.Max[k]+margin || bb.Min[k]-margin > ba.Max[k]+margin {
					overlap = false
				}
			}
			if overlap {
				pairs = append(pairs, MakePair(a.ID, b.ID))
			}
		}
	}
	return pairs
}

// requirePartnerIndex checks that the partners of every tracked object are
// exactly the objects it shares an axis mask with.
func requirePartnerIndex(t *testing.T, r *Registry) {
	t.Helper()
	links := 0
	for id, tr := range r.objects {
		for partner := range tr.partners {
			_, ok := r.masks[MakePair(id, partner)]
			require.True(t, ok, "%d lists %d without a mask", id, partner)
			links++
		}
	}
	require.Equal(t, 2*len(r.masks), links)
	for pair := range r.reported {
		require.Contains(t, r.objects[pair.A].partners, pair.B)
	}
}

func TestRegistry_IncrementalMatchesRebuild(t *testing.T) {
	rng := rand.New(rand.NewPCG(2024, 7))
	cfg := DefaultConfig()
	r, err := NewRegistry(cfg)
	require.NoError(t, err)

	const count = 60
	objects := make([]*Object, count)
	for i := range objects {
		objects[i] = randomObject(t, rng, ObjectID(i+1))
		require.NoError(t, r.Register(objects[i]))
	}

	reported := make(map[Pair]bool)
	apply := func(events []Event) {
		for _, e := range events {
			pair := PairOf(e)
			switch e.Type() {
			case OVERLAP_BEGIN:
				require.False(t, reported[pair], "begin reported twice for %v", pair)
				reported[pair] = true
			case OVERLAP_END:
				require.True(t, reported[pair], "end without begin for %v", pair)
				delete(reported, pair)
			}
		}
	}

	for step := range 40 {
		for _, o := range objects {
			tr := o.Transform()
			switch rng.IntN(10) {
			case 0:
				// teleport
				tr.Position = mgl64.Vec3{rng.Float64()*30 - 15, rng.Float64()*30 - 15, rng.Float64()*30 - 15}
			case 1, 2, 3, 4:
				tr.Position = tr.Position.Add(mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Mul(0.5))
				tr.Rotation = mgl64.QuatRotate(0.1, mgl64.Vec3{0, 1, 0}).Mul(tr.Rotation)
			case 9:
				// despawn and respawn in place
				require.NoError(t, r.Deregister(o))
				requirePartnerIndex(t, r)
				require.NoError(t, r.Register(o))
				continue
			default:
				continue
			}
			require.NoError(t, o.SetTransform(tr))
		}

		apply(r.Refresh())
		requirePartnerIndex(t, r)

		// from-scratch rebuild holding the same volumes at the same places
		fresh, err := NewRegistry(cfg)
		require.NoError(t, err)
		for _, o := range objects {
			clone, err := NewObject(o.ID, nil, o.Kind(), o.Volume())
			require.NoError(t, err)
			require.NoError(t, clone.SetTransform(o.Transform()))
			require.NoError(t, fresh.Register(clone))
		}
		fresh.Refresh()

		want := bruteForce(objects, cfg.Margin)
		got := r.Overlapping()
		require.ElementsMatch(t, want, got, "step %d", step)
		require.Equal(t, fresh.Overlapping(), got, "step %d", step)
		require.Equal(t, fresh.Digest(), r.Digest(), "step %d", step)
		require.Len(t, reported, len(got), "step %d", step)
		for _, pair := range got {
			require.True(t, reported[pair])
		}

		// the exact test never accepts a pair the broad phase rejected
		for i, a := range objects {
			for _, b := range objects[i+1:] {
				if volume.Intersects(a.WorldVolume(), b.WorldVolume()) {
					require.True(t, r.IsOverlapping(a.ID, b.ID), "step %d: %d/%d", step, a.ID, b.ID)
				}
			}
		}
	}
}
