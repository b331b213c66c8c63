package collide

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/akmonengine/collide/volume"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// endpoint is one end of the fit interval of an object on one axis.
type endpoint struct {
	value float64
	id    ObjectID
	isMax bool
}

// less is the total endpoint order: value ascending, then min endpoints
// before max endpoints so that touching intervals overlap, then object ID.
func (e endpoint) less(other endpoint) bool {
	if e.value != other.value {
		return e.value < other.value
	}
	if e.isMax != other.isMax {
		return !e.isMax
	}
	return e.id < other.id
}

// tracked is the registry-side state of an enrolled object: its padded
// interval on every world axis as of the last sweep, and the objects it
// shares a non-zero axis mask with.
type tracked struct {
	object     *Object
	lo, hi     [3]float64
	degenerate bool
	partners   map[ObjectID]struct{}
}

func (t *tracked) overlapsOn(other *tracked, axis int) bool {
	return t.lo[axis] <= other.hi[axis] && other.lo[axis] <= t.hi[axis]
}

// Registry is the sweep-and-prune broad phase.
//
// Per tracked axis it keeps the endpoints of every object sorted, and per
// object pair a bitmask of the axes on which their intervals overlap. The
// masks are maintained by the adjacent swaps of the insertion sort run by
// Refresh: a min endpoint moving left past a max endpoint sets the bit of the
// pair, a max endpoint moving left past a min endpoint clears it. A pair is
// reported once its mask is full and neither object is degenerate.
type Registry struct {
	axes   []int
	margin float64
	logger *zap.Logger

	objects   map[ObjectID]*tracked
	endpoints [][]endpoint
	masks     map[Pair]uint8
	reported  map[Pair]struct{}
	touched   map[Pair]struct{}

	// lifecycle events queued by Register and Deregister
	pending []Event
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	return &Registry{
		axes:      slices.Clone(cfg.Axes),
		margin:    cfg.Margin,
		logger:    o.logger,
		objects:   make(map[ObjectID]*tracked),
		endpoints: make([][]endpoint, len(cfg.Axes)),
		masks:     make(map[Pair]uint8),
		reported:  make(map[Pair]struct{}),
		touched:   make(map[Pair]struct{}),
	}, nil
}

func (r *Registry) fullMask() uint8 {
	return uint8(1)<<len(r.axes) - 1
}

// interval computes the padded fit of o. Empty fits are parked at +Inf, past
// every finite endpoint.
func (r *Registry) interval(o *Object) (lo, hi [3]float64, degenerate bool) {
	b := o.Bounds()
	if b.IsEmpty() {
		inf := math.Inf(1)
		return [3]float64{inf, inf, inf}, [3]float64{inf, inf, inf}, true
	}
	for k := range 3 {
		lo[k] = b.Min[k] - r.margin
		hi[k] = b.Max[k] + r.margin
	}
	return lo, hi, o.IsDegenerate()
}

// Register enrolls o. Its endpoints are inserted at their sorted position on
// every tracked axis and its axis masks are computed against every tracked
// object directly. Overlaps found here are reported as OverlapBegin events by
// the next Refresh.
func (r *Registry) Register(o *Object) error {
	if o == nil {
		return fmt.Errorf("%w: nil object", ErrInvalidArgument)
	}
	if o.registry != nil {
		return fmt.Errorf("%w: object %d is already registered", ErrInvalidArgument, o.ID)
	}
	if _, ok := r.objects[o.ID]; ok {
		return fmt.Errorf("%w: duplicate object id %d", ErrInvalidArgument, o.ID)
	}

	t := &tracked{object: o, partners: make(map[ObjectID]struct{})}
	t.lo, t.hi, t.degenerate = r.interval(o)

	for ai, axis := range r.axes {
		r.insertEndpoint(ai, endpoint{value: t.lo[axis], id: o.ID})
		r.insertEndpoint(ai, endpoint{value: t.hi[axis], id: o.ID, isMax: true})
	}

	full := r.fullMask()
	var begins []Pair
	for id, other := range r.objects {
		var mask uint8
		for ai, axis := range r.axes {
			if t.overlapsOn(other, axis) {
				mask |= 1 << ai
			}
		}
		if mask == 0 {
			continue
		}

		pair := MakePair(o.ID, id)
		r.masks[pair] = mask
		t.partners[id] = struct{}{}
		other.partners[o.ID] = struct{}{}
		if mask == full && !t.degenerate && !other.degenerate {
			r.reported[pair] = struct{}{}
			begins = append(begins, pair)
		}
	}

	r.objects[o.ID] = t
	o.registry = r

	r.pending = r.appendEvents(r.pending, begins, true)
	r.logger.Debug("object registered",
		zap.Uint32("id", uint32(o.ID)),
		zap.Stringer("kind", o.Kind()),
		zap.Int("overlaps", len(begins)),
	)
	return nil
}

func (r *Registry) insertEndpoint(ai int, e endpoint) {
	eps := r.endpoints[ai]
	i, _ := slices.BinarySearchFunc(eps, e, func(a, b endpoint) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		}
		return 0
	})
	r.endpoints[ai] = slices.Insert(eps, i, e)
}

// Deregister removes o and queues an OverlapEnd event for every reported pair
// containing it. Objects not enrolled in r yield ErrNotRegistered.
func (r *Registry) Deregister(o *Object) error {
	if o == nil {
		return fmt.Errorf("%w: nil object", ErrNotRegistered)
	}
	t, ok := r.objects[o.ID]
	if !ok || t.object != o {
		return fmt.Errorf("object %d: %w", o.ID, ErrNotRegistered)
	}

	for ai := range r.endpoints {
		r.endpoints[ai] = slices.DeleteFunc(r.endpoints[ai], func(e endpoint) bool {
			return e.id == o.ID
		})
	}

	// reported pairs have a full mask, so the partners hold all of them
	var ends []Pair
	for id := range t.partners {
		pair := MakePair(o.ID, id)
		if _, ok := r.reported[pair]; ok {
			ends = append(ends, pair)
		}
	}
	// the ended pairs still need both objects to build their events
	r.pending = r.appendEvents(r.pending, ends, false)

	for _, pair := range ends {
		delete(r.reported, pair)
	}
	for id := range t.partners {
		delete(r.masks, MakePair(o.ID, id))
		delete(r.objects[id].partners, o.ID)
	}

	delete(r.objects, o.ID)
	o.registry = nil

	r.logger.Debug("object deregistered",
		zap.Uint32("id", uint32(o.ID)),
		zap.Int("ended", len(ends)),
	)
	return nil
}

// Refresh refits every object, re-sorts the endpoints of each tracked axis and
// returns the events of this tick: the events queued by Register and
// Deregister since the previous refresh, then OverlapEnd events, then
// OverlapBegin events, each group ordered by pair.
//
// A refresh with no intervening update returns only the queued events.
func (r *Registry) Refresh() []Event {
	var flipped []ObjectID
	for id, t := range r.objects {
		lo, hi, degenerate := r.interval(t.object)
		if degenerate != t.degenerate {
			flipped = append(flipped, id)
		}
		t.lo, t.hi, t.degenerate = lo, hi, degenerate
	}

	swaps := 0
	for ai, axis := range r.axes {
		eps := r.endpoints[ai]
		for i := range eps {
			t := r.objects[eps[i].id]
			if eps[i].isMax {
				eps[i].value = t.hi[axis]
			} else {
				eps[i].value = t.lo[axis]
			}
		}
		swaps += r.sortAxis(ai)
	}

	// a degeneracy flip changes the outcome of pairs whose masks did not
	// move; reported pairs whose mask emptied were touched by the sort
	for _, id := range flipped {
		for partner := range r.objects[id].partners {
			r.touched[MakePair(id, partner)] = struct{}{}
		}
	}

	full := r.fullMask()
	var begins, ends []Pair
	for pair := range r.touched {
		want := r.masks[pair] == full &&
			!r.objects[pair.A].degenerate &&
			!r.objects[pair.B].degenerate
		_, have := r.reported[pair]

		switch {
		case want && !have:
			r.reported[pair] = struct{}{}
			begins = append(begins, pair)
		case !want && have:
			delete(r.reported, pair)
			ends = append(ends, pair)
		}
	}
	clear(r.touched)

	events := r.pending
	r.pending = nil
	events = r.appendEvents(events, ends, false)
	events = r.appendEvents(events, begins, true)

	r.logger.Debug("broad phase refreshed",
		zap.Int("objects", len(r.objects)),
		zap.Int("swaps", swaps),
		zap.Int("begins", len(begins)),
		zap.Int("ends", len(ends)),
		zap.Int("overlapping", len(r.reported)),
	)
	return events
}

// sortAxis runs one insertion sort pass over the endpoints of the tracked
// axis ai, updating the axis bit of every pair whose min and max endpoints
// cross. It returns the number of swaps.
func (r *Registry) sortAxis(ai int) int {
	bit := uint8(1) << ai
	eps := r.endpoints[ai]
	swaps := 0

	for i := 1; i < len(eps); i++ {
		for j := i; j > 0 && eps[j].less(eps[j-1]); j-- {
			moving, passed := eps[j], eps[j-1]
			if moving.id != passed.id {
				pair := MakePair(moving.id, passed.id)
				switch {
				case !moving.isMax && passed.isMax:
					mask := r.masks[pair]
					if mask == 0 {
						r.link(pair)
					}
					r.masks[pair] = mask | bit
					r.touched[pair] = struct{}{}
				case moving.isMax && !passed.isMax:
					if mask := r.masks[pair] &^ bit; mask == 0 {
						delete(r.masks, pair)
						r.unlink(pair)
					} else {
						r.masks[pair] = mask
					}
					r.touched[pair] = struct{}{}
				}
			}
			eps[j], eps[j-1] = passed, moving
			swaps++
		}
	}
	return swaps
}

func (r *Registry) link(pair Pair) {
	r.objects[pair.A].partners[pair.B] = struct{}{}
	r.objects[pair.B].partners[pair.A] = struct{}{}
}

func (r *Registry) unlink(pair Pair) {
	delete(r.objects[pair.A].partners, pair.B)
	delete(r.objects[pair.B].partners, pair.A)
}

func (r *Registry) appendEvents(events []Event, pairs []Pair, begin bool) []Event {
	slices.SortFunc(pairs, comparePairs)
	for _, pair := range pairs {
		a, b := r.objects[pair.A].object, r.objects[pair.B].object
		if begin {
			events = append(events, OverlapBeginEvent{ObjectA: a, ObjectB: b})
		} else {
			events = append(events, OverlapEndEvent{ObjectA: a, ObjectB: b})
		}
	}
	return events
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a.A, b.A); c != 0 {
		return c
	}
	return cmp.Compare(a.B, b.B)
}

func compareObjects(a, b *Object) int {
	return cmp.Compare(a.ID, b.ID)
}

// Overlapping returns the currently reported pairs, ordered.
func (r *Registry) Overlapping() []Pair {
	pairs := make([]Pair, 0, len(r.reported))
	for pair := range r.reported {
		pairs = append(pairs, pair)
	}
	slices.SortFunc(pairs, comparePairs)
	return pairs
}

// IsOverlapping reports whether the pair (a, b) is currently reported.
func (r *Registry) IsOverlapping(a, b ObjectID) bool {
	_, ok := r.reported[MakePair(a, b)]
	return ok
}

// Len returns the number of enrolled objects.
func (r *Registry) Len() int {
	return len(r.objects)
}

// Object returns the enrolled object with the given id.
func (r *Registry) Object(id ObjectID) (*Object, bool) {
	t, ok := r.objects[id]
	if !ok {
		return nil, false
	}
	return t.object, true
}

// Query returns the non-degenerate objects whose padded fit overlaps box, as
// of the last Refresh or Register, ordered by id. The scan walks the first
// tracked axis up to the end of box.
func (r *Registry) Query(box volume.AABB) []*Object {
	if box.IsEmpty() || len(r.axes) == 0 {
		return nil
	}

	axis := r.axes[0]
	var found []*Object
	for _, e := range r.endpoints[0] {
		if e.value > box.Max[axis] {
			break
		}
		if e.isMax {
			continue
		}

		t := r.objects[e.id]
		if t.degenerate {
			continue
		}
		hit := true
		for k := range 3 {
			if t.lo[k] > box.Max[k] || box.Min[k] > t.hi[k] {
				hit = false
				break
			}
		}
		if hit {
			found = append(found, t.object)
		}
	}

	slices.SortFunc(found, compareObjects)
	return found
}

// Digest fingerprints the endpoint order of every tracked axis. Registries
// holding the same objects at the same places share a digest, whatever
// sequence of updates led there.
func (r *Registry) Digest() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 64)

	for ai, eps := range r.endpoints {
		buf = binary.LittleEndian.AppendUint32(buf[:0], uint32(r.axes[ai]))
		_, _ = d.Write(buf)

		for _, e := range eps {
			buf = binary.LittleEndian.AppendUint64(buf[:0], math.Float64bits(e.value))
			buf = binary.LittleEndian.AppendUint32(buf, uint32(e.id))
			if e.isMax {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
			_, _ = d.Write(buf)
		}
	}
	return d.Sum64()
}
