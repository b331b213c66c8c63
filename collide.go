// Package collide tracks collision objects with an incremental sweep-and-prune
// broad phase.
//
// A Registry keeps, per tracked axis, the sorted interval endpoints of the AABB
// fit of every enrolled Object and reports the pairs whose intervals overlap on
// every axis through OverlapBegin and OverlapEnd events. A World owns a
// Registry and its objects, confirms broad-phase overlaps with the exact
// volume tests and dispatches events to listeners once per Step.
//
// Neither Registry nor World is safe for concurrent use. Shard work across
// disjoint worlds with StepShards instead.
package collide

import (
	"errors"
	"fmt"

	"github.com/akmonengine/collide/geometry"
)

var (
	// ErrInvalidArgument reports malformed input, see geometry.ErrInvalidArgument.
	ErrInvalidArgument = geometry.ErrInvalidArgument
	// ErrNotRegistered is returned when an object is not enrolled in the
	// registry or world it is addressed to.
	ErrNotRegistered = errors.New("object not registered")
)

// ObjectID identifies an Object inside a Registry. IDs are assigned by the
// creator of the object and also break endpoint ties.
type ObjectID uint32

// Pair is an unordered pair of objects, normalized so that A < B.
type Pair struct {
	A, B ObjectID
}

// MakePair creates a normalized pair key with consistent ordering
func MakePair(a, b ObjectID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Contains reports whether id is one of the two objects of the pair.
func (p Pair) Contains(id ObjectID) bool {
	return p.A == id || p.B == id
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.A, p.B)
}
