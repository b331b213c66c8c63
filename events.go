package collide

import (
	"fmt"
	"slices"
)

const (
	OVERLAP_BEGIN EventType = iota
	OVERLAP_END
	CONTACT_ENTER
	CONTACT_STAY
	CONTACT_EXIT
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case OVERLAP_BEGIN:
		return "overlap_begin"
	case OVERLAP_END:
		return "overlap_end"
	case CONTACT_ENTER:
		return "contact_enter"
	case CONTACT_STAY:
		return "contact_stay"
	case CONTACT_EXIT:
		return "contact_exit"
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
	// Objects returns the pair, the object with the lower id first.
	Objects() (*Object, *Object)
}

// Broad phase events
type OverlapBeginEvent struct {
	ObjectA *Object
	ObjectB *Object
}

func (e OverlapBeginEvent) Type() EventType { return OVERLAP_BEGIN }
func (e OverlapBeginEvent) Objects() (*Object, *Object) { return e.ObjectA, e.ObjectB }

type OverlapEndEvent struct {
	ObjectA *Object
	ObjectB *Object
}

func (e OverlapEndEvent) Type() EventType { return OVERLAP_END }
func (e OverlapEndEvent) Objects() (*Object, *Object) { return e.ObjectA, e.ObjectB }

// Narrow phase events, emitted by World.Step when the exact volume test runs
type ContactEnterEvent struct {
	ObjectA *Object
	ObjectB *Object
}

func (e ContactEnterEvent) Type() EventType { return CONTACT_ENTER }
func (e ContactEnterEvent) Objects() (*Object, *Object) { return e.ObjectA, e.ObjectB }

type ContactStayEvent struct {
	ObjectA *Object
	ObjectB *Object
}

func (e ContactStayEvent) Type() EventType { return CONTACT_STAY }
func (e ContactStayEvent) Objects() (*Object, *Object) { return e.ObjectA, e.ObjectB }

type ContactExitEvent struct {
	ObjectA *Object
	ObjectB *Object
}

func (e ContactExitEvent) Type() EventType { return CONTACT_EXIT }
func (e ContactExitEvent) Objects() (*Object, *Object) { return e.ObjectA, e.ObjectB }

// PairOf returns the normalized pair of an event.
func PairOf(e Event) Pair {
	a, b := e.Objects()
	return MakePair(a.ID, b.ID)
}

// EventListener - callback for events
type EventListener func(event Event)

// contact is a pair confirmed by the narrow phase.
type contact struct {
	objectA *Object
	objectB *Object
}

func (c contact) pair() Pair {
	return MakePair(c.objectA.ID, c.objectB.ID)
}

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Stay/Exit detection
	previousContacts map[Pair]contact
	currentContacts  map[Pair]contact
}

func NewEvents() Events {
	return Events{
		listeners:        make(map[EventType][]EventListener),
		buffer:           make([]Event, 0, 256),
		previousContacts: make(map[Pair]contact),
		currentContacts:  make(map[Pair]contact),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// emit buffers broad phase events until the next flush
func (e *Events) emit(events ...Event) {
	e.buffer = append(e.buffer, events...)
}

// recordContacts marks the pairs confirmed by the narrow phase this tick
func (e *Events) recordContacts(contacts []contact) {
	for _, c := range contacts {
		e.currentContacts[c.pair()] = c
	}
}

// forget drops the contacts of a destroyed object without an exit event
func (e *Events) forget(id ObjectID) {
	for pair := range e.previousContacts {
		if pair.Contains(id) {
			delete(e.previousContacts, pair)
		}
	}
	for pair := range e.currentContacts {
		if pair.Contains(id) {
			delete(e.currentContacts, pair)
		}
	}
}

// processContactEvents compares current and previous contacts to detect
// Enter/Stay/Exit, in pair order
func (e *Events) processContactEvents() {
	current := sortedPairs(e.currentContacts)
	for _, pair := range current {
		c := e.currentContacts[pair]
		if _, ok := e.previousContacts[pair]; ok {
			// Pair was in contact before and still is, Stay
			e.buffer = append(e.buffer, ContactStayEvent{ObjectA: c.objectA, ObjectB: c.objectB})
		} else {
			e.buffer = append(e.buffer, ContactEnterEvent{ObjectA: c.objectA, ObjectB: c.objectB})
		}
	}

	for _, pair := range sortedPairs(e.previousContacts) {
		if _, ok := e.currentContacts[pair]; !ok {
			c := e.previousContacts[pair]
			e.buffer = append(e.buffer, ContactExitEvent{ObjectA: c.objectA, ObjectB: c.objectB})
		}
	}

	// Swap for next frame and clear current
	e.previousContacts, e.currentContacts = e.currentContacts, e.previousContacts
	clear(e.currentContacts)
}

func sortedPairs(contacts map[Pair]contact) []Pair {
	pairs := make([]Pair, 0, len(contacts))
	for pair := range contacts {
		pairs = append(pairs, pair)
	}
	slices.SortFunc(pairs, comparePairs)
	return pairs
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processContactEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
