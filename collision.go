package collide

import (
	"slices"
	"sync"

	"github.com/akmonengine/collide/volume"
)

// NarrowPhase confirms broad-phase pairs with the exact volume test.
// Pairs are streamed to workersCount goroutines (at least one); the confirmed
// contacts are returned in pair order.
func NarrowPhase(r *Registry, pairs []Pair, workersCount int) []Pair {
	contacts := narrowPhase(r, pairs, max(1, workersCount))
	out := make([]Pair, len(contacts))
	for i, c := range contacts {
		out[i] = c.pair()
	}
	return out
}

func narrowPhase(r *Registry, pairs []Pair, workersCount int) []contact {
	candidates := make(chan contact, workersCount)
	go func() {
		defer close(candidates)
		for _, pair := range pairs {
			a, okA := r.Object(pair.A)
			b, okB := r.Object(pair.B)
			if !okA || !okB {
				continue
			}
			// the world volumes are refit here, before any worker reads them
			a.Bounds()
			b.Bounds()
			candidates <- contact{objectA: a, objectB: b}
		}
	}()

	confirmed := make(chan contact, workersCount)
	var wg sync.WaitGroup
	for range workersCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range candidates {
				if volume.Intersects(c.objectA.world, c.objectB.world) {
					confirmed <- c
				}
			}
		}()
	}

	// Close the output channel once every worker is done
	go func() {
		wg.Wait()
		close(confirmed)
	}()

	contacts := make([]contact, 0, len(pairs))
	for c := range confirmed {
		contacts = append(contacts, c)
	}
	slices.SortFunc(contacts, func(a, b contact) int {
		return comparePairs(a.pair(), b.pair())
	})
	return contacts
}
