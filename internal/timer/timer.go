// Package timer provides a small nested event timer gated by the
// FRANK_DISABLE_TIMER flag. It is grounded on the original source's
// util/timer.cpp recursive-state-machine design (named events pushed
// and popped from a current-timer stack) reimplemented in terms of
// time.Duration rather than a bespoke clock.
package timer

import (
	"sync"
	"time"

	"github.com/hmatrix-go/hmatrix/config"
)

type node struct {
	name      string
	parent    *node
	children  map[string]*node
	total     time.Duration
	nRuns     int
	running   bool
	startedAt time.Time
}

func newNode(name string, parent *node) *node {
	return &node{name: name, parent: parent, children: map[string]*node{}}
}

var (
	mu      sync.Mutex
	root    = newNode("", nil)
	current = root
)

func disabled() bool {
	return config.Get(config.DisableTimer) != 0
}

// Start begins timing event, nesting it under whichever event is
// currently running. It is a no-op when FRANK_DISABLE_TIMER is set.
func Start(event string) {
	if disabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	child, ok := current.children[event]
	if !ok {
		child = newNode(event, current)
		current.children[event] = child
	}
	child.running = true
	child.startedAt = time.Now()
	current = child
}

// Stop ends the innermost running event, which must match event, and
// returns its elapsed duration (zero when disabled).
func Stop(event string) time.Duration {
	if disabled() {
		return 0
	}
	mu.Lock()
	defer mu.Unlock()
	if current.name != event || current.parent == nil {
		panic("timer: Stop(" + event + ") does not match current event " + current.name)
	}
	d := time.Since(current.startedAt)
	current.total += d
	current.nRuns++
	current.running = false
	current = current.parent
	return d
}

// Clear resets all recorded timings. No package of this module calls
// it; clearing between runs is left to the caller.
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	root = newNode("", nil)
	current = root
}

// TotalTime returns the cumulative duration recorded for event,
// searching from the currently active scope.
func TotalTime(event string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	if child, ok := current.children[event]; ok {
		return child.total
	}
	return 0
}

// NRuns returns how many times event has been started and stopped.
func NRuns(event string) int {
	mu.Lock()
	defer mu.Unlock()
	if child, ok := current.children[event]; ok {
		return child.nRuns
	}
	return 0
}
