// Package clickgate tells a single click on a row apart from a double click or
// a middle click. A single click arms a deadline; the deferred action fires
// only if nothing cancels it first.
package clickgate

import (
	"sync"
	"time"
)

// DefaultDelay is how long a single click waits for a second one.
const DefaultDelay = 250 * time.Millisecond

// State of the gate.
type State int

const (
	Idle State = iota
	Pending
	Fired
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fired:
		return "fired"
	default:
		return "idle"
	}
}

// Kind is what the caller should do after a click.
type Kind int

const (
	// Ignore means nothing to do.
	Ignore Kind = iota
	// Schedule means call Fire(Seq) after Delay.
	Schedule
	// OpenDetail means the pending action was cancelled and the item's
	// detail view should open instead.
	OpenDetail
)

// Outcome is the result of a click.
type Outcome struct {
	Kind  Kind
	ID    string
	Seq   uint64
	Delay time.Duration
}

// Gate is a single-shot cancellable timer state machine. The zero value is
// not usable; call New.
type Gate struct {
	mu       sync.Mutex
	delay    time.Duration
	state    State
	id       string
	seq      uint64
	deadline time.Time
}

// New builds an idle gate. A non-positive delay uses DefaultDelay.
func New(delay time.Duration) *Gate {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Gate{delay: delay}
}

// Delay is the configured wait.
func (g *Gate) Delay() time.Duration { return g.delay }

// State reports the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Click registers a primary click on id at now. A second click on the same
// row before the deadline cancels the pending action and asks for the detail
// view.
func (g *Gate) Click(id string, now time.Time) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Pending && g.id == id && now.Before(g.deadline) {
		g.reset()
		return Outcome{Kind: OpenDetail, ID: id}
	}
	g.seq++
	g.state = Pending
	g.id = id
	g.deadline = now.Add(g.delay)
	return Outcome{Kind: Schedule, ID: id, Seq: g.seq, Delay: g.delay}
}

// Middle registers a middle click. It cancels any pending action.
func (g *Gate) Middle(id string) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
	return Outcome{Kind: OpenDetail, ID: id}
}

// Fire is called when the timer for seq elapses. It returns the row id to act
// on, or false when that timer was cancelled or superseded.
func (g *Gate) Fire(seq uint64) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Pending || seq != g.seq {
		return "", false
	}
	g.state = Fired
	return g.id, true
}

// Stop cancels any pending action. Timers already in flight fire into a
// stale sequence number and are ignored.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

func (g *Gate) reset() {
	g.seq++
	g.state = Idle
	g.id = ""
	g.deadline = time.Time{}
}
