// Package supersede makes sure only the latest request for a widget applies
// its result. Starting a new request for a key cancels the one in flight.
package supersede

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned for a request replaced by a newer one with the same key.
var ErrSuperseded = errors.New("superseded by a newer request")

// Tracker keeps the latest in-flight request per key.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	active map[string]*Ticket
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]*Ticket)}
}

// Ticket identifies one request started with Begin.
type Ticket struct {
	tracker *Tracker
	key     string
	id      uint64
	cancel  context.CancelCauseFunc
}

// Begin registers a new request for key and cancels the previous one with
// ErrSuperseded as the cause. The returned context must be used for the work.
func (t *Tracker) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancelCause(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	ticket := &Ticket{tracker: t, key: key, id: t.seq, cancel: cancel}
	if prev, ok := t.active[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	t.active[key] = ticket
	return ctx, ticket
}

// Key returns the key the ticket was started for.
func (tk *Ticket) Key() string { return tk.key }

// Commit reports whether the ticket is still the latest for its key.
func (tk *Ticket) Commit() error {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()

	if cur, ok := tk.tracker.active[tk.key]; !ok || cur.id != tk.id {
		return ErrSuperseded
	}
	return nil
}

// Done releases the ticket. It is safe to call more than once.
func (tk *Ticket) Done() {
	tk.tracker.mu.Lock()
	if cur, ok := tk.tracker.active[tk.key]; ok && cur.id == tk.id {
		delete(tk.tracker.active, tk.key)
	}
	tk.tracker.mu.Unlock()

	tk.cancel(context.Canceled)
}

// Superseded reports whether err or the cause of ctx is ErrSuperseded.
func Superseded(ctx context.Context, err error) bool {
	if errors.Is(err, ErrSuperseded) {
		return true
	}
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}
