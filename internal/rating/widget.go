// Package rating models the star rating widget: a hover preview over a
// fixed number of slots and a committed selection.
package rating

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for a selection outside 1..total.
var ErrOutOfRange = errors.New("rating out of range")

// DefaultTotal is the number of stars when none is given.
const DefaultTotal = 5

// Star is the view data for one slot.
type Star struct {
	Value  int    `json:"value"`
	Filled bool   `json:"filled"`
	Label  string `json:"label"`
}

// Widget holds the committed rating and the hover preview.
type Widget struct {
	total     int
	committed int
	hover     int
}

// New creates a widget with total slots and an initial committed value.
// The initial value is clamped to [0, total].
func New(initial, total int) *Widget {
	if total <= 0 {
		total = DefaultTotal
	}
	return &Widget{
		total:     total,
		committed: clamp(initial, 0, total),
	}
}

// Rating returns the committed value.
func (w *Widget) Rating() int { return w.committed }

// Preview returns the hovered slot, 0 when the pointer is outside.
func (w *Widget) Preview() int { return w.hover }

// Hover moves the preview to slot k; 0 clears it. It never touches the
// committed value.
func (w *Widget) Hover(k int) {
	w.hover = clamp(k, 0, w.total)
}

// Select commits slot k.
func (w *Widget) Select(k int) error {
	if err := check(k, w.total); err != nil {
		return err
	}
	w.committed = k
	return nil
}

// Filled reports whether slot i (1-based) is drawn filled.
func (w *Widget) Filled(i int) bool {
	shown := w.hover
	if shown == 0 {
		shown = w.committed
	}
	return i <= shown
}

// Stars returns the view data for every slot.
func (w *Widget) Stars() []Star {
	stars := make([]Star, w.total)
	for i := range stars {
		v := i + 1
		stars[i] = Star{Value: v, Filled: w.Filled(v), Label: Label(v)}
	}
	return stars
}

// Label is the accessible label of the button for slot v.
func Label(v int) string {
	if v == 1 {
		return "Rate 1 star"
	}
	return fmt.Sprintf("Rate %d stars", v)
}

// check validates a selection against total slots.
func check(k, total int) error {
	if k < 1 || k > total {
		return fmt.Errorf("%w: %d not in 1-%d", ErrOutOfRange, k, total)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
