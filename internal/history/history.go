// Package history models the session history of a browsing context: a list
// of entries with a cursor, where pushing discards any forward entries and
// moving the cursor back or forward delivers the entry's state to a pop
// listener.
package history

import (
	"errors"
	"sync"
)

// State is the state object carried by a history entry.
type State struct {
	Page string `json:"page"`
}

var (
	// ErrNoBack is returned by Back at the first entry.
	ErrNoBack = errors.New("no previous history entry")
	// ErrNoForward is returned by Forward at the last entry.
	ErrNoForward = errors.New("no next history entry")
)

// History is a session history. It is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []State
	index   int
}

// New creates an empty History.
func New() *History {
	return &History{index: -1}
}

// Push appends an entry after the current one, discarding forward entries.
func (h *History) Push(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], s)
	h.index = len(h.entries) - 1
}

// Replace overwrites the current entry, or adds the first one.
func (h *History) Replace(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 {
		h.entries = append(h.entries[:0], s)
		h.index = 0
		return
	}
	h.entries[h.index] = s
}

// Back moves the cursor one entry back and returns that entry's state.
func (h *History) Back() (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index <= 0 {
		return State{}, ErrNoBack
	}
	h.index--
	return h.entries[h.index], nil
}

// Forward moves the cursor one entry forward and returns that entry's state.
func (h *History) Forward() (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return State{}, ErrNoForward
	}
	h.index++
	return h.entries[h.index], nil
}

// Current returns the state of the current entry.
func (h *History) Current() (State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index < 0 {
		return State{}, false
	}
	return h.entries[h.index], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of all entries and the index of the current one.
func (h *History) Entries() ([]State, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]State, len(h.entries))
	copy(out, h.entries)
	return out, h.index
}
