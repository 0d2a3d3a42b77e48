// Package availability remembers whether the remote API was reachable on the
// last attempt, so callers can skip a known-down endpoint for a while.
package availability

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Status is the last observed reachability of the remote API.
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// DefaultDecayWindow is how long a failure keeps callers on the local store.
const DefaultDecayWindow = 5 * time.Minute

// stateKey is the durable key the tracker state lives under.
const stateKey = "api_status"

// StateStore persists the tracker between process runs.
type StateStore interface {
	// LoadState returns nil, nil when nothing has been saved yet.
	LoadState(name string) ([]byte, error)
	SaveState(name string, data []byte) error
}

// State is the persisted snapshot.
type State struct {
	Status      Status    `json:"status"`
	LastCheck   time.Time `json:"lastCheck"`
	DismissedAt time.Time `json:"dismissedAt,omitempty"`
}

// Tracker holds the process-wide reachability state. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	state  State
	store  StateStore
	window time.Duration
	now    func() time.Time
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New builds a tracker, restoring any state previously saved in store.
// A nil store keeps state in memory only. A non-positive window uses DefaultDecayWindow.
func New(store StateStore, window time.Duration, opts ...Option) *Tracker {
	if window <= 0 {
		window = DefaultDecayWindow
	}
	t := &Tracker{
		state:  State{Status: StatusUnknown},
		store:  store,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.restore()
	return t
}

func (t *Tracker) restore() {
	if t.store == nil {
		return
	}
	raw, err := t.store.LoadState(stateKey)
	if err != nil {
		log.Printf("Warning: could not load availability state: %v", err)
		return
	}
	if raw == nil {
		return
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Printf("Warning: ignoring corrupt availability state: %v", err)
		return
	}
	switch s.Status {
	case StatusAvailable, StatusUnavailable:
		t.state = s
	}
}

// RecordSuccess marks the remote as available.
func (t *Tracker) RecordSuccess() {
	t.record(StatusAvailable)
}

// RecordFailure marks the remote as unavailable, starting a new decay window.
func (t *Tracker) RecordFailure() {
	t.record(StatusUnavailable)
}

func (t *Tracker) record(status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Status = status
	t.state.LastCheck = t.now().UTC()
	t.persist()
}

// persist must be called with mu held.
func (t *Tracker) persist() {
	if t.store == nil {
		return
	}
	raw, err := json.Marshal(t.state)
	if err != nil {
		log.Printf("Warning: could not encode availability state: %v", err)
		return
	}
	if err := t.store.SaveState(stateKey, raw); err != nil {
		log.Printf("Warning: could not persist availability state: %v", err)
	}
}

// ShouldPreferLocal reports whether the last check failed within the decay window.
// An unknown status means the remote should be tried first.
func (t *Tracker) ShouldPreferLocal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.preferLocal()
}

func (t *Tracker) preferLocal() bool {
	return t.state.Status == StatusUnavailable && t.now().Sub(t.state.LastCheck) < t.window
}

// InFallbackMode is the signal shown to the user as a degraded-mode banner.
func (t *Tracker) InFallbackMode() bool {
	return t.ShouldPreferLocal()
}

// Dismiss hides the degraded-mode banner until the next recorded failure.
func (t *Tracker) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.DismissedAt = t.now().UTC()
	t.persist()
}

// ShowBanner reports whether the degraded-mode banner should be displayed.
func (t *Tracker) ShowBanner() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.preferLocal() {
		return false
	}
	return t.state.DismissedAt.IsZero() || t.state.DismissedAt.Before(t.state.LastCheck)
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
