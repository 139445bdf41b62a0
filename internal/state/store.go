package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/rvoss/swarmview/internal/swarmd"
)

// Snapshot is the latest complete simulation state available to consumers,
// tagged with the store's own arrival sequence.
type Snapshot struct {
	State      swarmd.SimState
	Seq        uint64 // arrival order assigned by the store, not the server
	ReceivedAt time.Time
	Stale      bool // a mutation was accepted since this state arrived

	LastError           error
	ConsecutiveFailures int // consecutive transport failures
}

// IsOffline returns true when the server has been unreachable for multiple
// consecutive attempts.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the single current snapshot and notifies subscribers when it
// changes. It is the only shared mutable value in the client: transports
// publish into it, the mutation coordinator invalidates it, everyone else
// only reads.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	hasState bool
	nextSeq  uint64

	subMu   sync.Mutex // serializes notifications so Seq never regresses
	subs    map[int]func(Snapshot)
	nextSub int
}

// Publish replaces the stored state wholesale and notifies subscribers.
// The snapshot is never patched field by field; partial updates from mixed
// transports would leave fields from different points in time.
func (s *Store) Publish(state swarmd.SimState) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.mu.Lock()
	s.nextSeq++
	s.snapshot.State = cloneState(state)
	s.snapshot.Seq = s.nextSeq
	s.snapshot.ReceivedAt = time.Now()
	s.snapshot.Stale = false
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.hasState = true
	snap := s.copySnapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	for _, notify := range listeners {
		notify(snap)
	}
}

// RecordError notes a transport failure. Previous state is kept so a
// transient blip never blanks the view.
func (s *Store) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Invalidate marks the current state stale after an accepted mutation. The
// payload is untouched; the next transport publish clears the flag.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Stale = true
}

// Current returns a copy of the current snapshot. The second return is false
// until the first Publish.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copySnapshotLocked(), s.hasState
}

// Subscribe registers a listener invoked on every Publish with an ascending
// Seq. The returned function removes the listener; after it returns the
// listener is never invoked again.
func (s *Store) Subscribe(listener func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]func(Snapshot))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = listener
	s.mu.Unlock()

	return func() {
		// Taking subMu first waits out any in-flight notification round.
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) copySnapshotLocked() Snapshot {
	snap := s.snapshot
	snap.State = cloneState(s.snapshot.State)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) listenersLocked() []func(Snapshot) {
	if len(s.subs) == 0 {
		return nil
	}
	listeners := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	return listeners
}

func cloneState(state swarmd.SimState) swarmd.SimState {
	dup := state
	if len(state.Jobs) > 0 {
		dup.Jobs = make([]swarmd.Job, len(state.Jobs))
		copy(dup.Jobs, state.Jobs)
	}
	if len(state.Drones) > 0 {
		dup.Drones = make([]swarmd.Drone, len(state.Drones))
		copy(dup.Drones, state.Drones)
	}
	return dup
}
