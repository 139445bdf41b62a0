package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rvoss/swarmview/internal/state"
	"github.com/rvoss/swarmview/internal/swarmd"
)

// defaultPollInterval is the fixed polling cadence. Polling keeps this pace
// whenever the view is active, regardless of stream health, so switching to
// it never incurs a warm-up delay.
const defaultPollInterval = time.Second

// StreamSource is the push transport as the manager sees it. Implemented by
// *swarmd.Stream.
type StreamSource interface {
	Open(ctx context.Context) error
	Close()
	Snapshots() <-chan swarmd.SimState
	HealthChanges() <-chan swarmd.Health
	CurrentHealth() swarmd.Health
}

// Options configure a Manager.
type Options struct {
	// PollInterval overrides the fixed polling cadence. Zero uses the
	// default of one second.
	PollInterval time.Duration
	// OpenStream builds a fresh push connection per activation. Nil runs on
	// polling alone.
	OpenStream func() StreamSource
}

// Manager owns both transports for one view of the simulation. While the
// view is active it keeps the push stream open and the poller ticking, routes
// whichever one the arbiter favors into the store, and suppresses poll
// results while the stream is live. Deactivate stops both synchronously:
// once it returns, nothing fires into the store anymore.
type Manager struct {
	store    *state.Store
	fetcher  swarmd.StateFetcher
	interval time.Duration
	open     func() StreamSource

	refresh chan struct{}

	mu        sync.Mutex
	active    bool
	health    swarmd.Health
	selection Selection
	stream    StreamSource
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewManager builds a Manager publishing into store.
func NewManager(store *state.Store, fetcher swarmd.StateFetcher, opts Options) *Manager {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Manager{
		store:     store,
		fetcher:   fetcher,
		interval:  interval,
		open:      opts.OpenStream,
		refresh:   make(chan struct{}, 1),
		health:    swarmd.HealthUnopened,
		selection: SelectNone,
	}
}

// Activate starts both transports. It returns immediately; a first poll is
// issued right away so the store fills without waiting a full tick.
func (m *Manager) Activate(ctx context.Context) {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return
	}
	m.active = true
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	if m.open != nil {
		m.stream = m.open()
	}
	m.health = swarmd.HealthUnopened
	m.selection = Select(true, m.health)
	stream := m.stream
	done := m.done
	m.mu.Unlock()

	go m.run(runCtx, stream, done)
}

// Deactivate stops the poller and closes the stream before returning, so no
// stale callback can fire into a consumer being torn down.
func (m *Manager) Deactivate() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	m.selection = SelectNone
	cancel := m.cancel
	stream := m.stream
	done := m.done
	m.stream = nil
	m.mu.Unlock()

	cancel()
	if stream != nil {
		stream.Close()
	}
	<-done
}

// Selection returns the transport the arbiter currently favors.
func (m *Manager) Selection() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selection
}

// Refresh requests an immediate out-of-band poll, typically after an
// accepted mutation. It never blocks; a refresh already pending is enough.
func (m *Manager) Refresh() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

type pollResult struct {
	state *swarmd.SimState
	err   error
}

func (m *Manager) run(ctx context.Context, stream StreamSource, done chan struct{}) {
	defer close(done)

	var snapshots <-chan swarmd.SimState
	var healthChanges <-chan swarmd.Health
	if stream != nil {
		if err := stream.Open(ctx); err != nil {
			log.Printf("feed: open stream: %v", err)
		} else {
			snapshots = stream.Snapshots()
			healthChanges = stream.HealthChanges()
		}
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	results := make(chan pollResult, 1)
	inFlight := false
	poll := func() {
		if inFlight {
			return
		}
		inFlight = true
		go func() {
			st, err := m.fetcher.FetchState(ctx)
			select {
			case results <- pollResult{state: st, err: err}:
			case <-ctx.Done():
			}
		}()
	}
	poll()

	for {
		select {
		case <-ctx.Done():
			return

		case st, open := <-snapshots:
			if !open {
				snapshots = nil
				continue
			}
			m.store.Publish(st)

		case h, open := <-healthChanges:
			if !open {
				healthChanges = nil
				continue
			}
			m.applyHealth(h)

		case <-ticker.C:
			poll()

		case <-m.refresh:
			poll()

		case res := <-results:
			inFlight = false
			if res.err != nil {
				if ctx.Err() == nil {
					m.store.RecordError(res.err)
					log.Printf("feed: state poll failed: %v", res.err)
				}
				continue
			}
			// Poll results are suppressed, not dropped from the wire, while
			// the stream is authoritative.
			if m.Selection() != SelectStream && res.state != nil {
				m.store.Publish(*res.state)
			}
		}
	}
}

func (m *Manager) applyHealth(h swarmd.Health) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = h
	m.selection = Select(m.active, h)
}
