package swarmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Health describes how usable the push stream currently is. Owned by Stream;
// consumers read transitions from the Health channel and must not infer
// liveness from anything else.
type Health int

const (
	HealthUnopened Health = iota
	HealthConnecting
	HealthLive
	HealthDegraded
	HealthClosed
)

// String returns the lowercase name of the health state.
func (h Health) String() string {
	switch h {
	case HealthUnopened:
		return "unopened"
	case HealthConnecting:
		return "connecting"
	case HealthLive:
		return "live"
	case HealthDegraded:
		return "degraded"
	case HealthClosed:
		return "closed"
	default:
		return fmt.Sprintf("health(%d)", int(h))
	}
}

const (
	defaultRetryDelay  = 3 * time.Second
	defaultIdleTimeout = 15 * time.Second

	streamChannelDepth = 16
)

// StreamOptions tune the push stream connection.
type StreamOptions struct {
	// RetryDelay is the pause before re-dialing after the connection drops.
	RetryDelay time.Duration
	// IdleTimeout marks the stream degraded when no bytes arrive for this
	// long, catching connections that stall without erroring. Zero uses the
	// default; negative disables the watchdog.
	IdleTimeout time.Duration
}

// Stream is a long-lived connection to swarmd's push state channel
// (/stream/state, server-sent events). It parses each inbound event into a
// SimState and emits it on Snapshots; health transitions are emitted on
// HealthChanges. A malformed event is logged and dropped without touching
// health, because one bad payload is not a transport failure.
//
// Stream does not reconnect aggressively: after a drop it waits RetryDelay
// and re-dials, mirroring the browser EventSource behavior the server
// expects. Covering the gap with fresh data is the transport manager's job.
type Stream struct {
	url  string
	http *http.Client

	retryDelay  time.Duration
	idleTimeout time.Duration

	snapshots chan SimState
	health    chan Health

	mu     sync.Mutex
	state  Health
	opened bool
	closed bool
	cancel context.CancelFunc
	done   chan struct{}

	lastActivity atomic.Int64 // unix nanoseconds of the last inbound byte
}

// NewStream builds a Stream for the given absolute stream URL.
func NewStream(streamURL string, opts StreamOptions) *Stream {
	retry := opts.RetryDelay
	if retry <= 0 {
		retry = defaultRetryDelay
	}
	idle := opts.IdleTimeout
	if idle == 0 {
		idle = defaultIdleTimeout
	}
	return &Stream{
		url: streamURL,
		// The stream stays open indefinitely, so no overall client timeout.
		http:        &http.Client{},
		retryDelay:  retry,
		idleTimeout: idle,
		snapshots:   make(chan SimState, streamChannelDepth),
		health:      make(chan Health, streamChannelDepth),
		state:       HealthUnopened,
		done:        make(chan struct{}),
	}
}

// Snapshots returns the channel of parsed state events. It is closed after
// Close returns or the open context is cancelled.
func (s *Stream) Snapshots() <-chan SimState {
	return s.snapshots
}

// HealthChanges returns the channel of health transitions. It is closed
// together with Snapshots.
func (s *Stream) HealthChanges() <-chan Health {
	return s.health
}

// CurrentHealth returns the present health state.
func (s *Stream) CurrentHealth() Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open dials the stream and starts the reader. It returns immediately; use
// the channels for results. Open may be called once per Stream.
func (s *Stream) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return fmt.Errorf("stream already opened")
	}
	s.opened = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.setHealth(runCtx, HealthConnecting)
	go s.run(runCtx)
	return nil
}

// Close stops the reader and waits for it to exit. After Close returns no
// further snapshot or health value is sent; both channels are closed.
func (s *Stream) Close() {
	s.mu.Lock()
	if !s.opened || s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.done

	s.mu.Lock()
	s.state = HealthClosed
	s.mu.Unlock()
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.health)
	defer close(s.snapshots)

	for {
		err := s.readConnection(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("stream: connection lost: %v", err)
		}
		s.setHealth(ctx, HealthDegraded)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryDelay):
		}
	}
}

// readConnection dials once and consumes events until the connection breaks.
func (s *Stream) readConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Path: "/stream/state"}
	}

	s.touch()
	stopWatchdog := s.startWatchdog(ctx)
	defer stopWatchdog()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	for scanner.Scan() {
		s.touch()
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				s.handleEvent(ctx, strings.Join(data, "\n"))
				data = data[:0]
			}
		case strings.HasPrefix(line, ":"):
			// Heartbeat comment; counts as activity only.
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event:/id:/retry: fields are not used by swarmd.
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}

func (s *Stream) handleEvent(ctx context.Context, payload string) {
	var state SimState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		log.Printf("stream: dropping unparsable event: %v", err)
		return
	}
	s.setHealth(ctx, HealthLive)
	select {
	case s.snapshots <- state:
	case <-ctx.Done():
	}
}

// startWatchdog flags a silently stalled connection as degraded. The next
// parsed event flips it back to live.
func (s *Stream) startWatchdog(ctx context.Context) (stop func()) {
	if s.idleTimeout <= 0 {
		return func() {}
	}
	watchCtx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(s.idleTimeout / 2)
		defer ticker.Stop()
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				idle := time.Since(time.Unix(0, s.lastActivity.Load()))
				if idle > s.idleTimeout && s.CurrentHealth() == HealthLive {
					log.Printf("stream: no activity for %s, marking degraded", idle.Round(time.Second))
					s.setHealth(watchCtx, HealthDegraded)
				}
			}
		}
	}()
	// The watchdog also sends health transitions, so the caller must wait
	// for it before the channels can be closed.
	return func() {
		cancel()
		<-finished
	}
}

func (s *Stream) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

func (s *Stream) setHealth(ctx context.Context, h Health) {
	s.mu.Lock()
	if s.state == h || s.state == HealthClosed {
		s.mu.Unlock()
		return
	}
	s.state = h
	s.mu.Unlock()

	select {
	case s.health <- h:
	case <-ctx.Done():
	}
}
