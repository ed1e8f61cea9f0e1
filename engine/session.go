package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
)

// SessionState tracks where a session is in its lifecycle. Completed is
// terminal; the terminal result is delivered exactly once on the transition
// into it, regardless of which path gets there.
type SessionState int32

const (
	SessionCreated SessionState = iota
	SessionSearching
	SessionPondering
	SessionFinishing
	SessionCompleted
)

func (st SessionState) String() string {
	switch st {
	case SessionCreated:
		return "created"
	case SessionSearching:
		return "searching"
	case SessionPondering:
		return "pondering"
	case SessionFinishing:
		return "finishing"
	case SessionCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int32(st))
	}
}

// Info is one progress report, forwarded unconditionally while its session
// is current. Depth increases monotonically within a session.
type Info struct {
	SessionID uint64
	Depth     int
	Score     int32
	Nodes     uint64
	NPS       uint64
	Elapsed   time.Duration
	PV        []dragontoothmg.Move
}

// Result is the terminal record of a session: the best move found, or the
// none sentinel when the root had no searchable moves. Exactly one Result is
// emitted per go request.
type Result struct {
	SessionID uint64
	BestMove  dragontoothmg.Move
	HasMove   bool
}

// Session wraps one search run for one go request: a private driver seeded
// from a snapshot, a cancellation flag, a pondering flag, and a one-shot
// delivery guard. It is replaced wholesale by the next go request.
type Session struct {
	id       uint64
	limits   Limits
	snapshot string
	prior    []uint64

	eng *Engine
	cfg Config
	log zerolog.Logger

	cancel    atomic.Bool
	pondering atomic.Bool
	delivered atomic.Bool
	state     atomic.Int32

	// gate is closed by Stop or PonderHit; a ponder or infinite session's
	// terminal result waits on it even if the search finishes earlier.
	gate     chan struct{}
	gateOnce sync.Once

	done chan struct{}
}

func newSession(id uint64, limits Limits, snapshot string, prior []uint64, eng *Engine) *Session {
	s := &Session{
		id:         id,
		limits:     limits,
		snapshot:   snapshot,
		prior:      prior,
		eng:        eng,
		cfg:        eng.cfg,
		log:        eng.log.With().Uint64("session", id).Logger(),
		gate:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.pondering.Store(limits.Ponder)
	s.state.Store(int32(SessionCreated))
	return s
}

// ID returns the session's monotonically increasing identity.
func (s *Session) ID() uint64 { return s.id }

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// Done is closed once the session has completed and delivered its result.
func (s *Session) Done() <-chan struct{} { return s.done }

// start launches the search on its own goroutine. Command handling never
// blocks on it.
func (s *Session) start() {
	if s.limits.Ponder {
		s.state.Store(int32(SessionPondering))
	} else {
		s.state.Store(int32(SessionSearching))
	}
	go s.run()
}

// Stop requests cancellation. Idempotent, safe in any state; outside Running
// it has no effect.
func (s *Session) Stop() {
	s.cancel.Store(true)
	s.pondering.Store(false)
	s.gateOnce.Do(func() { close(s.gate) })
}

// PonderHit confirms the pondered move was played: the search keeps running
// but its deadline and delivery suppression are lifted. No-op in every state
// except pondering.
func (s *Session) PonderHit() {
	if !s.pondering.CompareAndSwap(true, false) {
		return
	}
	if s.State() == SessionPondering {
		s.state.Store(int32(SessionSearching))
	}
	s.gateOnce.Do(func() { close(s.gate) })
}

func (s *Session) run() {
	defer close(s.done)

	var outcome searchOutcome
	defer func() {
		if r := recover(); r != nil {
			if fault, ok := r.(DriverFault); ok && s.cfg.ValidateStack {
				// State corruption in validation mode stops execution so
				// the corrupting call site can be found.
				panic(fault)
			}
			s.log.Error().Interface("panic", r).Msg("search fault; delivering last known best")
			s.finish(outcome)
		}
	}()

	drv := NewDriver(s.cfg.ValidateStack)
	if err := drv.Seed(s.snapshot); err != nil {
		s.log.Error().Err(err).Msg("snapshot seed failed")
		s.finish(outcome)
		return
	}
	drv.SetPriorPositions(s.prior)

	// Book moves answer only plain go requests; a restricted, infinite or
	// pondering search must actually search.
	if s.limits.SearchMoves == nil && !s.limits.Infinite && !s.limits.Ponder {
		if move, ok := s.eng.probeBook(&drv.Board); ok {
			s.log.Debug().Str("move", move.String()).Msg("book hit")
			s.finish(searchOutcome{bestMove: move, hasMove: true})
			return
		}
	}

	search := newSearcher(drv, s.limits, s.cfg, &s.cancel, &s.pondering, func(p Progress) {
		s.eng.deliverInfo(s, Info{
			SessionID: s.id,
			Depth:     p.Depth,
			Score:     p.Score,
			Nodes:     p.Nodes,
			NPS:       p.NPS,
			Elapsed:   p.Elapsed,
			PV:        p.PV,
		})
	})
	outcome = search.run()
	s.finish(outcome)
}

// finish delivers the terminal result exactly once. A ponder or infinite
// session that reached a natural stopping point holds the result until Stop
// (or, for ponder, PonderHit) releases the gate.
func (s *Session) finish(outcome searchOutcome) {
	s.state.Store(int32(SessionFinishing))
	if s.limits.Ponder || s.limits.Infinite {
		<-s.gate
	}
	if s.delivered.CompareAndSwap(false, true) {
		s.eng.deliverResult(s, Result{
			SessionID: s.id,
			BestMove:  outcome.bestMove,
			HasMove:   outcome.hasMove,
		})
	}
	s.state.Store(int32(SessionCompleted))
}
