package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
)

// Engine is the single point of session creation and replacement. It owns
// the authoritative game position and routes stop/ponder-hit/new-search
// requests to the current session. At most one session is current at any
// instant, and replacement is swap-and-cancel-old under one lock.
type Engine struct {
	mu      sync.Mutex
	drv     *Driver
	current *Session
	nextID  uint64

	cfg  Config
	log  zerolog.Logger
	book *Book

	// OnInfo and OnBestMove receive reports from the current session only;
	// anything from a superseded session is dropped at delivery time. They
	// are invoked with the engine lock held and must not call back into the
	// engine.
	OnInfo     func(Info)
	OnBestMove func(Result)
}

// New builds an engine on the standard starting position.
func New(cfg Config, logger zerolog.Logger) *Engine {
	e := &Engine{
		cfg: cfg,
		log: logger,
		drv: NewDriver(cfg.ValidateStack),
	}
	if err := e.drv.Seed(dragontoothmg.Startpos); err != nil {
		// The canonical start layout always parses.
		panic(err)
	}
	if cfg.BookPath != "" {
		book, err := LoadBook(cfg.BookPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.BookPath).Msg("opening book unavailable")
		} else {
			e.book = book
			logger.Info().Int("entries", book.Len()).Msg("opening book loaded")
		}
	}
	return e
}

// NewGame cancels any running session and resets the authoritative position
// to the starting layout.
func (e *Engine) NewGame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		e.current.Stop()
	}
	e.drv.Seed(dragontoothmg.Startpos)
}

// SetPosition replaces the authoritative position from a FEN descriptor
// ("startpos" or "" mean the starting layout) and replays the given move
// history onto it. Malformed descriptors and illegal replay moves are input
// faults: the call returns an error and the current state is untouched.
func (e *Engine) SetPosition(fen string, moves []string) error {
	if fen == "" || fen == "startpos" {
		fen = dragontoothmg.Startpos
	}

	scratch := NewDriver(e.cfg.ValidateStack)
	if err := scratch.Seed(fen); err != nil {
		return err
	}
	for _, moveStr := range moves {
		move, err := matchLegalMove(&scratch.Board, moveStr)
		if err != nil {
			return err
		}
		scratch.PushPermanent(move)
	}

	e.mu.Lock()
	e.drv = scratch
	e.mu.Unlock()
	return nil
}

// Position returns the authoritative position as a FEN string.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drv.Board.ToFen()
}

// Go creates a new session for limits, cancelling and superseding any
// current one, and returns the new session's id. The snapshot decouples the
// session from later SetPosition calls.
func (e *Engine) Go(limits Limits) uint64 {
	e.mu.Lock()
	if e.current != nil {
		e.current.Stop()
	}
	e.nextID++
	snapshot := e.drv.Board.ToFen()
	hashes := e.drv.HistoryHashes()
	prior := hashes[:len(hashes)-1]
	s := newSession(e.nextID, limits, snapshot, prior, e)
	e.current = s
	e.mu.Unlock()

	s.start()
	return s.id
}

// Stop forwards cancellation to the current session. Safe with none running.
func (e *Engine) Stop() {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// PonderHit forwards the ponder confirmation to the current session.
func (e *Engine) PonderHit() {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()
	if s != nil {
		s.PonderHit()
	}
}

// Wait blocks until the current session (if any) has delivered its terminal
// result. Intended for shutdown and tests, not the command path.
func (e *Engine) Wait() {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()
	if s != nil {
		<-s.Done()
	}
}

// ParseSearchMoves resolves UCI move strings against the authoritative
// position's legal moves, for the "go searchmoves" restriction. Unknown
// moves are dropped with a warning, but the result stays non-nil so a
// restriction where nothing resolves still restricts the search to nothing
// rather than falling back to the full move list.
func (e *Engine) ParseSearchMoves(tokens []string) []dragontoothmg.Move {
	if len(tokens) == 0 {
		return nil
	}

	e.mu.Lock()
	board := e.drv.Board
	e.mu.Unlock()

	moves := make([]dragontoothmg.Move, 0, len(tokens))
	for _, tok := range tokens {
		move, err := matchLegalMove(&board, tok)
		if err != nil {
			e.log.Warn().Str("move", tok).Msg("searchmoves token is not legal here")
			continue
		}
		moves = append(moves, move)
	}
	return moves
}

// deliverInfo forwards a progress report iff its session is still current.
// The identity check happens at delivery time, under the same lock that
// replaces sessions, so nothing from a superseded session can slip out after
// the swap.
func (e *Engine) deliverInfo(s *Session, info Info) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != s || e.OnInfo == nil {
		return
	}
	e.OnInfo(info)
}

// deliverResult forwards a terminal result iff its session is still current.
func (e *Engine) deliverResult(s *Session, result Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != s {
		e.log.Debug().Uint64("session", result.SessionID).Msg("dropping result from superseded session")
		return
	}
	if e.OnBestMove != nil {
		e.OnBestMove(result)
	}
}

// SetMoveOverhead adjusts the per-move time reserve. Sessions copy their
// configuration at creation, so an in-flight search is unaffected.
func (e *Engine) SetMoveOverhead(ms int) {
	e.mu.Lock()
	e.cfg.MoveOverheadMs = ms
	e.mu.Unlock()
}

// SetBookPath loads (or with an empty path, disables) the opening book.
func (e *Engine) SetBookPath(path string) error {
	if path == "" || path == "<empty>" {
		e.mu.Lock()
		e.book = nil
		e.mu.Unlock()
		return nil
	}
	book, err := LoadBook(path)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.book = book
	e.cfg.BookPath = path
	e.mu.Unlock()
	return nil
}

func (e *Engine) probeBook(board *dragontoothmg.Board) (dragontoothmg.Move, bool) {
	e.mu.Lock()
	book := e.book
	e.mu.Unlock()
	if book == nil {
		return 0, false
	}
	return book.Probe(board)
}

// matchLegalMove resolves a UCI move string (e2e4, e7e8q) against the legal
// moves of the position, the way the position command replays history.
func matchLegalMove(board *dragontoothmg.Board, moveStr string) (dragontoothmg.Move, error) {
	moveStr = strings.ToLower(strings.TrimSpace(moveStr))
	for _, move := range board.GenerateLegalMoves() {
		if move.String() == moveStr {
			return move, nil
		}
	}
	parsed, err := dragontoothmg.ParseMove(moveStr)
	if err != nil {
		return 0, fmt.Errorf("unparseable move %q: %w", moveStr, err)
	}
	for _, move := range board.GenerateLegalMoves() {
		if move.From() == parsed.From() && move.To() == parsed.To() && move.Promote() == parsed.Promote() {
			return move, nil
		}
	}
	return 0, fmt.Errorf("move %q is not legal in position %s", moveStr, board.ToFen())
}
