package engine

import (
	"time"

	"github.com/dylhunn/dragontoothmg"
)

// Limits describes the stop conditions for one search. It is created once
// per "go" request and never mutated afterwards.
type Limits struct {
	Depth     int           // maximum iterative-deepening depth, 0 = none
	Nodes     uint64        // node cap, 0 = none
	Mate      int           // stop once a mate within N moves is proven, 0 = none
	MoveTime  time.Duration // fixed time for this move, 0 = none
	WhiteTime time.Duration
	BlackTime time.Duration
	WhiteInc  time.Duration
	BlackInc  time.Duration
	MovesToGo int
	Infinite  bool
	Ponder    bool

	// SearchMoves restricts the root to the listed moves. Nil means no
	// restriction; a non-nil empty slice means a restriction was requested
	// that matches nothing, and the search reports no best move.
	SearchMoves []dragontoothmg.Move
}

// maxSearchDepth is the effective depth bound for the deepening loop.
func (l Limits) maxSearchDepth() int {
	if l.Depth > 0 && l.Depth < MaxDepth {
		return l.Depth
	}
	return MaxDepth
}

// deadline computes the wall-clock budget for this search, once, before the
// depth loop starts. Fixed move time wins, then clock plus increment, else no
// deadline at all and only depth/node/infinite/ponder govern termination.
func (l Limits) deadline(whiteToMove bool, cfg Config, start time.Time) (time.Time, bool) {
	overhead := time.Duration(cfg.MoveOverheadMs) * time.Millisecond
	floor := time.Duration(cfg.MinThinkMs) * time.Millisecond

	if l.Infinite {
		return time.Time{}, false
	}

	if l.MoveTime > 0 {
		budget := Max(l.MoveTime-overhead, floor)
		return start.Add(budget), true
	}

	remaining := l.WhiteTime
	increment := l.WhiteInc
	if !whiteToMove {
		remaining = l.BlackTime
		increment = l.BlackInc
	}
	if remaining <= 0 {
		return time.Time{}, false
	}

	movesToGo := l.MovesToGo
	if movesToGo <= 0 {
		movesToGo = cfg.DefaultMovesToGo
	}

	budget := remaining/time.Duration(movesToGo) + increment*9/10
	budget = Clamp(budget, floor, Max(remaining-overhead, floor))
	return start.Add(budget), true
}
