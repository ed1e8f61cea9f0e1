package engine

import (
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"
)

// Score constants. Mate scores are MaxScore minus the mating ply, so
// shallower mates score higher; anything at or beyond Checkmate is inside
// the mate window and only FormatScore may reinterpret it.
const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0
)

// DeltaMargin is the quiescence delta-pruning cushion: a capture is skipped
// when even its maximum plausible material gain plus this margin cannot lift
// the stand-pat score above alpha.
const DeltaMargin int32 = 200

// timeCheckMask throttles wall-clock polling; cancellation and the node cap
// are still consulted on every node.
const timeCheckMask = 1023

// searcher runs one search over a private driver. It is stateless across
// sessions: each go request builds a fresh one.
type searcher struct {
	drv    *Driver
	limits Limits

	deadline    time.Time
	hasDeadline bool

	cancel    *atomic.Bool
	pondering *atomic.Bool

	nodes     uint64
	startTime time.Time
	rootIndex int
	stopped   bool

	pv PVTable

	onProgress func(Progress)
}

// Progress is one per-depth report from a running search.
type Progress struct {
	Depth   int
	Score   int32
	Nodes   uint64
	NPS     uint64
	Elapsed time.Duration
	PV      []dragontoothmg.Move
}

// searchOutcome is what the deepening loop retains: the last fully completed
// depth's result. An aborted depth never overwrites it.
type searchOutcome struct {
	bestMove dragontoothmg.Move
	hasMove  bool
	score    int32
	depth    int
}

func newSearcher(drv *Driver, limits Limits, cfg Config, cancel, pondering *atomic.Bool, onProgress func(Progress)) *searcher {
	s := &searcher{
		drv:        drv,
		limits:     limits,
		cancel:     cancel,
		pondering:  pondering,
		startTime:  time.Now(),
		rootIndex:  drv.RootIndex(),
		onProgress: onProgress,
	}
	s.deadline, s.hasDeadline = limits.deadline(drv.Board.Wtomove, cfg, s.startTime)
	return s
}

// shouldStop is the single stop predicate. While pondering, the wall-clock
// deadline is suppressed entirely; cancellation and the node cap always hold.
func (s *searcher) shouldStop() bool {
	if s.cancel.Load() {
		return true
	}
	if s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes {
		return true
	}
	if s.limits.Infinite || s.pondering.Load() {
		return false
	}
	return s.hasDeadline && time.Now().After(s.deadline)
}

// checkNode counts a node and polls the stop predicate, with the deadline
// part throttled to every timeCheckMask+1 nodes.
func (s *searcher) checkNode() bool {
	s.nodes++
	if s.stopped {
		return true
	}
	if s.cancel.Load() || (s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes) {
		s.stopped = true
		return true
	}
	if s.nodes&timeCheckMask == 0 && s.shouldStop() {
		s.stopped = true
		return true
	}
	return false
}

// rootMoves generates the root move list, honoring any SearchMoves
// restriction. An empty result after filtering means the search terminates
// with no best move; it never falls back to the unrestricted set.
func (s *searcher) rootMoves() []dragontoothmg.Move {
	moves := s.drv.Board.GenerateLegalMoves()
	if s.limits.SearchMoves == nil {
		return moves
	}
	allowed := moves[:0]
	for _, move := range moves {
		for _, want := range s.limits.SearchMoves {
			if move == want {
				allowed = append(allowed, move)
				break
			}
		}
	}
	return allowed
}

// run is the iterative-deepening outer loop. It returns the best line of the
// last completed depth, or no move when the root has no searchable moves.
func (s *searcher) run() searchOutcome {
	var outcome searchOutcome

	if len(s.rootMoves()) == 0 {
		return outcome
	}

	maxDepth := s.limits.maxSearchDepth()
	for depth := 1; depth <= maxDepth; depth++ {
		score := s.alphabeta(depth, 0, -MaxScore, MaxScore)
		if s.stopped {
			// Depth aborted mid-flight; keep the previous completed depth.
			break
		}

		line := s.pv.Line()
		if len(line) > 0 {
			outcome = searchOutcome{bestMove: line[0], hasMove: true, score: score, depth: depth}
		}

		elapsed := time.Since(s.startTime)
		ms := elapsed.Milliseconds()
		if ms <= 0 {
			ms = 1
		}
		if s.onProgress != nil {
			s.onProgress(Progress{
				Depth:   depth,
				Score:   score,
				Nodes:   s.nodes,
				NPS:     s.nodes * 1000 / uint64(ms),
				Elapsed: elapsed,
				PV:      line,
			})
		}

		// A proven mate ends a normal search early; an infinite or pondering
		// one keeps deepening until it is told to stop.
		if dist, mate := MateDistance(score); mate && !s.limits.Infinite && !s.pondering.Load() {
			if s.limits.Mate == 0 || dist <= s.limits.Mate {
				break
			}
		}
		if s.shouldStop() {
			break
		}
	}

	return outcome
}

// alphabeta is the negamax core: the score of a position is the negation of
// the best score among the replies.
func (s *searcher) alphabeta(depth, ply int, alpha, beta int32) int32 {
	if s.checkNode() {
		return 0
	}
	s.pv.enter(ply)

	if ply >= MaxDepth {
		return Evaluate(&s.drv.Board)
	}

	isRoot := ply == 0
	if !isRoot && s.drv.IsDraw(s.rootIndex) {
		return DrawScore
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	var moves []dragontoothmg.Move
	if isRoot {
		moves = s.rootMoves()
	} else {
		moves = s.drv.Board.GenerateLegalMoves()
	}

	if len(moves) == 0 {
		if s.drv.Board.OurKingInCheck() {
			return -MaxScore + int32(ply) // mated
		}
		return DrawScore // stalemate
	}

	list := scoreMoves(&s.drv.Board, moves)
	bestScore := -MaxScore

	for index := 0; index < len(list.moves); index++ {
		orderNextMove(index, &list)
		move := list.moves[index].move

		release := s.drv.Push(move)
		score := -s.alphabeta(depth-1, ply+1, -beta, -alpha)
		release()

		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
		}
		if score >= beta {
			return bestScore
		}
		if score > alpha {
			alpha = score
			s.pv.update(ply, move)
		}
	}

	return bestScore
}

// quiescence extends past the nominal depth on noisy moves only, so active
// captures are not misjudged at the horizon. When in check every evasion is
// searched; tactical danger overrides the cutoff heuristics.
func (s *searcher) quiescence(ply int, alpha, beta int32) int32 {
	if s.checkNode() {
		return 0
	}
	s.pv.enter(ply)

	if ply >= MaxDepth {
		return Evaluate(&s.drv.Board)
	}

	inCheck := s.drv.Board.OurKingInCheck()
	standpat := Evaluate(&s.drv.Board)

	if !inCheck {
		if standpat >= beta {
			return beta
		}
		if standpat > alpha {
			alpha = standpat
		}
	}

	allMoves := s.drv.Board.GenerateLegalMoves()
	if len(allMoves) == 0 {
		if inCheck {
			return -MaxScore + int32(ply)
		}
		return DrawScore
	}

	var list moveList
	if inCheck {
		list = scoreMoves(&s.drv.Board, allMoves)
	} else {
		list = scoreNoisyMoves(&s.drv.Board, allMoves)
	}

	bestScore := standpat
	if inCheck {
		bestScore = -MaxScore
	}

	for index := 0; index < len(list.moves); index++ {
		orderNextMove(index, &list)
		move := list.moves[index].move

		if !inCheck && standpat+captureGain(&s.drv.Board, move)+DeltaMargin <= alpha {
			continue
		}

		release := s.drv.Push(move)
		score := -s.quiescence(ply+1, -beta, -alpha)
		release()

		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
		}
		if score >= beta {
			return bestScore
		}
		if score > alpha {
			alpha = score
			s.pv.update(ply, move)
		}
	}

	return bestScore
}

// captureGain is the maximum plausible material swing of a noisy move, used
// by delta pruning.
func captureGain(b *dragontoothmg.Board, move dragontoothmg.Move) int32 {
	_, opp := ownAndOpponentBitboards(b)

	var gain int32
	if victim, ok := GetPieceTypeAtPosition(move.To(), opp); ok {
		gain = pieceValue[victim]
	} else if moveIsEnPassant(b, move) {
		gain = pieceValue[dragontoothmg.Pawn]
	}
	if promo := move.Promote(); promo != dragontoothmg.Nothing {
		gain += pieceValue[promo] - pieceValue[dragontoothmg.Pawn]
	}
	return gain
}
