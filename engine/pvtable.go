package engine

import (
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// PVTable stores the principal variation as a triangular table indexed by
// (origin ply, depth from origin). It is rebuilt incrementally as alpha
// improves during one search call and discarded with the searcher.
type PVTable struct {
	length [MaxDepth + 1]int
	moves  [MaxDepth + 1][MaxDepth + 1]dragontoothmg.Move
}

// enter clears the stored line for a ply before its node is searched.
func (pv *PVTable) enter(ply int) {
	pv.length[ply] = 0
}

// update records move as the best at ply, followed by the line already
// collected one ply deeper.
func (pv *PVTable) update(ply int, move dragontoothmg.Move) {
	pv.moves[ply][0] = move
	copy(pv.moves[ply][1:], pv.moves[ply+1][:pv.length[ply+1]])
	pv.length[ply] = pv.length[ply+1] + 1
}

// Line returns the principal variation from the root.
func (pv *PVTable) Line() []dragontoothmg.Move {
	line := make([]dragontoothmg.Move, pv.length[0])
	copy(line, pv.moves[0][:pv.length[0]])
	return line
}

// LineString renders a move list the way UCI "pv" output expects.
func LineString(moves []dragontoothmg.Move) string {
	var sb strings.Builder
	for i, move := range moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(move.String())
	}
	return sb.String()
}
