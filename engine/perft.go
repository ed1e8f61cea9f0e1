package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

// Perft counts leaf nodes of the legal move tree to the given depth, going
// through the driver's push/release path so every node doubles as a
// make/unmove round trip.
func Perft(drv *Driver, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := drv.Board.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, move := range moves {
		release := drv.Push(move)
		nodes += Perft(drv, depth-1)
		release()
	}
	return nodes
}

// PerftDivide returns the per-root-move node counts, the classic debugging
// view for movegen discrepancies.
func PerftDivide(drv *Driver, depth int) map[dragontoothmg.Move]uint64 {
	div := make(map[dragontoothmg.Move]uint64)
	for _, move := range drv.Board.GenerateLegalMoves() {
		release := drv.Push(move)
		div[move] = Perft(drv, depth-1)
		release()
	}
	return div
}
