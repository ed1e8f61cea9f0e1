package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// Material values indexed by dragontoothmg.Piece (Nothing..King).
var pieceValue = [7]int32{0, 100, 320, 330, 500, 900, 0}

// Piece-square tables from white's perspective, a1 = index 0. Black mirrors
// by flipping the rank (sq ^ 56).
var pstPawn = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstKnight = [64]int32{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var pstBishop = [64]int32{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var pstRook = [64]int32{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstQueen = [64]int32{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var pstKing = [64]int32{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var pstByPiece = [7]*[64]int32{
	nil, &pstPawn, &pstKnight, &pstBishop, &pstRook, &pstQueen, &pstKing,
}

// pieceSquare returns the positional bonus for piece standing on sq from the
// given side's point of view.
func pieceSquare(piece dragontoothmg.Piece, sq uint8, white bool) int32 {
	table := pstByPiece[piece]
	if table == nil {
		return 0
	}
	if white {
		return table[sq]
	}
	return table[sq^56]
}

// Evaluate returns a static score for the position from the side-to-move's
// perspective, as negamax requires. Material plus piece-square terms; the
// search treats it as an opaque collaborator.
func Evaluate(b *dragontoothmg.Board) int32 {
	score := sideScore(&b.White, true) - sideScore(&b.Black, false)
	if !b.Wtomove {
		score = -score
	}
	return score
}

func sideScore(bb *dragontoothmg.Bitboards, white bool) int32 {
	var score int32
	score += pieceScore(bb.Pawns, dragontoothmg.Pawn, white)
	score += pieceScore(bb.Knights, dragontoothmg.Knight, white)
	score += pieceScore(bb.Bishops, dragontoothmg.Bishop, white)
	score += pieceScore(bb.Rooks, dragontoothmg.Rook, white)
	score += pieceScore(bb.Queens, dragontoothmg.Queen, white)
	score += pieceScore(bb.Kings, dragontoothmg.King, white)
	return score
}

func pieceScore(board uint64, piece dragontoothmg.Piece, white bool) int32 {
	var score int32
	for board != 0 {
		sq := uint8(bits.TrailingZeros64(board))
		board &= board - 1
		score += pieceValue[piece] + pieceSquare(piece, sq, white)
	}
	return score
}
