package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

type scoredMove struct {
	move  dragontoothmg.Move
	score uint16
}

type moveList struct {
	moves []scoredMove
}

// Most Valuable Victim - Least Valuable Aggressor; used to score and sort
// captures. Indexed [victim][attacker].
var mvvLva = [7][7]uint16{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

// Ordering tiers. Promotions above everything, then en passant, castling and
// captures; quiet moves sit on a base offset shifted by a cheap positional
// delta so it stays positive in a uint16.
const (
	promotionOffset uint16 = 25000
	enPassantOffset uint16 = 23000
	castleOffset    uint16 = 22000
	captureOffset   uint16 = 15000
	quietOffset     uint16 = 8000
)

// GetPieceTypeAtPosition reports which piece (if any) occupies the square in
// the given side's bitboards.
func GetPieceTypeAtPosition(position uint8, bitboards *dragontoothmg.Bitboards) (pieceType dragontoothmg.Piece, occupied bool) {
	if bitboards.Pawns&(1<<position) > 0 {
		return dragontoothmg.Pawn, true
	} else if bitboards.Knights&(1<<position) > 0 {
		return dragontoothmg.Knight, true
	} else if bitboards.Bishops&(1<<position) > 0 {
		return dragontoothmg.Bishop, true
	} else if bitboards.Rooks&(1<<position) > 0 {
		return dragontoothmg.Rook, true
	} else if bitboards.Queens&(1<<position) > 0 {
		return dragontoothmg.Queen, true
	} else if bitboards.Kings&(1<<position) > 0 {
		return dragontoothmg.King, true
	}
	return 0, false
}

func ownAndOpponentBitboards(b *dragontoothmg.Board) (own, opp *dragontoothmg.Bitboards) {
	if b.Wtomove {
		return &b.White, &b.Black
	}
	return &b.Black, &b.White
}

// moveIsEnPassant reports whether move is an en passant capture: a pawn
// moving diagonally onto an empty square.
func moveIsEnPassant(b *dragontoothmg.Board, move dragontoothmg.Move) bool {
	fromBB := uint64(1) << move.From()
	if fromBB&(b.White.Pawns|b.Black.Pawns) == 0 {
		return false
	}
	toBB := uint64(1) << move.To()
	if toBB&(b.White.All|b.Black.All) != 0 {
		return false
	}
	return move.From()%8 != move.To()%8
}

// moveIsCastle reports whether move castles: the king travelling two files.
func moveIsCastle(b *dragontoothmg.Board, move dragontoothmg.Move) bool {
	fromBB := uint64(1) << move.From()
	if fromBB&(b.White.Kings|b.Black.Kings) == 0 {
		return false
	}
	fileFrom := int(move.From() % 8)
	fileTo := int(move.To() % 8)
	diff := fileFrom - fileTo
	return diff == 2 || diff == -2
}

// moveIsNoisy reports whether move belongs in quiescence: a capture
// (including en passant) or a promotion.
func moveIsNoisy(b *dragontoothmg.Board, move dragontoothmg.Move) bool {
	return dragontoothmg.IsCapture(move, b) ||
		move.Promote() != dragontoothmg.Nothing ||
		moveIsEnPassant(b, move)
}

// orderNextMove selection-sorts the highest-scored remaining move into
// position currIndex, one call per iteration of the move loop.
func orderNextMove(currIndex int, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score

	for index := bestIndex + 1; index < len(moves.moves); index++ {
		if moves.moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves.moves[index].score
		}
	}

	moves.moves[currIndex], moves.moves[bestIndex] = moves.moves[bestIndex], moves.moves[currIndex]
}

// scoreMoves assigns ordering scores: promotions, then en passant, then
// castling, then captures by MVV-LVA, then quiet moves by the piece-square
// delta of the moving piece. Efficiency heuristic only, never correctness.
func scoreMoves(b *dragontoothmg.Board, moves []dragontoothmg.Move) moveList {
	own, opp := ownAndOpponentBitboards(b)

	list := moveList{moves: make([]scoredMove, len(moves))}
	for i, move := range moves {
		var score uint16

		victim, isCapture := GetPieceTypeAtPosition(move.To(), opp)
		switch {
		case move.Promote() != dragontoothmg.Nothing:
			score = promotionOffset + uint16(pieceValue[move.Promote()])
		case moveIsEnPassant(b, move):
			score = enPassantOffset
		case moveIsCastle(b, move):
			score = castleOffset
		case isCapture:
			attacker, _ := GetPieceTypeAtPosition(move.From(), own)
			score = captureOffset + mvvLva[victim][attacker]
		default:
			score = quietOffset + uint16(quietDelta(b, move))
		}

		list.moves[i] = scoredMove{move: move, score: score}
	}
	return list
}

// scoreNoisyMoves filters and scores the quiescence subset: captures,
// promotions and en passant only, ordered the same way as the full list.
func scoreNoisyMoves(b *dragontoothmg.Board, moves []dragontoothmg.Move) moveList {
	own, opp := ownAndOpponentBitboards(b)

	list := moveList{moves: make([]scoredMove, 0, len(moves))}
	for _, move := range moves {
		var score uint16

		victim, isCapture := GetPieceTypeAtPosition(move.To(), opp)
		switch {
		case move.Promote() != dragontoothmg.Nothing:
			score = promotionOffset + uint16(pieceValue[move.Promote()])
		case moveIsEnPassant(b, move):
			score = enPassantOffset
		case isCapture:
			attacker, _ := GetPieceTypeAtPosition(move.From(), own)
			score = captureOffset + mvvLva[victim][attacker]
		default:
			continue
		}

		list.moves = append(list.moves, scoredMove{move: move, score: score})
	}
	return list
}

// quietDelta is the positional gain of moving the piece from its origin to
// its destination, clamped so the quiet tier never collides with captures.
func quietDelta(b *dragontoothmg.Board, move dragontoothmg.Move) int32 {
	own, _ := ownAndOpponentBitboards(b)
	piece, ok := GetPieceTypeAtPosition(move.From(), own)
	if !ok {
		return 0
	}
	delta := pieceSquare(piece, move.To(), b.Wtomove) - pieceSquare(piece, move.From(), b.Wtomove)
	return Clamp(delta, -1000, 1000) + 1000
}
