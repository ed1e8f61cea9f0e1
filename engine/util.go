package engine

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Min returns the smaller of x or y.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of x or y.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Clamp restricts v to the inclusive range [low, high].
func Clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// FormatScore renders a score the way the UCI protocol expects: "cp N" for
// ordinary evaluations, "mate N" for scores inside the mate window. The
// plies-to-moves conversion happens here and nowhere else.
func FormatScore(score int32) string {
	if score >= Checkmate {
		pliesToMate := MaxScore - score
		if pliesToMate < 0 {
			pliesToMate = 0
		}
		return fmt.Sprintf("mate %d", (pliesToMate+1)/2)
	}
	if score <= -Checkmate {
		pliesToMate := MaxScore + score
		if pliesToMate < 0 {
			pliesToMate = 0
		}
		return fmt.Sprintf("mate %d", -((pliesToMate + 1) / 2))
	}
	return fmt.Sprintf("cp %d", score)
}

// MateDistance returns the full-move distance to mate for a score inside the
// mate window, and ok=false for ordinary scores.
func MateDistance(score int32) (moves int, ok bool) {
	if score < Checkmate && score > -Checkmate {
		return 0, false
	}
	plies := int(MaxScore - abs32(score))
	if plies < 0 {
		plies = 0
	}
	return (plies + 1) / 2, true
}
