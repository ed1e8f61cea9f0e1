package engine

import (
	"testing"
	"time"
)

func TestDeadlineBudgets(t *testing.T) {
	cfg := DefaultConfig() // 30ms overhead, 5ms floor, 40 moves horizon
	start := time.Now()

	cases := []struct {
		name        string
		limits      Limits
		whiteToMove bool
		want        time.Duration
		wantNone    bool
	}{
		{
			name:     "infinite has no deadline",
			limits:   Limits{Infinite: true, MoveTime: time.Second},
			wantNone: true,
		},
		{
			name:     "no clock information has no deadline",
			limits:   Limits{Depth: 12},
			wantNone: true,
		},
		{
			name:   "movetime minus overhead",
			limits: Limits{MoveTime: 1000 * time.Millisecond},
			want:   970 * time.Millisecond,
		},
		{
			name:   "movetime floored",
			limits: Limits{MoveTime: 10 * time.Millisecond},
			want:   5 * time.Millisecond,
		},
		{
			name:        "clock with increment",
			limits:      Limits{WhiteTime: 60 * time.Second, WhiteInc: time.Second},
			whiteToMove: true,
			want:        60*time.Second/40 + 900*time.Millisecond,
		},
		{
			name:        "explicit movestogo",
			limits:      Limits{WhiteTime: 10 * time.Second, MovesToGo: 2},
			whiteToMove: true,
			want:        5 * time.Second,
		},
		{
			name:   "black uses black clock",
			limits: Limits{WhiteTime: 60 * time.Second, BlackTime: 8 * time.Second},
			want:   200 * time.Millisecond,
		},
		{
			name:        "budget clamped below remaining minus overhead",
			limits:      Limits{WhiteTime: 100 * time.Millisecond, WhiteInc: 10 * time.Second},
			whiteToMove: true,
			want:        70 * time.Millisecond,
		},
		{
			name:        "tiny clock clamps to floor",
			limits:      Limits{WhiteTime: 40 * time.Millisecond},
			whiteToMove: true,
			want:        5 * time.Millisecond,
		},
	}

	for _, tc := range cases {
		deadline, ok := tc.limits.deadline(tc.whiteToMove, cfg, start)
		if tc.wantNone {
			if ok {
				t.Fatalf("%s: unexpected deadline %v", tc.name, deadline.Sub(start))
			}
			continue
		}
		if !ok {
			t.Fatalf("%s: expected a deadline", tc.name)
		}
		if got := deadline.Sub(start); got != tc.want {
			t.Fatalf("%s: budget %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMaxSearchDepth(t *testing.T) {
	if got := (Limits{}).maxSearchDepth(); got != MaxDepth {
		t.Fatalf("unbounded depth %d, want %d", got, MaxDepth)
	}
	if got := (Limits{Depth: 7}).maxSearchDepth(); got != 7 {
		t.Fatalf("depth limit %d, want 7", got)
	}
	if got := (Limits{Depth: 500}).maxSearchDepth(); got != MaxDepth {
		t.Fatalf("oversized depth %d, want %d", got, MaxDepth)
	}
}
