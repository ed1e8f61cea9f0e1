package engine

import "testing"

func TestFormatScore(t *testing.T) {
	cases := []struct {
		score int32
		want  string
	}{
		{0, "cp 0"},
		{150, "cp 150"},
		{-32, "cp -32"},
		{MaxScore - 1, "mate 1"},
		{MaxScore - 3, "mate 2"},
		{MaxScore - 6, "mate 3"},
		{-(MaxScore - 2), "mate -1"},
		{-(MaxScore - 5), "mate -3"},
		{Checkmate - 1, "cp 19999"},
	}
	for _, tc := range cases {
		if got := FormatScore(tc.score); got != tc.want {
			t.Fatalf("FormatScore(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestMateDistance(t *testing.T) {
	if _, ok := MateDistance(120); ok {
		t.Fatalf("ordinary score reported as mate")
	}
	if moves, ok := MateDistance(MaxScore - 1); !ok || moves != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", moves, ok)
	}
	if moves, ok := MateDistance(-(MaxScore - 4)); !ok || moves != 2 {
		t.Fatalf("got (%d, %v), want (2, true)", moves, ok)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(12, 0, 10); got != 10 {
		t.Fatalf("Clamp(12,0,10) = %d", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Fatalf("Clamp(-3,0,10) = %d", got)
	}
	if got := Clamp(7, 0, 10); got != 7 {
		t.Fatalf("Clamp(7,0,10) = %d", got)
	}
}
