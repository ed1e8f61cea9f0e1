package engine

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// recorder captures engine callbacks; they arrive from session goroutines.
type recorder struct {
	mu      sync.Mutex
	infos   []Info
	results []Result
}

func (r *recorder) onInfo(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, info)
}

func (r *recorder) onBestMove(result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) snapshot() ([]Info, []Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Info(nil), r.infos...), append([]Result(nil), r.results...)
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *recorder) {
	t.Helper()
	cfg.ValidateStack = true
	e := New(cfg, zerolog.Nop())
	rec := &recorder{}
	e.OnInfo = rec.onInfo
	e.OnBestMove = rec.onBestMove
	return e, rec
}

func TestEngineDeliversExactlyOneResult(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	id := e.Go(Limits{Depth: 3})
	e.Wait()

	_, results := rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(results))
	}
	if results[0].SessionID != id {
		t.Fatalf("result session %d, want %d", results[0].SessionID, id)
	}
	if !results[0].HasMove {
		t.Fatalf("search from the starting position reported no move")
	}
}

func TestEngineNodeCapDeliversResult(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	e.Go(Limits{Nodes: 100})
	e.Wait()

	_, results := rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(results))
	}
}

func TestEngineStalemateDeliversNoneSentinel(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())
	if err := e.SetPosition("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", nil); err != nil {
		t.Fatalf("set position: %v", err)
	}

	e.Go(Limits{Depth: 3})
	e.Wait()

	_, results := rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(results))
	}
	if results[0].HasMove {
		t.Fatalf("stalemate search reported move %s", results[0].BestMove.String())
	}
}

func TestEngineSupersedingGoCancelsOldSession(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	id1 := e.Go(Limits{Depth: 30})
	time.Sleep(30 * time.Millisecond)
	id2 := e.Go(Limits{Depth: 1})
	e.Wait()

	// The superseded session may still be winding down; give its (dropped)
	// delivery attempt a moment before asserting.
	time.Sleep(50 * time.Millisecond)

	infos, results := rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results across supersession, want exactly 1", len(results))
	}
	if results[0].SessionID != id2 {
		t.Fatalf("result came from session %d, want %d", results[0].SessionID, id2)
	}

	// Session replacement and delivery share one lock, so no report from the
	// first session may follow one from its successor; and the successor was
	// depth-limited to 1.
	seenNew := false
	for _, info := range infos {
		if info.SessionID == id2 {
			seenNew = true
			if info.Depth >= 2 {
				t.Fatalf("superseding depth-1 session reported depth %d", info.Depth)
			}
			continue
		}
		if info.SessionID != id1 {
			t.Fatalf("report from unknown session %d", info.SessionID)
		}
		if seenNew {
			t.Fatalf("stale depth-%d report from session %d after supersession", info.Depth, id1)
		}
	}
}

func TestEngineInfiniteHoldsResultUntilStop(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())
	if err := e.SetPosition("6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", nil); err != nil {
		t.Fatalf("set position: %v", err)
	}

	e.Go(Limits{Infinite: true})
	time.Sleep(150 * time.Millisecond) // mate in one is found immediately; result must wait

	_, results := rec.snapshot()
	if len(results) != 0 {
		t.Fatalf("infinite search delivered %d results before stop", len(results))
	}

	e.Stop()
	e.Wait()

	_, results = rec.snapshot()
	if len(results) != 1 || !results[0].HasMove {
		t.Fatalf("got %d results after stop", len(results))
	}
	if got := results[0].BestMove.String(); got != "d1d8" {
		t.Fatalf("best move %s, want d1d8", got)
	}
}

func TestEngineSearchMovesRestrictionNeverFallsBack(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	restricted := e.ParseSearchMoves([]string{"e2e5"})
	if restricted == nil {
		t.Fatalf("restriction lost when no token resolves")
	}
	if len(restricted) != 0 {
		t.Fatalf("illegal token resolved to %d moves", len(restricted))
	}
	if e.ParseSearchMoves(nil) != nil {
		t.Fatalf("absent searchmoves should mean no restriction")
	}

	e.Go(Limits{Depth: 2, SearchMoves: restricted})
	e.Wait()

	_, results := rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(results))
	}
	if results[0].HasMove {
		t.Fatalf("unresolvable restriction fell back to the full move list, best %s",
			results[0].BestMove.String())
	}
}

func TestEnginePonderHoldsResultUntilPonderHit(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	e.Go(Limits{Ponder: true, Nodes: 200})
	time.Sleep(100 * time.Millisecond) // search is long done; result must be gated

	_, results := rec.snapshot()
	if len(results) != 0 {
		t.Fatalf("ponder session delivered %d results before ponderhit", len(results))
	}

	e.PonderHit()
	e.Wait()

	_, results = rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results after ponderhit, want exactly 1", len(results))
	}
}

func TestEngineStopReleasesPonderSession(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	e.Go(Limits{Ponder: true})
	time.Sleep(50 * time.Millisecond)

	_, results := rec.snapshot()
	if len(results) != 0 {
		t.Fatalf("ponder session delivered %d results before stop", len(results))
	}

	e.Stop()
	e.Wait()

	_, results = rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results after stop, want exactly 1", len(results))
	}
}

func TestEngineRepeatedGoStopCycles(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	for i := 0; i < 20; i++ {
		e.Go(Limits{Depth: 30})
		e.Stop()
		e.Wait()

		_, results := rec.snapshot()
		if len(results) != i+1 {
			t.Fatalf("cycle %d: got %d results, want %d", i, len(results), i+1)
		}
	}
}

func TestEngineInfosAreMonotonicWithinSession(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	id := e.Go(Limits{Depth: 4})
	e.Wait()

	infos, _ := rec.snapshot()
	if len(infos) == 0 {
		t.Fatalf("no progress reports delivered")
	}
	for i, info := range infos {
		if info.SessionID != id {
			t.Fatalf("report %d has session %d, want %d", i, info.SessionID, id)
		}
		if i > 0 && info.Depth <= infos[i-1].Depth {
			t.Fatalf("depth not strictly increasing: %d after %d", info.Depth, infos[i-1].Depth)
		}
		if i > 0 && info.Nodes < infos[i-1].Nodes {
			t.Fatalf("node count decreased: %d after %d", info.Nodes, infos[i-1].Nodes)
		}
	}
}

func TestEngineControlCommandsIdleAreNoops(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	e.Stop()
	e.PonderHit()
	e.Wait()

	e.Go(Limits{Depth: 1})
	e.Wait()

	_, results := rec.snapshot()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestEngineMoveTimeSearchTerminates(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig())

	start := time.Now()
	e.Go(Limits{MoveTime: 150 * time.Millisecond})
	e.Wait()

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("movetime search ran %v", elapsed)
	}
	_, results := rec.snapshot()
	if len(results) != 1 || !results[0].HasMove {
		t.Fatalf("movetime search did not deliver a best move")
	}
}

func TestEngineSetPositionRejectsIllegalReplay(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	before := e.Position()

	if err := e.SetPosition("startpos", []string{"e2e4", "e2e4"}); err == nil {
		t.Fatalf("illegal replay move accepted")
	}
	if e.Position() != before {
		t.Fatalf("failed position command mutated the current position")
	}
}

func TestEngineSetPositionReplaysHistory(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())

	if err := e.SetPosition("startpos", []string{"e2e4", "e7e5", "g1f3"}); err != nil {
		t.Fatalf("set position: %v", err)
	}
	const want = "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b"
	if got := e.Position(); len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("position after replay: %s", got)
	}
}

func TestEngineBookMoveShortCircuitsSearch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.csv")

	probe, _ := newTestEngine(t, DefaultConfig())
	key := bookKey(probe.Position())
	if err := os.WriteFile(path, []byte(key+",e2e4\n"), 0o644); err != nil {
		t.Fatalf("write book: %v", err)
	}

	cfg := DefaultConfig()
	cfg.BookPath = path
	e, rec := newTestEngine(t, cfg)

	e.Go(Limits{Depth: 6})
	e.Wait()

	_, results := rec.snapshot()
	if len(results) != 1 || !results[0].HasMove {
		t.Fatalf("book probe did not deliver a result")
	}
	if got := results[0].BestMove.String(); got != "e2e4" {
		t.Fatalf("best move %s, want the book move e2e4", got)
	}
}
