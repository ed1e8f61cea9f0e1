package engine

import (
	"fmt"

	"github.com/dylhunn/dragontoothmg"
)

const (
	// MaxDepth bounds the search ply. The undo stack is sized beyond it so a
	// full game history replay plus a deepest-possible search both fit.
	MaxDepth = 100
	maxStack = 1024

	fiftyMoveLimit = 100
)

// DriverFault is raised on push/release discipline violations and, in
// validation mode, on a make/unmove round trip that fails to restore the
// position. It indicates a defect in the mutation collaborator or its caller,
// never a data problem, so it is surfaced as a panic rather than an error.
type DriverFault struct {
	Ply int
	Msg string
}

func (f DriverFault) Error() string {
	return fmt.Sprintf("state stack fault at ply %d: %s", f.Ply, f.Msg)
}

// positionState captures what we need for repetition and fifty-move
// reasoning: one entry per position the driver has passed through.
type positionState struct {
	hash   uint64
	rule50 int
}

type undoSlot struct {
	unapply func()
	hash    uint64
	active  bool
}

// Driver is the sole authority through which search code mutates a board.
// It guarantees LIFO push/release discipline and, in validation mode, checks
// that every release restores the position fingerprint captured at push time.
// The board must never be written to except through Seed, Push and
// PushPermanent.
type Driver struct {
	Board dragontoothmg.Board

	slots    []undoSlot
	cursor   int
	history  []positionState
	validate bool
	seeded   bool
}

// NewDriver allocates a driver with its full undo stack up front; nothing on
// the push/release path allocates after this.
func NewDriver(validate bool) *Driver {
	return &Driver{
		slots:    make([]undoSlot, maxStack),
		history:  make([]positionState, 0, maxStack),
		validate: validate,
	}
}

// Seed initializes the driver from a FEN descriptor and resets the cursor to
// zero. On a malformed descriptor it returns an error without touching the
// current state.
func (d *Driver) Seed(fen string) error {
	board, err := parseFen(fen)
	if err != nil {
		return err
	}
	d.Board = board
	d.cursor = 0
	d.history = d.history[:0]
	d.recordState()
	d.seeded = true
	return nil
}

// parseFen wraps the collaborator's panicking FEN parser in an error return.
func parseFen(fen string) (board dragontoothmg.Board, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid position descriptor %q: %v", fen, r)
		}
	}()
	board = dragontoothmg.ParseFen(fen)
	return board, nil
}

// SetPriorPositions prepends game-history fingerprints from before the seeded
// position, so repetition detection can see across the search root. Call it
// after Seed and before the first Push.
func (d *Driver) SetPriorPositions(hashes []uint64) {
	if d.cursor != 0 || len(d.history) != 1 {
		panic(DriverFault{Ply: d.cursor, Msg: "prior positions set after pushes"})
	}
	seeded := d.history[0]
	d.history = d.history[:0]
	for _, h := range hashes {
		d.history = append(d.history, positionState{hash: h})
	}
	d.history = append(d.history, seeded)
}

// Push applies move using the next free undo slot, advances the cursor, and
// returns a release func that undoes it. Releases must happen in exact
// reverse order of pushes; violating that order, or releasing twice, panics
// with a DriverFault. Push never checks move legality.
func (d *Driver) Push(move dragontoothmg.Move) func() {
	if d.cursor >= len(d.slots) {
		panic(DriverFault{Ply: d.cursor, Msg: "undo stack exhausted"})
	}
	ply := d.cursor
	slot := &d.slots[ply]
	slot.hash = d.Board.Hash()
	slot.unapply = d.Board.Apply(move)
	slot.active = true
	d.cursor++
	d.recordState()

	return func() {
		if d.cursor != ply+1 {
			panic(DriverFault{Ply: ply, Msg: "release out of LIFO order"})
		}
		if !slot.active {
			panic(DriverFault{Ply: ply, Msg: "scope released twice"})
		}
		slot.active = false
		d.cursor--
		d.history = d.history[:len(d.history)-1]
		slot.unapply()
		if d.validate && d.Board.Hash() != slot.hash {
			panic(DriverFault{Ply: ply, Msg: "fingerprint mismatch after undo"})
		}
	}
}

// PushPermanent applies move and advances the cursor without a releasable
// scope. It exists to replay a fixed move history onto the current position;
// it must never be used inside recursive search.
func (d *Driver) PushPermanent(move dragontoothmg.Move) {
	if d.cursor >= len(d.slots) {
		panic(DriverFault{Ply: d.cursor, Msg: "undo stack exhausted"})
	}
	d.Board.Apply(move)
	d.slots[d.cursor].active = false
	d.cursor++
	d.recordState()
}

// Cursor reports the number of currently applied but not undone moves since
// the driver was seeded.
func (d *Driver) Cursor() int { return d.cursor }

// Fingerprint returns the cheap equality fingerprint of the current position.
func (d *Driver) Fingerprint() uint64 { return d.Board.Hash() }

// RootIndex returns the history index of the current position. The search
// captures it once at the root and hands it back to IsDraw.
func (d *Driver) RootIndex() int { return len(d.history) - 1 }

// HistoryHashes returns the fingerprints of every position the driver has
// passed through, oldest first, including the current one.
func (d *Driver) HistoryHashes() []uint64 {
	hashes := make([]uint64, len(d.history))
	for i, st := range d.history {
		hashes[i] = st.hash
	}
	return hashes
}

func (d *Driver) recordState() {
	d.history = append(d.history, positionState{
		hash:   d.Board.Hash(),
		rule50: int(d.Board.Halfmoveclock),
	})
}

// IsDraw reports whether the current position is drawn by the fifty-move rule
// or by repetition. A single repetition counts as a draw only when the
// earlier occurrence lies at or after rootIndex, i.e. inside the current
// search; two repetitions count regardless.
func (d *Driver) IsDraw(rootIndex int) bool {
	if len(d.history) == 0 {
		return false
	}
	curr := d.history[len(d.history)-1]
	if curr.rule50 >= fiftyMoveLimit {
		return true
	}

	count, firstIdx := d.repetitionInfo(curr.hash, curr.rule50)
	if count >= 2 {
		return true
	}
	return count >= 1 && firstIdx >= rootIndex && firstIdx != -1
}

func (d *Driver) repetitionInfo(hash uint64, rule50 int) (count int, firstIdx int) {
	firstIdx = -1
	if len(d.history) <= 1 {
		return 0, firstIdx
	}
	start := len(d.history) - 1 - rule50
	if start < 0 {
		start = 0
	}
	end := len(d.history) - 2
	for i := start; i <= end; i++ {
		if d.history[i].hash == hash {
			count++
			if firstIdx == -1 {
				firstIdx = i
			}
		}
	}
	return count, firstIdx
}
