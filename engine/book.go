package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// Book is a small read-only opening book: CSV rows of "fen,move" where fen is
// the first four FEN fields (move counters ignored) and move is a UCI move.
type Book struct {
	entries map[string]string
}

// LoadBook reads a CSV book from disk.
func LoadBook(path string) (*Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading book %s: %w", path, err)
	}

	book := &Book{entries: make(map[string]string, len(records))}
	for _, record := range records {
		book.entries[strings.TrimSpace(record[0])] = strings.TrimSpace(record[1])
	}
	return book, nil
}

// Len reports the number of book positions.
func (bk *Book) Len() int { return len(bk.entries) }

// Probe looks the position up and resolves the stored move against the legal
// move list; a stored move that is not legal here is treated as a miss.
func (bk *Book) Probe(board *dragontoothmg.Board) (dragontoothmg.Move, bool) {
	moveStr, ok := bk.entries[bookKey(board.ToFen())]
	if !ok {
		return 0, false
	}
	move, err := matchLegalMove(board, moveStr)
	if err != nil {
		return 0, false
	}
	return move, true
}

// bookKey truncates a FEN to its first four fields so the halfmove and
// fullmove counters don't defeat lookups.
func bookKey(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}
