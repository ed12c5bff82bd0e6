package history

import (
	"errors"
	"fmt"

	"tablut/game"
)

const (
	OscillationWindow = 4 // Undo entries inspected when looking for a shuttle
	OscillationStride = 2 // Distance between a move and the one it reverses
)

var (
	ErrEmptyHistory    = errors.New("no history item to restore")
	ErrIndexOutOfRange = errors.New("history position out of range")
)

// Item records a single move together with the position it was played from.
type Item struct {
	Side       game.Side
	Board      *game.Board // Board before the move
	From       game.Coord
	To         game.Coord
	BlindMoves int // Blind move counter before the move
}

func NewItem(side game.Side, board *game.Board, move game.Move, blindMoves int) Item {
	return Item{
		Side:       side,
		Board:      board.Clone(),
		From:       move.From,
		To:         move.To,
		BlindMoves: blindMoves,
	}
}

func (i Item) Move() game.Move {
	return game.Move{From: i.From, To: i.To}
}

// IsReverseOf reports whether this item moves a piece straight back to where other took it from.
func (i Item) IsReverseOf(other Item) bool {
	return i.Move() == other.Move().Reverse()
}

func (i Item) String() string {
	return fmt.Sprintf("%s: %s", i.Side, i.Move())
}

type Direction int

const (
	Stay Direction = iota
	Backward
	Forward
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	default:
		return "stay"
	}
}

// History keeps the played moves on an undo stack and the undone ones on a redo stack.
// The top of each stack is the last element of its slice.
type History struct {
	undo []Item
	redo []Item
}

func New() *History {
	return &History{}
}

// FromItems rebuilds a history from persisted stacks, bottom first. Boards are
// cloned so the new history shares no snapshot with the given items.
func FromItems(undo, redo []Item) *History {
	return &History{
		undo: cloneItems(undo),
		redo: cloneItems(redo),
	}
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	cloned := make([]Item, len(items))
	for i, item := range items {
		item.Board = item.Board.Clone()
		cloned[i] = item
	}
	return cloned
}

// Record pushes a freshly played move. Any redo line is discarded.
func (h *History) Record(item Item) {
	h.undo = append(h.undo, item)
	h.redo = nil
}

// Undo pops the last played move and parks it on the redo stack.
func (h *History) Undo() (Item, error) {
	if len(h.undo) == 0 {
		return Item{}, fmt.Errorf("%w: nothing to undo", ErrEmptyHistory)
	}
	item := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, item)
	return item, nil
}

// Redo pops the last undone move and puts it back on the undo stack.
func (h *History) Redo() (Item, error) {
	if len(h.redo) == 0 {
		return Item{}, fmt.Errorf("%w: nothing to redo", ErrEmptyHistory)
	}
	item := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, item)
	return item, nil
}

// JumpTo undoes or redoes until exactly position moves are on the undo stack.
// Positions run from 0 (before the first move) to Len (every recorded move played).
// It returns the last item transferred and the direction travelled.
func (h *History) JumpTo(position int) (Item, Direction, error) {
	if position < 0 || position > h.Len() {
		return Item{}, Stay, fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, position, h.Len())
	}

	var (
		item Item
		err  error
	)
	switch {
	case position < len(h.undo):
		for len(h.undo) > position {
			if item, err = h.Undo(); err != nil {
				return Item{}, Stay, err
			}
		}
		return item, Backward, nil
	case position > len(h.undo):
		for len(h.undo) < position {
			if item, err = h.Redo(); err != nil {
				return Item{}, Stay, err
			}
		}
		return item, Forward, nil
	}
	return Item{}, Stay, nil
}

// UndoItems returns the played moves, oldest first.
func (h *History) UndoItems() []Item {
	return append([]Item(nil), h.undo...)
}

// RedoItems returns the undone moves, bottom of the stack first.
func (h *History) RedoItems() []Item {
	return append([]Item(nil), h.redo...)
}

// Len is the number of moves on both stacks.
func (h *History) Len() int {
	return len(h.undo) + len(h.redo)
}

// Position is the number of moves currently played.
func (h *History) Position() int {
	return len(h.undo)
}

// DetectOscillation reports whether the last window played moves each reverse the
// move stride plies before them, i.e. pieces keep shuttling between the same squares.
func (h *History) DetectOscillation(window, stride int) bool {
	if stride <= 0 || window <= stride || len(h.undo) < window {
		return false
	}
	top := len(h.undo) - 1
	for i := top; i >= len(h.undo)-window+stride; i-- {
		if !h.undo[i].IsReverseOf(h.undo[i-stride]) {
			return false
		}
	}
	return true
}

// Disfavored returns the move that would continue a detected shuttle: the one
// played window plies ago by the side now to move.
func (h *History) Disfavored(window int) (game.Move, bool) {
	if window <= 0 || len(h.undo) < window {
		return game.Move{}, false
	}
	return h.undo[len(h.undo)-window].Move(), true
}
