package game

import (
	"fmt"

	"tablut/utils"
)

const BlindMovesLimit = 30

// Rules holds the tunable parts of the rule set.
type Rules struct {
	// BlindMoveLimit is the number of consecutive moves without a capture that draws the game.
	BlindMoveLimit int
	// KingEdgeCapture lets the board edge stand in for an attacker when enclosing the king.
	KingEdgeCapture bool
}

func DefaultRules() Rules {
	return Rules{
		BlindMoveLimit:  BlindMovesLimit,
		KingEdgeCapture: true,
	}
}

// Referee decides on the rules for the board it is bound to. Everything except
// ApplyMove and Play is read-only.
type Referee struct {
	board      *Board
	rules      Rules
	blindMoves int
}

func NewReferee(board *Board, rules Rules) *Referee {
	if rules.BlindMoveLimit <= 0 {
		rules.BlindMoveLimit = BlindMovesLimit
	}
	return &Referee{board: board, rules: rules}
}

func (r *Referee) Board() *Board {
	return r.board
}

func (r *Referee) Rules() Rules {
	return r.rules
}

func (r *Referee) BlindMoves() int {
	return r.blindMoves
}

func (r *Referee) SetBlindMoves(count int) {
	r.blindMoves = count
}

// Clone returns a referee over a copy of the board.
func (r *Referee) Clone() *Referee {
	return &Referee{board: r.board.Clone(), rules: r.rules, blindMoves: r.blindMoves}
}

// PossibleMoves lists every destination reachable from origin. Each direction
// stops at the first occupied square, and at the first special field unless the
// moving piece is the king.
func (r *Referee) PossibleMoves(origin Coord) []Coord {
	if !origin.Valid() {
		return nil
	}
	isKing := r.board.At(origin) == King
	var moves []Coord
	for _, d := range Directions {
		for next := origin.Step(d, 1); next.Valid(); next = next.Step(d, 1) {
			if !r.board.IsEmpty(next) || (!isKing && r.board.IsSpecialField(next)) {
				break
			}
			moves = append(moves, next)
		}
	}
	return moves
}

// IsLegal checks a move without touching the board.
func (r *Referee) IsLegal(from, to Coord) (bool, error) {
	if !from.Valid() || !to.Valid() {
		return false, fmt.Errorf("%w: %v -> %v", ErrInvalidCoordinate, from, to)
	}
	if r.board.IsEmpty(from) {
		return false, fmt.Errorf("%w: %v", ErrEmptyOrigin, from)
	}
	return utils.FindIndex(r.PossibleMoves(from), to) >= 0, nil
}

// LegalMoves lists every move of a side. Defenders consider the king first,
// then their other pieces; both lists are in row-major order.
func (r *Referee) LegalMoves(side Side) []Move {
	var origins []Coord
	if side == Defenders {
		if king, ok := r.board.FindCell(King); ok {
			origins = append(origins, king)
		}
		origins = append(origins, r.board.AllCellsOf(Defender)...)
	} else {
		origins = r.board.AllCellsOf(Attacker)
	}

	var moves []Move
	for _, from := range origins {
		for _, to := range r.PossibleMoves(from) {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

// hostile reports whether a square works against pieces of the mover's enemy:
// it holds one of the mover's pieces, or it is a special field not occupied by the king.
func (r *Referee) hostile(c Coord, mover Side) bool {
	v := r.board.At(c)
	return mover.Owns(v) || (r.board.IsSpecialField(c) && v != King)
}

// kingEnclosed checks the three squares around the king other than the one the
// attacker came from.
func (r *Referee) kingEnclosed(king Coord, approach Direction) bool {
	p1, p2 := approach.Perpendicular()
	for _, side := range []Coord{king.Step(approach, 1), king.Step(p1, 1), king.Step(p2, 1)} {
		if !side.Valid() {
			if !r.rules.KingEdgeCapture {
				return false
			}
			continue
		}
		if !r.hostile(side, Attackers) {
			return false
		}
	}
	return true
}

func (r *Referee) capturedInDirection(dest Coord, d Direction, mover Side) bool {
	next := dest.Step(d, 1)
	if !next.Valid() {
		return false
	}
	victim := r.board.At(next)
	if !mover.IsEnemy(victim) {
		return false
	}
	if victim == King {
		return mover == Attackers && r.kingEnclosed(next, d)
	}
	far := next.Step(d, 1)
	return far.Valid() && r.hostile(far, mover)
}

// CapturesAfter lists the pieces captured by the piece that just arrived on dest.
// The king never captures.
func (r *Referee) CapturesAfter(dest Coord, mover Side) []Coord {
	if r.board.At(dest) == King {
		return nil
	}
	var captives []Coord
	for _, d := range Directions {
		if r.capturedInDirection(dest, d, mover) {
			captives = append(captives, dest.Step(d, 1))
		}
	}
	return captives
}

// ApplyMove validates and commits a move, returning the captured squares. A
// rejected move leaves the board untouched.
func (r *Referee) ApplyMove(from, to Coord, mover Side) ([]Coord, error) {
	legal, err := r.IsLegal(from, to)
	if err != nil {
		return nil, err
	}
	if !legal {
		return nil, fmt.Errorf("%w: %v -> %v", ErrIllegalMove, from, to)
	}
	return r.Play(from, to, mover), nil
}

// Play commits a move without validating it.
func (r *Referee) Play(from, to Coord, mover Side) []Coord {
	r.board.Relocate(from, to)
	captives := r.CapturesAfter(to, mover)
	if len(captives) > 0 {
		r.board.RemoveCells(captives)
		r.blindMoves = 0
	} else {
		r.blindMoves++
	}
	return captives
}

func (r *Referee) IsKingCaptured() bool {
	_, ok := r.board.FindCell(King)
	return !ok
}

// IsKingEscaped is true while the king stands on a corner. The throne is not an escape square.
func (r *Referee) IsKingEscaped() bool {
	king, ok := r.board.FindCell(King)
	return ok && r.board.IsSpecialField(king) && !r.board.IsThrone(king)
}

// IsKingSurrounded checks the king's four neighbours statically. Scoring uses it
// as a near-certain attacker win; capture itself needs the enclosing move.
func (r *Referee) IsKingSurrounded() bool {
	king, ok := r.board.FindCell(King)
	if !ok {
		return false
	}
	for _, d := range Directions {
		next := king.Step(d, 1)
		if !next.Valid() {
			if !r.rules.KingEdgeCapture {
				return false
			}
			continue
		}
		if !r.hostile(next, Attackers) {
			return false
		}
	}
	return true
}

func (r *Referee) IsSideWinner(side Side) bool {
	switch side {
	case Attackers:
		return r.IsKingCaptured()
	case Defenders:
		return r.IsKingEscaped()
	}
	return false
}

// Winner returns the winning side once the game is decided.
func (r *Referee) Winner() (Side, bool) {
	for _, side := range []Side{Attackers, Defenders} {
		if r.IsSideWinner(side) {
			return side, true
		}
	}
	return 0, false
}

func (r *Referee) IsDrawnByBlindMoves() bool {
	return r.blindMoves >= r.rules.BlindMoveLimit
}

// CapturedCount returns how many enemy pieces the side has taken, king excluded.
func (r *Referee) CapturedCount(side Side) int {
	if side == Attackers {
		return DefendersCount - r.board.CountCells(Defender)
	}
	return AttackersCount - r.board.CountCells(Attacker)
}
