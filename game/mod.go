package game

import "fmt"

// Cell is the content of a single board square. The integer values double as
// the persistence encoding of the board grid.
type Cell int

const (
	Empty Cell = iota
	Attacker
	Defender
	King
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Attacker:
		return "attacker"
	case Defender:
		return "defender"
	case King:
		return "king"
	default:
		return fmt.Sprintf("cell(%d)", int(c))
	}
}

// Side is one of the two factions. Attackers always open the game.
type Side int

const (
	Attackers Side = iota + 1
	Defenders
)

const (
	AttackersCount = 16 // Attacker pieces in the starting layout
	DefendersCount = 8  // Defender pieces in the starting layout, king excluded
)

func (s Side) Opponent() Side {
	if s == Attackers {
		return Defenders
	}
	return Attackers
}

// Owns reports whether a cell holds a piece of this side. The king belongs to the defenders.
func (s Side) Owns(c Cell) bool {
	switch s {
	case Attackers:
		return c == Attacker
	case Defenders:
		return c == Defender || c == King
	}
	return false
}

// IsEnemy reports whether a cell holds a piece of the opposing side.
func (s Side) IsEnemy(c Cell) bool {
	return c != Empty && s.Opponent().Owns(c)
}

func (s Side) Valid() bool {
	return s == Attackers || s == Defenders
}

func (s Side) String() string {
	switch s {
	case Attackers:
		return "attackers"
	case Defenders:
		return "defenders"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Evaluate scores a non-terminal position from the perspective of the given side.
type Evaluate func(r *Referee, side Side) int
