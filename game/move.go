package game

import "fmt"

// Coord addresses a square by row and column, both in [0, Size).
type Coord struct {
	Row int
	Col int
}

func (c Coord) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Step returns the coordinate n squares away in direction d. The result may be off the board.
func (c Coord) Step(d Direction, n int) Coord {
	return Coord{Row: c.Row + d.DRow*n, Col: c.Col + d.DCol*n}
}

func (c Coord) String() string {
	return fmt.Sprintf("%d|%d", c.Row, c.Col)
}

// Direction is one of the four orthogonal unit steps.
type Direction struct {
	DRow int
	DCol int
}

var (
	Down  = Direction{DRow: 1}
	Right = Direction{DCol: 1}
	Up    = Direction{DRow: -1}
	Left  = Direction{DCol: -1}
)

// Directions in the order moves and captures are enumerated.
var Directions = [4]Direction{Down, Right, Up, Left}

// Perpendicular returns the two directions at right angles to d.
func (d Direction) Perpendicular() (Direction, Direction) {
	return Direction{DRow: d.DCol, DCol: d.DRow}, Direction{DRow: -d.DCol, DCol: -d.DRow}
}

// Move relocates the piece on From to To.
type Move struct {
	From Coord
	To   Coord
}

func (m Move) Reverse() Move {
	return Move{From: m.To, To: m.From}
}

func (m Move) String() string {
	return m.From.String() + " -> " + m.To.String()
}
