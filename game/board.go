package game

import (
	"fmt"
	"strings"
)

const Size = 9

// Throne is the centre square, the king's starting point.
var Throne = Coord{Row: Size / 2, Col: Size / 2}

// SpecialFields are the four corners and the throne. Only the king may stop on or pass them.
var SpecialFields = [5]Coord{
	{Row: 0, Col: 0},
	{Row: 0, Col: Size - 1},
	{Row: Size - 1, Col: 0},
	{Row: Size - 1, Col: Size - 1},
	Throne,
}

var startingLayout = [Size][Size]Cell{
	{0, 0, 0, 1, 1, 1, 0, 0, 0},
	{0, 0, 0, 0, 1, 0, 0, 0, 0},
	{0, 0, 0, 0, 2, 0, 0, 0, 0},
	{1, 0, 0, 0, 2, 0, 0, 0, 1},
	{1, 1, 2, 2, 3, 2, 2, 1, 1},
	{1, 0, 0, 0, 2, 0, 0, 0, 1},
	{0, 0, 0, 0, 2, 0, 0, 0, 0},
	{0, 0, 0, 0, 1, 0, 0, 0, 0},
	{0, 0, 0, 1, 1, 1, 0, 0, 0},
}

// Board is the 9x9 grid. It is a plain value array, so copying the struct is a deep copy.
type Board struct {
	cells [Size][Size]Cell
}

// NewBoard returns a board in the starting layout.
func NewBoard() *Board {
	return &Board{cells: startingLayout}
}

// NewEmptyBoard returns a board with no pieces on it.
func NewEmptyBoard() *Board {
	return &Board{}
}

// BoardFromGrid rebuilds a board from its persisted integer grid.
func BoardFromGrid(grid [][]int) (*Board, error) {
	if len(grid) != Size {
		return nil, fmt.Errorf("%w: board has %d rows", ErrInvalidSnapshot, len(grid))
	}
	b := &Board{}
	kings := 0
	for r, row := range grid {
		if len(row) != Size {
			return nil, fmt.Errorf("%w: board row %d has %d cells", ErrInvalidSnapshot, r, len(row))
		}
		for c, v := range row {
			if v < int(Empty) || v > int(King) {
				return nil, fmt.Errorf("%w: cell %d|%d has value %d", ErrInvalidSnapshot, r, c, v)
			}
			if Cell(v) == King {
				kings++
			}
			b.cells[r][c] = Cell(v)
		}
	}
	if kings > 1 {
		return nil, fmt.Errorf("%w: board has %d kings", ErrInvalidSnapshot, kings)
	}
	return b, nil
}

// CellAt returns the content of a square. Out of range coordinates are a programming error.
func (b *Board) CellAt(row, col int) Cell {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		panic(fmt.Sprintf("cell %d|%d is outside the board", row, col))
	}
	return b.cells[row][col]
}

func (b *Board) At(c Coord) Cell {
	return b.CellAt(c.Row, c.Col)
}

// Set places a cell value on a square, used to set up positions.
func (b *Board) Set(c Coord, v Cell) {
	if !c.Valid() {
		panic(fmt.Sprintf("cell %v is outside the board", c))
	}
	b.cells[c.Row][c.Col] = v
}

func (b *Board) IsEmpty(c Coord) bool {
	return b.At(c) == Empty
}

func (b *Board) IsSpecialField(c Coord) bool {
	for _, f := range SpecialFields {
		if f == c {
			return true
		}
	}
	return false
}

func (b *Board) IsThrone(c Coord) bool {
	return c == Throne
}

// Relocate moves whatever occupies from onto to and clears from. Legality is not checked.
func (b *Board) Relocate(from, to Coord) {
	v := b.At(from)
	b.cells[from.Row][from.Col] = Empty
	b.cells[to.Row][to.Col] = v
}

func (b *Board) RemoveCells(coords []Coord) {
	for _, c := range coords {
		b.Set(c, Empty)
	}
}

func (b *Board) CountCells(v Cell) int {
	count := 0
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c] == v {
				count++
			}
		}
	}
	return count
}

// FindCell returns the first square holding v in row-major order.
func (b *Board) FindCell(v Cell) (Coord, bool) {
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c] == v {
				return Coord{Row: r, Col: c}, true
			}
		}
	}
	return Coord{}, false
}

// AllCellsOf lists every square holding v in row-major order.
func (b *Board) AllCellsOf(v Cell) []Coord {
	var coords []Coord
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c] == v {
				coords = append(coords, Coord{Row: r, Col: c})
			}
		}
	}
	return coords
}

func (b *Board) Clone() *Board {
	duplicate := *b
	return &duplicate
}

// Grid returns the board as rows of integers, the persistence encoding.
func (b *Board) Grid() [][]int {
	grid := make([][]int, Size)
	for r := range b.cells {
		grid[r] = make([]int, Size)
		for c := range b.cells[r] {
			grid[r][c] = int(b.cells[r][c])
		}
	}
	return grid
}

var cellGlyphs = map[Cell]byte{Empty: '.', Attacker: 'A', Defender: 'D', King: 'K'}

func (b *Board) String() string {
	var sb strings.Builder
	for r := range b.cells {
		for c := range b.cells[r] {
			glyph := cellGlyphs[b.cells[r][c]]
			if glyph == '.' && b.IsSpecialField(Coord{Row: r, Col: c}) {
				glyph = '+'
			}
			sb.WriteByte(glyph)
			if c < Size-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
