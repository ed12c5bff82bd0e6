package game

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Snapshot is the in-memory shape of a saved game. Writing it to disk is up to the caller.
type Snapshot struct {
	Board      [][]int        `yaml:"board"`
	SideToMove int            `yaml:"side_to_move"`
	Winner     int            `yaml:"winner"` // 0 while undecided
	Draw       bool           `yaml:"draw,omitempty"`
	BlindMoves int            `yaml:"blind_moves"`
	Undo       []SnapshotItem `yaml:"undo,omitempty"`
	Redo       []SnapshotItem `yaml:"redo,omitempty"`
}

// SnapshotItem is one history entry: the board before the move, the move and who played it.
type SnapshotItem struct {
	From       [2]int  `yaml:"from,flow"`
	To         [2]int  `yaml:"to,flow"`
	Side       int     `yaml:"side"`
	Board      [][]int `yaml:"board"`
	BlindMoves int     `yaml:"blind_moves"`
}

func CoordPair(c Coord) [2]int {
	return [2]int{c.Row, c.Col}
}

func CoordFromPair(p [2]int) Coord {
	return Coord{Row: p[0], Col: p[1]}
}

func (s Snapshot) Validate() error {
	if _, err := BoardFromGrid(s.Board); err != nil {
		return err
	}
	if !Side(s.SideToMove).Valid() {
		return fmt.Errorf("%w: side to move has bad value %d", ErrInvalidSnapshot, s.SideToMove)
	}
	if s.Winner != 0 && !Side(s.Winner).Valid() {
		return fmt.Errorf("%w: winner has bad value %d", ErrInvalidSnapshot, s.Winner)
	}
	if s.BlindMoves < 0 {
		return fmt.Errorf("%w: negative blind move count", ErrInvalidSnapshot)
	}
	for i, item := range s.Undo {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("undo item %d: %w", i, err)
		}
	}
	for i, item := range s.Redo {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("redo item %d: %w", i, err)
		}
	}
	return nil
}

func (i SnapshotItem) Validate() error {
	if !CoordFromPair(i.From).Valid() || !CoordFromPair(i.To).Valid() {
		return fmt.Errorf("%w: move %v -> %v is out of bounds", ErrInvalidSnapshot, i.From, i.To)
	}
	if !Side(i.Side).Valid() {
		return fmt.Errorf("%w: side has bad value %d", ErrInvalidSnapshot, i.Side)
	}
	if i.BlindMoves < 0 {
		return fmt.Errorf("%w: negative blind move count", ErrInvalidSnapshot)
	}
	_, err := BoardFromGrid(i.Board)
	return err
}

func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates a snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
