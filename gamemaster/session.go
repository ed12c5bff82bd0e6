package gamemaster

import (
	"errors"
	"fmt"
	"sync"

	"tablut/game"
	"tablut/history"
	"tablut/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const updateBuffer = 64

var (
	ErrGameOver     = errors.New("game is over")
	ErrNotYourPiece = errors.New("origin does not hold a piece of the side to move")
)

type Reason string

const (
	Undecided    Reason = ""
	KingCaptured Reason = "king captured"
	KingEscaped  Reason = "king escaped"
	BlindMoves   Reason = "blind move limit"
	NoMoves      Reason = "no legal moves"
	Resigned     Reason = "resigned"
)

type Status struct {
	SideToMove game.Side
	Over       bool
	Winner     game.Side // Zero for a draw or while undecided
	Draw       bool
	Reason     Reason
	BlindMoves int
	Captured   map[game.Side]int // Enemy pieces taken by each side
	Position   int               // Moves currently played
	Moves      int               // Moves on record, including undone ones
}

// Update is published after every change of position.
type Update struct {
	Move     game.Move // Zero for undo, redo, jumps and restores
	Side     game.Side
	Captured []game.Coord
	Status   Status
}

// TimelineEntry is one recorded move, numbered by the position it leads to.
type TimelineEntry struct {
	Position int
	Side     game.Side
	Move     game.Move
	Played   bool // False for moves that were undone
}

// Session controls a single game: it validates and applies moves, keeps the
// history, and detects the end of the game.
type Session struct {
	ID string

	mu         sync.Mutex
	rules      game.Rules
	referee    *game.Referee
	history    *history.History
	sideToMove game.Side
	winner     game.Side
	draw       bool
	reason     Reason
	updates    chan Update
	closed     bool
}

func NewSession(rules game.Rules) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		rules:      rules,
		referee:    game.NewReferee(game.NewBoard(), rules),
		history:    history.New(),
		sideToMove: game.Attackers,
		updates:    make(chan Update, updateBuffer),
	}
	log.Debug().Str("session", s.ID).Msg("new game session")
	return s
}

// Updates delivers changes of position. Updates are dropped while the buffer is full.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Close stops publishing updates.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
}

// Referee returns a referee over a copy of the current position.
func (s *Session) Referee() *game.Referee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.referee.Clone()
}

func (s *Session) SideToMove() game.Side {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sideToMove
}

// History returns a copy of the move history.
func (s *Session) History() *history.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return history.FromItems(s.history.UndoItems(), s.history.RedoItems())
}

// Play validates and applies a move for the side to move and returns the captured squares.
func (s *Session) Play(move game.Move) ([]game.Coord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOver() {
		return nil, ErrGameOver
	}
	legal, err := s.referee.IsLegal(move.From, move.To)
	if err != nil {
		return nil, err
	}
	if !s.sideToMove.Owns(s.referee.Board().At(move.From)) {
		return nil, fmt.Errorf("%w: %s cannot move %s on %v", ErrNotYourPiece, s.sideToMove, s.referee.Board().At(move.From), move.From)
	}
	if !legal {
		return nil, fmt.Errorf("%w: %v", game.ErrIllegalMove, move)
	}

	side := s.sideToMove
	s.history.Record(history.NewItem(side, s.referee.Board(), move, s.referee.BlindMoves()))
	captured := s.referee.Play(move.From, move.To, side)
	s.sideToMove = side.Opponent()
	s.evaluate()

	log.Debug().Str("session", s.ID).Stringer("side", side).Stringer("move", move).Int("captured", len(captured)).Msg("move played")
	s.publish(Update{Move: move, Side: side, Captured: captured, Status: s.status()})
	return captured, nil
}

// Undo takes back the last move.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.history.Undo()
	if err != nil {
		return err
	}
	s.restoreItem(item)
	s.publish(Update{Side: item.Side, Status: s.status()})
	return nil
}

// Redo plays the last undone move again.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.history.Redo()
	if err != nil {
		return err
	}
	captured := s.replayItem(item)
	s.publish(Update{Side: item.Side, Captured: captured, Status: s.status()})
	return nil
}

// JumpTo moves through the history until position moves are played.
func (s *Session) JumpTo(position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, dir, err := s.history.JumpTo(position)
	if err != nil {
		return err
	}
	switch dir {
	case history.Backward:
		s.restoreItem(item)
	case history.Forward:
		s.replayItem(item)
	default:
		return nil
	}
	log.Debug().Str("session", s.ID).Int("position", position).Stringer("direction", dir).Msg("jumped through history")
	s.publish(Update{Side: item.Side, Status: s.status()})
	return nil
}

// Timeline lists every recorded move in the order it was played, undone moves last.
func (s *Session) Timeline() []TimelineEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []TimelineEntry
	for _, item := range s.history.UndoItems() {
		entries = append(entries, TimelineEntry{Position: len(entries) + 1, Side: item.Side, Move: item.Move(), Played: true})
	}
	for _, item := range utils.Reversed(s.history.RedoItems()) {
		entries = append(entries, TimelineEntry{Position: len(entries) + 1, Side: item.Side, Move: item.Move()})
	}
	return entries
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

// Resign ends the game in favour of the opponent of side.
func (s *Session) Resign(side game.Side) error {
	return s.Concede(side, Resigned)
}

// Concede ends the game in favour of the opponent of side for the given reason.
func (s *Session) Concede(side game.Side, reason Reason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOver() {
		return ErrGameOver
	}
	s.winner = side.Opponent()
	s.reason = reason
	log.Debug().Str("session", s.ID).Stringer("side", side).Str("reason", string(reason)).Msg("game conceded")
	s.publish(Update{Side: side, Status: s.status()})
	return nil
}

// Snapshot captures the game in its persistence shape.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return game.Snapshot{
		Board:      s.referee.Board().Grid(),
		SideToMove: int(s.sideToMove),
		Winner:     int(s.winner),
		Draw:       s.draw,
		BlindMoves: s.referee.BlindMoves(),
		Undo:       toSnapshotItems(s.history.UndoItems()),
		Redo:       toSnapshotItems(s.history.RedoItems()),
	}
}

// Restore replaces the game with a validated snapshot.
func (s *Session) Restore(snap game.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	board, err := game.BoardFromGrid(snap.Board)
	if err != nil {
		return err
	}
	undo, err := fromSnapshotItems(snap.Undo)
	if err != nil {
		return err
	}
	redo, err := fromSnapshotItems(snap.Redo)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.referee = game.NewReferee(board, s.rules)
	s.referee.SetBlindMoves(snap.BlindMoves)
	s.history = history.FromItems(undo, redo)
	s.sideToMove = game.Side(snap.SideToMove)
	s.evaluate()
	if s.winner == 0 && !s.draw {
		// A resignation is only visible through the stored outcome
		s.winner = game.Side(snap.Winner)
		s.draw = snap.Draw
		if s.winner != 0 {
			s.reason = Resigned
		}
	}

	log.Debug().Str("session", s.ID).Int("position", s.history.Position()).Msg("session restored")
	s.publish(Update{Status: s.status()})
	return nil
}

func (s *Session) restoreItem(item history.Item) {
	s.referee = game.NewReferee(item.Board.Clone(), s.rules)
	s.referee.SetBlindMoves(item.BlindMoves)
	s.sideToMove = item.Side
	s.evaluate()
}

func (s *Session) replayItem(item history.Item) []game.Coord {
	s.restoreItem(item)
	captured := s.referee.Play(item.From, item.To, item.Side)
	s.sideToMove = item.Side.Opponent()
	s.evaluate()
	return captured
}

// evaluate derives the outcome from the current position.
func (s *Session) evaluate() {
	s.winner, s.draw, s.reason = 0, false, Undecided
	if winner, ok := s.referee.Winner(); ok {
		s.winner = winner
		s.reason = KingEscaped
		if winner == game.Attackers {
			s.reason = KingCaptured
		}
		return
	}
	if s.referee.IsDrawnByBlindMoves() {
		s.draw = true
		s.reason = BlindMoves
		return
	}
	if len(s.referee.LegalMoves(s.sideToMove)) == 0 {
		s.winner = s.sideToMove.Opponent()
		s.reason = NoMoves
	}
}

func (s *Session) isOver() bool {
	return s.winner != 0 || s.draw
}

func (s *Session) status() Status {
	return Status{
		SideToMove: s.sideToMove,
		Over:       s.isOver(),
		Winner:     s.winner,
		Draw:       s.draw,
		Reason:     s.reason,
		BlindMoves: s.referee.BlindMoves(),
		Captured: map[game.Side]int{
			game.Attackers: s.referee.CapturedCount(game.Attackers),
			game.Defenders: s.referee.CapturedCount(game.Defenders),
		},
		Position: s.history.Position(),
		Moves:    s.history.Len(),
	}
}

func (s *Session) publish(u Update) {
	if s.closed {
		return
	}
	select {
	case s.updates <- u:
	default:
		log.Warn().Str("session", s.ID).Msg("update buffer full, dropping update")
	}
}

func toSnapshotItems(items []history.Item) []game.SnapshotItem {
	out := make([]game.SnapshotItem, 0, len(items))
	for _, item := range items {
		out = append(out, game.SnapshotItem{
			From:       game.CoordPair(item.From),
			To:         game.CoordPair(item.To),
			Side:       int(item.Side),
			Board:      item.Board.Grid(),
			BlindMoves: item.BlindMoves,
		})
	}
	return out
}

func fromSnapshotItems(items []game.SnapshotItem) ([]history.Item, error) {
	out := make([]history.Item, 0, len(items))
	for i, item := range items {
		board, err := game.BoardFromGrid(item.Board)
		if err != nil {
			return nil, fmt.Errorf("history item %d: %w", i, err)
		}
		out = append(out, history.Item{
			Side:       game.Side(item.Side),
			Board:      board,
			From:       game.CoordFromPair(item.From),
			To:         game.CoordFromPair(item.To),
			BlindMoves: item.BlindMoves,
		})
	}
	return out, nil
}
