package gamemaster

import (
	"testing"

	"tablut/game"
	"tablut/history"

	"github.com/stretchr/testify/require"
)

func move(fromRow, fromCol, toRow, toCol int) game.Move {
	return game.Move{From: game.Coord{Row: fromRow, Col: fromCol}, To: game.Coord{Row: toRow, Col: toCol}}
}

// endgame returns a session with the king alone on the top edge and defenders to move.
func endgame(t *testing.T, blindMoves int) *Session {
	t.Helper()
	b := game.NewEmptyBoard()
	b.Set(game.Coord{Row: 0, Col: 4}, game.King)
	b.Set(game.Coord{Row: 8, Col: 4}, game.Attacker)
	s := NewSession(game.DefaultRules())
	require.NoError(t, s.Restore(game.Snapshot{
		Board:      b.Grid(),
		SideToMove: int(game.Defenders),
		BlindMoves: blindMoves,
	}))
	drain(s)
	return s
}

func drain(s *Session) {
	for {
		select {
		case <-s.Updates():
		default:
			return
		}
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession(game.DefaultRules())

	require.NotEmpty(t, s.ID)
	require.NotEqual(t, s.ID, NewSession(game.DefaultRules()).ID, "Sessions should get distinct IDs")

	status := s.Status()
	require.Equal(t, game.Attackers, status.SideToMove, "Attackers open the game")
	require.False(t, status.Over)
	require.Zero(t, status.Position)
	require.Equal(t, game.NewBoard().Grid(), s.Referee().Board().Grid())
}

func TestPlay(t *testing.T) {
	t.Run("a legal move flips the side and is published", func(t *testing.T) {
		s := NewSession(game.DefaultRules())

		captured, err := s.Play(move(0, 3, 2, 3))

		require.NoError(t, err)
		require.Empty(t, captured)
		require.Equal(t, game.Defenders, s.SideToMove())
		require.Equal(t, 1, s.Status().BlindMoves)

		u := <-s.Updates()
		require.Equal(t, move(0, 3, 2, 3), u.Move)
		require.Equal(t, game.Attackers, u.Side)
		require.Equal(t, 1, u.Status.Position)
	})

	t.Run("rejected moves leave the game untouched", func(t *testing.T) {
		s := NewSession(game.DefaultRules())
		before := s.Snapshot()

		_, err := s.Play(move(2, 4, 2, 1))
		require.ErrorIs(t, err, ErrNotYourPiece)
		_, err = s.Play(move(1, 1, 1, 2))
		require.ErrorIs(t, err, game.ErrEmptyOrigin)
		_, err = s.Play(move(0, 3, 5, 3))
		require.ErrorIs(t, err, game.ErrIllegalMove)
		_, err = s.Play(move(0, 3, -1, 3))
		require.ErrorIs(t, err, game.ErrInvalidCoordinate)

		require.Equal(t, before, s.Snapshot())
		require.Empty(t, s.Updates())
	})

	t.Run("a king reaching a corner ends the game", func(t *testing.T) {
		s := endgame(t, 0)

		_, err := s.Play(move(0, 4, 0, 8))
		require.NoError(t, err)

		status := s.Status()
		require.True(t, status.Over)
		require.Equal(t, game.Defenders, status.Winner)
		require.Equal(t, KingEscaped, status.Reason)

		_, err = s.Play(move(8, 4, 7, 4))
		require.ErrorIs(t, err, ErrGameOver)
	})

	t.Run("the blind move limit draws the game", func(t *testing.T) {
		s := endgame(t, game.BlindMovesLimit-1)

		_, err := s.Play(move(0, 4, 1, 4))
		require.NoError(t, err)

		status := s.Status()
		require.True(t, status.Over)
		require.True(t, status.Draw)
		require.Zero(t, status.Winner)
		require.Equal(t, BlindMoves, status.Reason)
	})

	t.Run("resigning hands the win to the opponent", func(t *testing.T) {
		s := NewSession(game.DefaultRules())

		require.NoError(t, s.Resign(game.Attackers))

		status := s.Status()
		require.Equal(t, game.Defenders, status.Winner)
		require.Equal(t, Resigned, status.Reason)
		require.ErrorIs(t, s.Resign(game.Defenders), ErrGameOver)
	})
}

func TestUndoRedo(t *testing.T) {
	t.Run("undo on a fresh game fails", func(t *testing.T) {
		s := NewSession(game.DefaultRules())

		require.ErrorIs(t, s.Undo(), history.ErrEmptyHistory)
		require.ErrorIs(t, s.Redo(), history.ErrEmptyHistory)
	})

	t.Run("undo followed by redo restores the exact position", func(t *testing.T) {
		s := NewSession(game.DefaultRules())
		_, err := s.Play(move(0, 3, 2, 3))
		require.NoError(t, err)
		_, err = s.Play(move(2, 4, 2, 7))
		require.NoError(t, err)
		grid := s.Referee().Board().Grid()
		blind := s.Status().BlindMoves

		require.NoError(t, s.Undo())
		require.Equal(t, game.Defenders, s.SideToMove())
		require.Equal(t, 1, s.Status().BlindMoves)

		require.NoError(t, s.Redo())
		require.Equal(t, grid, s.Referee().Board().Grid())
		require.Equal(t, blind, s.Status().BlindMoves)
		require.Equal(t, game.Attackers, s.SideToMove())
	})

	t.Run("undo reopens a finished game", func(t *testing.T) {
		s := endgame(t, 0)
		_, err := s.Play(move(0, 4, 0, 8))
		require.NoError(t, err)

		require.NoError(t, s.Undo())

		require.False(t, s.Status().Over)
		require.Equal(t, game.Defenders, s.SideToMove())
		_, err = s.Play(move(0, 4, 0, 0))
		require.NoError(t, err)
	})

	t.Run("the returned history does not share boards with the session", func(t *testing.T) {
		s := NewSession(game.DefaultRules())
		_, err := s.Play(move(0, 3, 2, 3))
		require.NoError(t, err)

		copied := s.History().UndoItems()
		copied[0].Board.Set(game.Coord{Row: 4, Col: 4}, game.Empty)

		require.NoError(t, s.Undo())
		require.Equal(t, game.NewBoard().Grid(), s.Referee().Board().Grid())
	})

	t.Run("a new move discards the undone ones", func(t *testing.T) {
		s := NewSession(game.DefaultRules())
		_, err := s.Play(move(0, 3, 2, 3))
		require.NoError(t, err)
		require.NoError(t, s.Undo())

		_, err = s.Play(move(0, 5, 2, 5))
		require.NoError(t, err)

		require.Equal(t, 1, s.Status().Moves)
		require.ErrorIs(t, s.Redo(), history.ErrEmptyHistory)
	})
}

func TestJumpTo(t *testing.T) {
	play := func(t *testing.T) *Session {
		s := NewSession(game.DefaultRules())
		for _, m := range []game.Move{move(0, 3, 2, 3), move(2, 4, 2, 7), move(0, 5, 1, 5)} {
			_, err := s.Play(m)
			require.NoError(t, err)
		}
		return s
	}

	t.Run("jumps back to the start and forward again", func(t *testing.T) {
		s := play(t)
		end := s.Referee().Board().Grid()

		require.NoError(t, s.JumpTo(0))
		require.Equal(t, game.NewBoard().Grid(), s.Referee().Board().Grid())
		require.Equal(t, game.Attackers, s.SideToMove())
		require.Zero(t, s.Status().BlindMoves)

		require.NoError(t, s.JumpTo(3))
		require.Equal(t, end, s.Referee().Board().Grid())
		require.Equal(t, game.Defenders, s.SideToMove())
		require.Equal(t, 3, s.Status().BlindMoves)
	})

	t.Run("rejects positions outside the history", func(t *testing.T) {
		s := play(t)

		require.ErrorIs(t, s.JumpTo(4), history.ErrIndexOutOfRange)
		require.Equal(t, 3, s.Status().Position)
	})

	t.Run("timeline marks undone moves", func(t *testing.T) {
		s := play(t)
		require.NoError(t, s.JumpTo(1))

		timeline := s.Timeline()

		require.Len(t, timeline, 3)
		require.Equal(t, TimelineEntry{Position: 1, Side: game.Attackers, Move: move(0, 3, 2, 3), Played: true}, timeline[0])
		require.Equal(t, TimelineEntry{Position: 2, Side: game.Defenders, Move: move(2, 4, 2, 7)}, timeline[1])
		require.Equal(t, TimelineEntry{Position: 3, Side: game.Attackers, Move: move(0, 5, 1, 5)}, timeline[2])
	})
}

func TestSnapshotRestore(t *testing.T) {
	t.Run("a restored session continues where the saved one stopped", func(t *testing.T) {
		s := NewSession(game.DefaultRules())
		_, err := s.Play(move(0, 3, 2, 3))
		require.NoError(t, err)
		_, err = s.Play(move(2, 4, 2, 7))
		require.NoError(t, err)
		require.NoError(t, s.Undo())

		data, err := game.EncodeSnapshot(s.Snapshot())
		require.NoError(t, err)
		snap, err := game.DecodeSnapshot(data)
		require.NoError(t, err)

		restored := NewSession(game.DefaultRules())
		require.NoError(t, restored.Restore(snap))

		require.Equal(t, s.Referee().Board().Grid(), restored.Referee().Board().Grid())
		require.Equal(t, s.SideToMove(), restored.SideToMove())
		require.Equal(t, s.Timeline(), restored.Timeline())

		require.NoError(t, restored.Redo())
		require.NoError(t, s.Redo())
		require.Equal(t, s.Referee().Board().Grid(), restored.Referee().Board().Grid())
	})

	t.Run("an invalid snapshot is rejected without touching the session", func(t *testing.T) {
		s := NewSession(game.DefaultRules())
		before := s.Snapshot()

		err := s.Restore(game.Snapshot{Board: [][]int{{1, 2}}, SideToMove: int(game.Attackers)})

		require.ErrorIs(t, err, game.ErrInvalidSnapshot)
		require.Equal(t, before, s.Snapshot())
	})
}

func TestClose(t *testing.T) {
	s := NewSession(game.DefaultRules())
	s.Close()
	s.Close()

	_, err := s.Play(move(0, 3, 2, 3))
	require.NoError(t, err, "Playing after close still works, it just publishes nothing")

	_, open := <-s.Updates()
	require.False(t, open)
}
