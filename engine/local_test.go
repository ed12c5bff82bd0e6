package engine

import (
	"context"
	"fmt"
	"testing"

	"tablut/experiments/metrics"
	"tablut/game"
	"tablut/gamemaster"
	"tablut/meta"
	"tablut/searcher"
	"tablut/searcher/agent"

	"github.com/stretchr/testify/require"
)

// shuttleAgent moves the piece found on one of two squares to the other one and
// remembers the hints it was given.
type shuttleAgent struct {
	a, b  game.Coord
	hints []agent.Hint
}

func (s *shuttleAgent) FindMove(ctx context.Context, r *game.Referee, side game.Side, hint agent.Hint) (game.Move, metrics.SearchMetric, error) {
	s.hints = append(s.hints, hint)
	if r.Board().IsEmpty(s.a) {
		return game.Move{From: s.b, To: s.a}, metrics.SearchMetric{}, nil
	}
	return game.Move{From: s.a, To: s.b}, metrics.SearchMetric{}, nil
}

type stuckAgent struct{}

func (stuckAgent) FindMove(ctx context.Context, r *game.Referee, side game.Side, hint agent.Hint) (game.Move, metrics.SearchMetric, error) {
	return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: %s", searcher.ErrNoLegalMoves, side)
}

func coord(row, col int) game.Coord {
	return game.Coord{Row: row, Col: col}
}

func sessionWith(t *testing.T, side game.Side, pieces map[game.Coord]game.Cell) *gamemaster.Session {
	t.Helper()
	b := game.NewEmptyBoard()
	for c, v := range pieces {
		b.Set(c, v)
	}
	s := gamemaster.NewSession(game.DefaultRules())
	require.NoError(t, s.Restore(game.Snapshot{Board: b.Grid(), SideToMove: int(side)}))
	return s
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("random agents play to a result or the turn limit", func(t *testing.T) {
		e := LocalEngine(
			Player{Agent: agent.NewRandomAgent(1)},
			Player{Agent: agent.NewRandomAgent(2)},
			game.DefaultRules(),
			WithMaxTurns(40),
		)

		result, err := e.Run(ctx)

		require.NoError(t, err)
		require.LessOrEqual(t, result.Turns, 40)
		require.Len(t, result.Moves, result.Turns)
		if !e.Session().Status().Over {
			require.Equal(t, TurnLimit, result.Reason)
		}
		for i, m := range result.Moves {
			require.Equal(t, i+1, m.Step)
		}
		require.Equal(t, result.Turns, result.Game.TotalMoves)
	})

	t.Run("a search agent finishes off the king", func(t *testing.T) {
		s := sessionWith(t, game.Attackers, map[game.Coord]game.Cell{
			coord(3, 4): game.Attacker,
			coord(4, 3): game.Attacker,
			coord(4, 4): game.King,
			coord(4, 5): game.Attacker,
			coord(5, 7): game.Attacker,
		})
		e := LocalEngine(
			Player{Agent: agent.NewDifficultyAgent(1), Difficulty: 1},
			Player{Agent: agent.NewRandomAgent(3)},
			game.DefaultRules(),
			WithSession(s),
		)

		result, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Attackers, result.Winner)
		require.Equal(t, gamemaster.KingCaptured, result.Reason)
		require.Equal(t, 1, result.Turns)
		require.Equal(t, "5|7 -> 5|4", result.Moves[0].Move)
		require.Equal(t, 2, result.Moves[0].Depth)
	})

	t.Run("a side without pieces to move loses", func(t *testing.T) {
		s := sessionWith(t, game.Attackers, map[game.Coord]game.Cell{
			coord(4, 4): game.King,
		})
		e := LocalEngine(
			Player{Agent: agent.NewRandomAgent(1)},
			Player{Agent: agent.NewRandomAgent(2)},
			game.DefaultRules(),
			WithSession(s),
		)

		result, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Defenders, result.Winner)
		require.Equal(t, gamemaster.NoMoves, result.Reason)
		require.Zero(t, result.Turns)
	})

	t.Run("an agent reporting no moves concedes", func(t *testing.T) {
		e := LocalEngine(
			Player{Agent: stuckAgent{}},
			Player{Agent: agent.NewRandomAgent(2)},
			game.DefaultRules(),
		)

		result, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, game.Defenders, result.Winner)
		require.Equal(t, gamemaster.NoMoves, result.Reason)
	})

	t.Run("a cancelled context aborts the game", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		e := LocalEngine(
			Player{Agent: agent.NewDifficultyAgent(0)},
			Player{Agent: agent.NewDifficultyAgent(0)},
			game.DefaultRules(),
		)

		_, err := e.Run(cancelled)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestOscillationHint(t *testing.T) {
	ctx := context.Background()
	pieces := map[game.Coord]game.Cell{
		coord(6, 6): game.Attacker,
		coord(2, 2): game.King,
	}
	forth := game.Move{From: coord(6, 6), To: coord(7, 6)}
	kingForth := game.Move{From: coord(2, 2), To: coord(2, 3)}

	t.Run("evenly matched sides are told to break the cycle", func(t *testing.T) {
		attacker := &shuttleAgent{a: coord(6, 6), b: coord(7, 6)}
		defender := &shuttleAgent{a: coord(2, 2), b: coord(2, 3)}
		e := LocalEngine(
			Player{Agent: attacker, Difficulty: 1},
			Player{Agent: defender, Difficulty: 1},
			game.DefaultRules(),
			WithSession(sessionWith(t, game.Attackers, pieces)),
			WithMaxTurns(8),
		)

		_, err := e.Run(ctx)
		require.NoError(t, err)

		// Turns 1 to 4 set up the shuttle, turn 5 is the first repetition
		require.Len(t, attacker.hints, 4)
		require.Nil(t, attacker.hints[0].Disfavored)
		require.Nil(t, attacker.hints[1].Disfavored)
		require.NotNil(t, attacker.hints[2].Disfavored)
		require.Equal(t, forth, *attacker.hints[2].Disfavored)
		require.Equal(t, 0, attacker.hints[2].Strength)

		require.NotNil(t, defender.hints[2].Disfavored)
		require.Equal(t, kingForth, *defender.hints[2].Disfavored)
		require.Equal(t, 1, defender.hints[2].Strength, "Strength escalates while the cycle persists")
		require.Equal(t, 2, attacker.hints[3].Strength)
	})

	t.Run("the stronger side does not give way", func(t *testing.T) {
		attacker := &shuttleAgent{a: coord(6, 6), b: coord(7, 6)}
		defender := &shuttleAgent{a: coord(2, 2), b: coord(2, 3)}
		e := LocalEngine(
			Player{Agent: attacker, Difficulty: 3},
			Player{Agent: defender, Difficulty: 1},
			game.DefaultRules(),
			WithSession(sessionWith(t, game.Attackers, pieces)),
			WithMaxTurns(10),
		)

		_, err := e.Run(ctx)
		require.NoError(t, err)

		for _, hint := range attacker.hints {
			require.Nil(t, hint.Disfavored)
		}
		require.Len(t, defender.hints, 5)
		require.NotNil(t, defender.hints[2].Disfavored)
		require.Equal(t, 0, defender.hints[2].Strength)
		require.Equal(t, 1, defender.hints[3].Strength)
		require.Equal(t, 2, defender.hints[4].Strength, "The weaker side is pushed harder while the cycle persists")
		require.Greater(t, defender.hints[4].Strength, defender.hints[2].Strength)
	})
}

func TestLocalEngine(t *testing.T) {
	players := func() (Player, Player) {
		return Player{Agent: agent.NewRandomAgent(1)}, Player{Agent: agent.NewRandomAgent(2)}
	}

	t.Run("the turn limit defaults to the configured one", func(t *testing.T) {
		attacker, defender := players()
		e := LocalEngine(attacker, defender, game.DefaultRules())
		require.Equal(t, meta.MAX_TURNS, e.maxTurns)
	})

	t.Run("non-positive limits keep the default", func(t *testing.T) {
		attacker, defender := players()
		e := LocalEngine(attacker, defender, game.DefaultRules(), WithMaxTurns(0))
		require.Equal(t, meta.MAX_TURNS, e.maxTurns)
	})
}

func TestComputeAsync(t *testing.T) {
	r := game.NewReferee(game.NewBoard(), game.DefaultRules())

	outcome := <-ComputeAsync(context.Background(), agent.NewDifficultyAgent(0), r.Clone(), game.Attackers, agent.Hint{})

	require.NoError(t, outcome.Err)
	legal, err := r.IsLegal(outcome.Move.From, outcome.Move.To)
	require.NoError(t, err)
	require.True(t, legal)
	require.Equal(t, 1, outcome.Metric.Depth)
}
