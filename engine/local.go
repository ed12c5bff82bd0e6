package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tablut/experiments/metrics"
	"tablut/game"
	"tablut/gamemaster"
	"tablut/history"
	"tablut/meta"
	"tablut/searcher"
	"tablut/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Player pairs an agent with its difficulty. Difficulty only decides which
// side gives way when the game starts repeating itself.
type Player struct {
	Agent      agent.Agent
	Difficulty int
}

type Option func(e *Engine)

// Engine plays a game between two agents on a local session.
type Engine struct {
	session  *gamemaster.Session
	players  map[game.Side]Player
	maxTurns int
	strength int // Consecutive oscillating turns minus one, -1 while play is not repeating
}

func WithMaxTurns(turns int) Option {
	return func(e *Engine) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithSession plays on an existing session instead of a fresh one.
func WithSession(session *gamemaster.Session) Option {
	return func(e *Engine) {
		if session != nil {
			e.session = session
		}
	}
}

func LocalEngine(attacker, defender Player, rules game.Rules, options ...Option) *Engine {
	if attacker.Agent == nil || defender.Agent == nil {
		panic("both sides need an agent")
	}
	e := &Engine{ // Default values
		players:  map[game.Side]Player{game.Attackers: attacker, game.Defenders: defender},
		maxTurns: meta.MAX_TURNS,
		strength: -1,
	}
	for _, option := range options {
		option(e)
	}
	if e.session == nil {
		e.session = gamemaster.NewSession(rules)
	}
	return e
}

func (e *Engine) Session() *gamemaster.Session {
	return e.session
}

// Run executes the entire game loop until the game is decided or the turn limit is hit.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var moveMetrics []metrics.MoveMetric

	log.Info().Str("session", e.session.ID).Msgf("%s are starting", e.session.SideToMove())

	turn := 1
	for ; turn <= e.maxTurns && !e.session.Status().Over; turn++ {
		side := e.session.SideToMove()
		player := e.players[side]
		hint := e.hint(side)

		outcome, err := e.await(ctx, ComputeAsync(ctx, player.Agent, e.session.Referee(), side, hint))
		if err != nil {
			return Result{}, err
		}
		if outcome.Err != nil {
			if errors.Is(outcome.Err, searcher.ErrNoLegalMoves) {
				log.Info().Str("session", e.session.ID).Msgf("%s have no legal moves", side)
				if err := e.session.Concede(side, gamemaster.NoMoves); err != nil {
					return Result{}, err
				}
				break
			}
			return Result{}, fmt.Errorf("turn %d: %w", turn, outcome.Err)
		}

		captured, err := e.session.Play(outcome.Move)
		if err != nil {
			return Result{}, fmt.Errorf("turn %d: agent for %s played %v: %w", turn, side, outcome.Move, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         turn,
			Side:         int(side),
			Move:         outcome.Move.String(),
			SearchMetric: outcome.Metric,
		})
		log.Debug().
			Str("session", e.session.ID).
			Int("turn", turn).
			Stringer("side", side).
			Stringer("move", outcome.Move).
			Int("captured", len(captured)).
			Dur("duration", outcome.Metric.Duration).
			Msg("turn played")
	}

	status := e.session.Status()
	result := Result{
		Winner: status.Winner,
		Draw:   status.Draw,
		Reason: status.Reason,
		Turns:  status.Position,
		Moves:  moveMetrics,
	}
	if !status.Over {
		result.Reason = TurnLimit
		log.Info().Str("session", e.session.ID).Msgf("stopped after %d turns (no winner yet)", e.maxTurns)
	} else if status.Draw {
		log.Info().Str("session", e.session.ID).Msgf("game drawn: %s", status.Reason)
	} else {
		log.Info().Str("session", e.session.ID).Msgf("game ended, %s won: %s", status.Winner, status.Reason)
	}

	end := time.Now()
	result.Game = metrics.GameMetric{
		Winner:     int(status.Winner),
		Reason:     string(result.Reason),
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
		TotalMoves: status.Position,
	}
	return result, nil
}

// hint flags the move that would continue a back and forth shuffle. Only a side
// no stronger than its opponent gives way, and the longer the shuffle lasts the
// harder that move is penalised.
func (e *Engine) hint(side game.Side) agent.Hint {
	h := e.session.History()
	if !h.DetectOscillation(history.OscillationWindow, history.OscillationStride) {
		e.strength = -1
		return agent.Hint{}
	}
	move, ok := h.Disfavored(history.OscillationWindow)
	if !ok {
		e.strength = -1
		return agent.Hint{}
	}
	me, opponent := e.players[side], e.players[side.Opponent()]
	if me.Difficulty > opponent.Difficulty {
		return agent.Hint{}
	}
	e.strength++
	log.Debug().Str("session", e.session.ID).Stringer("side", side).Stringer("disfavored", move).Int("strength", e.strength).Msg("moves are oscillating")
	return agent.Hint{Disfavored: &move, Strength: e.strength}
}

func (e *Engine) await(ctx context.Context, outcomes <-chan Outcome) (Outcome, error) {
	select {
	case outcome := <-outcomes:
		return outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
