package engine

import (
	"context"

	"tablut/experiments/metrics"
	"tablut/game"
	"tablut/gamemaster"
)

// TurnLimit is the reason reported when a game is stopped at the turn limit.
const TurnLimit gamemaster.Reason = "turn limit"

type Result struct {
	Winner game.Side // Zero for a draw or an unfinished game
	Draw   bool
	Reason gamemaster.Reason
	Turns  int
	Game   metrics.GameMetric
	Moves  []metrics.MoveMetric
}

type Runner interface {
	// Run plays a game till there's a winner, a draw, or a max number of turns is reached
	Run(ctx context.Context) (Result, error)
}
