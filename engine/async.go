package engine

import (
	"context"

	"tablut/experiments/metrics"
	"tablut/game"
	"tablut/searcher/agent"
)

// Outcome is the result of a move computation.
type Outcome struct {
	Move   game.Move
	Metric metrics.SearchMetric
	Err    error
}

// ComputeAsync finds a move on a worker goroutine. The referee must not be
// touched by anyone else until the outcome arrives. The channel is buffered so
// a caller that gives up early does not leak the worker.
func ComputeAsync(ctx context.Context, a agent.Agent, r *game.Referee, side game.Side, hint agent.Hint) <-chan Outcome {
	outcomes := make(chan Outcome, 1)
	go func() {
		defer close(outcomes)
		move, metric, err := a.FindMove(ctx, r, side, hint)
		outcomes <- Outcome{Move: move, Metric: metric, Err: err}
	}()
	return outcomes
}
