package searcher

import (
	"context"
	"fmt"

	"tablut/experiments/metrics"
	"tablut/game"
)

type Option func(s *search)

// Progress is reported once per evaluated root move.
type Progress struct {
	Move  game.Move
	Score int // After any repetition penalty
	Index int // Zero-based position among the root moves
	Total int
	Best  game.Move // Best move so far
}

// Result is the outcome of a search.
type Result struct {
	Move   game.Move
	Score  int
	Metric metrics.SearchMetric
}

type search struct {
	evaluate   game.Evaluate
	metrics    metrics.Collector
	progress   func(Progress)
	disfavored *game.Move
	penalty    int
}

// WithDisfavored marks a root move that would continue a repetition. Its score
// drops by strength+1, so it is only chosen when it stays strictly ahead.
func WithDisfavored(move game.Move, strength int) Option {
	return func(s *search) {
		if strength < 0 {
			strength = 0
		}
		m := move
		s.disfavored = &m
		s.penalty = strength + 1
	}
}

func WithProgress(progress func(Progress)) Option {
	return func(s *search) {
		if progress != nil {
			s.progress = progress
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *search) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(s *search) {
		s.metrics = metrics.NewCollector()
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(s *search) {
		if collector != nil {
			s.metrics = collector
		}
	}
}

// BestMove returns the best move for side searching depth plies, the root move included.
func BestMove(ctx context.Context, r *game.Referee, side game.Side, depth int, options ...Option) (game.Move, error) {
	result, err := Search(ctx, r, side, depth, options...)
	if err != nil {
		return game.Move{}, err
	}
	return result.Move, nil
}

// Search runs alpha-beta over clones of r and never touches r itself. Depth
// values below 1 are treated as 1. The context is only consulted before the
// search starts and once it has finished.
func Search(ctx context.Context, r *game.Referee, side game.Side, depth int, options ...Option) (Result, error) {
	s := &search{ // Default values
		evaluate: game.EvaluateMaterial,
		metrics:  metrics.NewDummyCollector(),
		progress: func(Progress) {},
	}
	for _, option := range options {
		option(s)
	}
	if depth < 1 {
		depth = 1
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	moves := r.LegalMoves(side)
	if len(moves) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoLegalMoves, side)
	}

	s.metrics.Start(depth)
	best, score := s.root(r, side, depth, moves)
	metric := s.metrics.Complete(score)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Move: best, Score: score, Metric: metric}, nil
}

func (s *search) isDisfavored(move game.Move) bool {
	return s.disfavored != nil && *s.disfavored == move
}

func (s *search) root(r *game.Referee, side game.Side, depth int, moves []game.Move) (game.Move, int) {
	alpha := -Max
	best := moves[0]
	// Fall back to a move that does not repeat when there is one
	if s.isDisfavored(best) && len(moves) > 1 {
		best = moves[1]
	}

	for i, move := range moves {
		child := r.Clone()
		child.Play(move.From, move.To, side)
		s.metrics.AddNode()

		score := closer(-s.negamax(child, side.Opponent(), depth-1, -Max, further(-alpha)))
		if s.isDisfavored(move) {
			score -= s.penalty
			s.metrics.SetDisfavored(true)
		}

		if score > alpha {
			alpha = score
			best = move
		}
		s.progress(Progress{Move: move, Score: score, Index: i, Total: len(moves), Best: best})
	}
	return best, alpha
}

func (s *search) negamax(r *game.Referee, side game.Side, depth, alpha, beta int) int {
	if r.IsSideWinner(side) {
		s.metrics.AddLeaf()
		return Max
	}
	if r.IsSideWinner(side.Opponent()) {
		s.metrics.AddLeaf()
		return -Max
	}
	if depth <= 0 {
		s.metrics.AddLeaf()
		return Score(r, side, s.evaluate)
	}

	moves := r.LegalMoves(side)
	if len(moves) == 0 {
		s.metrics.AddLeaf()
		return Score(r, side, s.evaluate)
	}

	for _, move := range moves {
		child := r.Clone()
		child.Play(move.From, move.To, side)
		s.metrics.AddNode()

		score := closer(-s.negamax(child, side.Opponent(), depth-1, further(-beta), further(-alpha)))
		if score > alpha {
			alpha = score
			if score >= beta {
				s.metrics.AddCutoff()
				return beta
			}
		}
	}
	return alpha
}
