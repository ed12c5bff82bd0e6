package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tablut/experiments/metrics"
	"tablut/game"
	"tablut/searcher"

	"golang.org/x/exp/rand"
)

const (
	MinDifficulty = 0
	MaxDifficulty = 3
)

// Hint carries what the caller knows about the game beyond the position itself.
type Hint struct {
	Disfavored *game.Move // Move that would continue a repetition
	Strength   int        // Consecutive turns the repetition has persisted, from 0
}

type Agent interface {
	// FindMove returns a move for side and performance metrics (if collected) from the search
	FindMove(ctx context.Context, r *game.Referee, side game.Side, hint Hint) (game.Move, metrics.SearchMetric, error)
}

// DepthForDifficulty maps a difficulty level to a search depth in plies,
// clamping levels outside [MinDifficulty, MaxDifficulty].
func DepthForDifficulty(difficulty int) int {
	if difficulty < MinDifficulty {
		difficulty = MinDifficulty
	} else if difficulty > MaxDifficulty {
		difficulty = MaxDifficulty
	}
	return difficulty + 1
}

type searchAgent struct {
	depth   int
	options []searcher.Option
}

// NewSearchAgent returns an agent running alpha-beta to a fixed depth.
func NewSearchAgent(depth int, options ...searcher.Option) Agent {
	return searchAgent{depth: depth, options: options}
}

// NewDifficultyAgent returns a search agent for a difficulty level with metrics enabled.
func NewDifficultyAgent(difficulty int, options ...searcher.Option) Agent {
	options = append([]searcher.Option{searcher.WithMetrics()}, options...)
	return NewSearchAgent(DepthForDifficulty(difficulty), options...)
}

func (a searchAgent) FindMove(ctx context.Context, r *game.Referee, side game.Side, hint Hint) (game.Move, metrics.SearchMetric, error) {
	options := a.options
	if hint.Disfavored != nil {
		options = append(append([]searcher.Option(nil), a.options...), searcher.WithDisfavored(*hint.Disfavored, hint.Strength))
	}
	result, err := searcher.Search(ctx, r, side, a.depth, options...)
	if err != nil {
		return game.Move{}, metrics.SearchMetric{}, err
	}
	return result.Move, result.Metric, nil
}

type randomAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAgent returns an agent playing uniformly random legal moves.
func NewRandomAgent(seed uint64) Agent {
	return &randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(ctx context.Context, r *game.Referee, side game.Side, hint Hint) (game.Move, metrics.SearchMetric, error) {
	if err := ctx.Err(); err != nil {
		return game.Move{}, metrics.SearchMetric{}, err
	}
	start := time.Now()
	moves := r.LegalMoves(side)
	if len(moves) == 0 {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: %s", searcher.ErrNoLegalMoves, side)
	}

	a.mu.Lock()
	move := moves[a.rng.Intn(len(moves))]
	a.mu.Unlock()

	return move, metrics.SearchMetric{Duration: time.Since(start)}, nil
}
