package searcher

import (
	"errors"

	"tablut/game"
)

const (
	Max = 100 // Score of a won position
	Lot = 90  // Scores beyond this are treated as forced wins or losses
)

var ErrNoLegalMoves = errors.New("side to move has no legal moves")

// Score rates a position for side. Decided games score Max or -Max, a king
// boxed in on all four sides is a near win for the attackers, anything else is
// left to evaluate.
func Score(r *game.Referee, side game.Side, evaluate game.Evaluate) int {
	if r.IsSideWinner(side) {
		return Max
	}
	if r.IsSideWinner(side.Opponent()) {
		return -Max
	}
	if r.IsKingSurrounded() {
		if side == game.Attackers {
			return Lot
		}
		return -Lot
	}
	return evaluate(r, side)
}

// further pushes a decisive score one step away from zero on the way down the tree.
func further(score int) int {
	if score > Lot {
		return score + 1
	} else if score < -Lot {
		return score - 1
	}
	return score
}

// closer pulls a decisive score one step towards zero on the way back up, so
// quicker wins and slower losses score higher.
func closer(score int) int {
	if score > Lot {
		return score - 1
	} else if score < -Lot {
		return score + 1
	}
	return score
}
