package game

const (
	materialScale  = 5
	defenderWeight = AttackersCount / DefendersCount // Defenders start with half as many pieces
)

// EvaluateMaterial tallies the live pieces of both sides, weighting defenders so
// the starting position is balanced, and scales the difference.
func EvaluateMaterial(r *Referee, side Side) int {
	attackers := r.board.CountCells(Attacker)
	defenders := r.board.CountCells(Defender) * defenderWeight

	score := (attackers - defenders) * materialScale
	if side == Defenders {
		return -score
	}
	return score
}
