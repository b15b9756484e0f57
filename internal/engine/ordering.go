package engine

import "github.com/davrk/ocelot/internal/board"

// Move ordering: captures are scored MVV-LVA (most valuable victim first,
// least valuable attacker breaking ties), promotions add the promoted piece's
// value, quiet moves score zero.

// scoreMove returns the cheap ordering heuristic for a single move.
func scoreMove(pos *board.Position, m board.Move) int {
	score := 0

	if m.IsCapture(pos) {
		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			victim = pos.PieceAt(m.To()).Type()
		}
		attacker := pos.PieceAt(m.From()).Type()
		score += 10*board.PieceValue[victim] - board.PieceValue[attacker]
	}

	if m.IsPromotion() {
		score += board.PieceValue[m.Promotion()]
	}

	return score
}

// scoreMoves assigns ordering scores to every move in the list.
func scoreMoves(pos *board.Position, moves *board.MoveList) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = scoreMove(pos, moves.Get(i))
	}
	return scores
}

// sortMoves sorts moves by their scores, best first.
// Selection sort is sufficient for ~40 moves.
func sortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// sortedLegalMoves generates the legal moves for the position, best-first by
// the ordering heuristic.
func sortedLegalMoves(pos *board.Position) *board.MoveList {
	moves := pos.GenerateLegalMoves()
	sortMoves(moves, scoreMoves(pos, moves))
	return moves
}
