package engine

import (
	"sync/atomic"

	"github.com/davrk/ocelot/internal/board"
)

// Search constants. The mate sentinels are finite so that the ply offsets
// added below never overflow.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 64
)

// Searcher performs the fixed-depth alpha-beta search.
type Searcher struct {
	nodes    uint64
	stopFlag atomic.Bool
}

// NewSearcher creates a new searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

// Stop signals the search to stop. The flag is polled between root moves
// only; the recursion below it always runs to completion.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Reset resets the searcher for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
}

// Nodes returns the number of nodes visited.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search returns the best move at the given depth together with its score
// from white's perspective. The caller must not invoke it on a terminal
// position; with no legal moves it returns NoMove.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	moves := sortedLegalMoves(pos)
	if moves.Len() == 0 {
		return board.NoMove, 0
	}

	white := pos.SideToMove == board.White
	bestMove := moves.Get(0)
	bestScore := Infinity + 1
	if white {
		bestScore = -(Infinity + 1)
	}

	for i := 0; i < moves.Len(); i++ {
		if s.stopFlag.Load() {
			break
		}

		m := moves.Get(i)
		undo := pos.MakeMove(m)
		score := s.alphaBeta(pos, depth-1, -Infinity, Infinity, 1)
		pos.UnmakeMove(m, undo)

		if (white && score > bestScore) || (!white && score < bestScore) {
			bestScore = score
			bestMove = m
		}
	}

	return bestMove, bestScore
}

// alphaBeta is minimax with alpha-beta pruning from white's perspective:
// white maximizes, black minimizes. Bounds are always passed through as
// alpha/beta; the running best only tightens its own side's bound.
func (s *Searcher) alphaBeta(pos *board.Position, depth, alpha, beta, ply int) int {
	s.nodes++

	if depth == 0 {
		return Evaluate(pos)
	}

	moves := sortedLegalMoves(pos)
	if moves.Len() == 0 {
		if pos.InCheck() {
			// Mated; deeper mates score closer to zero so the search
			// prefers the shortest one.
			if pos.SideToMove == board.White {
				return -(MateScore - ply)
			}
			return MateScore - ply
		}
		return 0 // stalemate
	}

	if pos.SideToMove == board.White {
		best := -Infinity
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := pos.MakeMove(m)
			score := s.alphaBeta(pos, depth-1, alpha, beta, ply+1)
			pos.UnmakeMove(m, undo)

			if score > best {
				best = score
			}
			if best >= beta {
				return best
			}
			if best > alpha {
				alpha = best
			}
		}
		return best
	}

	best := Infinity
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		score := s.alphaBeta(pos, depth-1, alpha, beta, ply+1)
		pos.UnmakeMove(m, undo)

		if score < best {
			best = score
		}
		if best <= alpha {
			return best
		}
		if best < beta {
			beta = best
		}
	}
	return best
}
