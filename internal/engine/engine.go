package engine

import (
	"time"

	"github.com/davrk/ocelot/internal/board"
)

// DefaultDepth is the search depth used when the caller gives no limit.
const DefaultDepth = 5

// SearchInfo describes one completed search iteration.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	Best  board.Move
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = DefaultDepth)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
}

// Engine drives the searcher: iterative deepening with a stop flag and an
// optional deadline. The deadline is checked only between whole iterations;
// the stop flag is polled between root moves, and an iteration it cuts short
// is discarded. The alpha-beta recursion below the root always runs to
// completion.
type Engine struct {
	searcher *Searcher

	// OnInfo, when set, is called after every completed iteration.
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine.
func NewEngine() *Engine {
	return &Engine{searcher: NewSearcher()}
}

// Search finds the best move for the position at the default depth.
func (e *Engine) Search(pos *board.Position) board.Move {
	return e.SearchWithLimits(pos, SearchLimits{Depth: DefaultDepth})
}

// SearchWithLimits finds the best move under the given limits.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	e.searcher.Reset()

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = DefaultDepth
	}
	if limits.Infinite {
		maxDepth = MaxPly
	}

	startTime := time.Now()
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	var bestMove board.Move
	for depth := 1; depth <= maxDepth; depth++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		move, score := e.searcher.Search(pos, depth)

		// A stopped iteration may have skipped root moves; keep the
		// previous complete result.
		if e.searcher.IsStopped() {
			break
		}
		if move != board.NoMove {
			bestMove = move
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: depth,
				Score: score,
				Nodes: e.searcher.Nodes(),
				Time:  time.Since(startTime),
				Best:  bestMove,
			})
		}

		// A forced mate does not improve with depth.
		if score > MateScore-MaxPly || score < -(MateScore-MaxPly) {
			break
		}
	}

	return bestMove
}

// Stop stops the current search at the next root-move boundary.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Nodes returns the node count of the last search.
func (e *Engine) Nodes() uint64 {
	return e.searcher.Nodes()
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// Perft counts leaf nodes of the legal move tree (for verifying move
// generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}
