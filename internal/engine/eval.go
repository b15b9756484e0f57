// Package engine implements the search and evaluation on top of the board
// representation.
package engine

import (
	"math/rand"

	"github.com/davrk/ocelot/internal/board"
)

// tieBreak is the half-width of the uniform random offset added to every
// static evaluation. It diversifies play among materially equal moves while
// staying far below the value of a pawn.
const tieBreak = 5

// Evaluate returns the static evaluation of a position in centipawns from
// white's perspective: material balance plus a random tie-break in
// [-tieBreak, tieBreak].
func Evaluate(pos *board.Position) int {
	return pos.Material() + rand.Intn(2*tieBreak+1) - tieBreak
}
