// Package diagram renders chess positions as SVG board diagrams.
package diagram

import (
	"io"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/davrk/ocelot/internal/board"
)

const (
	squareSize = 60
	margin     = 24
	boardSize  = 8 * squareSize
)

// Square and piece colors
const (
	lightFill = "fill:#f0d9b5"
	darkFill  = "fill:#b58863"
	labelText = "font-family:sans-serif;font-size:14px;fill:#444;text-anchor:middle"
	pieceText = "font-family:sans-serif;font-size:44px;text-anchor:middle"
)

// Unicode chess glyphs, indexed like board.Piece (white first, then black).
var glyphs = [12]string{"♙", "♘", "♗", "♖", "♕", "♔", "♟", "♞", "♝", "♜", "♛", "♚"}

// Write renders the position as an SVG document on w, drawn from white's
// point of view with rank and file labels.
func Write(w io.Writer, pos *board.Position) {
	canvas := svg.New(w)
	width := boardSize + 2*margin
	height := boardSize + 2*margin
	canvas.Start(width, height)

	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			x := margin + file*squareSize
			y := margin + (7-rank)*squareSize

			fill := darkFill
			if (file+rank)%2 == 1 {
				fill = lightFill
			}
			canvas.Rect(x, y, squareSize, squareSize, fill)

			piece := pos.PieceAt(board.NewSquare(file, rank))
			if piece != board.NoPiece {
				cx := x + squareSize/2
				cy := y + squareSize*3/4
				canvas.Text(cx, cy, glyphs[piece], pieceText)
			}
		}
	}

	// File letters below, rank digits on the left
	for file := 0; file < 8; file++ {
		cx := margin + file*squareSize + squareSize/2
		canvas.Text(cx, margin+boardSize+18, string(rune('a'+file)), labelText)
	}
	for rank := 0; rank < 8; rank++ {
		cy := margin + (7-rank)*squareSize + squareSize/2 + 5
		canvas.Text(margin/2, cy, string(rune('1'+rank)), labelText)
	}

	canvas.End()
}

// WriteFile renders the position into an SVG file at the given path.
func WriteFile(path string, pos *board.Position) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	Write(f, pos)
	return nil
}
