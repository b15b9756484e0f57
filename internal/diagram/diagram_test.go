package diagram

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davrk/ocelot/internal/board"
)

func TestWriteStartingPosition(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, board.NewPosition())
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatal("output is not an SVG document")
	}
	if got := strings.Count(out, "<rect"); got != 64 {
		t.Errorf("%d rect elements, want 64 squares", got)
	}

	// All six white glyphs and the black king appear at the start.
	for _, glyph := range []string{"♔", "♕", "♖", "♗", "♘", "♙", "♚"} {
		if !strings.Contains(out, glyph) {
			t.Errorf("missing piece glyph %s", glyph)
		}
	}

	// 32 pieces plus 8 file labels and 8 rank labels.
	if got := strings.Count(out, "<text"); got != 48 {
		t.Errorf("%d text elements, want 48", got)
	}
}

func TestWriteFile(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "kings.svg")
	if err := WriteFile(path, pos); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "♔") || !strings.Contains(out, "♚") {
		t.Error("kings missing from the rendered diagram")
	}
	if strings.Contains(out, "♙") || strings.Contains(out, "♟") {
		t.Error("unexpected pawns in a kings-only diagram")
	}
}
