package board

import "testing"

// perft counts the number of leaf nodes of the legal move tree at the given
// depth. This is the standard way to verify move generation correctness.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

func runPerft(t *testing.T, fen string, expected []int64) {
	t.Helper()

	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	for i, want := range expected {
		depth := i + 1
		got := perft(pos, depth)
		if got != want {
			t.Errorf("perft(%d) = %d, want %d", depth, got, want)
		}
	}
}

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	runPerft(t, StartFEN, []int64{
		20,
		400,
		8902,
		197281,
		// Depth 5 takes longer, enable for thorough testing:
		// 4865609,
	})
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases
// (castling both ways, en passant, promotions, pins).
func TestPerftKiwipete(t *testing.T) {
	runPerft(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", []int64{
		48,
		2039,
		97862,
		// 4085603, // Takes ~1s, enable for thorough testing
	})
}

// TestPerftPosition3 tests en passant and pin edge cases.
func TestPerftPosition3(t *testing.T) {
	runPerft(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []int64{
		14,
		191,
		2812,
		43238,
		// 674624, // Enable for thorough testing
	})
}

// TestPerftEnPassantPin tests the en passant horizontal pin edge case.
// The black pawn on e4 may not capture d3 en passant: removing both pawns
// from the fourth rank exposes the black king on a4 to the rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsEnPassant() {
			t.Errorf("En passant move %v should be illegal (horizontal pin)", m)
		}
	}

	runPerft(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []int64{6, 94})
}

// TestMakeUnmakeRoundTrip verifies the inverse law: after make then unmake,
// the position matches the prior state bit for bit, including the hash.
func TestMakeUnmakeRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pp1ppppp/8/1PpP4/8/8/P1P1PPPP/RNBQKBNR w KQkq c6 0 1",
		"2k5/5P2/8/8/8/8/8/2K5 w - - 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 4 20",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("Failed to parse FEN %q: %v", fen, err)
		}

		before := *pos
		moves := pos.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := pos.MakeMove(m)
			pos.UnmakeMove(m, undo)
			if *pos != before {
				t.Fatalf("%s: position not restored after %v", fen, m)
			}
			if pos.Hash != pos.ComputeHash() {
				t.Fatalf("%s: incremental hash diverged after %v", fen, m)
			}
		}
	}
}

// TestIncrementalHash walks a short game and checks the incremental hash
// against a from-scratch recomputation at every node.
func TestIncrementalHash(t *testing.T) {
	pos := NewPosition()

	for ply := 0; ply < 24; ply++ {
		moves := pos.GenerateLegalMoves()
		if moves.Len() == 0 {
			break
		}
		// Deterministic walk: pick a different index each ply.
		m := moves.Get(ply % moves.Len())
		pos.MakeMove(m)

		if pos.Hash != pos.ComputeHash() {
			t.Fatalf("hash diverged at ply %d after %v", ply, m)
		}
		if err := pos.Validate(); err != nil {
			t.Fatalf("invalid position at ply %d after %v: %v", ply, m, err)
		}
	}
}
