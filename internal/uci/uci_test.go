package uci

import (
	"strings"
	"testing"
	"time"

	"github.com/davrk/ocelot/internal/board"
	"github.com/davrk/ocelot/internal/engine"
)

func newTestUCI() *UCI {
	return New(engine.NewEngine(), nil)
}

func TestHandlePositionStartpos(t *testing.T) {
	u := newTestUCI()

	u.handlePosition([]string{"startpos"})
	if got := u.position.ToFEN(); got != board.StartFEN {
		t.Errorf("position = %s, want startpos", got)
	}
}

func TestHandlePositionWithMoves(t *testing.T) {
	u := newTestUCI()

	u.handlePosition([]string{"startpos", "moves", "e2e4", "e7e5", "g1f3"})

	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"
	if got := u.position.ToFEN(); got != want {
		t.Errorf("position after moves:\n got %s\nwant %s", got, want)
	}
}

func TestHandlePositionFEN(t *testing.T) {
	u := newTestUCI()

	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	args := append([]string{"fen"}, splitFields(fen)...)
	u.handlePosition(args)

	if got := u.position.ToFEN(); got != fen {
		t.Errorf("position = %s, want %s", got, fen)
	}
}

func TestHandlePositionFENWithMoves(t *testing.T) {
	u := newTestUCI()

	args := append([]string{"fen"}, splitFields("2k5/5P2/8/8/8/8/8/2K5 w - - 0 1")...)
	args = append(args, "moves", "f7f8q")
	u.handlePosition(args)

	if u.position.PieceAt(board.F8) != board.WhiteQueen {
		t.Errorf("f8 = %v after promotion, want white queen", u.position.PieceAt(board.F8))
	}
}

func TestHandlePositionRejectsIllegalMove(t *testing.T) {
	u := newTestUCI()

	u.handlePosition([]string{"startpos", "moves", "e2e5"})

	// The illegal move is reported and the position stays at the point
	// before it.
	if got := u.position.ToFEN(); got != board.StartFEN {
		t.Errorf("position = %s, want unchanged startpos", got)
	}
}

func TestParseMoveClassifiesCastling(t *testing.T) {
	u := newTestUCI()
	args := append([]string{"fen"}, splitFields("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")...)
	u.handlePosition(args)

	m := u.parseMove("e1g1")
	if m == board.NoMove || !m.IsCastling() {
		t.Errorf("e1g1 parsed as %v, want a castling move", m)
	}
}

func TestParseGoOptions(t *testing.T) {
	u := newTestUCI()

	opts := u.parseGoOptions(splitFields("depth 7 movetime 2500 wtime 60000 btime 55000 winc 1000 binc 1000 movestogo 38"))

	if opts.Depth != 7 {
		t.Errorf("depth = %d, want 7", opts.Depth)
	}
	if opts.MoveTime != 2500*time.Millisecond {
		t.Errorf("movetime = %v, want 2.5s", opts.MoveTime)
	}
	if opts.WTime != time.Minute || opts.BTime != 55*time.Second {
		t.Errorf("clocks = %v/%v", opts.WTime, opts.BTime)
	}
	if opts.MovesToGo != 38 {
		t.Errorf("movestogo = %d, want 38", opts.MovesToGo)
	}

	opts = u.parseGoOptions(splitFields("infinite ponder unknowntoken"))
	if !opts.Infinite {
		t.Error("infinite not parsed")
	}
}

func TestCalculateLimitsDefaults(t *testing.T) {
	u := newTestUCI()

	limits := u.calculateLimits(GoOptions{})
	if limits.Depth != engine.DefaultDepth {
		t.Errorf("default depth = %d, want %d", limits.Depth, engine.DefaultDepth)
	}

	limits = u.calculateLimits(GoOptions{Depth: 3})
	if limits.Depth != 3 || limits.MoveTime != 0 {
		t.Errorf("limits = %+v, want bare depth 3", limits)
	}

	// A clock turns into a movetime budget with depth opened up.
	limits = u.calculateLimits(GoOptions{WTime: time.Minute, BTime: time.Minute})
	if limits.MoveTime <= 0 || limits.Depth != engine.MaxPly {
		t.Errorf("limits = %+v, want movetime-bounded", limits)
	}
}

func TestSetOptionDefaultDepth(t *testing.T) {
	u := newTestUCI()

	u.handleSetOption(splitFields("name DefaultDepth value 8"))
	if u.defaultDepth != 8 {
		t.Errorf("default depth = %d, want 8", u.defaultDepth)
	}

	// Out-of-range and unknown options leave state alone.
	u.handleSetOption(splitFields("name DefaultDepth value 0"))
	if u.defaultDepth != 8 {
		t.Errorf("default depth = %d after invalid set, want 8", u.defaultDepth)
	}
	u.handleSetOption(splitFields("name Hash value 64"))
	if u.defaultDepth != 8 {
		t.Errorf("default depth = %d after unrelated option, want 8", u.defaultDepth)
	}
}

func splitFields(s string) []string {
	return strings.Fields(s)
}
