// Package uci implements the Universal Chess Interface protocol over
// stdin/stdout.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/davrk/ocelot/internal/board"
	"github.com/davrk/ocelot/internal/diagram"
	"github.com/davrk/ocelot/internal/engine"
	"github.com/davrk/ocelot/internal/storage"
)

// UCI implements the line-based UCI command dispatch.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	store    *storage.Store // may be nil; all operations degrade to no-ops

	defaultDepth int

	// Search state
	searching  bool
	searchDone chan struct{}

	// CPU profiling started via setoption
	profileFile *os.File
}

// New creates a new UCI protocol handler. The store may be nil to run
// without persistence.
func New(eng *engine.Engine, store *storage.Store) *UCI {
	u := &UCI{
		engine:       eng,
		position:     board.NewPosition(),
		store:        store,
		defaultDepth: engine.DefaultDepth,
	}

	if prefs, err := store.LoadPreferences(); err == nil && prefs.DefaultDepth > 0 {
		u.defaultDepth = prefs.DefaultDepth
	}

	return u
}

// Run starts the UCI main loop. It returns when stdin closes; "quit"
// terminates the process directly.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			fmt.Println(u.position.String())
		case "perft":
			u.handlePerft(args)
		case "svg":
			u.handleSvg(args)
		default:
			// Unrecognized tokens are silently ignored per the protocol.
		}
	}
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	fmt.Println("id name Ocelot")
	fmt.Println("id author the Ocelot authors")
	fmt.Println()
	fmt.Printf("option name DefaultDepth type spin default %d min 1 max %d\n", u.defaultDepth, engine.MaxPly)
	fmt.Println("uciok")
}

// handleNewGame resets to the initial position.
func (u *UCI) handleNewGame() {
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int

	if args[0] == "startpos" {
		u.position = board.NewPosition()
		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	} else if args[0] == "fen" {
		// The FEN runs until "moves" or the end of the line
		fenEnd := len(args)
		for i, arg := range args[1:] {
			if arg == "moves" {
				fenEnd = i + 1
				break
			}
		}

		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string Invalid FEN: %v\n", err)
			return
		}
		u.position = pos

		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	} else {
		return
	}

	// Apply moves, validating each against the generated legal moves
	for _, moveStr := range args[moveStart:] {
		move := u.parseMove(moveStr)
		if move == board.NoMove {
			fmt.Fprintf(os.Stderr, "info string Invalid move: %s\n", moveStr)
			return
		}
		u.position.MakeMove(move)
	}
}

// parseMove converts a UCI move string to the matching generated legal move,
// so castling and en passant carry the right flags.
func (u *UCI) parseMove(moveStr string) board.Move {
	if len(moveStr) < 4 {
		return board.NoMove
	}

	from, err := board.ParseSquare(moveStr[0:2])
	if err != nil {
		return board.NoMove
	}
	to, err := board.ParseSquare(moveStr[2:4])
	if err != nil {
		return board.NoMove
	}

	var promo board.PieceType
	if len(moveStr) == 5 {
		switch moveStr[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		default:
			return board.NoMove
		}
	}

	moves := u.position.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if len(moveStr) == 5 {
			if m.IsPromotion() && m.Promotion() == promo {
				return m
			}
		} else if !m.IsPromotion() {
			return m
		}
	}

	return board.NoMove
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	opts := u.parseGoOptions(args)

	// Terminal positions are answered directly; search assumes at least
	// one legal move.
	if u.position.GenerateLegalMoves().Len() == 0 {
		fmt.Println("bestmove 0000")
		return
	}

	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info)
	}

	limits := u.calculateLimits(opts)

	u.searching = true
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()
	start := time.Now()

	go func() {
		defer close(u.searchDone)

		bestMove := u.engine.SearchWithLimits(pos, limits)
		u.searching = false

		if u.store != nil {
			depth := limits.Depth
			if depth <= 0 {
				depth = u.defaultDepth
			}
			if err := u.store.RecordSearch(depth, u.engine.Nodes(), time.Since(start)); err != nil {
				fmt.Fprintf(os.Stderr, "info string Failed to record search stats: %v\n", err)
			}
		}

		// Validate against a fresh copy of the original position before
		// answering.
		legal := u.position.Copy().GenerateLegalMoves()
		if bestMove != board.NoMove && legal.Contains(bestMove) {
			fmt.Printf("bestmove %s\n", bestMove)
			return
		}

		if legal.Len() > 0 {
			fmt.Fprintf(os.Stderr, "info string Search returned no usable move, falling back\n")
			fmt.Printf("bestmove %s\n", legal.Get(0))
			return
		}
		fmt.Println("bestmove 0000")
	}()
}

// parseGoOptions parses "go" command arguments. Unknown tokens are skipped.
func (u *UCI) parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	ms := func(i int) time.Duration {
		n, _ := strconv.Atoi(args[i])
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				opts.MoveTime = ms(i + 1)
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if i+1 < len(args) {
				opts.WTime = ms(i + 1)
				i++
			}
		case "btime":
			if i+1 < len(args) {
				opts.BTime = ms(i + 1)
				i++
			}
		case "winc":
			if i+1 < len(args) {
				opts.WInc = ms(i + 1)
				i++
			}
		case "binc":
			if i+1 < len(args) {
				opts.BInc = ms(i + 1)
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return opts
}

// calculateLimits converts GoOptions to engine.SearchLimits.
func (u *UCI) calculateLimits(opts GoOptions) engine.SearchLimits {
	limits := engine.SearchLimits{}

	if opts.Infinite {
		limits.Infinite = true
		return limits
	}

	if opts.Depth > 0 {
		limits.Depth = opts.Depth
	}

	if opts.MoveTime > 0 {
		limits.MoveTime = opts.MoveTime
		limits.Depth = engine.MaxPly
	} else if opts.WTime > 0 || opts.BTime > 0 {
		limits.MoveTime = u.calculateTimeForMove(opts)
		limits.Depth = engine.MaxPly
	}

	if limits.Depth == 0 {
		limits.Depth = u.defaultDepth
	}

	return limits
}

// calculateTimeForMove determines how much time to spend on this move.
func (u *UCI) calculateTimeForMove(opts GoOptions) time.Duration {
	var ourTime, ourInc time.Duration

	if u.position.SideToMove == board.White {
		ourTime = opts.WTime
		ourInc = opts.WInc
	} else {
		ourTime = opts.BTime
		ourInc = opts.BInc
	}

	movesRemaining := opts.MovesToGo
	if movesRemaining == 0 {
		movesRemaining = u.estimateMovesRemaining()
	}

	moveTime := ourTime/time.Duration(movesRemaining) + (ourInc * 90 / 100)

	// Never use more than 90% of the remaining time
	maxTime := ourTime * 90 / 100
	if moveTime > maxTime {
		moveTime = maxTime
	}

	if moveTime < 10*time.Millisecond {
		moveTime = 10 * time.Millisecond
	}

	return moveTime
}

// estimateMovesRemaining estimates remaining moves based on piece count.
func (u *UCI) estimateMovesRemaining() int {
	totalPieces := u.position.AllOccupied.PopCount()

	if totalPieces > 24 {
		return 40 // Opening/early middlegame
	} else if totalPieces > 12 {
		return 30 // Middlegame
	}
	return 20 // Endgame
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	if info.Score > engine.MateScore-engine.MaxPly {
		mateIn := (engine.MateScore - info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else if info.Score < -(engine.MateScore - engine.MaxPly) {
		mateIn := -(engine.MateScore + info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if info.Best != board.NoMove {
		parts = append(parts, "pv "+info.Best.String())
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searching {
		u.engine.Stop()
		<-u.searchDone
	}
}

// handleQuit exits the program.
func (u *UCI) handleQuit() {
	u.handleStop()
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		fmt.Fprintf(os.Stderr, "info string CPU profile saved\n")
	}
	if err := u.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "info string Failed to close storage: %v\n", err)
	}
	os.Exit(0)
}

// handleSetOption processes "setoption name <name> value <value>".
// Unsupported options are silently ignored.
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "defaultdepth":
		depth, err := strconv.Atoi(value)
		if err != nil || depth < 1 || depth > engine.MaxPly {
			fmt.Fprintf(os.Stderr, "info string Invalid DefaultDepth: %s\n", value)
			return
		}
		u.defaultDepth = depth
		if err := u.store.SavePreferences(&storage.Preferences{DefaultDepth: depth}); err != nil {
			fmt.Fprintf(os.Stderr, "info string Failed to save preferences: %v\n", err)
		}
	case "cpuprofile":
		// Stop any profile already running
		if u.profileFile != nil {
			pprof.StopCPUProfile()
			u.profileFile.Close()
			fmt.Fprintf(os.Stderr, "info string CPU profile stopped\n")
			u.profileFile = nil
		}
		// Start a new profile if a path was given
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string Failed to create profile: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				fmt.Fprintf(os.Stderr, "info string Failed to start profile: %v\n", err)
				return
			}
			u.profileFile = f
			fmt.Fprintf(os.Stderr, "info string CPU profiling to %s\n", value)
		}
	}
}

// handlePerft runs a perft count on the current position.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position.Copy(), depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

// handleSvg writes the current position as an SVG diagram.
func (u *UCI) handleSvg(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "info string Usage: svg <path>\n")
		return
	}

	if err := diagram.WriteFile(args[0], u.position); err != nil {
		fmt.Fprintf(os.Stderr, "info string Failed to write diagram: %v\n", err)
		return
	}
	fmt.Printf("info string Diagram written to %s\n", args[0])
}
