package board

// Magic bitboard implementation for sliding piece attacks.
// Magic numbers are searched at initialization with a sparse PRNG; each
// square's perfect-hash table maps a relevant-occupancy subset to the
// attack set in O(1).

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   Bitboard // Relevant occupancy mask (excludes edges)
	Magic  uint64   // Magic multiplier
	Shift  uint8    // Bits to shift right
	Offset uint32   // Index into attack table
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	// Attack tables (fancy magic bitboards)
	bishopTable [5248]Bitboard   // Total bishop attack table entries
	rookTable   [102400]Bitboard // Total rook attack table entries
)

// maxMagicTries bounds the random search per square. A sound generator finds
// a magic within a few thousand candidates; exhausting the bound is fatal.
const maxMagicTries = 100_000_000

func initMagics() {
	rng := newPRNG(0xD6E4C57F1A2B9C03)
	initSliderMagics(rng, rookMagics[:], rookTable[:], rookMask, rookAttacksSlow)
	initSliderMagics(rng, bishopMagics[:], bishopTable[:], bishopMask, bishopAttacksSlow)
}

// initSliderMagics builds the per-square magics and attack rows for one
// slider type, packing rows back to back into the shared table.
func initSliderMagics(rng *prng, magics []Magic, table []Bitboard,
	maskFn func(Square) Bitboard, attacksFn func(Square, Bitboard) Bitboard) {

	var offset uint32
	for sq := A1; sq <= H8; sq++ {
		mask := maskFn(sq)
		bits := mask.PopCount()
		size := 1 << bits

		// Enumerate every subset of the mask with the carry-rippler,
		// writing indexed so the row has exactly 2^bits entries.
		occs := make([]Bitboard, size)
		refs := make([]Bitboard, size)
		subset := Empty
		for i := 0; ; i++ {
			occs[i] = subset
			refs[i] = attacksFn(sq, subset)
			subset = (subset - mask) & mask
			if subset == 0 {
				break
			}
		}

		row := table[offset : offset+uint32(size)]
		magic := findMagic(rng, occs, refs, row, uint8(64-bits))

		magics[sq] = Magic{
			Mask:   mask,
			Magic:  magic,
			Shift:  uint8(64 - bits),
			Offset: offset,
		}
		offset += uint32(size)
	}
}

// findMagic searches for a multiplier whose hash is injective over the
// subsets, collisions permitted only between identical attack sets. The row
// is left populated for the returned magic.
func findMagic(rng *prng, occs, refs []Bitboard, row []Bitboard, shift uint8) uint64 {
	used := make([]uint32, len(row))
	epoch := uint32(0)

	for try := 0; try < maxMagicTries; try++ {
		candidate := rng.sparse()
		epoch++

		ok := true
		for i := range occs {
			idx := (candidate * uint64(occs[i])) >> shift
			if used[idx] != epoch {
				used[idx] = epoch
				row[idx] = refs[i]
			} else if row[idx] != refs[i] {
				ok = false
				break
			}
		}
		if ok {
			return candidate
		}
	}

	panic("board: no magic found for slider attack table")
}

// bishopMask returns the relevant occupancy mask for a bishop at square.
// Excludes the origin and edge squares since a blocker there cannot change
// the attack set.
func bishopMask(sq Square) Bitboard {
	diag := DiagonalNE[sq.Rank()-sq.File()+7] | DiagonalNW[sq.Rank()+sq.File()]
	return diag &^ SquareBB(sq) &^ (Rank1 | Rank8 | FileA | FileH)
}

// rookMask returns the relevant occupancy mask for a rook at square.
func rookMask(sq Square) Bitboard {
	file := sq.File()
	rank := sq.Rank()

	var mask Bitboard

	for f := 1; f < 7; f++ {
		if f != file {
			mask |= SquareBB(NewSquare(f, rank))
		}
	}

	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= SquareBB(NewSquare(file, r))
		}
	}

	return mask
}

// bishopAttacksSlow computes bishop attacks by ray casting (used during initialization).
// The first blocker on each ray is included; squares beyond it are not.
func bishopAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	file, rank := sq.File(), sq.Rank()

	// Northeast
	for f, r := file+1, rank+1; f <= 7 && r <= 7; f, r = f+1, r+1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// Northwest
	for f, r := file-1, rank+1; f >= 0 && r <= 7; f, r = f-1, r+1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// Southeast
	for f, r := file+1, rank-1; f <= 7 && r >= 0; f, r = f+1, r-1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// Southwest
	for f, r := file-1, rank-1; f >= 0 && r >= 0; f, r = f-1, r-1 {
		s := NewSquare(f, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	return attacks
}

// rookAttacksSlow computes rook attacks by ray casting (used during initialization).
func rookAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	var attacks Bitboard
	file, rank := sq.File(), sq.Rank()

	// North
	for r := rank + 1; r <= 7; r++ {
		s := NewSquare(file, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// South
	for r := rank - 1; r >= 0; r-- {
		s := NewSquare(file, r)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// East
	for f := file + 1; f <= 7; f++ {
		s := NewSquare(f, rank)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	// West
	for f := file - 1; f >= 0; f-- {
		s := NewSquare(f, rank)
		attacks |= SquareBB(s)
		if occupied&SquareBB(s) != 0 {
			break
		}
	}

	return attacks
}

// getBishopAttacks returns bishop attacks using magic bitboards.
func getBishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	idx := ((uint64(occupied) & uint64(m.Mask)) * m.Magic) >> m.Shift
	return bishopTable[m.Offset+uint32(idx)]
}

// getRookAttacks returns rook attacks using magic bitboards.
func getRookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	idx := ((uint64(occupied) & uint64(m.Mask)) * m.Magic) >> m.Shift
	return rookTable[m.Offset+uint32(idx)]
}
