package rules

import "github.com/tecu23/chess-server/internal/color"

// board is a sparse piece map used for check and material evaluation.
type board map[Square]Piece

func (b board) king(c color.Color) (Square, bool) {
	for sq, pc := range b {
		if pc.Kind == King && pc.Color == c {
			return sq, true
		}
	}
	return 0, false
}

func inCheck(b board, c color.Color) bool {
	ksq, ok := b.king(c)
	if !ok {
		return false
	}
	return attacked(b, ksq, c.Opp())
}

var (
	knightSteps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func offset(sq Square, df, dr int) (Square, bool) {
	f, r := sq.File()+df, sq.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return 0, false
	}
	return NewSquare(f, r), true
}

// attacked reports whether any piece of color by attacks sq.
func attacked(b board, sq Square, by color.Color) bool {
	for _, st := range knightSteps {
		if t, ok := offset(sq, st[0], st[1]); ok {
			if pc, ok := b[t]; ok && pc.Color == by && pc.Kind == Knight {
				return true
			}
		}
	}
	for _, st := range kingSteps {
		if t, ok := offset(sq, st[0], st[1]); ok {
			if pc, ok := b[t]; ok && pc.Color == by && pc.Kind == King {
				return true
			}
		}
	}

	// Pawns attack diagonally forward, so look one rank behind sq from the
	// attacker's point of view.
	dr := -1
	if by == color.Black {
		dr = 1
	}
	for _, df := range []int{-1, 1} {
		if t, ok := offset(sq, df, dr); ok {
			if pc, ok := b[t]; ok && pc.Color == by && pc.Kind == Pawn {
				return true
			}
		}
	}

	if slides(b, sq, by, rookRays, Rook) || slides(b, sq, by, bishopRays, Bishop) {
		return true
	}
	return false
}

func slides(b board, sq Square, by color.Color, rays [][2]int, kind PieceKind) bool {
	for _, ray := range rays {
		cur := sq
		for {
			next, ok := offset(cur, ray[0], ray[1])
			if !ok {
				break
			}
			cur = next
			pc, occupied := b[cur]
			if !occupied {
				continue
			}
			if pc.Color == by && (pc.Kind == kind || pc.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// insufficientMaterial reports whether c can never mate: a bare king, a
// single minor piece, or bishops that all stand on one square color.
func insufficientMaterial(b board, c color.Color) bool {
	var knights, bishops, light, dark int
	for sq, pc := range b {
		if pc.Color != c {
			continue
		}
		switch pc.Kind {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			knights++
		case Bishop:
			bishops++
			if sq.Light() {
				light++
			} else {
				dark++
			}
		}
	}

	switch {
	case knights+bishops <= 1:
		return true
	case knights == 0 && (light == 0 || dark == 0):
		return true
	}
	return false
}
