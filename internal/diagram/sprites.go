package diagram

import (
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/hailam/minichess/internal/board"
)

// Piece outlines on a 45x45 canvas.
var pieceShapes = map[board.PieceType]string{
	board.Pawn: `<circle cx="22.5" cy="13" r="6"/>
<path d="M18 20 H27 L30 34 H15 Z"/>
<path d="M11 34 H34 V39 H11 Z"/>`,
	board.Knight: `<path d="M13 37 H33 C33 26 31 14 23 10 L21 6 L18.5 10.5 C14 12.5 11 18 9.5 23 L12.5 26 L17 22 C18.5 25.5 14.5 29 13 37 Z"/>
<circle cx="17" cy="15" r="1.5" fill="%[2]s"/>`,
	board.Bishop: `<circle cx="22.5" cy="7.5" r="2.5"/>
<path d="M22.5 10 C16 15 14 23 17 30 H28 C31 23 29 15 22.5 10 Z"/>
<path d="M12 34 H33 V39 H12 Z M16 30 H29 V34 H16 Z"/>`,
	board.Rook: `<path d="M11 39 H34 V34 H31 V18 H34 V9 H29.5 V12.5 H25 V9 H20 V12.5 H15.5 V9 H11 V18 H14 V34 H11 Z"/>`,
	board.Queen: `<circle cx="9" cy="15" r="2.5"/><circle cx="16" cy="11" r="2.5"/><circle cx="22.5" cy="9.5" r="2.5"/><circle cx="29" cy="11" r="2.5"/><circle cx="36" cy="15" r="2.5"/>
<path d="M9 17 L14 33 H31 L36 17 L29.5 27 L29 13 L25 25.5 L22.5 12 L20 25.5 L16 13 L15.5 27 Z"/>
<path d="M12 33 H33 V39 H12 Z"/>`,
	board.King: `<path d="M21 4 H24 V8 H28 V11 H24 V15 H21 V11 H17 V8 H21 Z"/>
<path d="M12 33 C9 25 14 17 22.5 17 C31 17 36 25 33 33 Z"/>
<path d="M11 33 H34 V39 H11 Z"/>`,
}

// pieceSVG returns a standalone SVG document for p.
func pieceSVG(p board.Piece) string {
	fill, stroke := "#ffffff", "#000000"
	if p.Color() == board.Black {
		fill, stroke = "#000000", "#ffffff"
	}
	body := pieceShapes[p.Type()]
	if strings.Contains(body, "%[2]s") {
		body = fmt.Sprintf(body, fill, stroke)
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">
<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">
%s
</g>
</svg>`, fill, stroke, body)
}

// SpriteManager manages piece sprites.
type SpriteManager struct {
	pieces      map[board.Piece]*image.RGBA
	size        int     // Display size (e.g., 64)
	renderScale float64 // Render at higher resolution for quality (e.g., 3.0)
}

// NewSpriteManager rasterizes every piece at the given size.
func NewSpriteManager(size int) (*SpriteManager, error) {
	sm := &SpriteManager{
		pieces:      make(map[board.Piece]*image.RGBA),
		size:        size,
		renderScale: 3.0,
	}
	if err := sm.loadPieces(); err != nil {
		return nil, err
	}
	return sm, nil
}

// loadPieces renders each SVG at renderScale times the display size and
// scales it down, which gives smoother edges than rendering at size.
func (sm *SpriteManager) loadPieces() error {
	renderSize := int(float64(sm.size) * sm.renderScale)

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			piece := board.NewPiece(pt, c)
			icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(piece)))
			if err != nil {
				return fmt.Errorf("parsing %s sprite: %w", piece, err)
			}
			icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

			big := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
			scanner := rasterx.NewScannerGV(renderSize, renderSize, big, big.Bounds())
			raster := rasterx.NewDasher(renderSize, renderSize, scanner)
			icon.Draw(raster, 1.0)

			small := image.NewRGBA(image.Rect(0, 0, sm.size, sm.size))
			draw.CatmullRom.Scale(small, small.Bounds(), big, big.Bounds(), draw.Over, nil)
			sm.pieces[piece] = small
		}
	}
	return nil
}

// GetPiece returns the sprite for a piece.
func (sm *SpriteManager) GetPiece(p board.Piece) *image.RGBA {
	return sm.pieces[p]
}

// Size returns the size of piece sprites.
func (sm *SpriteManager) Size() int {
	return sm.size
}
