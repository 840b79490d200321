// Package diagram renders board positions as PNG images.
package diagram

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/minichess/internal/board"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare   color.RGBA
	DarkSquare    color.RGBA
	LastMoveColor color.RGBA
	CheckColor    color.RGBA
	Background    color.RGBA
	TextColor     color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:   color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:    color.RGBA{181, 136, 99, 255},  // Brown
		LastMoveColor: color.RGBA{180, 190, 100, 90},
		CheckColor:    color.RGBA{255, 100, 100, 180},
		Background:    color.RGBA{40, 44, 52, 255},
		TextColor:     color.RGBA{220, 220, 220, 255},
	}
}

// DefaultSquareSize is used when Options.SquareSize is zero.
const DefaultSquareSize = 64

// Options controls Render.
type Options struct {
	SquareSize int
	// Flip draws the board from Black's side.
	Flip bool
	// Coordinates adds file and rank labels in a margin around the board.
	Coordinates bool
	// HighlightLastMove tints the from and to squares of State.LastMove.
	HighlightLastMove bool
	Theme             *Theme
}

const margin = 18

var (
	spriteMu    sync.Mutex
	spriteCache = map[int]*SpriteManager{}
)

func sprites(size int) (*SpriteManager, error) {
	spriteMu.Lock()
	defer spriteMu.Unlock()
	if sm, ok := spriteCache[size]; ok {
		return sm, nil
	}
	sm, err := NewSpriteManager(size)
	if err != nil {
		return nil, err
	}
	spriteCache[size] = sm
	return sm, nil
}

// Render draws s. The king of the side to move is tinted when in check.
func Render(s board.State, opts Options) (*image.RGBA, error) {
	sq := opts.SquareSize
	if sq <= 0 {
		sq = DefaultSquareSize
	}
	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	sm, err := sprites(sq)
	if err != nil {
		return nil, err
	}

	offset := 0
	if opts.Coordinates {
		offset = margin
	}
	side := board.Size*sq + 2*offset
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(theme.Background), image.Point{}, draw.Src)

	// origin returns the top-left pixel of a square.
	origin := func(square board.Square) image.Point {
		file, rank := square.File(), square.Rank()
		col, row := file, board.Size-1-rank
		if opts.Flip {
			col, row = board.Size-1-file, rank
		}
		return image.Pt(offset+col*sq, offset+row*sq)
	}
	fill := func(square board.Square, c color.Color, op draw.Op) {
		p := origin(square)
		draw.Draw(img, image.Rect(p.X, p.Y, p.X+sq, p.Y+sq), image.NewUniform(c), image.Point{}, op)
	}

	for square := board.Square(0); square < board.NumSquares; square++ {
		c := theme.LightSquare
		if (square.File()+square.Rank())%2 == 0 {
			c = theme.DarkSquare
		}
		fill(square, c, draw.Src)
	}

	if last := s.LastMove(); opts.HighlightLastMove && last != board.NoMove {
		fill(last.From(), theme.LastMoveColor, draw.Over)
		fill(last.To(), theme.LastMoveColor, draw.Over)
	}

	if s.InCheck() {
		king := board.NewPiece(board.King, s.SideToMove())
		for square := board.Square(0); square < board.NumSquares; square++ {
			if s.PieceAt(square) == king {
				fill(square, theme.CheckColor, draw.Over)
			}
		}
	}

	for square := board.Square(0); square < board.NumSquares; square++ {
		piece := s.PieceAt(square)
		if piece == board.NoPiece {
			continue
		}
		p := origin(square)
		sprite := sm.GetPiece(piece)
		draw.Draw(img, image.Rect(p.X, p.Y, p.X+sq, p.Y+sq), sprite, image.Point{}, draw.Over)
	}

	if opts.Coordinates {
		drawLabels(img, opts, sq, theme.TextColor)
	}
	return img, nil
}

func drawLabels(img *image.RGBA, opts Options, sq int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	text := func(s string, x, y int) {
		w := d.MeasureString(s).Ceil()
		d.Dot = fixed.P(x-w/2, y)
		d.DrawString(s)
	}

	side := board.Size*sq + 2*margin
	for i := 0; i < board.Size; i++ {
		file, rank := i, board.Size-1-i
		if opts.Flip {
			file, rank = board.Size-1-i, i
		}
		center := margin + i*sq + sq/2
		fileLabel := string(rune('a' + file))
		rankLabel := string(rune('1' + rank))

		text(fileLabel, center, side-margin/2+4)
		text(fileLabel, center, margin/2+4)
		text(rankLabel, margin/2, center+4)
		text(rankLabel, side-margin/2, center+4)
	}
}

// WritePNG renders s and encodes it to w.
func WritePNG(w io.Writer, s board.State, opts Options) error {
	img, err := Render(s, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG renders s to a PNG file at path.
func SavePNG(path string, s board.State, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, s, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
