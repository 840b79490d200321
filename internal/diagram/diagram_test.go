package diagram

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/minichess/internal/board"
)

func rgba(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestRenderSquares(t *testing.T) {
	theme := DefaultTheme()
	img, err := Render(board.InitialState(), Options{})
	require.NoError(t, err)

	side := board.Size * DefaultSquareSize
	assert.Equal(t, image.Rect(0, 0, side, side), img.Bounds())

	// Top-left corners of a1 (dark) and b1 (light), which no piece covers.
	assert.Equal(t, theme.DarkSquare, rgba(img, 2, 4*DefaultSquareSize+2))
	assert.Equal(t, theme.LightSquare, rgba(img, DefaultSquareSize+2, 4*DefaultSquareSize+2))

	// a3 is empty and dark.
	assert.Equal(t, theme.DarkSquare, rgba(img, 32, 2*DefaultSquareSize+32))
}

func TestRenderPieces(t *testing.T) {
	img, err := Render(board.InitialState(), Options{})
	require.NoError(t, err)

	// Body of the white pawn on a2 and the black pawn on a4.
	white := rgba(img, 32, 3*DefaultSquareSize+40)
	black := rgba(img, 32, 1*DefaultSquareSize+40)
	assert.Greater(t, white.R, uint8(200))
	assert.Less(t, black.R, uint8(60))
}

func TestRenderFlip(t *testing.T) {
	img, err := Render(board.InitialState(), Options{Flip: true})
	require.NoError(t, err)

	// With Black at the bottom the white pawn on a2 sits on the second row
	// from the top, in the rightmost column.
	white := rgba(img, 4*DefaultSquareSize+32, 1*DefaultSquareSize+40)
	assert.Greater(t, white.R, uint8(200))
}

func TestRenderCoordinates(t *testing.T) {
	theme := DefaultTheme()
	img, err := Render(board.InitialState(), Options{SquareSize: 40, Coordinates: true})
	require.NoError(t, err)

	side := board.Size*40 + 2*margin
	assert.Equal(t, side, img.Bounds().Dx())
	assert.Equal(t, theme.Background, rgba(img, 1, 1))

	// Some label pixels are drawn in the bottom margin.
	found := false
	for x := margin; x < side-margin && !found; x++ {
		for y := side - margin; y < side; y++ {
			if rgba(img, x, y) == theme.TextColor {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "no file labels drawn")
}

func TestRenderHighlights(t *testing.T) {
	s := board.InitialState()
	m, err := s.ParseMove("b1a3")
	require.NoError(t, err)
	s = s.MustApply(m)

	plain, err := Render(s, Options{})
	require.NoError(t, err)
	lit, err := Render(s, Options{HighlightLastMove: true})
	require.NoError(t, err)

	// b1 is now empty; its corner changes colour only when highlighted.
	x, y := DefaultSquareSize+2, 4*DefaultSquareSize+2
	assert.Equal(t, DefaultTheme().LightSquare, rgba(plain, x, y))
	assert.NotEqual(t, rgba(plain, x, y), rgba(lit, x, y))
}

func TestRenderCheck(t *testing.T) {
	// Black king on a1 in check from the queen on b2.
	s, err := board.StateFromFEN("5/5/2K2/1Q3/k4 b 0 1")
	require.NoError(t, err)
	require.True(t, s.InCheck())

	img, err := Render(s, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, DefaultTheme().DarkSquare, rgba(img, 2, 4*DefaultSquareSize+2))
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, board.InitialState(), Options{SquareSize: 32, Coordinates: true}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 5*32+2*margin, img.Bounds().Dx())

	path := filepath.Join(t.TempDir(), "start.png")
	require.NoError(t, SavePNG(path, board.InitialState(), Options{}))
}

func TestSpritesCached(t *testing.T) {
	a, err := sprites(48)
	require.NoError(t, err)
	b, err := sprites(48)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 48, a.Size())

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			assert.NotNil(t, a.GetPiece(board.NewPiece(pt, c)))
		}
	}
}
