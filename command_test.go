package servicepoint

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/servicepoint/protocol"
)

// roundTrip encodes c, reloads the bytes and decodes them again.
func roundTrip(t *testing.T, c *Command) *Command {
	t.Helper()

	p, err := NewPacket(c)
	require.NoError(t, err)
	data, err := p.Bytes()
	require.NoError(t, err)

	loaded, err := TryLoadPacket(data)
	require.NoError(t, err)
	decoded, err := CommandFromPacket(loaded)
	require.NoError(t, err)
	return decoded
}

func mustCommand(t *testing.T) func(*Command, error) *Command {
	return func(c *Command, err error) *Command {
		t.Helper()
		require.NoError(t, err)
		return c
	}
}

func testBitVec(t *testing.T, n int) *BitVec {
	v, err := NewBitVec(n)
	require.NoError(t, err)
	for i := 0; i < n; i += 3 {
		_, err := v.Set(i, true)
		require.NoError(t, err)
	}
	return v
}

func testBitmap(t *testing.T, w, h int) *Bitmap {
	m, err := NewBitmap(w, h)
	require.NoError(t, err)
	for y := range h {
		_, err := m.Set((y*5)%w, y, true)
		require.NoError(t, err)
	}
	return m
}

func TestCommandRoundTrip(t *testing.T) {
	must := mustCommand(t)

	bare := map[string]func() *Command{
		"Clear":     NewClear,
		"HardReset": NewHardReset,
		"FadeOut":   NewFadeOut,
		"Legacy":    NewBitmapLegacy,
	}
	for name, build := range bare {
		t.Run(name, func(t *testing.T) {
			c := build()
			want, _ := c.Clone()
			assert.True(t, roundTrip(t, c).Equal(want))
		})
	}

	grids := map[string]func() *Command{
		"Brightness": func() *Command { return must(NewBrightness(7)) },
		"CharBrightness": func() *Command {
			g, err := LoadBrightnessGrid(2, 2, []byte{0, 5, 11, 3})
			require.NoError(t, err)
			return must(NewCharBrightness(3, 4, g))
		},
		"Cp437Data": func() *Command {
			g, err := LoadCp437Ascii("Hi\n╔═╗", 3, false)
			require.NoError(t, err)
			return must(NewCp437Data(TileWidth-3, TileHeight-2, g))
		},
		"Utf8Data": func() *Command {
			return must(NewUtf8Data(0, 0, LoadCharGrid("Grüße 😀\nx")))
		},
	}
	for name, build := range grids {
		t.Run(name, func(t *testing.T) {
			c := build()
			want, _ := c.Clone()
			assert.True(t, roundTrip(t, c).Equal(want))
		})
	}

	for _, compression := range protocol.CompressionCodes {
		bitmaps := map[string]func() *Command{
			"BitmapLinear":    func() *Command { return must(NewBitmapLinear(8, testBitVec(t, 64), compression)) },
			"BitmapLinearAnd": func() *Command { return must(NewBitmapLinearAnd(0, testBitVec(t, PixelCount), compression)) },
			"BitmapLinearOr":  func() *Command { return must(NewBitmapLinearOr(100, testBitVec(t, 800), compression)) },
			"BitmapLinearXor": func() *Command { return must(NewBitmapLinearXor(0, testBitVec(t, 0), compression)) },
			"BitmapLinearWin": func() *Command { return must(NewBitmapLinearWin(16, 3, testBitmap(t, 24, 5), compression)) },
			"BitmapLinearWinFull": func() *Command {
				return must(NewBitmapLinearWin(0, 0, testBitmap(t, PixelWidth, PixelHeight), compression))
			},
		}
		for name, build := range bitmaps {
			t.Run(fmt.Sprintf("%s/%s", name, compression), func(t *testing.T) {
				c := build()
				want, _ := c.Clone()
				got := roundTrip(t, c)
				assert.True(t, got.Equal(want), "got %s, want %s", got, want)
			})
		}
	}
}

func TestBitmapLinearScenario(t *testing.T) {
	v, err := NewBitVec(8)
	require.NoError(t, err)

	c, err := NewBitmapLinear(0, v, Uncompressed)
	require.NoError(t, err)

	decoded := roundTrip(t, c)

	kind, err := decoded.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindBitmapLinear, kind)

	offset, err := decoded.Offset()
	require.NoError(t, err)
	assert.Zero(t, offset)

	bits, err := decoded.BitVec()
	require.NoError(t, err)
	n, _ := bits.Len()
	assert.Equal(t, 8, n)
	data, _ := bits.Data()
	assert.Equal(t, []byte{0}, data)
}

func TestCp437DataScenario(t *testing.T) {
	g, err := NewCp437Grid(3, 2)
	require.NoError(t, err)
	require.NoError(t, g.SetRowString(1, "abc"))

	s, err := g.RowString(1)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	s, err = g.RowString(0)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	row, _ := g.Row(0)
	assert.Equal(t, []byte{0, 0, 0}, row)

	c, err := NewCp437Data(0, 0, g)
	require.NoError(t, err)

	out, err := c.Cp437Grid()
	require.NoError(t, err)
	s, _ = out.RowString(1)
	assert.Equal(t, "abc", s)
}

func TestNewBrightness(t *testing.T) {
	_, err := NewBrightness(42)
	require.ErrorIs(t, err, ErrInvalidBrightness)

	for v := range BrightnessMax + 1 {
		c, err := NewBrightness(byte(v))
		require.NoError(t, err)
		got, err := c.BrightnessValue()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	for v := int(BrightnessMax) + 1; v < 256; v++ {
		_, err := NewBrightness(byte(v))
		require.ErrorIs(t, err, ErrInvalidBrightness, "brightness %d", v)
	}
}

func TestCommandEncoding(t *testing.T) {
	frame := func(c *Command) []byte {
		t.Helper()
		p, err := NewPacket(c)
		require.NoError(t, err)
		b, err := p.Bytes()
		require.NoError(t, err)
		return b
	}

	assert.Equal(t, []byte{0x00, 0x02, 0, 0, 0, 0, 0, 0, 0, 0}, frame(NewClear()))
	assert.Equal(t, []byte{0x00, 0x0b, 0, 0, 0, 0, 0, 0, 0, 0}, frame(NewHardReset()))

	b, err := NewBrightness(5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x07, 0, 0, 0, 0, 0, 0, 0, 0, 5}, frame(b))

	g, err := LoadCp437Grid(3, 1, []byte("abc"))
	require.NoError(t, err)
	cp, err := NewCp437Data(1, 2, g)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x03, 0, 1, 0, 2, 0, 3, 0, 1, 'a', 'b', 'c'}, frame(cp))

	v, err := LoadBitVec(16, []byte{0xaa, 0x55})
	require.NoError(t, err)
	lin, err := NewBitmapLinearXor(300, v, Uncompressed)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x16, 0x01, 0x2c, 0, 2, 0, 0, 0, 0, 0xaa, 0x55}, frame(lin))

	m, err := LoadBitmap(16, 1, []byte{0xff, 0x01})
	require.NoError(t, err)
	win, err := NewBitmapLinearWin(8, 3, m, Uncompressed)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x13, 0, 1, 0, 3, 0, 2, 0, 1, 0xff, 0x01}, frame(win))
}

func TestLinearCompressionHeader(t *testing.T) {
	v, err := NewBitVec(PixelCount)
	require.NoError(t, err)
	c, err := NewBitmapLinear(0, v, Zlib)
	require.NoError(t, err)

	p, err := NewPacket(c)
	require.NoError(t, err)
	h, err := p.Header()
	require.NoError(t, err)
	assert.Equal(t, uint16(protocol.CmdBitmapLinear), h.CommandCode)
	assert.Equal(t, uint16(PixelCount/8), h.B, "B is the uncompressed length")
	assert.Equal(t, uint16(Zlib), h.C)

	n, err := p.Len()
	require.NoError(t, err)
	assert.Less(t, n, protocol.HeaderSize+PixelCount/8)
}

func TestWindowCommandCodes(t *testing.T) {
	codes := map[CompressionCode]protocol.CommandCode{
		Uncompressed: protocol.CmdBitmapLinearWinUncompressed,
		Zlib:         protocol.CmdBitmapLinearWinZlib,
		Bzip2:        protocol.CmdBitmapLinearWinBzip2,
		Lzma:         protocol.CmdBitmapLinearWinLzma,
		Zstd:         protocol.CmdBitmapLinearWinZstd,
	}
	for compression, code := range codes {
		c, err := NewBitmapLinearWin(0, 0, testBitmap(t, 8, 8), compression)
		require.NoError(t, err)
		p, err := NewPacket(c)
		require.NoError(t, err)
		h, err := p.Header()
		require.NoError(t, err)
		assert.Equal(t, uint16(code), h.CommandCode, compression.String())
	}
}

func TestCommandValidation(t *testing.T) {
	t.Run("window not tile aligned", func(t *testing.T) {
		_, err := NewBitmapLinearWin(4, 0, testBitmap(t, 8, 8), Uncompressed)
		require.ErrorIs(t, err, ErrInvalidDimensions)
	})

	t.Run("window out of bounds", func(t *testing.T) {
		_, err := NewBitmapLinearWin(PixelWidth-8, 0, testBitmap(t, 16, 8), Uncompressed)
		require.ErrorIs(t, err, ErrOutOfBounds)

		_, err = NewBitmapLinearWin(0, PixelHeight-1, testBitmap(t, 8, 2), Uncompressed)
		require.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("unknown compression", func(t *testing.T) {
		_, err := NewBitmapLinearWin(0, 0, testBitmap(t, 8, 8), CompressionCode(1))
		var codeErr *protocol.InvalidCompressionCodeError
		require.True(t, errors.As(err, &codeErr))

		_, err = NewBitmapLinear(0, testBitVec(t, 8), CompressionCode(0x1234))
		require.True(t, errors.As(err, &codeErr))
		assert.Equal(t, uint16(0x1234), codeErr.Code)
	})

	t.Run("linear out of bounds", func(t *testing.T) {
		_, err := NewBitmapLinear(PixelCount-8, testBitVec(t, 16), Uncompressed)
		require.ErrorIs(t, err, ErrOutOfBounds)

		_, err = NewBitmapLinear(-1, testBitVec(t, 8), Uncompressed)
		require.ErrorIs(t, err, ErrOutOfBounds)

		_, err = NewBitmapLinear(1<<16, testBitVec(t, 8), Uncompressed)
		require.ErrorIs(t, err, ErrOutOfBounds, "offset must fit the header")
	})

	t.Run("tile grid out of bounds", func(t *testing.T) {
		g, err := NewCp437Grid(TileWidth+1, 1)
		require.NoError(t, err)
		_, err = NewCp437Data(0, 0, g)
		require.ErrorIs(t, err, ErrOutOfBounds)

		b, err := NewBrightnessGrid(1, 1)
		require.NoError(t, err)
		_, err = NewCharBrightness(0, TileHeight, b)
		require.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("consumed payload", func(t *testing.T) {
		v := testBitVec(t, 8)
		require.NoError(t, v.Destroy())
		_, err := NewBitmapLinear(0, v, Uncompressed)
		require.ErrorIs(t, err, ErrConsumed)
	})
}

func TestCommandAccessors(t *testing.T) {
	m := testBitmap(t, 16, 4)
	want, _ := m.Clone()
	c, err := NewBitmapLinearWin(8, 2, m, Lzma)
	require.NoError(t, err)

	x, y, err := c.Origin()
	require.NoError(t, err)
	assert.Equal(t, 8, x)
	assert.Equal(t, 2, y)

	compression, err := c.Compression()
	require.NoError(t, err)
	assert.Equal(t, Lzma, compression)

	got, err := c.Bitmap()
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	_, err = got.Set(1, 0, true)
	require.NoError(t, err)
	again, _ := c.Bitmap()
	assert.True(t, again.Equal(want), "accessors return copies")

	assert.Equal(t, "BitmapLinearWin(8, 2, 16x4, lzma)", c.String())

	_, err = c.Offset()
	require.ErrorIs(t, err, ErrWrongVariant)
	_, err = c.BrightnessValue()
	require.ErrorIs(t, err, ErrWrongVariant)
	_, err = c.CharGrid()
	require.ErrorIs(t, err, ErrWrongVariant)

	_, _, err = NewClear().Origin()
	require.ErrorIs(t, err, ErrWrongVariant)
	_, err = NewFadeOut().Compression()
	require.ErrorIs(t, err, ErrWrongVariant)
}

func TestCommandGridAccessors(t *testing.T) {
	b, err := LoadBrightnessGrid(1, 1, []byte{9})
	require.NoError(t, err)
	cb, err := NewCharBrightness(2, 3, b)
	require.NoError(t, err)

	x, y, err := cb.Origin()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, []int{x, y})

	grid, err := cb.BrightnessGrid()
	require.NoError(t, err)
	v, _ := grid.Get(0, 0)
	assert.Equal(t, Brightness(9), v)
	assert.Equal(t, "CharBrightness(2, 3, 1x1)", cb.String())

	u, err := NewUtf8Data(0, 1, LoadCharGrid("ok"))
	require.NoError(t, err)
	chars, err := u.CharGrid()
	require.NoError(t, err)
	assert.Equal(t, "ok", chars.String())

	_, err = u.Cp437Grid()
	require.ErrorIs(t, err, ErrWrongVariant)
	_, err = u.BitVec()
	require.ErrorIs(t, err, ErrWrongVariant)
}

func TestCommandCloneEqual(t *testing.T) {
	c, err := NewBitmapLinearOr(8, testBitVec(t, 16), Bzip2)
	require.NoError(t, err)

	clone, err := c.Clone()
	require.NoError(t, err)
	assert.True(t, c.Equal(clone))

	other, err := NewBitmapLinearOr(8, testBitVec(t, 16), Zstd)
	require.NoError(t, err)
	assert.False(t, c.Equal(other), "compression is part of the command")

	and, err := NewBitmapLinearAnd(8, testBitVec(t, 16), Bzip2)
	require.NoError(t, err)
	assert.False(t, c.Equal(and))

	assert.False(t, NewClear().Equal(NewFadeOut()))
	assert.True(t, NewClear().Equal(NewClear()))

	require.NoError(t, clone.Destroy())
	assert.True(t, c.IsValid(), "clones are independent")
	assert.False(t, c.Equal(clone))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Utf8Data", KindUtf8Data.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
