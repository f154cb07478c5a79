package servicepoint

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// CharGrid is a grid of Unicode characters. It is sent with a Utf8Data
// command and lets the display pick the glyphs.
type CharGrid slot[grid[rune]]

const typeCharGrid = "CharGrid"

func NewCharGrid(width, height int) (*CharGrid, error) {
	g, err := newGrid[rune](width, height)
	if err != nil {
		return nil, err
	}
	return &CharGrid{v: g}, nil
}

// LoadCharGrid lays out text one line per row. The grid is as wide as the
// longest line; shorter lines are padded with zero cells. Trailing empty lines
// are dropped.
func LoadCharGrid(text string) *CharGrid {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	width := 0
	for _, line := range lines {
		width = max(width, utf8.RuneCountInString(line))
	}

	g := &grid[rune]{width: width, height: len(lines), cells: make([]rune, width*len(lines))}
	for y, line := range lines {
		copy(g.cells[y*width:], []rune(line))
	}
	return &CharGrid{v: g}
}

// loadCharGridUTF8 decodes a Utf8Data payload.
func loadCharGridUTF8(width, height int, data []byte) (*CharGrid, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", ErrInvalidChar)
	}
	g, err := loadGrid(width, height, []rune(string(data)))
	if err != nil {
		return nil, err
	}
	return &CharGrid{v: g}, nil
}

func (g *CharGrid) ref() (*grid[rune], error) {
	return (*slot[grid[rune]])(g).get(typeCharGrid)
}

func (g *CharGrid) take() (*grid[rune], error) {
	return (*slot[grid[rune]])(g).take(typeCharGrid)
}

func (g *CharGrid) Size() (width, height int, err error) {
	b, err := g.ref()
	if err != nil {
		return 0, 0, err
	}
	return b.width, b.height, nil
}

func (g *CharGrid) Get(x, y int) (rune, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	return b.get(x, y)
}

// Set stores r at (x, y) and returns the previous value.
func (g *CharGrid) Set(x, y int, r rune) (rune, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	if !utf8.ValidRune(r) {
		return 0, fmt.Errorf("%w: %U", ErrInvalidChar, r)
	}
	return b.set(x, y, r)
}

func (g *CharGrid) Fill(r rune) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	if !utf8.ValidRune(r) {
		return fmt.Errorf("%w: %U", ErrInvalidChar, r)
	}
	b.fill(r)
	return nil
}

func (g *CharGrid) Row(y int) ([]rune, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.row(y)
}

func (g *CharGrid) Col(x int) ([]rune, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.col(x)
}

func (g *CharGrid) SetRow(y int, row []rune) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	if err := checkRunes(row); err != nil {
		return err
	}
	return b.setRow(y, row)
}

func (g *CharGrid) SetCol(x int, col []rune) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	if err := checkRunes(col); err != nil {
		return err
	}
	return b.setCol(x, col)
}

func checkRunes(runes []rune) error {
	for _, r := range runes {
		if !utf8.ValidRune(r) {
			return fmt.Errorf("%w: %U", ErrInvalidChar, r)
		}
	}
	return nil
}

// RowString returns row y up to the first zero cell.
func (g *CharGrid) RowString(y int) (string, error) {
	row, err := g.Row(y)
	if err != nil {
		return "", err
	}
	return string(untilZero(row)), nil
}

// SetRowString writes s to row y and zeroes the rest of the row.
func (g *CharGrid) SetRowString(y int, s string) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	row, err := padded([]rune(s), b.width)
	if err != nil {
		return err
	}
	return b.setRow(y, row)
}

func (g *CharGrid) ColString(x int) (string, error) {
	col, err := g.Col(x)
	if err != nil {
		return "", err
	}
	return string(untilZero(col)), nil
}

func (g *CharGrid) SetColString(x int, s string) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	col, err := padded([]rune(s), b.height)
	if err != nil {
		return err
	}
	return b.setCol(x, col)
}

// Data returns the cells encoded as UTF-8, row after row, zero cells
// included. This is the Utf8Data payload.
func (g *CharGrid) Data() ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return []byte(string(b.cells)), nil
}

// String returns the rows separated by '\n', each cut at its first zero cell.
// A consumed grid renders as "<consumed>".
func (g *CharGrid) String() string {
	b, err := g.ref()
	if err != nil {
		return "<consumed>"
	}
	rows := make([]string, b.height)
	for y := range rows {
		rows[y] = string(untilZero(b.cells[y*b.width : (y+1)*b.width]))
	}
	return strings.Join(rows, "\n")
}

// ToCp437Grid returns a copy encoded to code page 437. Characters without a
// code page 437 equivalent become '?'.
func (g *CharGrid) ToCp437Grid() (*Cp437Grid, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	out := &grid[byte]{width: b.width, height: b.height, cells: make([]byte, len(b.cells))}
	for i, r := range b.cells {
		c, ok := RuneToCp437(r)
		if !ok {
			c = cp437Missing
		}
		out.cells[i] = c
	}
	return &Cp437Grid{v: out}, nil
}

func (g *CharGrid) Clone() (*CharGrid, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return &CharGrid{v: b.clone()}, nil
}

func (g *CharGrid) Equal(other *CharGrid) bool {
	a, err := g.ref()
	if err != nil {
		return false
	}
	b, err := other.ref()
	if err != nil {
		return false
	}
	return a.equal(b)
}

func (g *CharGrid) Destroy() error {
	_, err := g.take()
	return err
}

func (g *CharGrid) IsValid() bool {
	return (*slot[grid[rune]])(g).valid()
}
