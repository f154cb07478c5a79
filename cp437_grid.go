package servicepoint

import (
	"fmt"
	"strings"
)

// Cp437Grid is a grid of code page 437 characters, one byte per tile. It is
// what the display renders with its built-in font.
type Cp437Grid slot[grid[byte]]

const typeCp437Grid = "Cp437Grid"

func NewCp437Grid(width, height int) (*Cp437Grid, error) {
	g, err := newGrid[byte](width, height)
	if err != nil {
		return nil, err
	}
	return &Cp437Grid{v: g}, nil
}

// LoadCp437Grid returns a Cp437Grid holding a copy of data.
func LoadCp437Grid(width, height int, data []byte) (*Cp437Grid, error) {
	g, err := loadGrid(width, height, data)
	if err != nil {
		return nil, err
	}
	return &Cp437Grid{v: g}, nil
}

// LoadCp437Ascii lays out text on a grid of the given width. Lines are split
// on '\n'. With wrap set, long lines continue on the next row; otherwise they
// are cut at width. Characters outside code page 437 become '?'.
func LoadCp437Ascii(text string, width int, wrap bool) (*Cp437Grid, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidDimensions, width)
	}

	var rows [][]byte
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		data := StringToCp437(line)
		if !wrap {
			rows = append(rows, data[:min(len(data), width)])
			continue
		}
		for len(data) > width {
			rows = append(rows, data[:width])
			data = data[width:]
		}
		rows = append(rows, data)
	}

	g, err := newGrid[byte](width, len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		copy(g.cells[y*width:], row)
	}
	return &Cp437Grid{v: g}, nil
}

func (g *Cp437Grid) ref() (*grid[byte], error) {
	return (*slot[grid[byte]])(g).get(typeCp437Grid)
}

func (g *Cp437Grid) take() (*grid[byte], error) {
	return (*slot[grid[byte]])(g).take(typeCp437Grid)
}

func (g *Cp437Grid) Size() (width, height int, err error) {
	b, err := g.ref()
	if err != nil {
		return 0, 0, err
	}
	return b.width, b.height, nil
}

func (g *Cp437Grid) Get(x, y int) (byte, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	return b.get(x, y)
}

// Set stores v at (x, y) and returns the previous value.
func (g *Cp437Grid) Set(x, y int, v byte) (byte, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	return b.set(x, y, v)
}

func (g *Cp437Grid) Fill(v byte) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	b.fill(v)
	return nil
}

func (g *Cp437Grid) Row(y int) ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.row(y)
}

func (g *Cp437Grid) Col(x int) ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.col(x)
}

func (g *Cp437Grid) SetRow(y int, row []byte) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	return b.setRow(y, row)
}

func (g *Cp437Grid) SetCol(x int, col []byte) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	return b.setCol(x, col)
}

// RowString decodes row y up to the first zero byte. An empty row reads as "".
func (g *Cp437Grid) RowString(y int) (string, error) {
	row, err := g.Row(y)
	if err != nil {
		return "", err
	}
	return Cp437ToString(untilZero(row)), nil
}

// SetRowString encodes s into row y and zeroes the rest of the row. s may
// not be longer than the grid is wide.
func (g *Cp437Grid) SetRowString(y int, s string) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	data, err := strictCp437(s)
	if err != nil {
		return err
	}
	row, err := padded(data, b.width)
	if err != nil {
		return err
	}
	return b.setRow(y, row)
}

func (g *Cp437Grid) ColString(x int) (string, error) {
	col, err := g.Col(x)
	if err != nil {
		return "", err
	}
	return Cp437ToString(untilZero(col)), nil
}

func (g *Cp437Grid) SetColString(x int, s string) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	data, err := strictCp437(s)
	if err != nil {
		return err
	}
	col, err := padded(data, b.height)
	if err != nil {
		return err
	}
	return b.setCol(x, col)
}

// Data returns a copy of the cells, row after row.
func (g *Cp437Grid) Data() ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.clone().cells, nil
}

// ToCharGrid returns a copy decoded to Unicode.
func (g *Cp437Grid) ToCharGrid() (*CharGrid, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	out := &grid[rune]{width: b.width, height: b.height, cells: make([]rune, len(b.cells))}
	for i, c := range b.cells {
		out.cells[i] = Cp437ToRune(c)
	}
	return &CharGrid{v: out}, nil
}

func (g *Cp437Grid) Clone() (*Cp437Grid, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return &Cp437Grid{v: b.clone()}, nil
}

func (g *Cp437Grid) Equal(other *Cp437Grid) bool {
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

func (g *Cp437Grid) Destroy() error {
	_, err := g.take()
	return err
}

func (g *Cp437Grid) IsValid() bool {
	return (*slot[grid[byte]])(g).valid()
}
