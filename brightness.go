package servicepoint

import (
	"fmt"
)

// Brightness is a display brightness level, BrightnessMin to BrightnessMax.
type Brightness uint8

const (
	BrightnessMin Brightness = 0
	BrightnessMax Brightness = 11
)

// ParseBrightness validates a raw brightness value.
func ParseBrightness(v byte) (Brightness, error) {
	if Brightness(v) > BrightnessMax {
		return 0, fmt.Errorf("%w: %d is above %d", ErrInvalidBrightness, v, BrightnessMax)
	}
	return Brightness(v), nil
}

// SaturatingBrightness clamps v into the valid range.
func SaturatingBrightness(v byte) Brightness {
	return min(Brightness(v), BrightnessMax)
}

// BrightnessGrid holds one Brightness per tile.
type BrightnessGrid slot[grid[Brightness]]

const typeBrightnessGrid = "BrightnessGrid"

func NewBrightnessGrid(width, height int) (*BrightnessGrid, error) {
	g, err := newGrid[Brightness](width, height)
	if err != nil {
		return nil, err
	}
	return &BrightnessGrid{v: g}, nil
}

// LoadBrightnessGrid returns a BrightnessGrid holding a copy of data. Any
// byte above BrightnessMax fails with ErrInvalidBrightness.
func LoadBrightnessGrid(width, height int, data []byte) (*BrightnessGrid, error) {
	cells := make([]Brightness, len(data))
	for i, v := range data {
		b, err := ParseBrightness(v)
		if err != nil {
			return nil, err
		}
		cells[i] = b
	}
	g, err := loadGrid(width, height, cells)
	if err != nil {
		return nil, err
	}
	return &BrightnessGrid{v: g}, nil
}

// SaturatingLoadBrightnessGrid is LoadBrightnessGrid with out of range
// values clamped to BrightnessMax.
func SaturatingLoadBrightnessGrid(width, height int, data []byte) (*BrightnessGrid, error) {
	cells := make([]Brightness, len(data))
	for i, v := range data {
		cells[i] = SaturatingBrightness(v)
	}
	g, err := loadGrid(width, height, cells)
	if err != nil {
		return nil, err
	}
	return &BrightnessGrid{v: g}, nil
}

// BrightnessGridFromByteGrid copies a ByteGrid, validating every cell.
func BrightnessGridFromByteGrid(src *ByteGrid) (*BrightnessGrid, error) {
	b, err := src.ref()
	if err != nil {
		return nil, err
	}
	return LoadBrightnessGrid(b.width, b.height, b.cells)
}

func (g *BrightnessGrid) ref() (*grid[Brightness], error) {
	return (*slot[grid[Brightness]])(g).get(typeBrightnessGrid)
}

func (g *BrightnessGrid) take() (*grid[Brightness], error) {
	return (*slot[grid[Brightness]])(g).take(typeBrightnessGrid)
}

func (g *BrightnessGrid) Size() (width, height int, err error) {
	b, err := g.ref()
	if err != nil {
		return 0, 0, err
	}
	return b.width, b.height, nil
}

func (g *BrightnessGrid) Get(x, y int) (Brightness, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	return b.get(x, y)
}

// Set stores v at (x, y) and returns the previous value. v must be a valid
// brightness.
func (g *BrightnessGrid) Set(x, y int, v Brightness) (Brightness, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	if _, err := ParseBrightness(byte(v)); err != nil {
		return 0, err
	}
	return b.set(x, y, v)
}

func (g *BrightnessGrid) Fill(v Brightness) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	if _, err := ParseBrightness(byte(v)); err != nil {
		return err
	}
	b.fill(v)
	return nil
}

func (g *BrightnessGrid) Row(y int) ([]Brightness, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.row(y)
}

func (g *BrightnessGrid) Col(x int) ([]Brightness, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.col(x)
}

func (g *BrightnessGrid) SetRow(y int, row []Brightness) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	if err := checkBrightness(row); err != nil {
		return err
	}
	return b.setRow(y, row)
}

func (g *BrightnessGrid) SetCol(x int, col []Brightness) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	if err := checkBrightness(col); err != nil {
		return err
	}
	return b.setCol(x, col)
}

func checkBrightness(values []Brightness) error {
	for _, v := range values {
		if _, err := ParseBrightness(byte(v)); err != nil {
			return err
		}
	}
	return nil
}

// Data returns the cells as raw bytes, row after row.
func (g *BrightnessGrid) Data() ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return brightnessBytes(b.cells), nil
}

func brightnessBytes(cells []Brightness) []byte {
	out := make([]byte, len(cells))
	for i, v := range cells {
		out[i] = byte(v)
	}
	return out
}

// ToByteGrid returns a copy as a ByteGrid.
func (g *BrightnessGrid) ToByteGrid() (*ByteGrid, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return &ByteGrid{v: &grid[byte]{width: b.width, height: b.height, cells: brightnessBytes(b.cells)}}, nil
}

func (g *BrightnessGrid) Clone() (*BrightnessGrid, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return &BrightnessGrid{v: b.clone()}, nil
}

func (g *BrightnessGrid) Equal(other *BrightnessGrid) bool {
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

func (g *BrightnessGrid) Destroy() error {
	_, err := g.take()
	return err
}

func (g *BrightnessGrid) IsValid() bool {
	return (*slot[grid[Brightness]])(g).valid()
}
