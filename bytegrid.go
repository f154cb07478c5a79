package servicepoint

// ByteGrid is a grid of raw bytes, one per cell.
type ByteGrid slot[grid[byte]]

const typeByteGrid = "ByteGrid"

func NewByteGrid(width, height int) (*ByteGrid, error) {
	g, err := newGrid[byte](width, height)
	if err != nil {
		return nil, err
	}
	return &ByteGrid{v: g}, nil
}

// LoadByteGrid returns a ByteGrid holding a copy of data.
func LoadByteGrid(width, height int, data []byte) (*ByteGrid, error) {
	g, err := loadGrid(width, height, data)
	if err != nil {
		return nil, err
	}
	return &ByteGrid{v: g}, nil
}

func (g *ByteGrid) ref() (*grid[byte], error) {
	return (*slot[grid[byte]])(g).get(typeByteGrid)
}

func (g *ByteGrid) take() (*grid[byte], error) {
	return (*slot[grid[byte]])(g).take(typeByteGrid)
}

func (g *ByteGrid) Size() (width, height int, err error) {
	b, err := g.ref()
	if err != nil {
		return 0, 0, err
	}
	return b.width, b.height, nil
}

func (g *ByteGrid) Get(x, y int) (byte, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	return b.get(x, y)
}

// Set stores v at (x, y) and returns the previous value.
func (g *ByteGrid) Set(x, y int, v byte) (byte, error) {
	b, err := g.ref()
	if err != nil {
		return 0, err
	}
	return b.set(x, y, v)
}

func (g *ByteGrid) Fill(v byte) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	b.fill(v)
	return nil
}

func (g *ByteGrid) Row(y int) ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.row(y)
}

func (g *ByteGrid) Col(x int) ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.col(x)
}

func (g *ByteGrid) SetRow(y int, row []byte) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	return b.setRow(y, row)
}

func (g *ByteGrid) SetCol(x int, col []byte) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	return b.setCol(x, col)
}

// RowString returns the bytes of row y up to the first zero byte.
func (g *ByteGrid) RowString(y int) (string, error) {
	row, err := g.Row(y)
	if err != nil {
		return "", err
	}
	return string(untilZero(row)), nil
}

// SetRowString writes s to row y and zeroes the rest of the row.
func (g *ByteGrid) SetRowString(y int, s string) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	row, err := padded([]byte(s), b.width)
	if err != nil {
		return err
	}
	return b.setRow(y, row)
}

func (g *ByteGrid) ColString(x int) (string, error) {
	col, err := g.Col(x)
	if err != nil {
		return "", err
	}
	return string(untilZero(col)), nil
}

func (g *ByteGrid) SetColString(x int, s string) error {
	b, err := g.ref()
	if err != nil {
		return err
	}
	col, err := padded([]byte(s), b.height)
	if err != nil {
		return err
	}
	return b.setCol(x, col)
}

// Data returns a copy of the cells, row after row.
func (g *ByteGrid) Data() ([]byte, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return b.clone().cells, nil
}

func (g *ByteGrid) Clone() (*ByteGrid, error) {
	b, err := g.ref()
	if err != nil {
		return nil, err
	}
	return &ByteGrid{v: b.clone()}, nil
}

func (g *ByteGrid) Equal(other *ByteGrid) bool {
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

func (g *ByteGrid) Destroy() error {
	_, err := g.take()
	return err
}

func (g *ByteGrid) IsValid() bool {
	return (*slot[grid[byte]])(g).valid()
}
