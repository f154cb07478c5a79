package servicepoint

import (
	"fmt"
	"slices"
)

// grid is the storage behind the one-value-per-cell grids, row after row.
type grid[T comparable] struct {
	width, height int
	cells         []T
}

func newGrid[T comparable](width, height int) (*grid[T], error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidDimensions, width, height)
	}
	return &grid[T]{width: width, height: height, cells: make([]T, width*height)}, nil
}

func loadGrid[T comparable](width, height int, cells []T) (*grid[T], error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: grid %dx%d needs %d cells, got %d", ErrInvalidLength, width, height, width*height, len(cells))
	}
	return &grid[T]{width: width, height: height, cells: slices.Clone(cells)}, nil
}

func (g *grid[T]) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, fmt.Errorf("%w: cell (%d, %d) outside %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return y*g.width + x, nil
}

func (g *grid[T]) get(x, y int) (T, error) {
	i, err := g.index(x, y)
	if err != nil {
		var zero T
		return zero, err
	}
	return g.cells[i], nil
}

func (g *grid[T]) set(x, y int, v T) (T, error) {
	i, err := g.index(x, y)
	if err != nil {
		var zero T
		return zero, err
	}
	old := g.cells[i]
	g.cells[i] = v
	return old, nil
}

func (g *grid[T]) fill(v T) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

func (g *grid[T]) row(y int) ([]T, error) {
	if y < 0 || y >= g.height {
		return nil, fmt.Errorf("%w: row %d of %d", ErrOutOfBounds, y, g.height)
	}
	return slices.Clone(g.cells[y*g.width : (y+1)*g.width]), nil
}

func (g *grid[T]) col(x int) ([]T, error) {
	if x < 0 || x >= g.width {
		return nil, fmt.Errorf("%w: column %d of %d", ErrOutOfBounds, x, g.width)
	}
	col := make([]T, g.height)
	for y := range col {
		col[y] = g.cells[y*g.width+x]
	}
	return col, nil
}

func (g *grid[T]) setRow(y int, row []T) error {
	if y < 0 || y >= g.height {
		return fmt.Errorf("%w: row %d of %d", ErrOutOfBounds, y, g.height)
	}
	if len(row) != g.width {
		return fmt.Errorf("%w: row needs %d cells, got %d", ErrInvalidLength, g.width, len(row))
	}
	copy(g.cells[y*g.width:], row)
	return nil
}

func (g *grid[T]) setCol(x int, col []T) error {
	if x < 0 || x >= g.width {
		return fmt.Errorf("%w: column %d of %d", ErrOutOfBounds, x, g.width)
	}
	if len(col) != g.height {
		return fmt.Errorf("%w: column needs %d cells, got %d", ErrInvalidLength, g.height, len(col))
	}
	for y, v := range col {
		g.cells[y*g.width+x] = v
	}
	return nil
}

// padded returns s extended with zero values to n cells. It fails when s is
// longer than n.
func padded[T comparable](s []T, n int) ([]T, error) {
	if len(s) > n {
		return nil, fmt.Errorf("%w: %d cells do not fit in %d", ErrInvalidLength, len(s), n)
	}
	out := make([]T, n)
	copy(out, s)
	return out, nil
}

// untilZero cuts s at its first zero value.
func untilZero[T comparable](s []T) []T {
	var zero T
	if i := slices.Index(s, zero); i >= 0 {
		return s[:i]
	}
	return s
}

func (g *grid[T]) clone() *grid[T] {
	return &grid[T]{width: g.width, height: g.height, cells: slices.Clone(g.cells)}
}

func (g *grid[T]) equal(o *grid[T]) bool {
	return g.width == o.width && g.height == o.height && slices.Equal(g.cells, o.cells)
}
