package servicepoint

import (
	"bytes"
	"fmt"
)

// Bitmap is a grid of on/off pixels packed 8 per byte, row after row.
// Pixel (x, y) is bit y*width+x. The width is always a multiple of 8.
type Bitmap slot[bitmap]

type bitmap struct {
	width, height int
	data          bits
}

const typeBitmap = "Bitmap"

func checkBitmapDims(width, height int) error {
	if width < 0 || height < 0 || width%8 != 0 {
		return fmt.Errorf("%w: bitmap %dx%d, width must be a multiple of 8", ErrInvalidDimensions, width, height)
	}
	return nil
}

// NewBitmap returns an all-off Bitmap.
func NewBitmap(width, height int) (*Bitmap, error) {
	if err := checkBitmapDims(width, height); err != nil {
		return nil, err
	}
	return &Bitmap{v: &bitmap{width: width, height: height, data: make(bits, width*height/8)}}, nil
}

// NewMaxSizedBitmap returns an all-off Bitmap covering the whole display.
func NewMaxSizedBitmap() *Bitmap {
	return &Bitmap{v: &bitmap{width: PixelWidth, height: PixelHeight, data: make(bits, PixelCount/8)}}
}

// LoadBitmap returns a Bitmap holding a copy of data.
func LoadBitmap(width, height int, data []byte) (*Bitmap, error) {
	if err := checkBitmapDims(width, height); err != nil {
		return nil, err
	}
	if want := width * height / 8; len(data) != want {
		return nil, fmt.Errorf("%w: bitmap %dx%d needs %d bytes, got %d", ErrInvalidLength, width, height, want, len(data))
	}
	return &Bitmap{v: &bitmap{width: width, height: height, data: bits(bytes.Clone(data))}}, nil
}

func (m *Bitmap) ref() (*bitmap, error) {
	return (*slot[bitmap])(m).get(typeBitmap)
}

func (m *Bitmap) take() (*bitmap, error) {
	return (*slot[bitmap])(m).take(typeBitmap)
}

func (b *bitmap) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0, fmt.Errorf("%w: pixel (%d, %d) outside %dx%d", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return y*b.width + x, nil
}

// Size returns the width and height in pixels.
func (m *Bitmap) Size() (width, height int, err error) {
	b, err := m.ref()
	if err != nil {
		return 0, 0, err
	}
	return b.width, b.height, nil
}

func (m *Bitmap) Get(x, y int) (bool, error) {
	b, err := m.ref()
	if err != nil {
		return false, err
	}
	i, err := b.index(x, y)
	if err != nil {
		return false, err
	}
	return b.data.get(i), nil
}

// Set sets pixel (x, y) and returns its previous value.
func (m *Bitmap) Set(x, y int, on bool) (bool, error) {
	b, err := m.ref()
	if err != nil {
		return false, err
	}
	i, err := b.index(x, y)
	if err != nil {
		return false, err
	}
	return b.data.set(i, on), nil
}

func (m *Bitmap) Fill(on bool) error {
	b, err := m.ref()
	if err != nil {
		return err
	}
	b.data.fill(on)
	return nil
}

// Row returns a copy of row y.
func (m *Bitmap) Row(y int) ([]bool, error) {
	b, err := m.ref()
	if err != nil {
		return nil, err
	}
	if y < 0 || y >= b.height {
		return nil, fmt.Errorf("%w: row %d of %d", ErrOutOfBounds, y, b.height)
	}
	row := make([]bool, b.width)
	for x := range row {
		row[x] = b.data.get(y*b.width + x)
	}
	return row, nil
}

// Data returns a copy of the packed bytes.
func (m *Bitmap) Data() ([]byte, error) {
	b, err := m.ref()
	if err != nil {
		return nil, err
	}
	return b.data.clone(), nil
}

func (m *Bitmap) Clone() (*Bitmap, error) {
	b, err := m.ref()
	if err != nil {
		return nil, err
	}
	return &Bitmap{v: b.clone()}, nil
}

func (b *bitmap) clone() *bitmap {
	return &bitmap{width: b.width, height: b.height, data: b.data.clone()}
}

func (b *bitmap) equal(o *bitmap) bool {
	return b.width == o.width && b.height == o.height && bytes.Equal(b.data, o.data)
}

// Equal reports whether both handles are valid and hold the same pixels.
func (m *Bitmap) Equal(other *Bitmap) bool {
	a, err := m.ref()
	if err != nil {
		return false
	}
	b, err := other.ref()
	if err != nil {
		return false
	}
	return a.equal(b)
}

// Destroy releases the value. Any later call on m returns ErrConsumed.
func (m *Bitmap) Destroy() error {
	_, err := m.take()
	return err
}

func (m *Bitmap) IsValid() bool {
	return (*slot[bitmap])(m).valid()
}
