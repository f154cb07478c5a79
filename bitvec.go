package servicepoint

import (
	"bytes"
	"fmt"
)

// bits is the packed storage shared by BitVec and Bitmap.
// Bit i lives in byte i/8 under mask 0x80>>(i%8), most significant bit first,
// which is the order the display reads pixels in.
type bits []byte

func (b bits) get(i int) bool {
	return b[i/8]&(0x80>>(i%8)) != 0
}

func (b bits) set(i int, on bool) bool {
	mask := byte(0x80) >> (i % 8)
	old := b[i/8]&mask != 0
	if on {
		b[i/8] |= mask
	} else {
		b[i/8] &^= mask
	}
	return old
}

func (b bits) fill(on bool) {
	var v byte
	if on {
		v = 0xff
	}
	for i := range b {
		b[i] = v
	}
}

func (b bits) clone() bits {
	return bytes.Clone(b)
}

// BitVec is a fixed length sequence of bits. The length is always a
// multiple of 8.
type BitVec slot[bitVec]

type bitVec struct {
	n    int
	data bits
}

const typeBitVec = "BitVec"

// NewBitVec returns a BitVec of n zero bits.
func NewBitVec(n int) (*BitVec, error) {
	if n < 0 || n%8 != 0 {
		return nil, fmt.Errorf("%w: bit length %d is not a multiple of 8", ErrInvalidDimensions, n)
	}
	return &BitVec{v: &bitVec{n: n, data: make(bits, n/8)}}, nil
}

// LoadBitVec returns a BitVec of n bits holding a copy of data.
func LoadBitVec(n int, data []byte) (*BitVec, error) {
	if n < 0 || n%8 != 0 {
		return nil, fmt.Errorf("%w: bit length %d is not a multiple of 8", ErrInvalidDimensions, n)
	}
	if len(data) != n/8 {
		return nil, fmt.Errorf("%w: %d bits need %d bytes, got %d", ErrInvalidLength, n, n/8, len(data))
	}
	return &BitVec{v: &bitVec{n: n, data: bits(bytes.Clone(data))}}, nil
}

// bitVecFromBytes takes ownership of data.
func bitVecFromBytes(data []byte) *bitVec {
	return &bitVec{n: len(data) * 8, data: data}
}

func (v *BitVec) ref() (*bitVec, error) {
	return (*slot[bitVec])(v).get(typeBitVec)
}

func (v *BitVec) take() (*bitVec, error) {
	return (*slot[bitVec])(v).take(typeBitVec)
}

// Len returns the number of bits.
func (v *BitVec) Len() (int, error) {
	b, err := v.ref()
	if err != nil {
		return 0, err
	}
	return b.n, nil
}

func (b *bitVec) check(i int) error {
	if i < 0 || i >= b.n {
		return fmt.Errorf("%w: bit %d of %d", ErrOutOfBounds, i, b.n)
	}
	return nil
}

// Get returns bit i.
func (v *BitVec) Get(i int) (bool, error) {
	b, err := v.ref()
	if err != nil {
		return false, err
	}
	if err := b.check(i); err != nil {
		return false, err
	}
	return b.data.get(i), nil
}

// Set sets bit i and returns its previous value.
func (v *BitVec) Set(i int, on bool) (bool, error) {
	b, err := v.ref()
	if err != nil {
		return false, err
	}
	if err := b.check(i); err != nil {
		return false, err
	}
	return b.data.set(i, on), nil
}

// Fill sets every bit to on.
func (v *BitVec) Fill(on bool) error {
	b, err := v.ref()
	if err != nil {
		return err
	}
	b.data.fill(on)
	return nil
}

// Data returns a copy of the packed bytes.
func (v *BitVec) Data() ([]byte, error) {
	b, err := v.ref()
	if err != nil {
		return nil, err
	}
	return b.data.clone(), nil
}

func (v *BitVec) Clone() (*BitVec, error) {
	b, err := v.ref()
	if err != nil {
		return nil, err
	}
	return &BitVec{v: &bitVec{n: b.n, data: b.data.clone()}}, nil
}

// Equal reports whether both handles are valid and hold the same bits.
func (v *BitVec) Equal(other *BitVec) bool {
	a, err := v.ref()
	if err != nil {
		return false
	}
	b, err := other.ref()
	if err != nil {
		return false
	}
	return a.n == b.n && bytes.Equal(a.data, b.data)
}

// Destroy releases the value. Any later call on v returns ErrConsumed.
func (v *BitVec) Destroy() error {
	_, err := v.take()
	return err
}

// IsValid reports whether v still owns its value.
func (v *BitVec) IsValid() bool {
	return (*slot[bitVec])(v).valid()
}
