package servicepoint

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pior/servicepoint/protocol"
)

// Kind identifies the variant of a Command.
type Kind uint8

const (
	KindClear Kind = iota + 1
	KindHardReset
	KindFadeOut
	KindBrightness
	KindCharBrightness
	KindBitmapLinear
	KindBitmapLinearAnd
	KindBitmapLinearOr
	KindBitmapLinearXor
	KindBitmapLinearWin
	KindCp437Data
	KindUtf8Data
	KindBitmapLegacy
)

var kindNames = map[Kind]string{
	KindClear:           "Clear",
	KindHardReset:       "HardReset",
	KindFadeOut:         "FadeOut",
	KindBrightness:      "Brightness",
	KindCharBrightness:  "CharBrightness",
	KindBitmapLinear:    "BitmapLinear",
	KindBitmapLinearAnd: "BitmapLinearAnd",
	KindBitmapLinearOr:  "BitmapLinearOr",
	KindBitmapLinearXor: "BitmapLinearXor",
	KindBitmapLinearWin: "BitmapLinearWin",
	KindCp437Data:       "Cp437Data",
	KindUtf8Data:        "Utf8Data",
	KindBitmapLegacy:    "BitmapLegacy",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// linearCodes maps linear bitmap kinds to their command codes.
var linearCodes = map[Kind]protocol.CommandCode{
	KindBitmapLinear:    protocol.CmdBitmapLinear,
	KindBitmapLinearAnd: protocol.CmdBitmapLinearAnd,
	KindBitmapLinearOr:  protocol.CmdBitmapLinearOr,
	KindBitmapLinearXor: protocol.CmdBitmapLinearXor,
}

// Command is one operation for the display. Each variant carries its own
// parameters and at most one payload, which the Command owns exclusively.
//
// Commands are built with the New* constructors. Constructors that take a
// grid or BitVec consume it once validation succeeds.
type Command slot[variant]

type variant struct {
	command
}

// command is implemented by one unexported type per variant.
type command interface {
	kind() Kind
	encode() (protocol.Header, []byte, error)
	clone() command
	equal(command) bool
	describe() string
}

const typeCommand = "Command"

func newCommand(c command) *Command {
	return &Command{v: &variant{command: c}}
}

func (c *Command) ref() (command, error) {
	v, err := (*slot[variant])(c).get(typeCommand)
	if err != nil {
		return nil, err
	}
	return v.command, nil
}

func (c *Command) take() (command, error) {
	v, err := (*slot[variant])(c).take(typeCommand)
	if err != nil {
		return nil, err
	}
	return v.command, nil
}

// bare covers the variants without parameters.
type bare struct {
	k    Kind
	code protocol.CommandCode
}

func (b bare) kind() Kind { return b.k }

func (b bare) encode() (protocol.Header, []byte, error) {
	return protocol.Header{CommandCode: uint16(b.code)}, nil, nil
}

func (b bare) clone() command { return b }

func (b bare) equal(o command) bool {
	ob, ok := o.(bare)
	return ok && ob == b
}

func (b bare) describe() string { return b.k.String() }

// NewClear returns a command that turns every pixel off.
func NewClear() *Command {
	return newCommand(bare{k: KindClear, code: protocol.CmdClear})
}

// NewHardReset returns a command that kills the display daemon, which
// usually restarts the display. Do not send it in normal operation.
func NewHardReset() *Command {
	return newCommand(bare{k: KindHardReset, code: protocol.CmdHardReset})
}

// NewFadeOut returns a command that slowly dims the display to black.
func NewFadeOut() *Command {
	return newCommand(bare{k: KindFadeOut, code: protocol.CmdFadeOut})
}

// NewBitmapLegacy returns the legacy bitmap command.
//
// Deprecated: the display ignores it.
func NewBitmapLegacy() *Command {
	return newCommand(bare{k: KindBitmapLegacy, code: protocol.CmdBitmapLegacy})
}

type brightnessCmd struct {
	value Brightness
}

func (b brightnessCmd) kind() Kind { return KindBrightness }

func (b brightnessCmd) encode() (protocol.Header, []byte, error) {
	return protocol.Header{CommandCode: uint16(protocol.CmdBrightness)}, []byte{byte(b.value)}, nil
}

func (b brightnessCmd) clone() command { return b }

func (b brightnessCmd) equal(o command) bool {
	ob, ok := o.(brightnessCmd)
	return ok && ob == b
}

func (b brightnessCmd) describe() string { return fmt.Sprintf("Brightness(%d)", b.value) }

// NewBrightness returns a command setting the brightness of the whole
// display. Values above BrightnessMax fail with ErrInvalidBrightness.
func NewBrightness(value byte) (*Command, error) {
	b, err := ParseBrightness(value)
	if err != nil {
		return nil, err
	}
	return newCommand(brightnessCmd{value: b}), nil
}

// tileWindow checks that a width x height area at tile (x, y) fits the
// display.
func tileWindow(x, y, width, height int) error {
	if x < 0 || y < 0 || x+width > TileWidth || y+height > TileHeight {
		return fmt.Errorf("%w: %dx%d tiles at (%d, %d) exceed %dx%d", ErrOutOfBounds, width, height, x, y, TileWidth, TileHeight)
	}
	return nil
}

// tileGridCmd is a grid of per-tile values placed at a tile origin.
type tileGridCmd[T comparable] struct {
	k    Kind
	code protocol.CommandCode
	x, y int
	grid *grid[T]
	// payload encodes the cells.
	payload func([]T) []byte
}

func (c *tileGridCmd[T]) kind() Kind { return c.k }

func (c *tileGridCmd[T]) encode() (protocol.Header, []byte, error) {
	return protocol.Header{
		CommandCode: uint16(c.code),
		A:           uint16(c.x),
		B:           uint16(c.y),
		C:           uint16(c.grid.width),
		D:           uint16(c.grid.height),
	}, c.payload(c.grid.cells), nil
}

func (c *tileGridCmd[T]) clone() command {
	cp := *c
	cp.grid = c.grid.clone()
	return &cp
}

func (c *tileGridCmd[T]) equal(o command) bool {
	oc, ok := o.(*tileGridCmd[T])
	return ok && oc.k == c.k && oc.x == c.x && oc.y == c.y && oc.grid.equal(c.grid)
}

func (c *tileGridCmd[T]) describe() string {
	return fmt.Sprintf("%s(%d, %d, %dx%d)", c.k, c.x, c.y, c.grid.width, c.grid.height)
}

func cp437Payload(cells []byte) []byte { return cells }

func utf8Payload(cells []rune) []byte { return []byte(string(cells)) }

func newBrightnessCmd(x, y int, g *grid[Brightness]) *tileGridCmd[Brightness] {
	return &tileGridCmd[Brightness]{k: KindCharBrightness, code: protocol.CmdCharBrightness, x: x, y: y, grid: g, payload: brightnessBytes}
}

func newCp437Cmd(x, y int, g *grid[byte]) *tileGridCmd[byte] {
	return &tileGridCmd[byte]{k: KindCp437Data, code: protocol.CmdCp437Data, x: x, y: y, grid: g, payload: cp437Payload}
}

func newUtf8Cmd(x, y int, g *grid[rune]) *tileGridCmd[rune] {
	return &tileGridCmd[rune]{k: KindUtf8Data, code: protocol.CmdUtf8Data, x: x, y: y, grid: g, payload: utf8Payload}
}

// NewCharBrightness returns a command setting the brightness of each tile
// covered by grid, placed at tile (x, y). It consumes grid.
func NewCharBrightness(x, y int, grid *BrightnessGrid) (*Command, error) {
	g, err := grid.ref()
	if err != nil {
		return nil, err
	}
	if err := tileWindow(x, y, g.width, g.height); err != nil {
		return nil, err
	}
	g, _ = grid.take()
	return newCommand(newBrightnessCmd(x, y, g)), nil
}

// NewCp437Data returns a command showing text at tile (x, y) with the
// display's code page 437 font. It consumes grid.
func NewCp437Data(x, y int, grid *Cp437Grid) (*Command, error) {
	g, err := grid.ref()
	if err != nil {
		return nil, err
	}
	if err := tileWindow(x, y, g.width, g.height); err != nil {
		return nil, err
	}
	g, _ = grid.take()
	return newCommand(newCp437Cmd(x, y, g)), nil
}

// NewUtf8Data returns a command showing Unicode text at tile (x, y). It
// consumes grid.
func NewUtf8Data(x, y int, grid *CharGrid) (*Command, error) {
	g, err := grid.ref()
	if err != nil {
		return nil, err
	}
	if err := tileWindow(x, y, g.width, g.height); err != nil {
		return nil, err
	}
	g, _ = grid.take()
	return newCommand(newUtf8Cmd(x, y, g)), nil
}

// linearCmd writes bits into the display framebuffer starting at a pixel
// offset. The display continues on the next row when a row is full.
type linearCmd struct {
	k           Kind
	offset      int
	bits        *bitVec
	compression CompressionCode
}

func (c *linearCmd) kind() Kind { return c.k }

func (c *linearCmd) encode() (protocol.Header, []byte, error) {
	payload, err := protocol.Compress(c.compression, c.bits.data)
	if err != nil {
		return protocol.Header{}, nil, err
	}
	return protocol.Header{
		CommandCode: uint16(linearCodes[c.k]),
		A:           uint16(c.offset),
		B:           uint16(len(c.bits.data)),
		C:           uint16(c.compression),
	}, payload, nil
}

func (c *linearCmd) clone() command {
	return &linearCmd{k: c.k, offset: c.offset, compression: c.compression, bits: bitVecFromBytes(c.bits.data.clone())}
}

func (c *linearCmd) equal(o command) bool {
	oc, ok := o.(*linearCmd)
	return ok && oc.k == c.k && oc.offset == c.offset && oc.compression == c.compression &&
		oc.bits.n == c.bits.n && bytes.Equal(oc.bits.data, c.bits.data)
}

func (c *linearCmd) describe() string {
	return fmt.Sprintf("%s(%d, %d bits, %s)", c.k, c.offset, c.bits.n, c.compression)
}

func newLinear(k Kind, offset int, bits *BitVec, compression CompressionCode) (*Command, error) {
	b, err := bits.ref()
	if err != nil {
		return nil, err
	}
	if !compression.Valid() {
		return nil, &protocol.InvalidCompressionCodeError{Code: uint16(compression)}
	}
	if offset < 0 || offset > math.MaxUint16 || offset+b.n > PixelCount {
		return nil, fmt.Errorf("%w: %d bits at offset %d exceed %d pixels", ErrOutOfBounds, b.n, offset, PixelCount)
	}
	if len(b.data) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes do not fit a packet", ErrInvalidLength, len(b.data))
	}
	b, _ = bits.take()
	return newCommand(&linearCmd{k: k, offset: offset, bits: b, compression: compression}), nil
}

// NewBitmapLinear returns a command overwriting pixels from offset on with
// bits. It consumes bits.
func NewBitmapLinear(offset int, bits *BitVec, compression CompressionCode) (*Command, error) {
	return newLinear(KindBitmapLinear, offset, bits, compression)
}

// NewBitmapLinearAnd is NewBitmapLinear combining bits with the current
// pixels using AND.
func NewBitmapLinearAnd(offset int, bits *BitVec, compression CompressionCode) (*Command, error) {
	return newLinear(KindBitmapLinearAnd, offset, bits, compression)
}

// NewBitmapLinearOr is NewBitmapLinear combining with OR.
func NewBitmapLinearOr(offset int, bits *BitVec, compression CompressionCode) (*Command, error) {
	return newLinear(KindBitmapLinearOr, offset, bits, compression)
}

// NewBitmapLinearXor is NewBitmapLinear combining with XOR.
func NewBitmapLinearXor(offset int, bits *BitVec, compression CompressionCode) (*Command, error) {
	return newLinear(KindBitmapLinearXor, offset, bits, compression)
}

// windowCmd draws a bitmap at a pixel origin. x is always tile aligned.
type windowCmd struct {
	x, y        int
	bitmap      *bitmap
	compression CompressionCode
}

func (c *windowCmd) kind() Kind { return KindBitmapLinearWin }

func (c *windowCmd) encode() (protocol.Header, []byte, error) {
	code, err := protocol.WindowCommandCode(c.compression)
	if err != nil {
		return protocol.Header{}, nil, err
	}
	payload, err := protocol.Compress(c.compression, c.bitmap.data)
	if err != nil {
		return protocol.Header{}, nil, err
	}
	return protocol.Header{
		CommandCode: uint16(code),
		A:           uint16(c.x / TileSize),
		B:           uint16(c.y),
		C:           uint16(c.bitmap.width / TileSize),
		D:           uint16(c.bitmap.height),
	}, payload, nil
}

func (c *windowCmd) clone() command {
	return &windowCmd{x: c.x, y: c.y, compression: c.compression, bitmap: c.bitmap.clone()}
}

func (c *windowCmd) equal(o command) bool {
	oc, ok := o.(*windowCmd)
	return ok && oc.x == c.x && oc.y == c.y && oc.compression == c.compression && oc.bitmap.equal(c.bitmap)
}

func (c *windowCmd) describe() string {
	return fmt.Sprintf("BitmapLinearWin(%d, %d, %dx%d, %s)", c.x, c.y, c.bitmap.width, c.bitmap.height, c.compression)
}

func pixelWindow(x, y, width, height int) error {
	if x%TileSize != 0 {
		return fmt.Errorf("%w: x %d is not a multiple of %d", ErrInvalidDimensions, x, TileSize)
	}
	if x < 0 || y < 0 || x+width > PixelWidth || y+height > PixelHeight {
		return fmt.Errorf("%w: %dx%d pixels at (%d, %d) exceed %dx%d", ErrOutOfBounds, width, height, x, y, PixelWidth, PixelHeight)
	}
	return nil
}

// NewBitmapLinearWin returns a command drawing bitmap with its top left
// corner at pixel (x, y). x must be a multiple of TileSize. It consumes
// bitmap.
func NewBitmapLinearWin(x, y int, bitmap *Bitmap, compression CompressionCode) (*Command, error) {
	b, err := bitmap.ref()
	if err != nil {
		return nil, err
	}
	if !compression.Valid() {
		return nil, &protocol.InvalidCompressionCodeError{Code: uint16(compression)}
	}
	if err := pixelWindow(x, y, b.width, b.height); err != nil {
		return nil, err
	}
	b, _ = bitmap.take()
	return newCommand(&windowCmd{x: x, y: y, bitmap: b, compression: compression}), nil
}

// Kind returns the variant of c.
func (c *Command) Kind() (Kind, error) {
	cmd, err := c.ref()
	if err != nil {
		return 0, err
	}
	return cmd.kind(), nil
}

// Origin returns the position of a grid or window command: in tiles for
// CharBrightness, Cp437Data and Utf8Data, in pixels for BitmapLinearWin.
func (c *Command) Origin() (x, y int, err error) {
	cmd, err := c.ref()
	if err != nil {
		return 0, 0, err
	}
	switch v := cmd.(type) {
	case *tileGridCmd[Brightness]:
		return v.x, v.y, nil
	case *tileGridCmd[byte]:
		return v.x, v.y, nil
	case *tileGridCmd[rune]:
		return v.x, v.y, nil
	case *windowCmd:
		return v.x, v.y, nil
	}
	return 0, 0, wrongVariant(cmd, "origin")
}

// Offset returns the pixel offset of a linear bitmap command.
func (c *Command) Offset() (int, error) {
	cmd, err := c.ref()
	if err != nil {
		return 0, err
	}
	if v, ok := cmd.(*linearCmd); ok {
		return v.offset, nil
	}
	return 0, wrongVariant(cmd, "offset")
}

// Compression returns the compression of a bitmap command.
func (c *Command) Compression() (CompressionCode, error) {
	cmd, err := c.ref()
	if err != nil {
		return 0, err
	}
	switch v := cmd.(type) {
	case *linearCmd:
		return v.compression, nil
	case *windowCmd:
		return v.compression, nil
	}
	return 0, wrongVariant(cmd, "compression")
}

// BrightnessValue returns the value of a Brightness command.
func (c *Command) BrightnessValue() (Brightness, error) {
	cmd, err := c.ref()
	if err != nil {
		return 0, err
	}
	if v, ok := cmd.(brightnessCmd); ok {
		return v.value, nil
	}
	return 0, wrongVariant(cmd, "brightness")
}

// BitVec returns a copy of the bits of a linear bitmap command.
func (c *Command) BitVec() (*BitVec, error) {
	cmd, err := c.ref()
	if err != nil {
		return nil, err
	}
	if v, ok := cmd.(*linearCmd); ok {
		return &BitVec{v: bitVecFromBytes(v.bits.data.clone())}, nil
	}
	return nil, wrongVariant(cmd, "BitVec")
}

// Bitmap returns a copy of the bitmap of a BitmapLinearWin command.
func (c *Command) Bitmap() (*Bitmap, error) {
	cmd, err := c.ref()
	if err != nil {
		return nil, err
	}
	if v, ok := cmd.(*windowCmd); ok {
		return &Bitmap{v: v.bitmap.clone()}, nil
	}
	return nil, wrongVariant(cmd, "Bitmap")
}

// BrightnessGrid returns a copy of the grid of a CharBrightness command.
func (c *Command) BrightnessGrid() (*BrightnessGrid, error) {
	cmd, err := c.ref()
	if err != nil {
		return nil, err
	}
	if v, ok := cmd.(*tileGridCmd[Brightness]); ok {
		return &BrightnessGrid{v: v.grid.clone()}, nil
	}
	return nil, wrongVariant(cmd, "BrightnessGrid")
}

// Cp437Grid returns a copy of the grid of a Cp437Data command.
func (c *Command) Cp437Grid() (*Cp437Grid, error) {
	cmd, err := c.ref()
	if err != nil {
		return nil, err
	}
	if v, ok := cmd.(*tileGridCmd[byte]); ok {
		return &Cp437Grid{v: v.grid.clone()}, nil
	}
	return nil, wrongVariant(cmd, "Cp437Grid")
}

// CharGrid returns a copy of the grid of a Utf8Data command.
func (c *Command) CharGrid() (*CharGrid, error) {
	cmd, err := c.ref()
	if err != nil {
		return nil, err
	}
	if v, ok := cmd.(*tileGridCmd[rune]); ok {
		return &CharGrid{v: v.grid.clone()}, nil
	}
	return nil, wrongVariant(cmd, "CharGrid")
}

func wrongVariant(cmd command, what string) error {
	return fmt.Errorf("%w: %s has no %s", ErrWrongVariant, cmd.kind(), what)
}

func (c *Command) String() string {
	cmd, err := c.ref()
	if err != nil {
		return "Command(<consumed>)"
	}
	return cmd.describe()
}

// Clone returns a deep copy of c, payload included.
func (c *Command) Clone() (*Command, error) {
	cmd, err := c.ref()
	if err != nil {
		return nil, err
	}
	return newCommand(cmd.clone()), nil
}

// Equal reports whether both commands are valid and have the same variant,
// parameters and payload.
func (c *Command) Equal(other *Command) bool {
	a, err := c.ref()
	if err != nil {
		return false
	}
	b, err := other.ref()
	if err != nil {
		return false
	}
	return a.equal(b)
}

func (c *Command) Destroy() error {
	_, err := c.take()
	return err
}

func (c *Command) IsValid() bool {
	return (*slot[variant])(c).valid()
}
