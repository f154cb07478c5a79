package servicepoint

import (
	"time"

	"github.com/pior/servicepoint/protocol"
)

// Display geometry. The display is a grid of TileWidth x TileHeight tiles,
// each TileSize x TileSize pixels.
const (
	TileSize    = 8
	TileWidth   = 56
	TileHeight  = 20
	PixelWidth  = TileWidth * TileSize
	PixelHeight = TileHeight * TileSize
	PixelCount  = PixelWidth * PixelHeight
)

// FramePacing is the minimum time between two frames the display can keep up
// with. Frames sent faster than that are dropped by the display.
const FramePacing = 30 * time.Millisecond

// DefaultPort is the UDP port the display listens on.
const DefaultPort = 2342

// CompressionCode selects how bitmap payloads are compressed on the wire.
type CompressionCode = protocol.CompressionCode

const (
	Uncompressed = protocol.Uncompressed
	Bzip2        = protocol.Bzip2
	Zlib         = protocol.Zlib
	Lzma         = protocol.Lzma
	Zstd         = protocol.Zstd
)
