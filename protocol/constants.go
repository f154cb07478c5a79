package protocol

import "fmt"

// HeaderSize is the size of the fixed packet header in bytes.
const HeaderSize = 10

// CommandCode identifies the command a packet carries (first header field).
type CommandCode uint16

// Command codes understood by the display.
//
// Header field usage per command:
//
//	Clear, HardReset, FadeOut, BitmapLegacy:  all zero, no payload
//	Brightness:                               all zero, one byte payload
//	CharBrightness, Cp437Data, Utf8Data:      A=tile x, B=tile y, C=width, D=height
//	BitmapLinear*:                            A=bit offset, B=uncompressed length, C=compression, D=0
//	BitmapLinearWin*:                         A=tile x, B=pixel y, C=tile width, D=pixel height
const (
	CmdClear          CommandCode = 0x0002
	CmdCp437Data      CommandCode = 0x0003
	CmdCharBrightness CommandCode = 0x0005
	CmdBrightness     CommandCode = 0x0007

	// CmdHardReset kills the display daemon, which usually reboots the display.
	CmdHardReset CommandCode = 0x000b
	CmdFadeOut   CommandCode = 0x000d

	// Deprecated: ignored by the real display.
	CmdBitmapLegacy CommandCode = 0x0010

	CmdBitmapLinear                CommandCode = 0x0012
	CmdBitmapLinearWinUncompressed CommandCode = 0x0013
	CmdBitmapLinearAnd             CommandCode = 0x0014
	CmdBitmapLinearOr              CommandCode = 0x0015
	CmdBitmapLinearXor             CommandCode = 0x0016
	CmdBitmapLinearWinZlib         CommandCode = 0x0017
	CmdBitmapLinearWinBzip2        CommandCode = 0x0018
	CmdBitmapLinearWinLzma         CommandCode = 0x0019
	CmdUtf8Data                    CommandCode = 0x0020
	CmdBitmapLinearWinZstd         CommandCode = 0x001a
)

var commandNames = map[CommandCode]string{
	CmdClear:                       "Clear",
	CmdCp437Data:                   "Cp437Data",
	CmdCharBrightness:              "CharBrightness",
	CmdBrightness:                  "Brightness",
	CmdHardReset:                   "HardReset",
	CmdFadeOut:                     "FadeOut",
	CmdBitmapLegacy:                "BitmapLegacy",
	CmdBitmapLinear:                "BitmapLinear",
	CmdBitmapLinearWinUncompressed: "BitmapLinearWinUncompressed",
	CmdBitmapLinearAnd:             "BitmapLinearAnd",
	CmdBitmapLinearOr:              "BitmapLinearOr",
	CmdBitmapLinearXor:             "BitmapLinearXor",
	CmdBitmapLinearWinZlib:         "BitmapLinearWinZlib",
	CmdBitmapLinearWinBzip2:        "BitmapLinearWinBzip2",
	CmdBitmapLinearWinLzma:         "BitmapLinearWinLzma",
	CmdUtf8Data:                    "Utf8Data",
	CmdBitmapLinearWinZstd:         "BitmapLinearWinZstd",
}

func (c CommandCode) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CommandCode(0x%04x)", uint16(c))
}

// ParseCommandCode returns the CommandCode for a raw header value.
func ParseCommandCode(v uint16) (CommandCode, error) {
	code := CommandCode(v)
	if _, ok := commandNames[code]; !ok {
		return 0, &InvalidCommandCodeError{Code: v}
	}
	return code, nil
}

// IsLinear reports whether the command is one of the BitmapLinear* commands,
// the only commands carrying a compression field in the header.
func (c CommandCode) IsLinear() bool {
	switch c {
	case CmdBitmapLinear, CmdBitmapLinearAnd, CmdBitmapLinearOr, CmdBitmapLinearXor:
		return true
	}
	return false
}

// WindowCompression returns the compression selected by a BitmapLinearWin* code.
// ok is false for any other command code.
func (c CommandCode) WindowCompression() (code CompressionCode, ok bool) {
	switch c {
	case CmdBitmapLinearWinUncompressed:
		return Uncompressed, true
	case CmdBitmapLinearWinZlib:
		return Zlib, true
	case CmdBitmapLinearWinBzip2:
		return Bzip2, true
	case CmdBitmapLinearWinLzma:
		return Lzma, true
	case CmdBitmapLinearWinZstd:
		return Zstd, true
	}
	return 0, false
}

// WindowCommandCode returns the BitmapLinearWin* code for a compression.
func WindowCommandCode(compression CompressionCode) (CommandCode, error) {
	switch compression {
	case Uncompressed:
		return CmdBitmapLinearWinUncompressed, nil
	case Zlib:
		return CmdBitmapLinearWinZlib, nil
	case Bzip2:
		return CmdBitmapLinearWinBzip2, nil
	case Lzma:
		return CmdBitmapLinearWinLzma, nil
	case Zstd:
		return CmdBitmapLinearWinZstd, nil
	}
	return 0, &InvalidCompressionCodeError{Code: uint16(compression)}
}
