package servicepoint

import (
	"fmt"
	"strings"
)

// cp437Missing replaces characters code page 437 cannot represent.
const cp437Missing = '?'

// cp437Runes maps code page 437 to Unicode. 0x0a stays a line feed and 0xff
// is the no-break space, so the table has no duplicate runes.
var cp437Runes = [256]rune{
	/* 0x */ 0, '☺', '☻', '♥', '♦', '♣', '♠', '•', '◘', '○', '\n', '♂', '♀', '♪', '♫', '☼',
	/* 1x */ '►', '◄', '↕', '‼', '¶', '§', '▬', '↨', '↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
	/* 2x */ ' ', '!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	/* 3x */ '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	/* 4x */ '@', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	/* 5x */ 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', '[', '\\', ']', '^', '_',
	/* 6x */ '`', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	/* 7x */ 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', '{', '|', '}', '~', '⌂',
	/* 8x */ 'Ç', 'ü', 'é', 'â', 'ä', 'à', 'å', 'ç', 'ê', 'ë', 'è', 'ï', 'î', 'ì', 'Ä', 'Å',
	/* 9x */ 'É', 'æ', 'Æ', 'ô', 'ö', 'ò', 'û', 'ù', 'ÿ', 'Ö', 'Ü', '¢', '£', '¥', '₧', 'ƒ',
	/* Ax */ 'á', 'í', 'ó', 'ú', 'ñ', 'Ñ', 'ª', 'º', '¿', '⌐', '¬', '½', '¼', '¡', '«', '»',
	/* Bx */ '░', '▒', '▓', '│', '┤', '╡', '╢', '╖', '╕', '╣', '║', '╗', '╝', '╜', '╛', '┐',
	/* Cx */ '└', '┴', '┬', '├', '─', '┼', '╞', '╟', '╚', '╔', '╩', '╦', '╠', '═', '╬', '╧',
	/* Dx */ '╨', '╤', '╥', '╙', '╘', '╒', '╓', '╫', '╪', '┘', '┌', '█', '▄', '▌', '▐', '▀',
	/* Ex */ 'α', 'ß', 'Γ', 'π', 'Σ', 'σ', 'µ', 'τ', 'Φ', 'Θ', 'Ω', 'δ', '∞', 'φ', 'ε', '∩',
	/* Fx */ '≡', '±', '≥', '≤', '⌠', '⌡', '÷', '≈', '°', '∙', '·', '√', 'ⁿ', '²', '■', '\u00a0',
}

var cp437Codes = func() map[rune]byte {
	m := make(map[rune]byte, len(cp437Runes))
	for i, r := range cp437Runes {
		m[r] = byte(i)
	}
	return m
}()

// Cp437ToRune converts one code page 437 byte.
func Cp437ToRune(b byte) rune {
	return cp437Runes[b]
}

// RuneToCp437 converts one rune. ok is false when code page 437 has no such
// character.
func RuneToCp437(r rune) (b byte, ok bool) {
	b, ok = cp437Codes[r]
	return b, ok
}

// Cp437ToString converts code page 437 bytes to a string.
func Cp437ToString(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(cp437Runes[b])
	}
	return sb.String()
}

// StringToCp437 converts s to code page 437, replacing unknown characters
// with '?'.
func StringToCp437(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := cp437Codes[r]
		if !ok {
			b = cp437Missing
		}
		out = append(out, b)
	}
	return out
}

// strictCp437 converts s to code page 437 and fails on the first unknown
// character.
func strictCp437(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := cp437Codes[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChar, r)
		}
		out = append(out, b)
	}
	return out, nil
}
