package servicepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCp437RoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	s := Cp437ToString(all)
	assert.Equal(t, all, StringToCp437(s))

	strict, err := strictCp437(s)
	require.NoError(t, err)
	assert.Equal(t, all, strict)
}

func TestCp437Conversions(t *testing.T) {
	assert.Equal(t, 'A', Cp437ToRune(0x41))
	assert.Equal(t, 'ä', Cp437ToRune(0x84))
	assert.Equal(t, '█', Cp437ToRune(0xdb))
	assert.Equal(t, '\n', Cp437ToRune(0x0a))

	b, ok := RuneToCp437(' ')
	assert.True(t, ok)
	assert.Equal(t, byte(0x20), b, "space is not confused with the no-break space")

	b, ok = RuneToCp437('\u00a0')
	assert.True(t, ok)
	assert.Equal(t, byte(0xff), b)

	_, ok = RuneToCp437('€')
	assert.False(t, ok)

	assert.Equal(t, []byte("a?b"), StringToCp437("a€b"))

	_, err := strictCp437("a€b")
	require.ErrorIs(t, err, ErrInvalidChar)
}
