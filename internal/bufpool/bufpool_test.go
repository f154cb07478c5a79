package bufpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	p := New(64)

	buf := p.Get()
	require.Zero(t, buf.Len())
	require.GreaterOrEqual(t, buf.Cap(), 64)

	buf.WriteString("frame")
	p.Put(buf)

	again := p.Get()
	require.Zero(t, again.Len(), "buffers come back empty")
}
