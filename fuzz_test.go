package servicepoint

import (
	"testing"

	"github.com/pior/servicepoint/protocol"
)

// FuzzCommandFromPacket feeds arbitrary datagrams to the decoder. Decoding
// must fail with an error, never panic, and whatever decodes must encode back
// to a packet that decodes to the same command.
func FuzzCommandFromPacket(f *testing.F) {
	seed := func(c *Command, err error) {
		if err != nil {
			f.Fatal(err)
		}
		p, err := NewPacket(c)
		if err != nil {
			f.Fatal(err)
		}
		b, _ := p.Bytes()
		f.Add(b)
	}

	seed(NewClear(), nil)
	seed(NewBrightness(5))
	seed(NewUtf8Data(1, 1, LoadCharGrid("fuzz\nme")))
	g, _ := LoadCp437Ascii("seed", 4, false)
	seed(NewCp437Data(0, 0, g))
	for _, compression := range protocol.CompressionCodes {
		v, _ := LoadBitVec(16, []byte{0xaa, 0x55})
		seed(NewBitmapLinearXor(8, v, compression))
		m, _ := LoadBitmap(8, 2, []byte{0xf0, 0x0f})
		seed(NewBitmapLinearWin(8, 8, m, compression))
	}
	f.Add([]byte{})
	f.Add([]byte{0x00, 0x12, 0xff, 0xff, 0xff, 0xff, 0x67, 0x7a, 0, 0})
	f.Add([]byte{0x00, 0x12, 0, 0, 0, 8, 0x6c, 0x7a, 0, 0, 0x5d, 0xf0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		p, err := TryLoadPacket(data)
		if err != nil {
			return
		}
		c, err := CommandFromPacket(p)
		if err != nil {
			return
		}

		want, err := c.Clone()
		if err != nil {
			t.Fatal(err)
		}
		again, err := NewPacket(c)
		if err != nil {
			t.Fatalf("decoded command %s does not encode: %v", want, err)
		}
		decoded, err := CommandFromPacket(again)
		if err != nil {
			t.Fatalf("re-encoded %s does not decode: %v", want, err)
		}
		if !decoded.Equal(want) {
			t.Fatalf("round trip changed %s into %s", want, decoded)
		}
	})
}
