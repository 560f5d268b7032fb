//go:build amd64

package detour

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeJump(t *testing.T) {
	const site = uintptr(0x7f00_0000_0000)

	cases := map[string]struct {
		target uintptr
		disp   int32
		err    error
	}{
		"forward": {
			target: site + 0x100,
			disp:   0x100 - jumpSize,
		},
		"backward": {
			target: site - 0x100,
			disp:   -0x100 - jumpSize,
		},
		"to itself": {
			target: site,
			disp:   -jumpSize,
		},
		"max forward": {
			target: site + jumpSize + math.MaxInt32,
			disp:   math.MaxInt32,
		},
		"max backward": {
			target: site + jumpSize - (1 << 31),
			disp:   math.MinInt32,
		},
		"past max forward": {
			target: site + jumpSize + math.MaxInt32 + 1,
			err:    ErrOutOfRange,
		},
		"past max backward": {
			target: site + jumpSize - (1 << 31) - 1,
			err:    ErrOutOfRange,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			jmp, err := EncodeJump(site, tc.target)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, byte(opcodeJMP), jmp[0])
			assert.Equal(t, tc.disp, int32(binary.LittleEndian.Uint32(jmp[1:])))
		})
	}
}

func TestInsertJump(t *testing.T) {
	buf := make([]byte, 8)
	require.NoError(t, insertJump(buf, 0x1000, 0x2000))
	assert.Equal(t, []byte{opcodeJMP, 0xfb, 0x0f, 0x00, 0x00, opcodeINT3, opcodeINT3, opcodeINT3}, buf)

	assert.ErrorIs(t, insertJump(make([]byte, 4), 0x1000, 0x2000), ErrPatchSizeTooSmall)
}

func TestEncodeRelay(t *testing.T) {
	assert := assert.New(t)

	relay := encodeRelay(0x1122334455667788, 0xaabbccdd)
	assert.Equal([]byte{
		0x48, 0xba, 0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
		0xff, 0x25, 0x00, 0x00, 0x00, 0x00,
		0xdd, 0xcc, 0xbb, 0xaa, 0x00, 0x00, 0x00, 0x00,
	}, relay)
	assert.Len(relay, relaySize)

	relay = encodeRelay(0, 0xaabbccdd)
	assert.Equal([]byte{0xff, 0x25, 0x00, 0x00, 0x00, 0x00, 0xdd, 0xcc, 0xbb, 0xaa, 0x00, 0x00, 0x00, 0x00}, relay)
}

func TestEncodeStub(t *testing.T) {
	buf := make([]byte, StubSize)
	encodeStub(buf, 0x1234)
	assert.Equal(t, []byte{
		0xff, 0x25, 0x02, 0x00, 0x00, 0x00, opcodeINT3, opcodeINT3,
		0x34, 0x12, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}, buf)
}
