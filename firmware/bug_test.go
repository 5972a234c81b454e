package firmware

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBugInjector_Reseed(t *testing.T) {
	assert := assert.New(t)

	bug := NewBugInjector(1)
	assert.False(bug.Enabled)

	seen := map[uint8]bool{}
	for range 1000 {
		bug.Reseed()
		assert.GreaterOrEqual(bug.CountDown, uint8(5))
		assert.LessOrEqual(bug.CountDown, uint8(9))
		seen[bug.CountDown] = true
	}
	assert.Len(seen, 5)

	// Without a source, the global one is used.
	bug = BugInjector{}
	bug.Reseed()
	assert.GreaterOrEqual(bug.CountDown, uint8(5))
	assert.LessOrEqual(bug.CountDown, uint8(9))
}

func TestBugInjector_Corrupt(t *testing.T) {
	assert := assert.New(t)

	bug := BugInjector{}
	assert.Equal(uint32(0x1122aa44), bug.Corrupt(0x11223344))
	assert.Equal(uint32(0x0000aa03), bug.Corrupt(3))

	var data [4]byte
	binary.LittleEndian.PutUint32(data[:], bug.Corrupt(0))
	assert.Equal(uint8(0xaa), data[1])

	bug.Order = binary.BigEndian
	assert.Equal(uint32(0x11aa3344), bug.Corrupt(0x11223344))
	assert.Equal(uint32(0x00aa0003), bug.Corrupt(3))
}

func TestBugInjector_Tick(t *testing.T) {
	assert := assert.New(t)

	bug := BugInjector{Rand: rand.New(rand.NewSource(7))}
	counter := uint32(3)

	// Countdown at zero: corrupt byte 1 and reseed.
	assert.True(bug.Tick(&counter))
	assert.Equal(uint32(0x0000aa03), counter)
	assert.GreaterOrEqual(bug.CountDown, uint8(5))
	assert.LessOrEqual(bug.CountDown, uint8(9))
	assert.Equal(1, bug.Corruptions)

	// Countdown above zero: only decrement.
	countdown := bug.CountDown
	assert.False(bug.Tick(&counter))
	assert.Equal(countdown-1, bug.CountDown)
	assert.Equal(uint32(0x0000aa03), counter)

	for bug.CountDown > 0 {
		assert.False(bug.Tick(&counter))
	}
	counter = 7
	assert.True(bug.Tick(&counter))
	assert.Equal(uint32(0x0000aa07), counter)
	assert.Equal(2, bug.Corruptions)
}
