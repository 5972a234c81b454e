package firmware

import (
	"encoding/binary"
	"math/rand"
)

const (
	BUG_COUNTDOWN_MIN  = 5    // Lowest reseeded countdown.
	BUG_COUNTDOWN_SPAN = 5    // Number of possible countdown values.
	BUG_CORRUPT_BYTE   = 1    // Byte of the transition counter overwritten.
	BUG_CORRUPT_VALUE  = 0xaa // Value written over it.
)

// BugInjector periodically corrupts the transition counter.
//
// Enabled is a debugger controlled switch; the firmware never sets it.
type BugInjector struct {
	Enabled   bool             // Set from a debugger to simulate a bug.
	CountDown uint8            // Main loop iterations before the next corruption.
	Order     binary.ByteOrder // Memory layout of the counter, little endian if nil.
	Rand      *rand.Rand       // Countdown source, the global source if nil.

	Corruptions int // Number of corruptions performed.
}

// NewBugInjector returns a disarmed injector with a seeded countdown source.
func NewBugInjector(seed int64) BugInjector {
	return BugInjector{
		Rand: rand.New(rand.NewSource(seed)),
	}
}

// Reseed sets the countdown to a value in [5, 9].
func (bug *BugInjector) Reseed() {
	var n int
	if bug.Rand != nil {
		n = bug.Rand.Intn(BUG_COUNTDOWN_SPAN)
	} else {
		n = rand.Intn(BUG_COUNTDOWN_SPAN)
	}
	bug.CountDown = uint8(BUG_COUNTDOWN_MIN + n)
}

// Corrupt returns counter with byte BUG_CORRUPT_BYTE of its in-memory
// representation replaced by BUG_CORRUPT_VALUE. In little endian memory
// that is bits 8-15 of the counter, in big endian memory bits 16-23.
func (bug *BugInjector) Corrupt(counter uint32) uint32 {
	order := bug.Order
	if order == nil {
		order = binary.LittleEndian
	}

	var data [4]byte
	order.PutUint32(data[:], counter)
	data[BUG_CORRUPT_BYTE] = BUG_CORRUPT_VALUE

	return order.Uint32(data[:])
}

// Tick runs one main loop iteration of the injector. When the countdown has
// expired the counter is corrupted and the countdown reseeded, otherwise the
// countdown is decremented. Returns true if the counter was corrupted.
func (bug *BugInjector) Tick(counter *uint32) (corrupted bool) {
	if bug.CountDown == 0 {
		*counter = bug.Corrupt(*counter)
		bug.Corruptions++
		bug.Reseed()
		corrupted = true
		return
	}

	bug.CountDown--

	return
}
