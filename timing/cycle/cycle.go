// Package cycle provides the strong numeric types the pipeline core uses to
// keep cycle counts, latencies, and addresses from being interchanged by
// accident.
package cycle

import "fmt"

// Cycle is a monotonically increasing simulation cycle counter.
type Cycle uint64

// Latency is a non-negative delta, in cycles, added to a Cycle to compute
// the cycle at which a value becomes observable.
type Latency uint64

// Addr is a 32-bit instruction/data address.
type Addr uint32

// Add returns c+l, saturating at the maximum representable Cycle instead of
// wrapping.
func (c Cycle) Add(l Latency) Cycle {
	sum := uint64(c) + uint64(l)
	if sum < uint64(c) {
		return Cycle(^uint64(0))
	}
	return Cycle(sum)
}

// Inc returns the next cycle.
func (c Cycle) Inc() Cycle {
	return c.Add(1)
}

// Sub returns c-o as a Latency, or 0 if o > c.
func (c Cycle) Sub(o Cycle) Latency {
	if o > c {
		return 0
	}
	return Latency(uint64(c) - uint64(o))
}

// String implements fmt.Stringer.
func (c Cycle) String() string {
	return fmt.Sprintf("%d", uint64(c))
}

// String implements fmt.Stringer.
func (a Addr) String() string {
	return fmt.Sprintf("0x%x", uint32(a))
}

// PC4 is the architectural word size added to a sequential-fetch PC.
const PC4 Addr = 4

// Next returns a+4, wrapping per normal uint32 arithmetic (addresses are
// not saturating; a 32-bit address space wraps like real hardware would).
func (a Addr) Next() Addr {
	return a + PC4
}
