// Package predictor implements the pipeline's branch prediction /
// misprediction-recovery front end: a pluggable BTB-like structure keyed by
// instruction address.
package predictor

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/perfmips/timing/cycle"
)

// Predictor is the capability set every variant implements: query a
// prediction for a PC, and absorb the actual outcome once it is known.
type Predictor interface {
	// IsTaken returns the predicted taken/not-taken outcome for pc. An
	// unseen pc predicts not-taken, except under always_taken, which
	// predicts taken for every pc.
	IsTaken(pc cycle.Addr) bool

	// GetTarget returns the predicted target for pc. An unseen pc, or a
	// not-taken prediction, predicts the sequential address pc+4.
	GetTarget(pc cycle.Addr) cycle.Addr

	// Update absorbs the actual outcome of a resolved branch.
	Update(actualTaken bool, pc cycle.Addr, actualTarget cycle.Addr)
}

// Config selects and sizes a Predictor variant, mirroring the bp-mode /
// bp-size / bp-ways configuration surface.
type Config struct {
	Mode string
	Size uint32
	Ways uint32
}

// Mode name constants, matching the original config::bp_mode values.
const (
	ModeDynamicTwoBit     = "dynamic_two_bit"
	ModeAlwaysTaken       = "always_taken"
	ModeAlwaysNotTaken    = "always_not_taken"
	ModeStaticBackward    = "static_backward_taken"
	defaultBTBSize        = 128
	defaultBTBWays uint32 = 16
)

// DefaultConfig returns the original simulator's default predictor
// configuration.
func DefaultConfig() Config {
	return Config{Mode: ModeDynamicTwoBit, Size: defaultBTBSize, Ways: defaultBTBWays}
}

// New builds the Predictor variant named by cfg.Mode. An unknown mode is a
// fatal configuration error, and so, for dynamic_two_bit, is a bp-size that
// isn't a power of two or a bp-ways that doesn't divide bp-size. The other
// modes ignore bp-size and bp-ways.
func New(cfg Config) (Predictor, error) {
	switch cfg.Mode {
	case ModeAlwaysTaken:
		return alwaysTaken{}, nil
	case ModeAlwaysNotTaken:
		return alwaysNotTaken{}, nil
	case ModeStaticBackward:
		return newStaticBackwardTaken(), nil
	case ModeDynamicTwoBit:
		return newDynamicTwoBit(cfg.Size, cfg.Ways)
	default:
		return nil, fmt.Errorf("predictor: unknown bp-mode %q", cfg.Mode)
	}
}

// alwaysTaken always predicts taken. It is stateless: it never records an
// observed branch target, so GetTarget always returns the sequential
// address pc+4 and Update is a no-op. A taken branch whose target is not
// pc+4 is therefore always reported as a misprediction when it resolves at
// Memory.
type alwaysTaken struct{}

func (alwaysTaken) IsTaken(cycle.Addr) bool { return true }

func (alwaysTaken) GetTarget(pc cycle.Addr) cycle.Addr { return pc.Next() }

func (alwaysTaken) Update(bool, cycle.Addr, cycle.Addr) {}

// alwaysNotTaken never predicts taken.
type alwaysNotTaken struct{}

func (alwaysNotTaken) IsTaken(cycle.Addr) bool { return false }

func (alwaysNotTaken) GetTarget(pc cycle.Addr) cycle.Addr { return pc.Next() }

func (alwaysNotTaken) Update(bool, cycle.Addr, cycle.Addr) {}

// staticBackwardTaken predicts taken iff the only information available at
// fetch time (the PC itself) suggests a backward branch, approximated here
// by comparing pc against the last known target for that pc: a target
// address lower than pc implies a loop-closing backward branch. Before any
// update is observed for pc, it predicts not-taken, matching the "unseen PC
// returns false" rule.
type staticBackwardTaken struct {
	targets map[cycle.Addr]cycle.Addr
}

func newStaticBackwardTaken() *staticBackwardTaken {
	return &staticBackwardTaken{targets: make(map[cycle.Addr]cycle.Addr)}
}

func (p *staticBackwardTaken) IsTaken(pc cycle.Addr) bool {
	t, ok := p.targets[pc]
	return ok && t < pc
}

func (p *staticBackwardTaken) GetTarget(pc cycle.Addr) cycle.Addr {
	if t, ok := p.targets[pc]; ok && t < pc {
		return t
	}
	return pc.Next()
}

func (p *staticBackwardTaken) Update(_ bool, pc cycle.Addr, actualTarget cycle.Addr) {
	p.targets[pc] = actualTarget
}

// counterState is a 2-bit saturating counter. Predict-taken when >= 2.
type counterState uint8

const (
	strongNotTaken counterState = iota
	weakNotTaken
	weakTaken
	strongTaken
)

func (c counterState) taken() bool { return c >= weakTaken }

func (c counterState) bump(taken bool) counterState {
	if taken {
		if c < strongTaken {
			return c + 1
		}
		return c
	}
	if c > strongNotTaken {
		return c - 1
	}
	return c
}

type btbEntry struct {
	valid   bool
	tag     cycle.Addr
	target  cycle.Addr
	counter counterState
	lru     uint64
}

// dynamicTwoBit is the default variant: a set-associative BTB of size
// entries split into ways ways, 2-bit saturating counters, LRU
// replacement per set.
type dynamicTwoBit struct {
	entries  []btbEntry
	sets     uint32
	ways     uint32
	setMask  uint32
	lruClock uint64
}

func newDynamicTwoBit(size, ways uint32) (*dynamicTwoBit, error) {
	if size == 0 || bits.OnesCount32(size) != 1 {
		return nil, fmt.Errorf("predictor: bp-size %d is not a power of two", size)
	}
	if ways == 0 || size%ways != 0 {
		return nil, fmt.Errorf("predictor: bp-ways %d does not divide bp-size %d", ways, size)
	}

	sets := size / ways

	return &dynamicTwoBit{
		entries: make([]btbEntry, size),
		sets:    sets,
		ways:    ways,
		setMask: sets - 1,
	}, nil
}

func (p *dynamicTwoBit) setIndex(pc cycle.Addr) uint32 {
	return (uint32(pc) >> 2) & p.setMask
}

func (p *dynamicTwoBit) setSlice(set uint32) []btbEntry {
	base := set * p.ways
	return p.entries[base : base+p.ways]
}

func (p *dynamicTwoBit) find(pc cycle.Addr) (*btbEntry, int) {
	set := p.setSlice(p.setIndex(pc))
	for i := range set {
		if set[i].valid && set[i].tag == pc {
			return &set[i], i
		}
	}
	return nil, -1
}

func (p *dynamicTwoBit) IsTaken(pc cycle.Addr) bool {
	e, _ := p.find(pc)
	if e == nil {
		return false
	}
	return e.counter.taken()
}

func (p *dynamicTwoBit) GetTarget(pc cycle.Addr) cycle.Addr {
	e, _ := p.find(pc)
	if e == nil || !e.counter.taken() {
		return pc.Next()
	}
	return e.target
}

func (p *dynamicTwoBit) Update(actualTaken bool, pc cycle.Addr, actualTarget cycle.Addr) {
	p.lruClock++

	if e, _ := p.find(pc); e != nil {
		e.counter = e.counter.bump(actualTaken)
		e.target = actualTarget
		e.lru = p.lruClock
		return
	}

	set := p.setSlice(p.setIndex(pc))
	victim := 0
	for i := range set {
		if !set[i].valid {
			victim = i
			break
		}
		if set[i].lru < set[victim].lru {
			victim = i
		}
	}

	initial := weakNotTaken
	if actualTaken {
		initial = weakTaken
	}

	set[victim] = btbEntry{
		valid:   true,
		tag:     pc,
		target:  actualTarget,
		counter: initial,
		lru:     p.lruClock,
	}
}
