package edge

// fallbackSeed replaces a zero seed so a refill always yields usable bits.
const fallbackSeed uint64 = 0x9e3779b97f4a7c15

// RandomPool hands out pseudo-random bits one at a time, lowest bit first.
// An empty pool is refilled from its seed source before the next bit is read.
type RandomPool struct {
	bits    uint64
	seed    func() uint64
	refills uint64
}

// NewRandomPool creates a pool refilled from seed.
// The pool starts empty, so the first Bit call draws a seed.
func NewRandomPool(seed func() uint64) *RandomPool {
	return &RandomPool{seed: seed}
}

// ClockSeed seeds from the microsecond reading of c.
func ClockSeed(c Clock) func() uint64 {
	return func() uint64 {
		return uint64(c.Now().Microseconds())
	}
}

// FixedSeed always refills with v. Used for reproducible runs.
func FixedSeed(v uint64) func() uint64 {
	return func() uint64 { return v }
}

// Bit consumes and returns the lowest bit.
func (p *RandomPool) Bit() bool {
	if p.bits == 0 {
		p.refill()
	}
	b := p.bits&1 == 1
	p.bits >>= 1
	return b
}

// Refills returns how many times the pool has been reseeded.
func (p *RandomPool) Refills() uint64 {
	return p.refills
}

func (p *RandomPool) refill() {
	var v uint64
	if p.seed != nil {
		v = p.seed()
	}
	if v == 0 {
		v = fallbackSeed
	}
	p.bits = v
	p.refills++
}
