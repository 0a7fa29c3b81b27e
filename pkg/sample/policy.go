package sample

import (
	"fmt"
	"sort"

	"github.com/valyala/fastrand"
)

// Policy generates the sample of a production cycle from the producer's
// cycle counter.
type Policy interface {
	Generate(counter uint32) Sample
	// Matches reports whether both fields of s could have been generated
	// in the same cycle.
	Matches(s Sample) bool
}

// Half sets x to the counter and y to x/2.
type Half struct{}

// Generate implements Policy.
func (Half) Generate(counter uint32) Sample {
	return Sample{X: counter, Y: counter / 2}
}

// Matches implements Policy.
func (Half) Matches(s Sample) bool {
	return s.Y == s.X/2
}

// HalfUp sets x to the counter and y to the half of the incremented counter,
// rounded down, which is what the firmware demo produces.
type HalfUp struct{}

// Generate implements Policy.
func (HalfUp) Generate(counter uint32) Sample {
	return Sample{X: counter, Y: halfUp(counter)}
}

// Matches implements Policy.
func (HalfUp) Matches(s Sample) bool {
	return s.Y == halfUp(s.X)
}

// (x+1)/2 without overflowing at math.MaxUint32.
func halfUp(x uint32) uint32 {
	return x/2 + x%2
}

// Random draws x from a pseudo random sequence and sets y to its complement.
// It is not safe for concurrent use, which is fine for a single producer.
type Random struct {
	rng fastrand.RNG
}

// NewRandom creates a Random policy. A zero seed picks a random one.
func NewRandom(seed uint32) *Random {
	p := &Random{}
	if seed == 0 {
		seed = fastrand.Uint32()
	}
	p.rng.Seed(seed)
	return p
}

// Generate implements Policy.
func (p *Random) Generate(uint32) Sample {
	x := p.rng.Uint32()
	return Sample{X: x, Y: ^x}
}

// Matches implements Policy.
func (p *Random) Matches(s Sample) bool {
	return s.Y == ^s.X
}

// Policy names.
const (
	PolicyHalf   = "half"
	PolicyHalfUp = "half-up"
	PolicyRandom = "random"
)

var policyFactories = map[string]func() Policy{
	PolicyHalf:   func() Policy { return Half{} },
	PolicyHalfUp: func() Policy { return HalfUp{} },
	PolicyRandom: func() Policy { return NewRandom(0) },
}

// PolicyByName creates a Policy from its name.
func PolicyByName(name string) (Policy, error) {
	factory, ok := policyFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample policy: %q", name)
	}
	return factory(), nil
}

// PolicyNames lists all known policy names.
func PolicyNames() []string {
	names := make([]string, 0, len(policyFactories))
	for name := range policyFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
