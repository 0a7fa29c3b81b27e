// Package sample defines the two-field record handed from the producer to the
// consumer, and the policies generating it.
package sample

import "fmt"

// Sample is a value record produced once per production cycle.
type Sample struct {
	X uint32
	Y uint32
}

// String implements fmt.Stringer.
func (s Sample) String() string {
	return fmt.Sprintf("(x=%d, y=%d)", s.X, s.Y)
}
