package machine

import (
	"fmt"
	"math"
)

// State is the memory bank. It is comparable with ==.
type State [MemSize]uint8

// Distance is the Euclidean distance between two states, treating every cell
// as an unsigned coordinate.
func (s State) Distance(o State) float64 {
	sum := 0.0
	for n := range s {
		d := float64(s[n]) - float64(o[n])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (s State) String() string {
	return fmt.Sprint([MemSize]uint8(s))
}
