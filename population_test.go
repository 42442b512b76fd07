package superopt

import (
	"math/rand"
	"sync"
	test "testing"

	"github.com/stretchr/testify/assert"

	"nickandperla.net/superopt/machine"
)

func TestSeedPopulation(t *test.T) {
	ev := makeEvaluator(t)
	gen := NewGenerator([]machine.Opcode{machine.OP_LOAD, machine.OP_SWAP}, 0, 3, rand.New(rand.NewSource(11)))
	input := makeFillProgram()

	pop := seedPopulation(25, input, gen, ev)
	assert.Equal(t, 25, pop.Len())

	fittest := pop.Fittest()
	assert.Zero(t, fittest.Distance)
	assert.True(t, input.Equal(fittest.Program))

	pop.mu.RLock()
	defer pop.mu.RUnlock()
	for _, m := range pop.members {
		assert.NotEmpty(t, m.Program)
		assert.LessOrEqual(t, len(m.Program), len(input))
		assert.Equal(t, ev.Evaluate(m.Program).Distance, m.Distance)
	}
}

func TestPopulationPick(t *test.T) {
	pop := makeUniformPopulation(4, 1)
	r := rand.New(rand.NewSource(2))

	picked := make(map[string]bool)
	for n := 0; n < 200; n++ {
		picked[pop.Pick(r).String()] = true
	}
	assert.Len(t, picked, 4)
}

func TestPopulationConcurrentAdmit(t *test.T) {
	pop := makeUniformPopulation(50, 100)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(w)))
			for n := 0; n < 500; n++ {
				parent := pop.Pick(r)
				child := scored{Program: append(parent.Clone(), machine.Inc(uint8(w%4))), Distance: float64(n % 100)}
				pop.Admit(child, parent, r)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 50, pop.Len())
	assert.Zero(t, pop.Fittest().Distance)
}
