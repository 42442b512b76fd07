package superopt

import (
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"time"
)

// Strategy is the closed set of search algorithms.
type Strategy int

const (
	StrategyRandom Strategy = iota
	StrategyExhaustive
	StrategyDiffing
	StrategyGenetic
)

var strategyNames = map[string]Strategy{
	"random":        StrategyRandom,
	"random-search": StrategyRandom,
	"random_search": StrategyRandom,
	"exhaustive":    StrategyExhaustive,
	"diffing":       StrategyDiffing,
	"hill-climb":    StrategyDiffing,
	"genetic":       StrategyGenetic,
	"ga":            StrategyGenetic,
}

func Strategies() []Strategy {
	return []Strategy{StrategyRandom, StrategyExhaustive, StrategyDiffing, StrategyGenetic}
}

func (s Strategy) String() string {
	switch s {
	case StrategyRandom:
		return "random"
	case StrategyExhaustive:
		return "exhaustive"
	case StrategyDiffing:
		return "diffing"
	case StrategyGenetic:
		return "genetic"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func ParseStrategy(name string) (Strategy, error) {
	if s, ok := strategyNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: [%s]", ErrUnknownStrategy, name)
}

const (
	DefaultMaxNum           uint8 = 255
	DefaultMinImm           uint8 = 0
	DefaultPopulationSize         = 100
	DefaultMutationRate           = 0.1
	DefaultStagnationLimit        = 100000
	DefaultBatchSize              = 1024
	DefaultProgressInterval       = time.Second
)

// DefaultMnemonics is the generator vocabulary. PUT and JMP are opt-in.
var DefaultMnemonics = []string{"LOAD", "SWAP", "XOR", "INC", "DECR", "ADD", "SUB"}

// DefaultWorkers leaves one CPU for the progress task.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}

// newWorkerRand gives every worker its own source so nothing contends on a
// shared generator. A zero seed means time-based.
func newWorkerRand(seed int64, worker int) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed + int64(worker)))
}
