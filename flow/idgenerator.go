package flow

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator hands out unique IDs for token requests and other
// simulation objects.
type IDGenerator interface {
	Generate() string
}

var idGen struct {
	sync.Mutex
	locked bool
	gen    IDGenerator
}

func selectIDGenerator(g IDGenerator) {
	idGen.Lock()
	defer idGen.Unlock()

	if idGen.locked {
		log.Panic("the ID generator cannot change once IDs were generated")
	}

	idGen.gen = g
	idGen.locked = true
}

// UseSequentialIDGenerator makes all subsequent IDs small sequential
// integers, so that repeated runs produce identical IDs.
func UseSequentialIDGenerator() {
	selectIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator makes ID generation safe for concurrent callers
// at the cost of determinism.
func UseParallelIDGenerator() {
	selectIDGenerator(parallelIDGenerator{})
}

// GetIDGenerator returns the generator for the current run, defaulting
// to the sequential one.
func GetIDGenerator() IDGenerator {
	idGen.Lock()
	defer idGen.Unlock()

	if !idGen.locked {
		idGen.gen = &sequentialIDGenerator{}
		idGen.locked = true
	}

	return idGen.gen
}

type sequentialIDGenerator struct {
	next uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}
