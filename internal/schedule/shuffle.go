package schedule

import "math/rand/v2"

// Shuffler randomizes order. *rand.Rand satisfies it, which lets tests pin a seed.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// DefaultShuffler draws from the global math/rand/v2 source and is safe for
// concurrent use.
var DefaultShuffler Shuffler = globalShuffler{}

// NoShuffle keeps the order unchanged.
type NoShuffle struct{}

func (NoShuffle) Shuffle(int, func(i, j int)) {}
