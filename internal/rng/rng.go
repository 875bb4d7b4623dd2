// Package rng provides seedable random sources that are safe to share between
// goroutines.
package rng

import (
	"math/rand/v2"
	"sync"
)

// Source is a mutex-guarded rand.Source.
type Source struct {
	mu  sync.Mutex
	src rand.Source
}

// New returns a PCG source. A zero seed draws a random seed.
func New(seed uint64) *Source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Source{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

// Wrap guards an existing source.
func Wrap(src rand.Source) *Source {
	if s, ok := src.(*Source); ok {
		return s
	}
	return &Source{src: src}
}

func (s *Source) Uint64() uint64 {
	s.mu.Lock()
	v := s.src.Uint64()
	s.mu.Unlock()
	return v
}

// Split derives an independent child source.
func (s *Source) Split() *Source {
	return New(s.Uint64() | 1)
}
