package util

import (
	"fmt"
	"sync"
)

// GenerateLut samples f at length evenly spaced points from 0 to 1 inclusive.
func GenerateLut(f func(float64) float64, length int) []float64 {
	if length < 2 {
		length = 2
	}
	lut := make([]float64, length)
	last := float64(length - 1)
	for i := range lut {
		lut[i] = f(float64(i) / last)
	}
	return lut
}

// Memoizer caches lookup tables by name and length.
type Memoizer struct {
	mu   sync.Mutex
	luts map[string][]float64
}

func NewMemoizer() *Memoizer {
	m := new(Memoizer)
	m.luts = make(map[string][]float64)
	return m
}

// Lut returns the cached table for name and length, generating it from f on
// first use. Callers must not modify the result.
func (m *Memoizer) Lut(name string, length int, f func(float64) float64) []float64 {
	key := fmt.Sprintf("%s/%d", name, length)

	m.mu.Lock()
	defer m.mu.Unlock()
	if lut, ok := m.luts[key]; ok {
		return lut
	}
	lut := GenerateLut(f, length)
	m.luts[key] = lut
	return lut
}

// Len reports how many tables are cached.
func (m *Memoizer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.luts)
}
