package linear

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
)

// BenchmarkLinUCBPerformance compares exact and incremental inversion
func BenchmarkLinUCBPerformance(b *testing.B) {
	dimensions := []int{5, 10, 50}

	for _, d := range dimensions {
		b.Run(fmt.Sprintf("Select_exact_d%d", d), func(b *testing.B) {
			benchmarkSelect(b, d)
		})

		b.Run(fmt.Sprintf("Select_incremental_d%d", d), func(b *testing.B) {
			benchmarkSelect(b, d, WithIncrementalInverse(1000))
		})

		b.Run(fmt.Sprintf("Update_exact_d%d", d), func(b *testing.B) {
			benchmarkUpdate(b, d)
		})

		b.Run(fmt.Sprintf("Update_incremental_d%d", d), func(b *testing.B) {
			benchmarkUpdate(b, d, WithIncrementalInverse(1000))
		})
	}
}

func randomContexts(n, d int) [][]float64 {
	rng := rand.New(rand.NewPCG(42, 42))
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, d)
		for j := range out[i] {
			out[i][j] = rng.NormFloat64()
		}
	}
	return out
}

func benchmarkSelect(b *testing.B, d int, opts ...Option) {
	l, err := NewLinUCB(10, d, opts...)
	if err != nil {
		b.Fatalf("NewLinUCB() error = %v", err)
	}
	context := randomContexts(1, d)[0]

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := l.Select(context); err != nil {
			b.Fatalf("Select() error = %v", err)
		}
	}
}

func benchmarkUpdate(b *testing.B, d int, opts ...Option) {
	l, err := NewLinUCB(10, d, opts...)
	if err != nil {
		b.Fatalf("NewLinUCB() error = %v", err)
	}
	contexts := randomContexts(b.N, d)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := l.Update(i%10, 1, contexts[i]); err != nil {
			b.Fatalf("Update() error = %v", err)
		}
	}
}

// BenchmarkLinTSSelect measures one posterior sample per arm
func BenchmarkLinTSSelect(b *testing.B) {
	l, err := NewLinTS(10, 20, WithSeed(42))
	if err != nil {
		b.Fatalf("NewLinTS() error = %v", err)
	}
	context := randomContexts(1, 20)[0]

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := l.Select(context); err != nil {
			b.Fatalf("Select() error = %v", err)
		}
	}
}

// BenchmarkConcurrentUpdates exercises per-arm locking
func BenchmarkConcurrentUpdates(b *testing.B) {
	const d = 10
	l, err := NewLinUCB(8, d)
	if err != nil {
		b.Fatalf("NewLinUCB() error = %v", err)
	}
	contexts := randomContexts(256, d)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			x := contexts[i%len(contexts)]
			arm, err := l.Select(x)
			if err != nil {
				b.Errorf("Select() error = %v", err)
				return
			}
			if err := l.Update(arm, x[0], x); err != nil {
				b.Errorf("Update() error = %v", err)
				return
			}
			i++
		}
	})
}

func TestConcurrentSelectAndUpdate(t *testing.T) {
	const d = 4
	l, err := NewLinTS(6, d, WithSeed(1), WithIncrementalInverse(20))
	if err != nil {
		t.Fatalf("NewLinTS() error = %v", err)
	}
	contexts := randomContexts(64, d)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				x := contexts[(g*7+i)%len(contexts)]
				arm, err := l.Select(x)
				if err != nil {
					t.Errorf("Select() error = %v", err)
					return
				}
				if err := l.Update(arm, x[1], x); err != nil {
					t.Errorf("Update() error = %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	var total uint64
	for _, p := range l.Pulls() {
		total += p
	}
	if total != 800 {
		t.Errorf("total pulls = %d, want 800", total)
	}
}
