package dsp

import (
	"runtime"
	"sync"
)

// Parallel runs fn(i) for i in [0, n) across a bounded worker pool and
// returns once every call has completed. workers <= 0 means GOMAXPROCS.
// No third-party worker-pool package appears anywhere in the examples
// pack for this concern (see DESIGN.md), so this is a small helper over
// sync.WaitGroup and a semaphore channel, in the teacher's no-framework
// style (the teacher itself uses bare goroutines for its Pass 1/Pass 2
// producer goroutines in cmd/jivefire/main.go).
func Parallel(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}

// TreeSum reduces per-item vectors (one []float64 per item, all equal
// length) deterministically by pairwise tree reduction, per spec §5's
// requirement that spectrum-averaging summation order stay fixed
// regardless of how many workers produced the partial results.
func TreeSum(parts [][]float64) []float64 {
	if len(parts) == 0 {
		return nil
	}
	level := make([][]float64, len(parts))
	copy(level, parts)
	for len(level) > 1 {
		next := make([][]float64, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			a, b := level[i], level[i+1]
			sum := make([]float64, len(a))
			for k := range a {
				sum[k] = a[k] + b[k]
			}
			next = append(next, sum)
		}
		level = next
	}
	return level[0]
}
