package market

import (
	"math"
	"sync"
	"time"
)

// Volatility keeps a rolling window of price samples and reports their
// sample standard deviation.
type Volatility struct {
	mu      sync.Mutex
	samples []priceSample
	window  time.Duration
}

type priceSample struct {
	Price float64
	Time  time.Time
}

func NewVolatility(window time.Duration) *Volatility {
	return &Volatility{window: window}
}

// Add records a sample and drops anything older than the window relative to t.
func (v *Volatility) Add(price float64, t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.samples = append(v.samples, priceSample{Price: price, Time: t})
	cutoff := t.Add(-v.window)
	i := 0
	for i < len(v.samples) && v.samples[i].Time.Before(cutoff) {
		i++
	}
	v.samples = v.samples[i:]
}

// StdDev returns 0 with fewer than two samples.
func (v *Volatility) StdDev() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := len(v.samples)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, s := range v.samples {
		sum += s.Price
	}
	mean := sum / float64(n)

	var sq float64
	for _, s := range v.samples {
		d := s.Price - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}

func (v *Volatility) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.samples)
}
