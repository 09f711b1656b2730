// Package chart produces the mock candlestick series shown on the trader
// dashboard and keeps its last candle moving on an independent timer.
package chart

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

const (
	ColorUp   = "#22c55e"
	ColorDown = "#ef4444"

	// TickVolatility bounds a single live tick to ±half this value.
	TickVolatility = 0.00015

	DefaultCount = 40
	DefaultBase  = 1.0850
	DefaultStep  = 30 * time.Minute
)

// Timeframes are the selectable chart intervals. Selection is cosmetic.
var Timeframes = []string{"1m", "5m", "15m", "1h", "4h"}

func ValidTimeframe(tf string) bool {
	return slices.Contains(Timeframes, tf)
}

type Candle struct {
	Time  string     `json:"time"`
	Open  float64    `json:"open"`
	High  float64    `json:"high"`
	Low   float64    `json:"low"`
	Close float64    `json:"close"`
	Body  [2]float64 `json:"body"`
	Wick  [2]float64 `json:"wick"`
	Color string     `json:"color"`
}

// derive fills the presentational fields from OHLC.
func (c *Candle) derive() {
	c.Body = [2]float64{math.Min(c.Open, c.Close), math.Max(c.Open, c.Close)}
	c.Wick = [2]float64{c.Low, c.High}
	if c.Close > c.Open {
		c.Color = ColorUp
	} else {
		c.Color = ColorDown
	}
}

// Generate builds count candles ending at now, spaced step apart, each
// opening at the previous close.
func Generate(rng *rand.Rand, count int, base float64, now time.Time, step time.Duration) []Candle {
	out := make([]Candle, 0, count)
	price := base
	for i := 0; i < count; i++ {
		at := now.Add(-time.Duration(count-i) * step)
		vol := rng.Float64() * 0.0020
		change := (rng.Float64() - 0.5) * vol

		c := Candle{
			Time:  at.Format("15:04"),
			Open:  price,
			Close: price + change,
		}
		c.High = math.Max(c.Open, c.Close) + rng.Float64()*0.0005
		c.Low = math.Min(c.Open, c.Close) - rng.Float64()*0.0005
		c.derive()

		price = c.Close
		out = append(out, c)
	}
	return out
}

// Series is the live chart: a fixed candle history whose last element keeps
// walking.
type Series struct {
	mu        sync.RWMutex
	candles   []Candle
	timeframe string
	rng       *rand.Rand
}

func NewSeries(rng *rand.Rand, now time.Time) *Series {
	return &Series{
		candles:   Generate(rng, DefaultCount, DefaultBase, now, DefaultStep),
		timeframe: Timeframes[0],
		rng:       rng,
	}
}

func (s *Series) Candles() []Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Candle(nil), s.candles...)
}

func (s *Series) Last() Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candles[len(s.candles)-1]
}

func (s *Series) Timeframe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeframe
}

// SetTimeframe records the selection; returns false for unknown values.
func (s *Series) SetTimeframe(tf string) bool {
	if !ValidTimeframe(tf) {
		return false
	}
	s.mu.Lock()
	s.timeframe = tf
	s.mu.Unlock()
	return true
}

// Tick moves the last candle's close and widens its range if needed.
func (s *Series) Tick() Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &s.candles[len(s.candles)-1]
	c.Close += (s.rng.Float64() - 0.5) * TickVolatility
	if c.Close > c.High {
		c.High = c.Close
	}
	if c.Close < c.Low {
		c.Low = c.Close
	}
	c.derive()
	return *c
}

// Run ticks every interval and hands the updated candle to emit until ctx
// is cancelled.
func (s *Series) Run(ctx context.Context, interval time.Duration, emit func(Candle)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Debug("chart feed started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c := s.Tick()
			if emit != nil {
				emit(c)
			}
		}
	}
}
