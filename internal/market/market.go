package market

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var ErrUnknownAsset = errors.New("unknown asset")

// Asset is a tradable symbol with the payout percentage a winning binary
// option returns on its stake.
type Asset struct {
	Symbol string  `json:"symbol"`
	Income int     `json:"income"`
	Price  float64 `json:"price"`
}

// DefaultAssets is the selector's fixed symbol list.
func DefaultAssets() []Asset {
	return []Asset{
		{Symbol: "EURUSD", Income: 92, Price: 1.0850},
		{Symbol: "GBPUSD", Income: 88, Price: 1.2650},
		{Symbol: "USDJPY", Income: 85, Price: 149.50},
		{Symbol: "BTCUSD", Income: 80, Price: 67250.00},
	}
}

// Board holds the displayed asset prices and the currently selected asset.
// Each perturbation is also recorded as a volatility sample.
type Board struct {
	mu       sync.RWMutex
	assets   []Asset
	selected string
	vol      map[string]*Volatility
	now      func() time.Time
}

func NewBoard(assets []Asset, window time.Duration) *Board {
	b := &Board{
		assets: assets,
		vol:    make(map[string]*Volatility, len(assets)),
		now:    time.Now,
	}
	if len(assets) > 0 {
		b.selected = assets[0].Symbol
	}
	for _, a := range assets {
		b.vol[a.Symbol] = NewVolatility(window)
	}
	return b
}

func (b *Board) Assets() []Asset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Asset(nil), b.assets...)
}

func (b *Board) Get(symbol string) (Asset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.assets {
		if a.Symbol == symbol {
			return a, nil
		}
	}
	return Asset{}, ErrUnknownAsset
}

// Search returns assets whose symbol contains term, case-insensitively.
// An empty term matches everything.
func (b *Board) Search(term string) []Asset {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Asset, 0)
	for _, a := range b.Assets() {
		if strings.Contains(strings.ToLower(a.Symbol), term) {
			out = append(out, a)
		}
	}
	return out
}

func (b *Board) Select(symbol string) (Asset, error) {
	a, err := b.Get(symbol)
	if err != nil {
		return Asset{}, err
	}
	b.mu.Lock()
	b.selected = symbol
	b.mu.Unlock()
	return a, nil
}

func (b *Board) Selected() Asset {
	b.mu.RLock()
	sym := b.selected
	b.mu.RUnlock()
	a, _ := b.Get(sym)
	return a
}

// Pick returns a uniformly random asset.
func (b *Board) Pick(rng *rand.Rand) Asset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.assets[rng.IntN(len(b.assets))]
}

// Perturb nudges every price by up to ±0.05% and returns the new board.
func (b *Board) Perturb(rng *rand.Rand) []Asset {
	now := b.now()

	b.mu.Lock()
	for i := range b.assets {
		a := &b.assets[i]
		change := (rng.Float64() - 0.5) * 0.001
		a.Price = round(a.Price*(1+change), decimalsFor(a.Price))
		b.vol[a.Symbol].Add(a.Price, now)
	}
	out := append([]Asset(nil), b.assets...)
	b.mu.Unlock()
	return out
}

// Volatility returns the rolling price standard deviation for symbol.
func (b *Board) Volatility(symbol string) (float64, error) {
	b.mu.RLock()
	v, ok := b.vol[symbol]
	b.mu.RUnlock()
	if !ok {
		return 0, ErrUnknownAsset
	}
	return v.StdDev(), nil
}

func decimalsFor(price float64) int {
	switch {
	case price < 10:
		return 5
	case price < 1000:
		return 3
	default:
		return 2
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
