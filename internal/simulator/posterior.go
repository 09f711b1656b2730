package simulator

import (
	"fmt"
	"math"
)

// Posterior is a Beta distribution over the simulated win rate. The prior
// Beta(40, 20) matches the seeded account's 40 wins and 20 losses.
type Posterior struct {
	Alpha int64
	Beta  int64
}

func NewPosterior() *Posterior {
	return &Posterior{Alpha: 40, Beta: 20}
}

func (p *Posterior) Update(wins, losses int64) {
	p.Alpha += wins
	p.Beta += losses
}

func (p *Posterior) Mean() float64 {
	if p.Alpha+p.Beta == 0 {
		return 0.5
	}
	return float64(p.Alpha) / float64(p.Alpha+p.Beta)
}

// Median uses (a - 1/3) / (a + b - 2/3), accurate for a, b > 1.
func (p *Posterior) Median() float64 {
	a, b := float64(p.Alpha), float64(p.Beta)
	if a+b == 0 {
		return 0.5
	}
	if a > 1 && b > 1 {
		return (a - 1.0/3) / (a + b - 2.0/3)
	}
	return a / (a + b)
}

// CredibleInterval is the normal approximation to the central interval
// holding the given probability mass.
func (p *Posterior) CredibleInterval(confidence float64) [2]float64 {
	a, b := float64(p.Alpha), float64(p.Beta)
	if a+b == 0 {
		return [2]float64{0, 1}
	}
	mean := a / (a + b)
	sd := math.Sqrt((a * b) / ((a + b) * (a + b) * (a + b + 1)))
	z := math.Sqrt2 * math.Erfinv(confidence)
	return [2]float64{math.Max(0, mean-z*sd), math.Min(1, mean+z*sd)}
}

func (p *Posterior) String() string {
	return fmt.Sprintf("Beta(%d, %d)", p.Alpha, p.Beta)
}

type PosteriorView struct {
	Alpha    int64      `json:"alpha"`
	Beta     int64      `json:"beta"`
	Mean     float64    `json:"mean"`
	Median   float64    `json:"median"`
	Interval [2]float64 `json:"ci95"`
}

func (p *Posterior) View() PosteriorView {
	return PosteriorView{
		Alpha:    p.Alpha,
		Beta:     p.Beta,
		Mean:     p.Mean(),
		Median:   p.Median(),
		Interval: p.CredibleInterval(0.95),
	}
}
