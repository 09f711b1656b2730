package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sdibella/leadoptions/internal/financials"
	"github.com/sdibella/leadoptions/internal/market"
	"github.com/sdibella/leadoptions/internal/money"
	"github.com/sdibella/leadoptions/internal/simulator"
)

var (
	colorText   = lipgloss.Color("#cdd6f4")
	colorMuted  = lipgloss.Color("#7f849c")
	colorGreen  = lipgloss.Color("#a6e3a1")
	colorRed    = lipgloss.Color("#f38ba8")
	colorAccent = lipgloss.Color("#89b4fa")

	titleStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			Width(18)
)

func simulateCmd() *cobra.Command {
	var (
		trades  int
		seed    uint64
		winRate float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the trade simulator offline and print the dashboard cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			if trades <= 0 {
				return fmt.Errorf("--trades must be positive, got %d", trades)
			}
			if winRate < 0 || winRate > 1 {
				return fmt.Errorf("--win-rate must be between 0 and 1, got %v", winRate)
			}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}

			holder := financials.NewHolder(financials.Seed())
			board := market.NewBoard(market.DefaultAssets(), 5*time.Minute)
			eng := simulator.NewEngine(holder, board, rand.New(rand.NewPCG(seed, 1)),
				simulator.Options{WinRate: winRate, HistorySize: trades}, nil)

			for range trades {
				eng.DriftOnce()
				eng.TradeOnce()
			}

			fmt.Println(renderReport(holder.Snapshot(), eng.Summary(), eng.Posterior(), board.Assets()))
			return nil
		},
	}
	cmd.Flags().IntVar(&trades, "trades", 50, "number of simulated trades")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().Float64Var(&winRate, "win-rate", 0.65, "probability a trade settles as a win")
	return cmd
}

func accentColor(accent string) lipgloss.Color {
	switch accent {
	case "green":
		return colorGreen
	case "red":
		return colorRed
	default:
		return colorText
	}
}

func renderReport(st financials.State, sum simulator.Summary, post simulator.PosteriorView, assets []market.Asset) string {
	var cards []string
	for _, s := range st.Stats() {
		value := lipgloss.NewStyle().Foreground(accentColor(s.Accent)).Bold(true).Render(s.Value)
		cards = append(cards, cardStyle.Render(labelStyle.Render(s.Label)+"\n"+value))
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)

	pnlColor := colorGreen
	if sum.NetPnL.IsNegative() {
		pnlColor = colorRed
	}
	lines := []string{
		titleStyle.Render("Simulation"),
		row1,
		row2,
		"",
		labelStyle.Render("trades    ") + fmt.Sprintf("%d (%d won, %d lost, %.1f%%)", sum.Trades, sum.Wins, sum.Losses, sum.WinRate*100),
		labelStyle.Render("net pnl   ") + lipgloss.NewStyle().Foreground(pnlColor).Render(money.USD(sum.NetPnL)),
		labelStyle.Render("streak    ") + fmt.Sprintf("%+d", sum.Streak),
		labelStyle.Render("drawdown  ") + fmt.Sprintf("%.2f%%", sum.MaxDrawdown),
		labelStyle.Render("posterior ") + fmt.Sprintf("Beta(%d, %d) mean %.3f, 95%% [%.3f, %.3f]",
			post.Alpha, post.Beta, post.Mean, post.Interval[0], post.Interval[1]),
		"",
		titleStyle.Render("Assets"),
	}
	for _, a := range assets {
		lines = append(lines, fmt.Sprintf("%-8s %s %v", a.Symbol, labelStyle.Render(fmt.Sprintf("%d%%", a.Income)), a.Price))
	}
	return strings.Join(lines, "\n")
}
