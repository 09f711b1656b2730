package main

import (
	"strings"
	"testing"

	"github.com/sdibella/leadoptions/internal/financials"
	"github.com/sdibella/leadoptions/internal/market"
	"github.com/sdibella/leadoptions/internal/simulator"
)

func TestRenderReport(t *testing.T) {
	out := renderReport(financials.Seed(), simulator.Summary{Trades: 3, Wins: 2, Losses: 1},
		simulator.NewPosterior().View(), market.DefaultAssets())
	for _, want := range []string{"Capital", "Balance", "$250,500.00", "Beta(40, 20)", "EURUSD"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestFeesQuoteArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"withdrawal", []string{"100"}, false},
		{"deposit percentage", []string{"100", "--kind", "deposit", "--fee", "2", "--type", "percentage"}, false},
		{"bad amount", []string{"lots"}, true},
		{"bad kind", []string{"100", "--kind", "transfer"}, true},
		{"bad fee type", []string{"100", "--type", "flat"}, true},
		{"missing amount", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := feesQuoteCmd()
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("quote %v err = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestSimulateRejectsBadFlags(t *testing.T) {
	cmd := simulateCmd()
	cmd.SetArgs([]string{"--win-rate", "1.5"})
	if err := cmd.Execute(); err == nil {
		t.Error("simulate accepted --win-rate 1.5")
	}
}
