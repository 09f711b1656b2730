package history

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/ledger"
)

func testRows() []Row {
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	return Merge(ledger.Seed(now), Archived(time.UTC))
}

func TestEnrich(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name    string
		tx      ledger.Transaction
		svc     string
		gas     string
		network string
		total   string
	}{
		{"btc deposit", ledger.Transaction{Type: ledger.Deposit, Amount: d("5000"), Method: "Bitcoin (BTC)"}, "0", "15.40", "Bitcoin", "4984.6"},
		{"trc20 withdrawal", ledger.Transaction{Type: ledger.Withdrawal, Amount: d("1200"), Method: "USDT (TRC20)"}, "5", "2.50", "Tron (TRC20)", "-1207.5"},
		{"btc wallet withdrawal", ledger.Transaction{Type: ledger.Withdrawal, Amount: d("100"), Method: "Bitcoin Wallet"}, "5", "15.40", "Bitcoin", "-120.4"},
		{"profit", ledger.Transaction{Type: ledger.Profit, Amount: d("450"), Method: "Trade Profit"}, "0", "0", "Internal", "450"},
		{"bonus", ledger.Transaction{Type: ledger.Bonus, Amount: d("250"), Method: "Welcome Bonus"}, "0", "0", "Internal", "250"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Enrich(tt.tx)
			if !r.ServiceFee.Equal(d(tt.svc)) || !r.GasFee.Equal(d(tt.gas)) {
				t.Errorf("fees = %s / %s, want %s / %s", r.ServiceFee, r.GasFee, tt.svc, tt.gas)
			}
			if r.Network != tt.network {
				t.Errorf("Network = %q, want %q", r.Network, tt.network)
			}
			if !r.Total().Equal(d(tt.total)) {
				t.Errorf("Total() = %s, want %s", r.Total(), tt.total)
			}
			if tt.tx.TxHash == "" && r.TxHash != "-" {
				t.Errorf("TxHash = %q, want -", r.TxHash)
			}
		})
	}
}

func TestMergeSortsNewestFirst(t *testing.T) {
	rows := testRows()
	if len(rows) != 11 {
		t.Fatalf("len = %d, want 11", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].At.After(rows[i-1].At) {
			t.Errorf("row %d (%s) newer than row %d (%s)", i, rows[i].ID, i-1, rows[i-1].ID)
		}
	}
	if rows[0].ID != "tx_1" || rows[len(rows)-1].ID != "tx_h7" {
		t.Errorf("first/last = %s/%s", rows[0].ID, rows[len(rows)-1].ID)
	}
}

func TestFilter(t *testing.T) {
	rows := testRows()
	tests := []struct {
		name   string
		search string
		typ    string
		want   int
	}{
		{"everything", "", "all", 11},
		{"deposits", "", "deposit", 3},
		{"withdrawals", "", "withdrawal", 3},
		{"by network", "tron", "all", 3},
		{"by method", "bitcoin", "deposit", 2},
		{"by id", "TX_H", "", 7},
		{"swift", "swift", "withdrawal", 1},
		{"nothing", "paypal", "all", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Filter(rows, tt.search, tt.typ)); got != tt.want {
				t.Errorf("Filter(%q, %q) = %d rows, want %d", tt.search, tt.typ, got, tt.want)
			}
		})
	}
}

func TestHeader(t *testing.T) {
	tests := map[string]string{
		"id":         "ID",
		"serviceFee": "SERVICE FEE",
		"gasFee":     "GAS FEE",
		"txHash":     "TX HASH",
		"total":      "TOTAL",
	}
	for in, want := range tests {
		if got := Header(in); got != want {
			t.Errorf("Header(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExport(t *testing.T) {
	p := DefaultPrefs()
	p.Columns["txHash"] = false
	p.Columns["network"] = false
	p.DateRange = DateRange{Start: "2023-09-25", End: "2023-10-12"}

	out, err := Export(testRows(), p, time.UTC)
	if err != nil {
		t.Fatalf("Export() err = %v", err)
	}

	lines := strings.Split(string(out), "\n")
	if lines[0] != "ID,TYPE,DATE,METHOD,AMOUNT,SERVICE FEE,GAS FEE,TOTAL,STATUS" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], `"tx_h3","withdrawal","Oct 12 2023 11:15 AM"`) {
		t.Errorf("first row = %q", lines[1])
	}

	recs, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	// tx_h3, tx_h4, tx_h5, tx_h6
	if len(recs) != 5 {
		t.Fatalf("got %d records, want header + 4", len(recs))
	}
	if recs[1][7] != "-2007.1" {
		t.Errorf("tx_h3 total = %q, want -2007.1", recs[1][7])
	}
	if recs[4][0] != "tx_h6" || recs[4][7] != "2497.9" {
		t.Errorf("last row = %v", recs[4])
	}
}

func TestExportRejectsBadRange(t *testing.T) {
	p := DefaultPrefs()
	p.DateRange.End = "12/31/2023"
	if _, err := Export(testRows(), p, time.UTC); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC))
	if got != "transaction_history_2024-02-29.csv" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestPrefsStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prefs.json")
	s := NewPrefsStore(path)

	if got := s.Load(); len(got.Active()) != len(Columns) {
		t.Errorf("missing file: %d active columns, want all", len(got.Active()))
	}

	p := DefaultPrefs()
	p.Columns["gasFee"] = false
	p.DateRange.Start = "2023-10-01"
	if err := s.Save(p); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	got := s.Load()
	if got.Columns["gasFee"] || !got.Columns["id"] || got.DateRange.Start != "2023-10-01" {
		t.Errorf("Load() = %+v", got)
	}
}

func TestPrefsMergeOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte(`{"columns":{"status":false,"bogus":true}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got := NewPrefsStore(path).Load()
	if got.Columns["status"] || !got.Columns["txHash"] {
		t.Errorf("merge = %v", got.Columns)
	}
	if _, ok := got.Columns["bogus"]; ok {
		t.Error("unknown column survived the merge")
	}

	if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := NewPrefsStore(path).Load(); len(got.Active()) != len(Columns) {
		t.Errorf("corrupt file should fall back to defaults, got %v", got.Columns)
	}
}
