package settings

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		fee     string
		ft      FeeType
		wantFee string
		wantNet string
	}{
		{"fixed fee", "100", "5", FeeFixed, "5", "95"},
		{"percentage fee", "2500", "2", FeePercentage, "50", "2450"},
		{"zero percentage", "1000", "0", FeePercentage, "0", "1000"},
		{"fixed fee larger than amount floors at zero", "3", "5", FeeFixed, "5", "0"},
		{"fractional percentage", "150", "1.5", FeePercentage, "2.25", "147.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuote(d(tt.amount), d(tt.fee), tt.ft)
			if !q.Fee.Equal(d(tt.wantFee)) {
				t.Errorf("Fee = %s, want %s", q.Fee, tt.wantFee)
			}
			if !q.Net.Equal(d(tt.wantNet)) {
				t.Errorf("Net = %s, want %s", q.Net, tt.wantNet)
			}
		})
	}
}

func TestDefaultQuotes(t *testing.T) {
	s := Default()
	if q := s.WithdrawalQuote(d("1000")); !q.Net.Equal(d("995")) {
		t.Errorf("default withdrawal net = %s, want 995", q.Net)
	}
	if q := s.DepositQuote(d("1000")); !q.Net.Equal(d("1000")) {
		t.Errorf("default deposit net = %s, want 1000", q.Net)
	}
}

func TestStoreUpdateValidates(t *testing.T) {
	st := NewStore(Default())

	bad := Default()
	bad.DepositFeeType = "sometimes"
	if err := st.Update(bad); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("Update(bad fee type) err = %v, want ErrInvalidSettings", err)
	}

	neg := Default()
	neg.WithdrawalFee = d("-1")
	if err := st.Update(neg); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("Update(negative fee) err = %v, want ErrInvalidSettings", err)
	}

	good := Default()
	good.BTCWallet = "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"
	if err := st.Update(good); err != nil {
		t.Fatalf("Update(good) err = %v", err)
	}
	if got := st.Get().BTCWallet; got != good.BTCWallet {
		t.Errorf("BTCWallet = %q, want %q", got, good.BTCWallet)
	}
}
