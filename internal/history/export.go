package history

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

var ErrInvalidRange = errors.New("invalid export date range")

// Columns is the fixed export column order.
var Columns = []string{
	"id", "type", "date", "method", "amount", "serviceFee",
	"gasFee", "total", "status", "network", "txHash",
}

const dateLayout = "2006-01-02"

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Prefs is the saved export configuration.
type Prefs struct {
	Columns   map[string]bool `json:"columns"`
	DateRange DateRange       `json:"dateRange"`
}

func DefaultPrefs() Prefs {
	cols := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		cols[c] = true
	}
	return Prefs{Columns: cols}
}

// Active returns the enabled columns in export order.
func (p Prefs) Active() []string {
	out := make([]string, 0, len(Columns))
	for _, c := range Columns {
		if p.Columns[c] {
			out = append(out, c)
		}
	}
	return out
}

// Bounds parses the date range in loc. The end date is inclusive through
// its last millisecond. Empty sides are unbounded and come back zero.
func (r DateRange) Bounds(loc *time.Location) (start, end time.Time, err error) {
	if r.Start != "" {
		start, err = time.ParseInLocation(dateLayout, r.Start, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", ErrInvalidRange, r.Start)
		}
	}
	if r.End != "" {
		end, err = time.ParseInLocation(dateLayout, r.End, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", ErrInvalidRange, r.End)
		}
		end = end.Add(24*time.Hour - time.Millisecond)
	}
	return start, end, nil
}

// InRange keeps rows dated within the preference range.
func InRange(rows []Row, r DateRange, loc *time.Location) ([]Row, error) {
	start, end, err := r.Bounds(loc)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !start.IsZero() && row.At.Before(start) {
			continue
		}
		if !end.IsZero() && row.At.After(end) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// Header turns a column key into its label, "serviceFee" -> "SERVICE FEE".
func Header(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func (r Row) cell(key string) string {
	switch key {
	case "id":
		return r.ID
	case "type":
		return string(r.Type)
	case "date":
		return strings.ReplaceAll(r.Date, ",", "")
	case "method":
		return r.Method
	case "amount":
		return r.Amount.String()
	case "serviceFee":
		return r.ServiceFee.String()
	case "gasFee":
		return r.GasFee.String()
	case "total":
		return r.Total().String()
	case "status":
		return string(r.Status)
	case "network":
		return r.Network
	case "txHash":
		return r.TxHash
	}
	return ""
}

// Export renders rows within the range as CSV with every data cell quoted.
func Export(rows []Row, p Prefs, loc *time.Location) ([]byte, error) {
	rows, err := InRange(rows, p.DateRange, loc)
	if err != nil {
		return nil, err
	}
	cols := p.Active()

	var buf bytes.Buffer
	for i, c := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(Header(c))
	}
	for _, row := range rows {
		buf.WriteByte('\n')
		for i, c := range cols {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(row.cell(c), `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes(), nil
}

// FileName is the download name for an export made at now.
func FileName(now time.Time) string {
	return "transaction_history_" + now.UTC().Format(dateLayout) + ".csv"
}
