package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/auth"
	"github.com/sdibella/leadoptions/internal/chart"
	"github.com/sdibella/leadoptions/internal/history"
	"github.com/sdibella/leadoptions/internal/platform"
	"github.com/sdibella/leadoptions/internal/profile"
	"github.com/sdibella/leadoptions/internal/wallet"
)

const maxAvatarBytes = 5 << 20

func handleStart(app *platform.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, app.Auth.Start())
	}
}

func handleSession(app *platform.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := app.Auth.Get(bearer(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleSwitchView(app *platform.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			View auth.View `json:"view"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		var (
			sess auth.Session
			err  error
		)
		switch req.View {
		case auth.ViewSignup:
			sess, err = app.Auth.SwitchToSignup(bearer(r))
		case auth.ViewLogin:
			sess, err = app.Auth.SwitchToLogin(bearer(r))
		default:
			err = errBadRequest
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleLogin(app *platform.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		sess, err := app.Auth.Login(bearer(r), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleSignup(app *platform.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form auth.SignupForm
		if err := decodeJSON(r, &form); err != nil {
			writeError(w, err)
			return
		}
		sess, err := app.Auth.Signup(bearer(r), form)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleLogout(app *platform.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := app.Auth.Logout(bearer(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleNavigate(app *platform.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Page auth.Page `json:"page"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		sess, err := app.Auth.Navigate(bearer(r), req.Page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleDashboard(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Dashboard(sess.Email))
	}
}

func handleBotToggle(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		status, err := app.Sim.Toggle()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"botStatus": status})
	}
}

func handleMarket(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"assets":   app.Board.Search(r.URL.Query().Get("search")),
			"selected": app.Board.Selected(),
		})
	}
}

func handleMarketSelect(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Symbol string `json:"symbol"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		asset, err := app.Board.Select(req.Symbol)
		if err != nil {
			writeError(w, err)
			return
		}
		vol, _ := app.Board.Volatility(asset.Symbol)
		writeJSON(w, http.StatusOK, map[string]any{"selected": asset, "volatility": vol})
	}
}

func handleTimeframe(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Timeframe string `json:"timeframe"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if !app.Chart.SetTimeframe(req.Timeframe) {
			writeError(w, errBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"timeframe":  app.Chart.Timeframe(),
			"timeframes": chart.Timeframes,
		})
	}
}

func handleWallet(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, map[string]any{
			"overview":        app.Wallet.Overview(),
			"withdrawMethods": wallet.WithdrawMethods,
		})
	}
}

func handleDepositDetails(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Wallet.DepositDetails(r.PathValue("method")))
	}
}

func handleDeposit(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Method string          `json:"method"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		res, err := app.Deposit(req.Method, req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleWithdrawQuote(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		amount := decimal.Zero
		if raw := r.URL.Query().Get("amount"); raw != "" {
			var err error
			if amount, err = decimal.NewFromString(raw); err != nil {
				writeError(w, fmt.Errorf("%w: amount %q", errBadRequest, raw))
				return
			}
		}
		writeJSON(w, http.StatusOK, app.Wallet.QuoteWithdrawal(amount))
	}
}

func handleWithdraw(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Method  string          `json:"method"`
			Amount  decimal.Decimal `json:"amount"`
			Address string          `json:"address"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		res, err := app.Withdraw(req.Method, req.Amount, req.Address)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type historyRow struct {
	history.Row
	Total decimal.Decimal `json:"total"`
}

func handleHistory(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		q := r.URL.Query()
		rows := app.History(q.Get("search"), q.Get("type"))
		out := make([]historyRow, 0, len(rows))
		for _, row := range rows {
			out = append(out, historyRow{Row: row, Total: row.Total()})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleExport starts from the saved preferences. Query parameters start,
// end and columns (comma separated) override them for this export.
func handleExport(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		p := app.Prefs.Load()
		q := r.URL.Query()
		if q.Has("start") {
			p.DateRange.Start = q.Get("start")
		}
		if q.Has("end") {
			p.DateRange.End = q.Get("end")
		}
		if q.Has("columns") {
			on := make(map[string]bool)
			for _, c := range strings.Split(q.Get("columns"), ",") {
				on[strings.TrimSpace(c)] = true
			}
			for _, c := range history.Columns {
				p.Columns[c] = on[c]
			}
		}

		data, name, err := app.Export(p)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Write(data)
	}
}

func handleGetPrefs(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Prefs.Load())
	}
}

func handlePutPrefs(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		p := history.DefaultPrefs()
		if err := decodeJSON(r, &p); err != nil {
			writeError(w, err)
			return
		}
		if _, _, err := p.DateRange.Bounds(time.Local); err != nil {
			writeError(w, err)
			return
		}
		if err := app.Prefs.Save(p); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, app.Prefs.Load())
	}
}

func handleGetProfile(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Profile.Get())
	}
}

func handlePutProfile(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var f profile.Form
		if err := decodeJSON(r, &f); err != nil {
			writeError(w, err)
			return
		}
		p, err := app.Profile.Update(f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleProfileToggle(app *platform.App, set func(bool) profile.Profile) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set(req.Enabled))
	}
}

// handleAvatar accepts either a raw image body or JSON {"src": url}.
func handleAvatar(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		ct := r.Header.Get("Content-Type")
		var (
			p   profile.Profile
			err error
		)
		if strings.HasPrefix(ct, "image/") {
			data, rerr := io.ReadAll(io.LimitReader(r.Body, maxAvatarBytes))
			if rerr != nil {
				writeError(w, rerr)
				return
			}
			p, err = app.Profile.SetAvatarData(ct, data)
		} else {
			var req struct {
				Src string `json:"src"`
			}
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, err)
				return
			}
			p, err = app.Profile.SetAvatar(req.Src)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleChatOpen(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		writeJSON(w, http.StatusOK, app.Chat.UserOpen(sess.Email))
	}
}

func handleChatSend(app *platform.App) sessionHandler {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		var req struct {
			Text string `json:"text"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		cs, err := app.Chat.UserSend(sess.Email, sess.Name, req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cs)
	}
}
