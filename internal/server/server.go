// Package server exposes the platform over a JSON HTTP API and a WebSocket
// live feed. Sessions travel as bearer tokens.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sdibella/leadoptions/internal/admin"
	"github.com/sdibella/leadoptions/internal/auth"
	"github.com/sdibella/leadoptions/internal/chat"
	"github.com/sdibella/leadoptions/internal/history"
	"github.com/sdibella/leadoptions/internal/ledger"
	"github.com/sdibella/leadoptions/internal/market"
	"github.com/sdibella/leadoptions/internal/platform"
	"github.com/sdibella/leadoptions/internal/profile"
	"github.com/sdibella/leadoptions/internal/settings"
	"github.com/sdibella/leadoptions/internal/simulator"
	"github.com/sdibella/leadoptions/internal/wallet"
)

var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("sign in required")
)

const maxBodyBytes = 1 << 20

type Server struct {
	app     *platform.App
	hub     *Hub
	mux     *http.ServeMux
	started time.Time
}

// New registers every route and subscribes the hub to the platform feed.
func New(app *platform.App) *Server {
	s := &Server{
		app:     app,
		hub:     NewHub(),
		mux:     http.NewServeMux(),
		started: time.Now(),
	}
	s.hub.Greeting = func() []Message {
		return []Message{
			newMessage(platform.KindFinancials, app.Holder.Snapshot()),
			newMessage(platform.KindTicker, app.Board.Assets()),
			newMessage(platform.KindCandle, app.Chart.Last()),
		}
	}
	app.SetPublisher(s.hub.Publish)
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() {
	app := s.app
	mux := s.mux

	mux.HandleFunc("GET /health", handleHealth(s))
	mux.HandleFunc("GET /ws", s.hub.HandleWebSocket)

	// session shell
	mux.HandleFunc("POST /api/session", handleStart(app))
	mux.HandleFunc("GET /api/session", handleSession(app))
	mux.HandleFunc("POST /api/session/view", handleSwitchView(app))
	mux.HandleFunc("POST /api/login", handleLogin(app))
	mux.HandleFunc("POST /api/signup", handleSignup(app))
	mux.HandleFunc("POST /api/logout", handleLogout(app))
	mux.HandleFunc("POST /api/navigate", handleNavigate(app))

	// trader
	mux.HandleFunc("GET /api/dashboard", trader(app, handleDashboard(app)))
	mux.HandleFunc("POST /api/bot/toggle", trader(app, handleBotToggle(app)))
	mux.HandleFunc("GET /api/market", trader(app, handleMarket(app)))
	mux.HandleFunc("POST /api/market/select", trader(app, handleMarketSelect(app)))
	mux.HandleFunc("POST /api/chart/timeframe", trader(app, handleTimeframe(app)))
	mux.HandleFunc("GET /api/wallet", trader(app, handleWallet(app)))
	mux.HandleFunc("GET /api/wallet/deposit/{method}", trader(app, handleDepositDetails(app)))
	mux.HandleFunc("POST /api/wallet/deposit", trader(app, handleDeposit(app)))
	mux.HandleFunc("GET /api/wallet/quote", trader(app, handleWithdrawQuote(app)))
	mux.HandleFunc("POST /api/wallet/withdraw", trader(app, handleWithdraw(app)))
	mux.HandleFunc("GET /api/history", trader(app, handleHistory(app)))
	mux.HandleFunc("GET /api/history/export", trader(app, handleExport(app)))
	mux.HandleFunc("GET /api/history/prefs", trader(app, handleGetPrefs(app)))
	mux.HandleFunc("PUT /api/history/prefs", trader(app, handlePutPrefs(app)))
	mux.HandleFunc("GET /api/profile", trader(app, handleGetProfile(app)))
	mux.HandleFunc("PUT /api/profile", trader(app, handlePutProfile(app)))
	mux.HandleFunc("POST /api/profile/twofactor", trader(app, handleProfileToggle(app, app.Profile.SetTwoFactor)))
	mux.HandleFunc("POST /api/profile/notifications", trader(app, handleProfileToggle(app, app.Profile.SetNotifications)))
	mux.HandleFunc("PUT /api/profile/avatar", trader(app, handleAvatar(app)))
	mux.HandleFunc("GET /api/chat", trader(app, handleChatOpen(app)))
	mux.HandleFunc("POST /api/chat", trader(app, handleChatSend(app)))

	// admin console
	mux.HandleFunc("GET /api/admin/overview", administrator(app, handleAdminOverview(app)))
	mux.HandleFunc("GET /api/admin/users", administrator(app, handleUsers(app)))
	mux.HandleFunc("GET /api/admin/users/{id}", administrator(app, handleUser(app)))
	mux.HandleFunc("PUT /api/admin/users/{id}", administrator(app, handleUpdateUser(app)))
	mux.HandleFunc("DELETE /api/admin/users/{id}", administrator(app, handleDeleteUser(app)))
	mux.HandleFunc("GET /api/admin/requests", administrator(app, handleRequests(app)))
	mux.HandleFunc("POST /api/admin/requests/{id}/{action}", administrator(app, handleResolve(app)))
	mux.HandleFunc("POST /api/admin/toggles/{key}", administrator(app, handleToggle(app)))
	mux.HandleFunc("GET /api/admin/broadcast", administrator(app, handleBroadcastStatus(app)))
	mux.HandleFunc("POST /api/admin/broadcast", administrator(app, handleBroadcast(app)))
	mux.HandleFunc("GET /api/admin/settings", administrator(app, handleGetSettings(app)))
	mux.HandleFunc("PUT /api/admin/settings", administrator(app, handlePutSettings(app)))
	mux.HandleFunc("POST /api/admin/crash", administrator(app, handleCrash(app)))
	mux.HandleFunc("GET /api/admin/training", administrator(app, handleTraining(app)))
	mux.HandleFunc("POST /api/admin/training", administrator(app, handleSaveTraining(app)))
	mux.HandleFunc("DELETE /api/admin/training/{id}", administrator(app, handleDeleteTraining(app)))
	mux.HandleFunc("GET /api/admin/training/match", administrator(app, handleMatchTraining(app)))
	mux.HandleFunc("GET /api/admin/chat", administrator(app, handleAdminChats(app)))
	mux.HandleFunc("POST /api/admin/chat/{user}", administrator(app, handleAdminReply(app)))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess auth.Session)

func trader(app *platform.App, h sessionHandler) http.HandlerFunc {
	return requireRole(app, auth.RoleUser, h)
}

func administrator(app *platform.App, h sessionHandler) http.HandlerFunc {
	return requireRole(app, auth.RoleAdmin, h)
}

func requireRole(app *platform.App, role auth.Role, h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := app.Auth.Require(bearer(r), role)
		if errors.Is(err, auth.ErrForbidden) && !sess.SignedIn() {
			err = errUnauthorized
		}
		if err != nil {
			writeError(w, err)
			return
		}
		h(w, r, sess)
	}
}

func bearer(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: message(err)}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
		body.Error = "internal error"
	}
	var fe profile.FieldErrors
	if errors.As(err, &fe) {
		body.Fields = fe
	}
	writeJSON(w, status, body)
}

// message prefers the text a form would show over the wrapped error chain.
func message(err error) string {
	var ae *auth.FormError
	if errors.As(err, &ae) {
		return ae.Msg
	}
	var we *wallet.FormError
	if errors.As(err, &we) {
		return we.Msg
	}
	return err.Error()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized),
		errors.Is(err, auth.ErrNoSession),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, auth.ErrWrongView),
		errors.Is(err, simulator.ErrCrashed),
		errors.Is(err, admin.ErrBroadcastBusy):
		return http.StatusConflict
	case errors.Is(err, admin.ErrNotFound),
		errors.Is(err, chat.ErrNotFound),
		errors.Is(err, market.ErrUnknownAsset):
		return http.StatusNotFound
	case errors.Is(err, wallet.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrDailyLimit),
		errors.Is(err, wallet.ErrMonthlyLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, auth.ErrSignup),
		errors.Is(err, auth.ErrInvalidPage),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrUnknownMethod),
		errors.Is(err, admin.ErrInvalidInput),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, profile.ErrInvalidProfile),
		errors.Is(err, profile.ErrInvalidAvatar),
		errors.Is(err, settings.ErrInvalidSettings),
		errors.Is(err, history.ErrInvalidRange),
		errors.Is(err, ledger.ErrUnknownType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleHealth(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.app.Holder.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"uptime":      time.Since(s.started).Round(time.Second).String(),
			"feedClients": s.hub.Clients(),
			"botStatus":   s.app.Sim.Status(),
			"crashed":     state.IsCrashed,
		})
	}
}
