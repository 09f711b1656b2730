// Package platform is the application root. It owns every subsystem, wires
// their callbacks together and exposes the operations the transport needs.
package platform

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sdibella/leadoptions/internal/admin"
	"github.com/sdibella/leadoptions/internal/auth"
	"github.com/sdibella/leadoptions/internal/chart"
	"github.com/sdibella/leadoptions/internal/chat"
	"github.com/sdibella/leadoptions/internal/financials"
	"github.com/sdibella/leadoptions/internal/history"
	"github.com/sdibella/leadoptions/internal/journal"
	"github.com/sdibella/leadoptions/internal/ledger"
	"github.com/sdibella/leadoptions/internal/market"
	"github.com/sdibella/leadoptions/internal/profile"
	"github.com/sdibella/leadoptions/internal/settings"
	"github.com/sdibella/leadoptions/internal/simulator"
	"github.com/sdibella/leadoptions/internal/wallet"
)

// Feed message kinds.
const (
	KindFinancials   = "financials"
	KindTrade        = "trade"
	KindTicker       = "ticker"
	KindCandle       = "candle"
	KindAnnouncement = "announcement"
)

type Options struct {
	Sim                 simulator.Options
	ChartInterval       time.Duration
	Seed                uint64 // 0 seeds from the clock
	LoginAttemptsPerMin int
	PrefsPath           string
	VolatilityWindow    time.Duration
	Location            *time.Location
}

// Publisher receives every live-feed message.
type Publisher func(kind string, payload any)

type App struct {
	Auth        *auth.Manager
	Profile     *profile.Store
	Holder      *financials.Holder
	Board       *market.Board
	Chart       *chart.Series
	Sim         *simulator.Engine
	Settings    *settings.Store
	Ledger      *ledger.Ledger
	Wallet      *wallet.Wallet
	Prefs       *history.PrefsStore
	Users       *admin.Directory
	Requests    *admin.Queue
	System      *admin.System
	Broadcaster *admin.Broadcaster
	Training    *admin.Training
	Chat        *chat.Mailbox

	journal       *journal.Journal
	loc           *time.Location
	chartInterval time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	publish Publisher
}

// New builds the platform with seeded demo data. j may be nil.
func New(opts Options, j *journal.Journal) *App {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if opts.ChartInterval <= 0 {
		opts.ChartInterval = 800 * time.Millisecond
	}
	if opts.VolatilityWindow <= 0 {
		opts.VolatilityWindow = 5 * time.Minute
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now()

	a := &App{
		Auth:          auth.NewManager(opts.LoginAttemptsPerMin),
		Profile:       profile.NewStore(),
		Holder:        financials.NewHolder(financials.Seed()),
		Board:         market.NewBoard(market.DefaultAssets(), opts.VolatilityWindow),
		Chart:         chart.NewSeries(rand.New(rand.NewPCG(seed, 2)), now),
		Settings:      settings.NewStore(settings.Default()),
		Ledger:        ledger.NewSeeded(time.Now),
		Prefs:         history.NewPrefsStore(opts.PrefsPath),
		Users:         admin.NewDirectory(admin.SeedUsers()),
		Requests:      admin.NewQueue(admin.SeedRequests()),
		System:        admin.NewSystem(),
		Training:      admin.NewTraining(admin.SeedTraining()),
		Chat:          chat.NewMailbox(),
		journal:       j,
		loc:           loc,
		chartInterval: opts.ChartInterval,
		now:           time.Now,
	}
	a.Sim = simulator.NewEngine(a.Holder, a.Board, rand.New(rand.NewPCG(seed, 1)), opts.Sim, a.Auth.TraderActive)
	a.Wallet = wallet.New(a.Holder, a.Settings, a.Ledger)
	a.Broadcaster = admin.NewBroadcaster(func(msg string) { a.emit(KindAnnouncement, msg) })

	a.Holder.Subscribe(func(s financials.State) { a.emit(KindFinancials, s) })
	a.Sim.OnTrade = a.onTrade
	a.Sim.OnTicker = func(assets []market.Asset) { a.emit(KindTicker, assets) }
	a.Auth.OnSignIn = a.onSignIn
	a.Auth.OnSignOut = func(s auth.Session) {
		slog.Info("signed out", "email", s.Email, "role", s.Role)
	}
	return a
}

// SetPublisher routes live-feed messages to p.
func (a *App) SetPublisher(p Publisher) {
	a.mu.Lock()
	a.publish = p
	a.mu.Unlock()
}

func (a *App) emit(kind string, payload any) {
	a.mu.RLock()
	p := a.publish
	a.mu.RUnlock()
	if p != nil {
		p(kind, payload)
	}
}

func (a *App) log(event any) {
	if err := a.journal.Log(event); err != nil {
		slog.Warn("journal write failed", "err", err)
	}
}

const sessionSweepInterval = time.Minute

// Run drives the simulator and chart timers until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Chart.Run(ctx, a.chartInterval, func(c chart.Candle) { a.emit(KindCandle, c) })
	}()
	go func() {
		defer wg.Done()
		a.Auth.Run(ctx, sessionSweepInterval)
	}()

	err := a.Sim.Run(ctx)
	wg.Wait()
	return err
}

func (a *App) onSignIn(s auth.Session, isNew bool) {
	if isNew && s.Role == auth.RoleUser {
		a.Holder.ResetForNewUser()
		a.Sim.Reset()
		a.Ledger.Reset()
	}
	state := a.Holder.Snapshot()
	a.log(journal.NewSessionStart(s.Email, string(s.Role), isNew, state.Balance.StringFixed(2)))
}

func (a *App) onTrade(r simulator.TradeResult) {
	a.log(journal.NewTrade(r.ID, r.Symbol, string(r.Direction),
		r.Stake.StringFixed(2), r.PnL.StringFixed(2), r.Won, r.BalanceAfter.StringFixed(2)))
	a.emit(KindTrade, r)
}

// Dashboard is everything the trader dashboard page renders.
type Dashboard struct {
	State      financials.State        `json:"state"`
	Stats      []financials.Stat       `json:"stats"`
	Sentiment  financials.Sentiment    `json:"sentiment"`
	ServiceFee decimal.Decimal         `json:"serviceFee"`
	Assets     []market.Asset          `json:"assets"`
	Selected   market.Asset            `json:"selected"`
	Timeframe  string                  `json:"timeframe"`
	Candles    []chart.Candle          `json:"candles"`
	BotStatus  simulator.Status        `json:"botStatus"`
	Trades     []simulator.TradeResult `json:"trades"`
	Summary    simulator.Summary       `json:"summary"`
	Posterior  simulator.PosteriorView `json:"posterior"`
	UnreadChat bool                    `json:"unreadChat"`
}

// Dashboard assembles the dashboard for the trader signed in as email.
func (a *App) Dashboard(email string) Dashboard {
	state := a.Holder.Snapshot()
	d := Dashboard{
		State:      state,
		Stats:      state.Stats(),
		Sentiment:  state.Sentiment(),
		ServiceFee: a.Settings.Get().ServiceFee,
		Assets:     a.Board.Assets(),
		Selected:   a.Board.Selected(),
		Timeframe:  a.Chart.Timeframe(),
		Candles:    a.Chart.Candles(),
		BotStatus:  a.Sim.Status(),
		Trades:     a.Sim.History(),
		Summary:    a.Sim.Summary(),
		Posterior:  a.Sim.Posterior(),
	}
	if s, ok := a.Chat.Get(email); ok {
		d.UnreadChat = s.UnreadUser
	}
	return d
}

// Crash liquidates the account on behalf of the admin by.
func (a *App) Crash(by string) financials.State {
	s := a.Holder.Crash()
	slog.Warn("account crashed by admin", "by", by)
	a.log(journal.NewCrash(by, s.Balance.StringFixed(2)))
	return s
}

func (a *App) Deposit(key string, amount decimal.Decimal) (wallet.DepositResult, error) {
	res, err := a.Wallet.Deposit(key, amount)
	if err != nil {
		return res, err
	}
	q := res.Quote
	a.log(journal.NewDeposit(res.Transaction.ID, res.Transaction.Method,
		q.Amount.StringFixed(2), q.Fee.StringFixed(2), q.Net.StringFixed(2)))
	return res, nil
}

func (a *App) Withdraw(method string, amount decimal.Decimal, addr string) (wallet.WithdrawResult, error) {
	res, err := a.Wallet.Withdraw(method, amount, addr)
	if err != nil {
		return res, err
	}
	q := res.Quote
	a.log(journal.NewWithdrawal(res.Transaction.ID, res.Transaction.Method,
		q.Amount.StringFixed(2), q.Fee.StringFixed(2), q.Net.StringFixed(2)))
	return res, nil
}

// History returns the live and archived rows, newest first, filtered.
func (a *App) History(search, typ string) []history.Row {
	rows := history.Merge(a.Ledger.All(), history.Archived(a.loc))
	return history.Filter(rows, search, typ)
}

// Export renders the CSV for p and saves p as the new preferences. A failed
// save is logged; the export still succeeds.
func (a *App) Export(p history.Prefs) (data []byte, name string, err error) {
	data, err = history.Export(a.History("", "all"), p, a.loc)
	if err != nil {
		return nil, "", err
	}
	if err := a.Prefs.Save(p); err != nil {
		slog.Warn("saving export prefs", "err", err)
	}
	return data, history.FileName(a.now()), nil
}
