// Package web is the dashboard application: a summary page and the JSON
// endpoints the client charts read.
package web

import (
	"context"
	"embed"
	"html/template"

	"go.uber.org/zap"

	"github.com/shravanasati/ledgerdash/internal/app"
	"github.com/shravanasati/ledgerdash/internal/ledger"
	"github.com/shravanasati/ledgerdash/internal/middleware"
	"github.com/shravanasati/ledgerdash/internal/router"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html.tmpl").
	Funcs(template.FuncMap{"short": shortAddress}).
	ParseFS(templateFS, "templates/index.html.tmpl"))

// Ledger is the read side the dashboard needs. *ledger.Store implements it.
type Ledger interface {
	RecentTransfers(ctx context.Context, limit int) ([]ledger.Transfer, error)
	DailyVolume(ctx context.Context, days int) ([]ledger.SeriesPoint, error)
	HourlyVolume(ctx context.Context, hours int) ([]ledger.SeriesPoint, error)
	TokenSummary(ctx context.Context) ([]ledger.TokenStat, error)
	TokenActivity(ctx context.Context, token string, days int) (ledger.TokenActivity, error)
	Flows(ctx context.Context, limit int) (ledger.SankeyGraph, error)
	Ping(ctx context.Context) error
}

type Options struct {
	// Accounts enables basic auth on everything but the health check.
	Accounts []middleware.Account

	// PageTransfers is how many transfers the summary page lists.
	PageTransfers int

	Logger *zap.Logger
}

type handlers struct {
	ledger        Ledger
	pageTransfers int
	logger        *zap.Logger
}

// New returns the dashboard handler.
func New(l Ledger, opts Options) app.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PageTransfers <= 0 {
		opts.PageTransfers = 10
	}
	h := &handlers{ledger: l, pageTransfers: opts.PageTransfers, logger: opts.Logger}

	r := router.NewRouter()
	if len(opts.Accounts) > 0 {
		r.Use(middleware.BasicAuthMiddleware(opts.Accounts, "/healthz"))
	}
	r.NotFound(app.HandlerFunc(h.notFound))

	r.Get("/", app.HandlerFunc(h.index))
	r.Get("/healthz", app.HandlerFunc(h.health))
	r.Get("/api/transfers", app.HandlerFunc(h.transfers))
	r.Get("/api/volume/daily", app.HandlerFunc(h.dailyVolume))
	r.Get("/api/volume/hourly", app.HandlerFunc(h.hourlyVolume))
	r.Get("/api/tokens", app.HandlerFunc(h.tokens))
	r.Get("/api/tokens/:token", app.HandlerFunc(h.tokenActivity))
	r.Get("/api/flows", app.HandlerFunc(h.flows))

	return r.Handler()
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
