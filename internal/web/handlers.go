package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/shravanasati/ledgerdash/internal/app"
	"github.com/shravanasati/ledgerdash/internal/ledger"
)

var errBadParam = errors.New("invalid query parameter")

type errorBody struct {
	Error string `json:"error"`
}

func badRequest(err error) (*app.Response, error) {
	return app.JSON(400, errorBody{Error: err.Error()})
}

// intParam reads a non-negative integer query parameter. Absent means 0,
// which the ledger turns into its default.
func intParam(r *app.Request, key string) (int, error) {
	raw := r.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", errBadParam, key, raw)
	}
	return n, nil
}

func (h *handlers) notFound(ctx context.Context, r *app.Request) (*app.Response, error) {
	return app.JSON(404, errorBody{Error: "no route for " + r.URL.Path})
}

func (h *handlers) health(ctx context.Context, r *app.Request) (*app.Response, error) {
	if err := h.ledger.Ping(ctx); err != nil {
		h.logger.Warn("ledger ping failed", zap.Error(err))
		return app.Text(503, "unavailable"), nil
	}
	return app.Text(200, "ok"), nil
}

type pageData struct {
	Tokens    []ledger.TokenStat
	Transfers []ledger.Transfer
}

func (h *handlers) index(ctx context.Context, r *app.Request) (*app.Response, error) {
	tokens, err := h.ledger.TokenSummary(ctx)
	if err != nil {
		return nil, err
	}
	transfers, err := h.ledger.RecentTransfers(ctx, h.pageTransfers)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{Tokens: tokens, Transfers: transfers}); err != nil {
		return nil, fmt.Errorf("render summary page: %w", err)
	}
	return app.Bytes(200, "text/html; charset=utf-8", buf.Bytes()), nil
}

func (h *handlers) transfers(ctx context.Context, r *app.Request) (*app.Response, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return badRequest(err)
	}
	transfers, err := h.ledger.RecentTransfers(ctx, limit)
	if err != nil {
		return nil, err
	}
	return app.JSON(200, transfers)
}

func (h *handlers) dailyVolume(ctx context.Context, r *app.Request) (*app.Response, error) {
	days, err := intParam(r, "days")
	if err != nil {
		return badRequest(err)
	}
	points, err := h.ledger.DailyVolume(ctx, days)
	if err != nil {
		return nil, err
	}
	return app.JSON(200, points)
}

func (h *handlers) hourlyVolume(ctx context.Context, r *app.Request) (*app.Response, error) {
	hours, err := intParam(r, "hours")
	if err != nil {
		return badRequest(err)
	}
	points, err := h.ledger.HourlyVolume(ctx, hours)
	if err != nil {
		return nil, err
	}
	return app.JSON(200, points)
}

func (h *handlers) tokens(ctx context.Context, r *app.Request) (*app.Response, error) {
	stats, err := h.ledger.TokenSummary(ctx)
	if err != nil {
		return nil, err
	}
	return app.JSON(200, stats)
}

func (h *handlers) tokenActivity(ctx context.Context, r *app.Request) (*app.Response, error) {
	days, err := intParam(r, "days")
	if err != nil {
		return badRequest(err)
	}
	token := r.PathParams["token"]
	activity, err := h.ledger.TokenActivity(ctx, token, days)
	if errors.Is(err, ledger.ErrUnknownToken) {
		return app.JSON(404, errorBody{Error: "no transfers for token " + token})
	}
	if err != nil {
		return nil, err
	}
	return app.JSON(200, activity)
}

func (h *handlers) flows(ctx context.Context, r *app.Request) (*app.Response, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return badRequest(err)
	}
	graph, err := h.ledger.Flows(ctx, limit)
	if err != nil {
		return nil, err
	}
	return app.JSON(200, graph)
}
