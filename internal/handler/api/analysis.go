package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	drepo "SwingRadar/internal/domain/repository"
	"SwingRadar/internal/services/exchange"
	xhttp "SwingRadar/pkg/http"
	applogger "SwingRadar/pkg/logger"
	"SwingRadar/pkg/util"
)

// GetAnalysis returns the latest batch snapshot: every analyzed pair
// plus the signals and market conditions computed from the same pass.
func (h *Handler) GetAnalysis(c echo.Context) error {
	snap, ok, err := h.snapshots.Latest()
	if err != nil {
		h.logger.Error("snapshot read failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis batch available yet")
	}
	return xhttp.SuccessResponse(c, snap)
}

// GetPairAnalysis returns the latest recommendation for one pair. The
// symbol is matched without the slash, so both BTCUSDT and btcusdt
// find BTC/USDT.
func (h *Handler) GetPairAnalysis(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	symbol = strings.ReplaceAll(symbol, "/", "")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	snap, ok, err := h.snapshots.Latest()
	if err != nil {
		h.logger.Error("snapshot read failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis batch available yet")
	}

	for _, a := range snap.Analyses {
		if exchange.Symbol(a.Pair) == symbol {
			return xhttp.SuccessResponse(c, a)
		}
	}
	return xhttp.NotFoundResponse(c, "pair not analyzed: "+symbol)
}

// GetSignals returns the actionable signals from the latest pass.
func (h *Handler) GetSignals(c echo.Context) error {
	snap, ok, err := h.snapshots.Latest()
	if err != nil {
		h.logger.Error("snapshot read failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis batch available yet")
	}
	return xhttp.ListResponse(c, snap.Signals, int64(len(snap.Signals)))
}

// GetSignalHistory returns stored signals, newest first. Optional
// query params: pair (BASE/QUOTE), limit, from/to (RFC3339 or unix
// seconds; bounds are aligned to hour candle boundaries).
func (h *Handler) GetSignalHistory(c echo.Context) error {
	if h.history == nil {
		return xhttp.NotFoundResponse(c, "signal history storage is not configured")
	}

	pair := strings.ToUpper(strings.TrimSpace(c.QueryParam("pair")))
	limit := util.ParseIntDefault(c.QueryParam("limit"), 50)
	if limit < 1 || limit > 500 {
		return xhttp.BadRequestResponse(c, "limit must be within [1,500]")
	}

	rng := parseTimeRange(c)
	from, to := timeRangeBounds(rng)

	signals, err := h.history.RecentSignals(c.Request().Context(), pair, from, to, limit)
	if err != nil {
		h.logger.Error("signal history query failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

func parseTimeRange(c echo.Context) xhttp.TimeRange {
	var rng xhttp.TimeRange
	if t, ok := util.ParseTime(c.QueryParam("from")); ok {
		rng.From = &t
	}
	if t, ok := util.ParseTime(c.QueryParam("to")); ok {
		rng.To = &t
	}
	return rng
}

func timeRangeBounds(rng xhttp.TimeRange) (time.Time, time.Time) {
	var from, to time.Time
	if rng.From != nil {
		from = *rng.From
	}
	if rng.To != nil {
		to = *rng.To
	}
	return util.AlignFromTo(from, to, string(drepo.TimeframeHour))
}

// GetSentiment returns the aggregate market conditions from the
// latest pass.
func (h *Handler) GetSentiment(c echo.Context) error {
	snap, ok, err := h.snapshots.Latest()
	if err != nil {
		h.logger.Error("snapshot read failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, "no analysis batch available yet")
	}
	return xhttp.SuccessResponse(c, snap.Conditions)
}

type statusResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	SnapshotFresh bool              `json:"snapshotFresh"`
	Pairs         int               `json:"pairs"`
	Dependencies  map[string]string `json:"dependencies"`
}

// GetStatus reports process uptime, snapshot freshness and the health
// of the upstream dependencies.
func (h *Handler) GetStatus(c echo.Context) error {
	fresh, err := h.snapshots.Fresh(h.cfg.Analysis.StaleAfter)
	if err != nil {
		h.logger.Error("snapshot freshness check failed", applogger.Error(err))
	}

	deps := h.analyzer.Health(c.Request().Context())

	status := "ok"
	if !fresh {
		status = "stale"
	}
	for _, v := range deps {
		if v != "ok" {
			status = "degraded"
		}
	}

	return xhttp.SuccessResponse(c, statusResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		SnapshotFresh: fresh,
		Pairs:         len(h.cfg.Analysis.Pairs),
		Dependencies:  deps,
	})
}
