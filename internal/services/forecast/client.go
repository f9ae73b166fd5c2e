package forecast

import (
	"context"
	"time"

	"SwingRadar/internal/domain/models"
	"SwingRadar/pkg/config"
	xhttp "SwingRadar/pkg/http"
	applogger "SwingRadar/pkg/logger"
)

// Client talks to the ARIMA/GARCH sidecar. It degrades rather than
// fails: any transport, decode or sanity problem yields the fallback
// forecast (last close, small fixed volatility) so the pair still gets
// a recommendation, biased toward HOLD.
type Client struct {
	baseURL    string
	defaultVol float64
	client     *xhttp.Client
	logger     *applogger.Logger
}

func NewClient(cfg *config.Config, l *applogger.Logger) *Client {
	timeout := cfg.Forecast.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.Forecast.URL,
		defaultVol: cfg.Forecast.DefaultVolatility,
		client:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:     l,
	}
}

type analyzeRequest struct {
	Data []models.Candle `json:"data"`
	Pair string          `json:"pair"`
}

type analyzeResponse struct {
	ArimaForecast   float64 `json:"arima_forecast"`
	GarchVolatility float64 `json:"garch_volatility"`
	Pair            string  `json:"pair"`
}

// Forecast requests a point forecast for the pair's short-timeframe
// history. Never returns an error.
func (c *Client) Forecast(ctx context.Context, pair string, history []models.Candle) models.ForecastResult {
	fallback := models.ForecastResult{
		Pair:       pair,
		Volatility: c.defaultVol,
	}
	if len(history) > 0 {
		fallback.PointForecast = history[len(history)-1].Close
	}

	var resp analyzeResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + "/analyze",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    analyzeRequest{Data: history, Pair: pair},
	}, &resp)
	if err != nil {
		c.logger.Warn("forecast sidecar unavailable, using fallback",
			applogger.String("pair", pair),
			applogger.Error(err),
		)
		return fallback
	}

	if resp.ArimaForecast <= 0 || resp.GarchVolatility < 0 {
		c.logger.Warn("forecast sidecar returned implausible values, using fallback",
			applogger.String("pair", pair),
			applogger.Float64("arima_forecast", resp.ArimaForecast),
			applogger.Float64("garch_volatility", resp.GarchVolatility),
		)
		return fallback
	}

	return models.ForecastResult{
		Pair:          pair,
		PointForecast: resp.ArimaForecast,
		Volatility:    resp.GarchVolatility,
	}
}

// Health probes the sidecar. Used at startup and by the status endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/health",
	}, nil)
}
