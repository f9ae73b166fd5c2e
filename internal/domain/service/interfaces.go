package service

import (
	"context"

	"SwingRadar/internal/domain/models"
)

// Forecaster calls the ARIMA/GARCH sidecar for a point forecast. It
// never fails the caller: on any transport or decode error it returns
// the documented fallback (last close as forecast, small fixed
// volatility).
type Forecaster interface {
	Forecast(ctx context.Context, pair string, history []models.Candle) models.ForecastResult
	Health(ctx context.Context) error
}

// Notifier delivers signals and batch reports to the messaging sink.
type Notifier interface {
	NotifySignal(ctx context.Context, sig models.TradingSignal) error
	SendReport(ctx context.Context, snap models.BatchSnapshot) error
	Validate(ctx context.Context) error
	SendTest(ctx context.Context) error
}
