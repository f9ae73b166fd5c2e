package api

import (
	"github.com/labstack/echo/v4"

	"SwingRadar/internal/services/admin"
	xhttp "SwingRadar/pkg/http"
	applogger "SwingRadar/pkg/logger"
)

// GetAdminConfig returns the admin-editable settings as currently
// applied.
func (h *Handler) GetAdminConfig(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.admin.Current())
}

// UpdateAdminConfig validates, applies and persists new settings.
// Pairs and the confidence gate take effect on the next pass; cron
// changes need a restart.
func (h *Handler) UpdateAdminConfig(c echo.Context) error {
	var req admin.RuntimeConfig
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	if err := h.admin.Update(req); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	h.logger.Info("admin config updated",
		applogger.Strings("pairs", req.Pairs),
		applogger.Float64("signal_gate", req.SignalGate),
	)
	return xhttp.SuccessResponse(c, h.admin.Current())
}

// GetPairs returns the watched pair list.
func (h *Handler) GetPairs(c echo.Context) error {
	return xhttp.ListResponse(c, h.cfg.Analysis.Pairs, int64(len(h.cfg.Analysis.Pairs)))
}

// ValidateTelegram checks the bot token against the Telegram API.
func (h *Handler) ValidateTelegram(c echo.Context) error {
	if err := h.notifier.Validate(c.Request().Context()); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, "bot token is valid")
}

// SendTelegramTest delivers a test message to the configured chat.
func (h *Handler) SendTelegramTest(c echo.Context) error {
	if err := h.notifier.SendTest(c.Request().Context()); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, "test message sent")
}
