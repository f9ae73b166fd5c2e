package api

import (
	"time"

	"github.com/labstack/echo/v4"

	drepo "SwingRadar/internal/domain/repository"
	domsvc "SwingRadar/internal/domain/service"
	"SwingRadar/internal/services/admin"
	"SwingRadar/internal/usecase"
	"SwingRadar/pkg/config"
	applogger "SwingRadar/pkg/logger"
)

// Handler serves the read-only analysis endpoints and the admin
// surface. All routes live under /api.
type Handler struct {
	cfg       *config.Config
	snapshots drepo.SnapshotStore
	analyzer  *usecase.Analyzer
	history   drepo.SignalHistory
	notifier  domsvc.Notifier
	admin     *admin.Store
	logger    *applogger.Logger
	startedAt time.Time
}

func NewHandler(
	cfg *config.Config,
	snapshots drepo.SnapshotStore,
	analyzer *usecase.Analyzer,
	history drepo.SignalHistory,
	notifier domsvc.Notifier,
	adminStore *admin.Store,
	logger *applogger.Logger,
) *Handler {
	return &Handler{
		cfg:       cfg,
		snapshots: snapshots,
		analyzer:  analyzer,
		history:   history,
		notifier:  notifier,
		admin:     adminStore,
		logger:    logger,
		startedAt: time.Now().UTC(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/analysis", h.GetAnalysis)
	g.GET("/analysis/:symbol", h.GetPairAnalysis)
	g.GET("/signals", h.GetSignals)
	g.GET("/signals/history", h.GetSignalHistory)
	g.GET("/sentiment", h.GetSentiment)
	g.GET("/status", h.GetStatus)

	adm := g.Group("/admin")
	adm.GET("/config", h.GetAdminConfig)
	adm.POST("/config", h.UpdateAdminConfig)
	adm.GET("/pairs", h.GetPairs)
	adm.POST("/telegram/validate", h.ValidateTelegram)
	adm.POST("/telegram/test", h.SendTelegramTest)
}
