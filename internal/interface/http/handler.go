package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/safetravels/internal/domain/auth"
	"github.com/yanqian/safetravels/internal/domain/proximity"
	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/internal/domain/stops"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	riskSvc      risk.Service
	routeSvc     route.Service
	stopsSvc     stops.Service
	proximitySvc proximity.Service
	authSvc      auth.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(riskSvc risk.Service, routeSvc route.Service, stopsSvc stops.Service, proximitySvc proximity.Service, authSvc auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		riskSvc:      riskSvc,
		routeSvc:     routeSvc,
		stopsSvc:     stopsSvc,
		proximitySvc: proximitySvc,
		authSvc:      authSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AssessRisk scores one location. Omitted context fields keep their defaults.
func (h *Handler) AssessRisk(c *gin.Context) {
	req := risk.NewAssessRequest()
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.riskSvc.Assess(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("assessment_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QuickRisk scores a location as of now.
func (h *Handler) QuickRisk(c *gin.Context) {
	var req risk.QuickRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.riskSvc.QuickCheck(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("assessment_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// WhatIf projects risk across departure times.
func (h *Handler) WhatIf(c *gin.Context) {
	var req risk.WhatIfRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.riskSvc.WhatIf(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("what_if_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzeRoute scans a route for red zones.
func (h *Handler) AnalyzeRoute(c *gin.Context) {
	var req route.Request
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.routeSvc.Analyze(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("route_analysis_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NearbyStops lists safe stops around a position.
func (h *Handler) NearbyStops(c *gin.Context) {
	var req stops.Query
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.stopsSvc.Nearby(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("stop_search_failed", err))
		return
	}
	c.JSON(http.StatusOK, stopList(results))
}

// FuelStops lists safe stops that sell fuel.
func (h *Handler) FuelStops(c *gin.Context) {
	var req stops.FuelQuery
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.stopsSvc.Fuel(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("stop_search_failed", err))
		return
	}
	c.JSON(http.StatusOK, stopList(results))
}

// EmergencyStops lists the closest places to get help.
func (h *Handler) EmergencyStops(c *gin.Context) {
	var req stops.EmergencyQuery
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.stopsSvc.Emergency(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("stop_search_failed", err))
		return
	}
	if results == nil {
		results = []stops.EmergencyStop{}
	}
	c.JSON(http.StatusOK, gin.H{"options": results, "count": len(results)})
}

// StopsBeforeZone lists secure stops short of a red zone.
func (h *Handler) StopsBeforeZone(c *gin.Context) {
	var req stops.BeforeZoneQuery
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.stopsSvc.BeforeZone(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("stop_search_failed", err))
		return
	}
	c.JSON(http.StatusOK, stopList(results))
}

// HOSRecommendation suggests where to take a required break.
func (h *Handler) HOSRecommendation(c *gin.Context) {
	var req stops.HOSRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.stopsSvc.HOS(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("hos_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckProximity grades the distance to the nearest red zone.
func (h *Handler) CheckProximity(c *gin.Context) {
	var req proximity.CheckRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.proximitySvc.Check(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("proximity_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProximityCountdown renders the 200-mile countdown.
func (h *Handler) ProximityCountdown(c *gin.Context) {
	var req proximity.CheckRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.proximitySvc.Countdown(c.Request.Context(), req)
	if err != nil {
		fail(c, domainError("proximity_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req auth.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, domainError("refresh_failed", err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, newAPIError(http.StatusBadRequest, "invalid_request", "", err))
		return false
	}
	return true
}

func stopList(results []stops.SafeStop) gin.H {
	if results == nil {
		results = []stops.SafeStop{}
	}
	return gin.H{"stops": results, "count": len(results)}
}
