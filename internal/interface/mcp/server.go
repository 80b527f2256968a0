package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yanqian/safetravels/internal/domain/proximity"
	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/internal/domain/stops"
)

// Config names the server in the MCP handshake.
type Config struct {
	Name    string
	Version string
}

// Server exposes the risk engine as MCP tools.
type Server struct {
	mcpServer    *mcpsdk.Server
	riskSvc      risk.Service
	routeSvc     route.Service
	stopsSvc     stops.Service
	proximitySvc proximity.Service
	logger       *slog.Logger
}

// New registers every tool on a fresh MCP server.
func New(cfg Config, riskSvc risk.Service, routeSvc route.Service, stopsSvc stops.Service, proximitySvc proximity.Service, logger *slog.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "safetravels"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	s := &Server{
		riskSvc:      riskSvc,
		routeSvc:     routeSvc,
		stopsSvc:     stopsSvc,
		proximitySvc: proximitySvc,
		logger:       logger.With("component", "mcp.server"),
	}
	s.mcpServer = mcpsdk.NewServer(&mcpsdk.Implementation{Name: cfg.Name, Version: cfg.Version}, nil)
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying SDK server for alternate transports.
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.mcpServer
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "assess_location_risk",
		Description: "Calculate cargo theft risk (1-10) for a GPS location using temporal, cargo, location and environmental factors.",
	}, handle(s, "assess_location_risk", s.assessLocationRisk))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "quick_risk_check",
		Description: "Quick risk check that derives time of day, weekday, month and season from the current time.",
	}, handle(s, "quick_risk_check", s.quickRiskCheck))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "what_if_departure",
		Description: "Project how departure hour, weekday and month change a base risk. Omit hour for a 24-hour profile with the best and worst hours.",
	}, handle(s, "what_if_departure", s.whatIfDeparture))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "analyze_route",
		Description: "Scan a route for red zones (high risk) and yellow zones (caution) and return recommendations.",
	}, handle(s, "analyze_route", s.analyzeRoute))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_safe_stops_nearby",
		Description: "Find truck stops near a location ranked by 0-100 security score. Tiers: level_1 (85+), level_2 (65-84), level_3 (45-64), avoid.",
	}, handle(s, "find_safe_stops_nearby", s.findSafeStops))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_fuel_stops_nearby",
		Description: "Find truck stops with diesel fuel, prioritized by safety.",
	}, handle(s, "find_fuel_stops_nearby", s.findFuelStops))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_emergency_stops",
		Description: "Find emergency help: the most secure truck stops within 100 miles plus the nearest highway patrol.",
	}, handle(s, "find_emergency_stops", s.findEmergencyStops))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_stops_before_zone",
		Description: "Find Level 2 or better stops on the approach side of a red zone.",
	}, handle(s, "find_stops_before_zone", s.findStopsBeforeZone))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_hos_stop_recommendation",
		Description: "Recommend a stop based on Hours of Service. Overnight rest never goes below Level 2; UNSAFE means no such stop exists.",
	}, handle(s, "get_hos_stop_recommendation", s.hosRecommendation))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "check_red_zone_proximity",
		Description: "Grade the distance to the nearest red zone (critical 50 mi, warning 100 mi, caution 200 mi) and render the countdown.",
	}, handle(s, "check_red_zone_proximity", s.checkProximity))
}

// handle adapts a typed tool function to the SDK. The output is left
// untyped so no output schema is inferred from domain types that marshal
// differently from their Go shape.
func handle[In, Out any](s *Server, tool string, fn func(context.Context, In) (Out, error)) mcpsdk.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, any, error) {
		out, err := fn(ctx, in)
		if err != nil {
			s.logger.Warn("tool call failed", "tool", tool, "error", err)
			return nil, nil, err
		}
		s.logger.Info("tool call", "tool", tool)
		return nil, out, nil
	}
}
