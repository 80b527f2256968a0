package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanqian/safetravels/internal/bootstrap"
	"github.com/yanqian/safetravels/internal/domain/auth"
	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/internal/domain/route"
	"github.com/yanqian/safetravels/internal/domain/stops"
	"github.com/yanqian/safetravels/pkg/geo"
)

// version is set by ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "safetravels: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(false, func(app *bootstrap.App) error {
				return app.Run(cmd.Context())
			})
		},
	}

	rootCmd := &cobra.Command{
		Use:           "safetravels",
		Short:         "cargo theft risk engine",
		Long:          "Scores cargo theft risk for locations and routes, ranks safe truck stops and warns about approaching red zones.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "serve the MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(true, func(app *bootstrap.App) error {
				return app.RunMCP(cmd.Context())
			})
		},
	}

	rootCmd.AddCommand(serveCmd, mcpCmd, newAssessCmd(), newRouteCmd(), newStopsCmd(), newTokenCmd())
	return rootCmd
}

func newAssessCmd() *cobra.Command {
	var (
		lat, lon   float64
		cargoValue float64
		rc         risk.Context
	)
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "score theft risk at one location",
		Long: `Scores a single location. Omitted context flags keep their defaults.

Examples:
  safetravels assess --lat 32.7767 --lon -96.797
  safetravels assess --lat 34.05 --lon -118.25 --commodity electronics --time-of-day night --cargo-value 500000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(true, func(app *bootstrap.App) error {
				req := risk.NewAssessRequest()
				req.Latitude, req.Longitude = lat, lon
				overlayContext(&req.Context, rc)
				if cmd.Flags().Changed("cargo-value") {
					req.Context.CargoValue = cargoValue
				}
				out, err := app.Services().Risk.Assess(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().Float64Var(&cargoValue, "cargo-value", 0, "declared cargo value in USD")
	cmd.Flags().StringVar(&rc.Commodity, "commodity", "", "cargo type, e.g. electronics")
	cmd.Flags().StringVar(&rc.TimeOfDay, "time-of-day", "", "day, evening or night")
	cmd.Flags().StringVar(&rc.DayOfWeek, "day", "", "lowercase weekday")
	cmd.Flags().StringVar(&rc.Month, "month", "", "lowercase month")
	cmd.Flags().StringVar(&rc.Season, "season", "", "seasonal period, e.g. holiday_peak")
	cmd.Flags().StringVar(&rc.LocationType, "location-type", "", "stop type, e.g. rest_area")
	cmd.Flags().StringVar(&rc.State, "state", "", "two-letter state code")
	cmd.Flags().StringVar(&rc.Weather, "weather", "", "current weather")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

func newRouteCmd() *cobra.Command {
	var (
		from, to   string
		interval   float64
		cargoValue float64
		rc         risk.Context
	)
	cmd := &cobra.Command{
		Use:   "route",
		Short: "scan a route for red and yellow zones",
		Long: `Samples the straight-line route and reports red zones, yellow zones and recommendations.

Examples:
  safetravels route --from 32.7767,-96.797 --to 41.8781,-87.6298 --commodity electronics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := parsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			destination, err := parsePoint(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			return withApp(true, func(app *bootstrap.App) error {
				ctxRisk := risk.DefaultContext()
				overlayContext(&ctxRisk, rc)
				if cmd.Flags().Changed("cargo-value") {
					ctxRisk.CargoValue = cargoValue
				}
				out, err := app.Services().Route.Analyze(cmd.Context(), route.Request{
					Origin:         origin,
					Destination:    destination,
					Context:        &ctxRisk,
					SampleInterval: interval,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "origin as lat,lon")
	cmd.Flags().StringVar(&to, "to", "", "destination as lat,lon")
	cmd.Flags().Float64Var(&interval, "interval", 0, "sample interval in miles (default from config)")
	cmd.Flags().Float64Var(&cargoValue, "cargo-value", 0, "declared cargo value in USD")
	cmd.Flags().StringVar(&rc.Commodity, "commodity", "", "cargo type")
	cmd.Flags().StringVar(&rc.TimeOfDay, "time-of-day", "", "day, evening or night")
	cmd.Flags().StringVar(&rc.Month, "month", "", "lowercase month")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newStopsCmd() *cobra.Command {
	var (
		lat, lon float64
		radius   float64
		tier     string
		fuel     bool
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "stops",
		Short: "list safe truck stops near a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			minTier, err := stops.ParseTier(tier)
			if err != nil {
				return err
			}
			return withApp(true, func(app *bootstrap.App) error {
				out, err := app.Services().Stops.Nearby(cmd.Context(), stops.Query{
					Latitude:    lat,
					Longitude:   lon,
					RadiusMiles: radius,
					MinTier:     minTier,
					RequireFuel: fuel,
					Limit:       limit,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in miles (default from config)")
	cmd.Flags().StringVar(&tier, "tier", "", "minimum tier: level_1, level_2, level_3 or avoid")
	cmd.Flags().BoolVar(&fuel, "fuel", false, "only stops with diesel")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum stops (default from config)")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var req auth.IssueRequest
	cmd := &cobra.Command{
		Use:   "token",
		Short: "mint an API access token for a fleet client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(true, func(app *bootstrap.App) error {
				out, err := app.Services().Auth.IssueToken(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().StringVar(&req.Subject, "subject", "", "client identifier embedded in the token")
	cmd.Flags().StringVar(&req.Fleet, "fleet", "", "optional fleet name")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

// withApp wires the application for one command. Logs move to stderr
// when stdout carries command output or the MCP protocol.
func withApp(stderrLogs bool, fn func(*bootstrap.App) error) error {
	if stderrLogs && os.Getenv("LOG_OUTPUT") == "" {
		_ = os.Setenv("LOG_OUTPUT", "stderr")
	}
	app, cleanup, err := initializeApp()
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	defer cleanup()
	return fn(app)
}

func overlayContext(dst *risk.Context, src risk.Context) {
	set := func(d *string, v string) {
		if v != "" {
			*d = v
		}
	}
	set(&dst.Commodity, src.Commodity)
	set(&dst.TimeOfDay, src.TimeOfDay)
	set(&dst.DayOfWeek, src.DayOfWeek)
	set(&dst.Month, src.Month)
	set(&dst.Season, src.Season)
	set(&dst.LocationType, src.LocationType)
	set(&dst.State, src.State)
	set(&dst.Weather, src.Weather)
}

func parsePoint(raw string) (geo.Point, error) {
	lat, lon, ok := strings.Cut(raw, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("expected lat,lon, got %q", raw)
	}
	p := geo.Point{}
	var err error
	if p.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude %q", lat)
	}
	if p.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64); err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude %q", lon)
	}
	return p, p.Validate()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
