package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/safetravels/internal/domain/risk"
	"github.com/yanqian/safetravels/pkg/geo"
)

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 32.7767, -96.797 ")
	require.NoError(t, err)
	require.Equal(t, geo.Point{Lat: 32.7767, Lon: -96.797}, p)

	_, err = parsePoint("32.7767")
	require.Error(t, err)

	_, err = parsePoint("north,-96")
	require.Error(t, err)

	_, err = parsePoint("91,-96")
	require.Error(t, err)
}

func TestOverlayContextKeepsDefaults(t *testing.T) {
	rc := risk.DefaultContext()
	overlayContext(&rc, risk.Context{Commodity: "electronics", TimeOfDay: "night"})

	require.Equal(t, "electronics", rc.Commodity)
	require.Equal(t, "night", rc.TimeOfDay)
	require.Equal(t, "monday", rc.DayOfWeek)
	require.Equal(t, 50000.0, rc.CargoValue)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "mcp", "assess", "route", "stops", "token"} {
		require.True(t, names[want], want)
	}
}
