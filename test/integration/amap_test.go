//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/almanac/internal/amap"
	"github.com/agenthands/almanac/internal/config"
	"github.com/agenthands/almanac/internal/core/model"
)

// TestAMapRoundTrip geocodes a well-known Beijing address and plans routes
// between two landmarks against the live AMap API.
func TestAMapRoundTrip(t *testing.T) {
	_ = godotenv.Load("../../.env")

	key := os.Getenv("AMAP_API_KEY")
	if key == "" {
		t.Skip("Skipping integration test: AMAP_API_KEY not set")
	}

	client := amap.NewClient(config.AMapConfig{
		APIKey: key,
		City:   "北京",
	})

	ctx := context.Background()

	coords, address, err := client.Geocode(ctx, "北京市朝阳区阜通东大街6号")
	require.NoError(t, err)
	t.Logf("geocoded to [%f, %f] %s", coords.Longitude, coords.Latitude, address)
	assert.NotEmpty(t, address)
	assert.InDelta(t, 116.4, coords.Longitude, 1.0)
	assert.InDelta(t, 39.9, coords.Latitude, 1.0)

	back, err := client.ReverseGeocode(ctx, coords)
	require.NoError(t, err)
	assert.NotEmpty(t, back)

	// Zhongguancun to Guomao, far enough apart that every mode has a route.
	origin := model.Coordinates{Longitude: 116.310905, Latitude: 39.992806}
	destination := model.Coordinates{Longitude: 116.457936, Latitude: 39.909990}

	for _, mode := range model.Modes {
		summary, err := client.Route(ctx, mode, origin, destination)
		require.NoError(t, err, "mode %s", mode)
		t.Logf("%s: %.0fm in %.0fs, %d steps", mode, summary.Distance, summary.Duration, len(summary.Steps))
		assert.Greater(t, summary.Distance, 0.0)
		assert.Greater(t, summary.Duration, 0.0)
		assert.NotEmpty(t, summary.Steps)
	}
}
