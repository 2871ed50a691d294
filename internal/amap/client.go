// Package amap is a client for the AMap (高德) web service REST API: the
// geocoder and the direction API the route aggregator consumes. There is
// no official Go SDK; this talks to restapi.amap.com directly.
package amap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/almanac/internal/config"
	"github.com/agenthands/almanac/internal/core/model"
)

const defaultBaseURL = "https://restapi.amap.com"

type Client struct {
	key     string
	city    string
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.AMapConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		key:     cfg.APIKey,
		city:    cfg.City,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode resolves a free-text address to coordinates and the formatted
// address, biased to the configured city.
func (c *Client) Geocode(ctx context.Context, address string) (model.Coordinates, string, error) {
	params := url.Values{}
	params.Set("address", address)
	if c.city != "" {
		params.Set("city", c.city)
	}
	params.Set("output", "JSON")

	var resp geocodeResponse
	if err := c.get(ctx, "/v3/geocode/geo", params, &resp); err != nil {
		return model.Coordinates{}, "", err
	}
	if resp.Status != "1" || len(resp.Geocodes) == 0 {
		return model.Coordinates{}, "", fmt.Errorf("no geocode result for %q: %s", address, resp.Info)
	}

	coords, err := parseLocation(resp.Geocodes[0].Location)
	if err != nil {
		return model.Coordinates{}, "", fmt.Errorf("geocode result for %q: %w", address, err)
	}
	return coords, resp.Geocodes[0].FormattedAddress, nil
}

// ReverseGeocode resolves coordinates to a formatted address.
func (c *Client) ReverseGeocode(ctx context.Context, coords model.Coordinates) (string, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", coords.Longitude, coords.Latitude))

	var resp regeoResponse
	if err := c.get(ctx, "/v3/geocode/regeo", params, &resp); err != nil {
		return "", err
	}
	if resp.Status != "1" || resp.Regeocode.FormattedAddress == "" {
		return "", fmt.Errorf("no address for [%f, %f]: %s", coords.Longitude, coords.Latitude, resp.Info)
	}
	return resp.Regeocode.FormattedAddress, nil
}

// Route requests one pre-computed route summary for the given mode.
func (c *Client) Route(ctx context.Context, mode model.Mode, origin, destination model.Coordinates) (model.RouteSummary, error) {
	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Longitude, origin.Latitude))
	params.Set("destination", fmt.Sprintf("%f,%f", destination.Longitude, destination.Latitude))

	var path string
	switch mode {
	case model.ModeWalking:
		path = "/v3/direction/walking"
	case model.ModeDriving:
		path = "/v3/direction/driving"
		params.Set("strategy", "0")
		params.Set("extensions", "base")
	case model.ModeTransit:
		path = "/v3/direction/transit/integrated"
		if c.city != "" {
			params.Set("city", c.city)
		}
		params.Set("strategy", "0")
		params.Set("extensions", "base")
	default:
		return model.RouteSummary{}, fmt.Errorf("invalid route mode %q", mode)
	}

	var resp directionResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return model.RouteSummary{}, err
	}
	if resp.Status != "1" {
		return model.RouteSummary{}, fmt.Errorf("%s direction request failed: %s", mode, resp.Info)
	}

	if mode == model.ModeTransit {
		return summarizeTransit(resp.Route.Transits)
	}
	return summarizePath(mode, resp.Route.Paths)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("amap request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read amap response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("amap returned HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode amap response: %w", err)
	}
	return nil
}

// Wire shapes. AMap encodes every number as a JSON string.

type geocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Geocodes []struct {
		Location         string `json:"location"` // "lng,lat"
		FormattedAddress string `json:"formatted_address"`
	} `json:"geocodes"`
}

type regeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"regeocode"`
}

type directionResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	Route  struct {
		Paths    []directionPath    `json:"paths"`
		Transits []directionTransit `json:"transits"`
	} `json:"route"`
}

type directionPath struct {
	Distance string          `json:"distance"`
	Duration string          `json:"duration"`
	Steps    []directionStep `json:"steps"`
}

type directionStep struct {
	Instruction string `json:"instruction"`
	Polyline    string `json:"polyline"` // "lng,lat;lng,lat;..."
}

type directionTransit struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
	Segments []struct {
		Walking struct {
			Steps []directionStep `json:"steps"`
		} `json:"walking"`
		Bus struct {
			Buslines []struct {
				Name          string `json:"name"`
				Polyline      string `json:"polyline"`
				DepartureStop struct {
					Name string `json:"name"`
				} `json:"departure_stop"`
				ArrivalStop struct {
					Name string `json:"name"`
				} `json:"arrival_stop"`
			} `json:"buslines"`
		} `json:"bus"`
	} `json:"segments"`
}

func summarizePath(mode model.Mode, paths []directionPath) (model.RouteSummary, error) {
	if len(paths) == 0 {
		return model.RouteSummary{}, fmt.Errorf("no %s path found", mode)
	}
	p := paths[0]

	summary := model.RouteSummary{Mode: mode}
	summary.Distance = parseNumber(p.Distance)
	summary.Duration = parseNumber(p.Duration)
	for _, step := range p.Steps {
		summary.Steps = append(summary.Steps, step.Instruction)
		summary.Polyline = append(summary.Polyline, parsePolyline(step.Polyline)...)
	}
	return summary, nil
}

func summarizeTransit(transits []directionTransit) (model.RouteSummary, error) {
	if len(transits) == 0 {
		return model.RouteSummary{}, fmt.Errorf("no transit route found")
	}
	t := transits[0]

	summary := model.RouteSummary{Mode: model.ModeTransit}
	summary.Distance = parseNumber(t.Distance)
	summary.Duration = parseNumber(t.Duration)
	for _, seg := range t.Segments {
		for _, step := range seg.Walking.Steps {
			summary.Steps = append(summary.Steps, step.Instruction)
			summary.Polyline = append(summary.Polyline, parsePolyline(step.Polyline)...)
		}
		if len(seg.Bus.Buslines) > 0 {
			line := seg.Bus.Buslines[0]
			summary.Steps = append(summary.Steps, fmt.Sprintf(
				"乘坐 %s，从 %s 到 %s", line.Name, line.DepartureStop.Name, line.ArrivalStop.Name))
			summary.Polyline = append(summary.Polyline, parsePolyline(line.Polyline)...)
		}
	}
	return summary, nil
}

// parseLocation splits AMap's "lng,lat" location string.
func parseLocation(location string) (model.Coordinates, error) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return model.Coordinates{}, fmt.Errorf("invalid location %q", location)
	}
	lng, err1 := strconv.ParseFloat(parts[0], 64)
	lat, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return model.Coordinates{}, fmt.Errorf("invalid location %q", location)
	}
	return model.Coordinates{Longitude: lng, Latitude: lat}, nil
}

// parsePolyline splits "lng,lat;lng,lat" into coordinate pairs, dropping
// malformed points.
func parsePolyline(polyline string) [][2]float64 {
	if polyline == "" {
		return nil
	}
	var points [][2]float64
	for _, raw := range strings.Split(polyline, ";") {
		coords, err := parseLocation(raw)
		if err != nil {
			continue
		}
		points = append(points, [2]float64{coords.Longitude, coords.Latitude})
	}
	return points
}

// parseNumber parses AMap's string-encoded numbers, zero when absent.
func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
