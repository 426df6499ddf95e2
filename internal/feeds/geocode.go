package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type geocodeResponse struct {
	TimezoneID  string `json:"timezone_id"`
	CountryCode string `json:"country_code"`
}

// ReverseGeocode resolves a coordinate to a human-readable place label.
// The place name is derived from the final segment of the timezone path,
// with underscores replaced by spaces. Coordinates over open water
// typically resolve to "Ocean".
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (Location, error) {
	url := fmt.Sprintf("%s/%.4f,%.4f", c.geocodeURL, lat, lon)
	body, err := c.get(ctx, url)
	if err != nil {
		return Location{}, err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Location{}, fmt.Errorf("parse geocode response: %w", err)
	}

	loc := Location{
		Place:       "Ocean",
		CountryCode: "International Waters",
		TimezoneID:  resp.TimezoneID,
	}
	if resp.TimezoneID != "" {
		parts := strings.Split(resp.TimezoneID, "/")
		loc.Place = strings.ReplaceAll(parts[len(parts)-1], "_", " ")
		loc.CountryCode = resp.CountryCode
	}
	return loc, nil
}

// CoordinateLabel formats a raw coordinate as a compass-quadrant label,
// used when reverse geocoding is unavailable.
func CoordinateLabel(lat, lon float64) string {
	ns := "N"
	if lat < 0 {
		ns = "S"
	}
	ew := "E"
	if lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.1f°%s %.1f°%s", math.Abs(lat), ns, math.Abs(lon), ew)
}
