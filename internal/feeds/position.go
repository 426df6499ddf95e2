package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// primaryResponse is the wheretheiss payload.
type primaryResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Altitude   float64 `json:"altitude"`
	Velocity   float64 `json:"velocity"`
	Visibility string  `json:"visibility"`
	Footprint  float64 `json:"footprint"`
	Timestamp  int64   `json:"timestamp"`
}

// fallbackResponse is the open-notify payload. Coordinates arrive as
// strings per that feed's schema.
type fallbackResponse struct {
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
	ISSPosition struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"iss_position"`
}

// FetchPosition retrieves the current spacecraft position from the primary
// feed, falling back to the lower-fidelity feed if the primary fails. An
// error is returned only when both sources fail.
func (c *Client) FetchPosition(ctx context.Context) (Position, error) {
	pos, primaryErr := c.fetchPrimary(ctx)
	if primaryErr == nil {
		return pos, nil
	}

	pos, fallbackErr := c.fetchFallback(ctx)
	if fallbackErr == nil {
		return pos, nil
	}

	return Position{}, fmt.Errorf("position feeds unavailable (primary: %v): %w", primaryErr, fallbackErr)
}

func (c *Client) fetchPrimary(ctx context.Context) (Position, error) {
	body, err := c.get(ctx, c.positionURL)
	if err != nil {
		return Position{}, err
	}

	var resp primaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Position{}, fmt.Errorf("parse primary position: %w", err)
	}

	return Position{
		Latitude:    resp.Latitude,
		Longitude:   resp.Longitude,
		AltitudeKm:  resp.Altitude,
		VelocityKmh: resp.Velocity,
		FootprintKm: resp.Footprint,
		Visibility:  resp.Visibility,
		Timestamp:   time.Unix(resp.Timestamp, 0).UTC(),
		Source:      "wheretheiss",
		HasExtras:   true,
	}, nil
}

func (c *Client) fetchFallback(ctx context.Context) (Position, error) {
	body, err := c.get(ctx, c.fallbackURL)
	if err != nil {
		return Position{}, err
	}

	var resp fallbackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Position{}, fmt.Errorf("parse fallback position: %w", err)
	}
	if resp.Message != "success" {
		return Position{}, fmt.Errorf("fallback feed returned message %q", resp.Message)
	}

	lat, err := strconv.ParseFloat(resp.ISSPosition.Latitude, 64)
	if err != nil {
		return Position{}, fmt.Errorf("parse fallback latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(resp.ISSPosition.Longitude, 64)
	if err != nil {
		return Position{}, fmt.Errorf("parse fallback longitude: %w", err)
	}

	return Position{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: time.Unix(resp.Timestamp, 0).UTC(),
		Source:    "open-notify",
		HasExtras: false,
	}, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}
