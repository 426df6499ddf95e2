package missions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultCatalogURL is the Space Devs Launch Library upcoming-launch
	// endpoint, pre-filtered to the Artemis program.
	DefaultCatalogURL = "https://ll.thespacedevs.com/2.2.0/launch/upcoming/?search=Artemis&limit=10"

	// DefaultTimeout for catalog requests. The Launch Library is slow and
	// aggressively rate-limited.
	DefaultTimeout = 30 * time.Second

	userAgent = "orbitdeck/0.3 (Mission Dashboard)"
)

// Client fetches mission data from the Launch Library.
type Client struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets a custom catalog URL.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a mission catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:     DefaultCatalogURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}

	return c
}

// launchResponse is the Launch Library envelope, reduced to the fields the
// dashboard consumes.
type launchResponse struct {
	Results []struct {
		Name string `json:"name"`
		Net  string `json:"net"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
		Pad struct {
			Location struct {
				Name string `json:"name"`
			} `json:"location"`
		} `json:"pad"`
		Rocket struct {
			Configuration struct {
				Name string `json:"name"`
			} `json:"configuration"`
		} `json:"rocket"`
	} `json:"results"`
}

// FetchUpcoming retrieves upcoming missions from the catalog. Launch names
// arrive as "rocket | mission" pairs; both halves are kept.
func (c *Client) FetchUpcoming(ctx context.Context) ([]Mission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch mission catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var envelope launchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse mission catalog: %w", err)
	}

	out := make([]Mission, 0, len(envelope.Results))
	for _, result := range envelope.Results {
		rocket, name := splitLaunchName(result.Name)
		if rocket == "" {
			rocket = result.Rocket.Configuration.Name
		}

		m := Mission{
			Slug:       Slugify(name),
			Name:       name,
			Type:       Slugify(name),
			Status:     result.Status.Name,
			Site:       result.Pad.Location.Name,
			Rocket:     rocket,
			Spacecraft: "Orion",
		}
		if t, err := time.Parse(time.RFC3339, result.Net); err == nil {
			m.LaunchDate = t
		}
		out = append(out, m)
	}

	return out, nil
}

// FetchMission retrieves the first upcoming mission matching the slug,
// degrading to the built-in fallback when the catalog is unreachable or
// has no match.
func (c *Client) FetchMission(ctx context.Context, slug string) Mission {
	all, err := c.FetchUpcoming(ctx)
	if err != nil {
		return FallbackMission()
	}
	for _, m := range all {
		if m.Slug == slug {
			return m
		}
	}
	if slug == "" && len(all) > 0 {
		return all[0]
	}
	return FallbackMission()
}

// splitLaunchName breaks a "rocket | mission" launch name into its halves.
// Names without the separator are treated as mission-only.
func splitLaunchName(full string) (rocket, mission string) {
	parts := strings.SplitN(full, "|", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", strings.TrimSpace(full)
}
