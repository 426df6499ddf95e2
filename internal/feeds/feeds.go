// Package feeds provides clients for the external data feeds the dashboard
// consumes: live spacecraft position (with a lower-fidelity fallback), crew
// roster, and reverse geocoding.
package feeds

import (
	"net/http"
	"time"
)

const (
	// DefaultPositionURL is the primary live-position feed (full payload:
	// altitude, velocity, visibility, footprint).
	DefaultPositionURL = "https://api.wheretheiss.at/v1/satellites/25544"

	// DefaultFallbackURL is the lower-fidelity fallback position feed
	// (latitude/longitude only, string-typed).
	DefaultFallbackURL = "http://api.open-notify.org/iss-now.json"

	// DefaultCrewURL returns everyone currently in space with a craft
	// affiliation field.
	DefaultCrewURL = "http://api.open-notify.org/astros.json"

	// DefaultGeocodeURL is the reverse-geocode endpoint; lat,lon is appended
	// as a path segment.
	DefaultGeocodeURL = "https://api.wheretheiss.at/v1/coordinates"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 10 * time.Second

	userAgent = "orbitdeck/0.3 (Mission Dashboard)"
)

// Position is a live spacecraft fix. Fields beyond latitude/longitude are
// only populated when HasExtras is true (primary feed).
type Position struct {
	Latitude    float64
	Longitude   float64
	AltitudeKm  float64
	VelocityKmh float64
	FootprintKm float64
	Visibility  string // "daylight" or "eclipsed"
	Timestamp   time.Time
	Source      string // "wheretheiss" or "open-notify"
	HasExtras   bool
}

// CrewMember is one person from the roster feed.
type CrewMember struct {
	Name  string `json:"name"`
	Craft string `json:"craft"`
}

// Location is a reverse-geocode result.
type Location struct {
	Place       string
	CountryCode string
	TimezoneID  string
}

// Client fetches from the external feeds.
type Client struct {
	client      *http.Client
	positionURL string
	fallbackURL string
	crewURL     string
	geocodeURL  string
	timeout     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithPositionURL overrides the primary position feed URL.
func WithPositionURL(url string) Option {
	return func(cl *Client) { cl.positionURL = url }
}

// WithFallbackURL overrides the fallback position feed URL.
func WithFallbackURL(url string) Option {
	return func(cl *Client) { cl.fallbackURL = url }
}

// WithCrewURL overrides the crew roster feed URL.
func WithCrewURL(url string) Option {
	return func(cl *Client) { cl.crewURL = url }
}

// WithGeocodeURL overrides the reverse-geocode feed URL.
func WithGeocodeURL(url string) Option {
	return func(cl *Client) { cl.geocodeURL = url }
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// NewClient creates a feed client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		positionURL: DefaultPositionURL,
		fallbackURL: DefaultFallbackURL,
		crewURL:     DefaultCrewURL,
		geocodeURL:  DefaultGeocodeURL,
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}

	return c
}
