package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// OSRMClient implements Provider against an OSRM server, with Nominatim for
// address geocoding. The public demo servers are the defaults; both accept
// modest request rates only.
type OSRMClient struct {
	baseURL          string
	nominatimBaseURL string
	userAgent        string
	http             *http.Client

	geocodeLimiter  *rate.Limiter
	warmConcurrency int

	mu           sync.Mutex
	geocodeCache map[string]coordinate
}

// Option configures the OSRM client.
type Option func(*OSRMClient)

// WithBaseURL sets a custom OSRM base URL (for testing or self-hosting).
func WithBaseURL(u string) Option {
	return func(c *OSRMClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithNominatimBaseURL sets a custom Nominatim base URL.
func WithNominatimBaseURL(u string) Option {
	return func(c *OSRMClient) {
		c.nominatimBaseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OSRMClient) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent sent to both services. Nominatim
// requires an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *OSRMClient) {
		c.userAgent = ua
	}
}

// WithGeocodeRate overrides the geocode rate limit (requests per second).
func WithGeocodeRate(rps float64, burst int) Option {
	return func(c *OSRMClient) {
		c.geocodeLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewOSRM creates a Provider backed by OSRM and Nominatim.
func NewOSRM(opts ...Option) *OSRMClient {
	c := &OSRMClient{
		baseURL:          "https://router.project-osrm.org",
		nominatimBaseURL: "https://nominatim.openstreetmap.org",
		userAgent:        "fieldrep-cli/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		geocodeLimiter:  rate.NewLimiter(1, 1), // Nominatim usage policy
		warmConcurrency: 4,
		geocodeCache:    make(map[string]coordinate),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tableResponse struct {
	Code      string       `json:"code"`
	Distances [][]*float64 `json:"distances"`
}

type osrmLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Legs []osrmLeg `json:"legs"`
	} `json:"routes"`
}

type tripResponse struct {
	Code      string `json:"code"`
	Waypoints []struct {
		WaypointIndex int `json:"waypoint_index"`
	} `json:"waypoints"`
	Trips []struct {
		Legs []osrmLeg `json:"legs"`
	} `json:"trips"`
}

// DistanceMatrix implements Provider via the OSRM table service with the
// origin as the single source.
func (c *OSRMClient) DistanceMatrix(ctx context.Context, origin string, destinations []string) ([]MatrixEntry, error) {
	if len(destinations) == 0 {
		return nil, eris.New("routing: distance matrix requires at least one destination")
	}

	coords, err := c.geocodeAll(ctx, append([]string{origin}, destinations...))
	if err != nil {
		return nil, err
	}

	destIdx := make([]string, 0, len(destinations))
	for i := 1; i <= len(destinations); i++ {
		destIdx = append(destIdx, fmt.Sprintf("%d", i))
	}

	reqURL := fmt.Sprintf("%s/table/v1/driving/%s?sources=0&destinations=%s&annotations=distance",
		c.baseURL, joinCoords(coords), strings.Join(destIdx, ";"))

	var tr tableResponse
	if err := c.getJSON(ctx, reqURL, &tr); err != nil {
		return nil, eris.Wrap(err, "routing: table request")
	}
	if tr.Code != "Ok" {
		return nil, eris.Errorf("routing: table request: code %s", tr.Code)
	}
	if len(tr.Distances) != 1 || len(tr.Distances[0]) != len(destinations) {
		return nil, eris.Errorf("routing: table request: expected 1x%d distances, got %dx%d",
			len(destinations), len(tr.Distances), rowLen(tr.Distances))
	}

	entries := make([]MatrixEntry, len(destinations))
	for i, d := range tr.Distances[0] {
		if d == nil {
			entries[i] = MatrixEntry{Found: false}
			continue
		}
		entries[i] = MatrixEntry{DistanceMeters: *d, Found: true}
	}
	return entries, nil
}

// Route implements Provider. Fixed-order requests use the OSRM route
// service; optimized requests use the trip service with the origin pinned
// as the loop's start and end.
func (c *OSRMClient) Route(ctx context.Context, params RouteParams) (*RouteResult, error) {
	if params.Optimize {
		return c.optimizedTrip(ctx, params)
	}
	return c.fixedRoute(ctx, params)
}

func (c *OSRMClient) fixedRoute(ctx context.Context, params RouteParams) (*RouteResult, error) {
	addrs := make([]string, 0, len(params.Waypoints)+2)
	addrs = append(addrs, params.Origin)
	addrs = append(addrs, params.Waypoints...)
	addrs = append(addrs, params.Destination)

	coords, err := c.geocodeAll(ctx, addrs)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/route/v1/driving/%s?overview=false&steps=false",
		c.baseURL, joinCoords(coords))

	var rr routeResponse
	if err := c.getJSON(ctx, reqURL, &rr); err != nil {
		return nil, eris.Wrap(err, "routing: route request")
	}
	if rr.Code != "Ok" || len(rr.Routes) == 0 {
		return nil, eris.Errorf("routing: route request: code %s", rr.Code)
	}

	return &RouteResult{Legs: convertLegs(rr.Routes[0].Legs)}, nil
}

func (c *OSRMClient) optimizedTrip(ctx context.Context, params RouteParams) (*RouteResult, error) {
	if params.Origin != params.Destination {
		return nil, eris.New("routing: optimized trips must start and end at the same address")
	}

	addrs := append([]string{params.Origin}, params.Waypoints...)
	coords, err := c.geocodeAll(ctx, addrs)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/trip/v1/driving/%s?source=first&roundtrip=true&overview=false",
		c.baseURL, joinCoords(coords))

	var tr tripResponse
	if err := c.getJSON(ctx, reqURL, &tr); err != nil {
		return nil, eris.Wrap(err, "routing: trip request")
	}
	if tr.Code != "Ok" || len(tr.Trips) == 0 {
		return nil, eris.Errorf("routing: trip request: code %s", tr.Code)
	}
	if len(tr.Waypoints) != len(addrs) {
		return nil, eris.Errorf("routing: trip request: expected %d waypoints, got %d",
			len(addrs), len(tr.Waypoints))
	}

	// OSRM's waypoints array parallels the input coordinates and carries
	// each one's position within the optimized loop. Input index 0 is the
	// pinned home; the rest map back to params.Waypoints.
	type placed struct {
		input int // index into params.Waypoints
		trip  int // position within the loop
	}
	order := make([]placed, 0, len(params.Waypoints))
	for i := 1; i < len(tr.Waypoints); i++ {
		order = append(order, placed{input: i - 1, trip: tr.Waypoints[i].WaypointIndex})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].trip < order[j].trip })

	perm := make([]int, len(order))
	for k, p := range order {
		perm[k] = p.input
	}

	return &RouteResult{
		Legs:          convertLegs(tr.Trips[0].Legs),
		WaypointOrder: perm,
	}, nil
}

// getJSON issues a GET with retries and decodes the JSON body.
func (c *OSRMClient) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return err
	}
	if statusCode != http.StatusOK {
		return eris.Errorf("status %d: %s", statusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *OSRMClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func joinCoords(coords []coordinate) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}

func convertLegs(legs []osrmLeg) []Leg {
	out := make([]Leg, len(legs))
	for i, l := range legs {
		out[i] = Leg{DistanceMeters: l.Distance, DurationSeconds: l.Duration}
	}
	return out
}

func rowLen(rows [][]*float64) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}
