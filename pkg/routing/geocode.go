package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// coordinate is a geocoded point. OSRM consumes lon,lat order.
type coordinate struct {
	Lat float64
	Lon float64
}

func (c coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// geocode resolves an address to coordinates via Nominatim, memoizing
// results for the life of the client. Nominatim's usage policy caps request
// rate, so lookups go through the client's limiter.
func (c *OSRMClient) geocode(ctx context.Context, address string) (coordinate, error) {
	c.mu.Lock()
	if coord, ok := c.geocodeCache[address]; ok {
		c.mu.Unlock()
		return coord, nil
	}
	c.mu.Unlock()

	if err := c.geocodeLimiter.Wait(ctx); err != nil {
		return coordinate{}, err
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1",
		c.nominatimBaseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return coordinate{}, eris.Wrap(err, "routing: create geocode request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return coordinate{}, eris.Wrapf(err, "routing: geocode %q", address)
	}
	if statusCode != http.StatusOK {
		return coordinate{}, eris.Errorf("routing: geocode %q: status %d: %s", address, statusCode, string(body))
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return coordinate{}, eris.Wrap(err, "routing: unmarshal geocode response")
	}
	if len(results) == 0 {
		return coordinate{}, eris.Errorf("routing: geocode %q: no results", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return coordinate{}, eris.Wrapf(err, "routing: geocode %q: parse latitude", address)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return coordinate{}, eris.Wrapf(err, "routing: geocode %q: parse longitude", address)
	}

	coord := coordinate{Lat: lat, Lon: lon}
	c.mu.Lock()
	c.geocodeCache[address] = coord
	c.mu.Unlock()

	zap.L().Debug("geocoded address",
		zap.String("address", address),
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
	)
	return coord, nil
}

// geocodeAll resolves every address, reusing the memo cache.
func (c *OSRMClient) geocodeAll(ctx context.Context, addresses []string) ([]coordinate, error) {
	coords := make([]coordinate, len(addresses))
	for i, addr := range addresses {
		coord, err := c.geocode(ctx, addr)
		if err != nil {
			return nil, err
		}
		coords[i] = coord
	}
	return coords, nil
}

// WarmGeocodeCache resolves addresses ahead of time with bounded
// parallelism. Individual failures are logged and skipped; a cold entry
// simply geocodes lazily later.
func (c *OSRMClient) WarmGeocodeCache(ctx context.Context, addresses []string) {
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.warmConcurrency)

	for _, addr := range addresses {
		eg.Go(func() error {
			if _, err := c.geocode(gCtx, addr); err != nil {
				zap.L().Debug("geocode warm-up miss",
					zap.String("address", addr),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	_ = eg.Wait()
}
