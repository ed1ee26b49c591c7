// Package geocode resolves free-text place queries to coordinates.
//
// Two providers are supported: LocationIQ, which needs an API key, and the
// public OpenStreetMap Nominatim service, which needs none but allows at most
// one request per second. Chain combines them so the keyed provider is tried
// first and Nominatim catches whatever it cannot answer.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/trip-planner/internal/domain"
)

var (
	// ErrNoResult is returned when a provider answered but found no match.
	ErrNoResult = errors.New("geocode: no result")
	// ErrUnavailable marks a provider that could not be reached or gave an
	// unusable answer.
	ErrUnavailable = errors.New("geocode: provider unavailable")
)

// Result is the best match for a query.
type Result struct {
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	DisplayAddress string  `json:"displayAddress"`
}

// Geocoder looks up a single best match for a free-text query.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Provider string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocode: %s returned status %d", e.Provider, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrUnavailable }

// Option customizes a provider client.
type Option func(*client)

// WithBaseURL points the client at a different search endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

// New returns the geocoder used by the application: LocationIQ backed by
// Nominatim when apiKey is set, Nominatim alone otherwise.
func New(apiKey, userAgent string) Geocoder {
	osm := NewNominatim(WithUserAgent(userAgent))
	if strings.TrimSpace(apiKey) == "" {
		return osm
	}
	return Chain{NewLocationIQ(apiKey, WithUserAgent(userAgent)), osm}
}

type client struct {
	provider   string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func newClient(provider, baseURL string, opts []Option) client {
	c := client{
		provider:   provider,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// place is the search result shape shared by both providers.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// search issues a GET against reqURL and returns the first result.
func (c *client) search(ctx context.Context, reqURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: %s: request creation failed: %w", c.provider, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: %s: %w: %w", c.provider, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// LocationIQ answers an unmatched query with 404.
	if resp.StatusCode == http.StatusNotFound {
		return Result{}, ErrNoResult
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &StatusError{Provider: c.provider, Status: resp.StatusCode}
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Result{}, fmt.Errorf("geocode: %s: %w: decode response: %w", c.provider, ErrUnavailable, err)
	}
	if len(places) == 0 {
		return Result{}, ErrNoResult
	}
	res, err := places[0].result()
	if err != nil {
		return Result{}, fmt.Errorf("geocode: %s: %w: %w", c.provider, ErrUnavailable, err)
	}
	return res, nil
}

func (p place) result() (Result, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("bad latitude %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("bad longitude %q: %w", p.Lon, err)
	}
	return Result{Lat: lat, Lng: lng, DisplayAddress: p.DisplayName}, nil
}

func checkQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("%w: geocode query is required", domain.ErrValidation)
	}
	return q, nil
}

// Chain tries each geocoder in order and returns the first match.
type Chain []Geocoder

// Geocode implements Geocoder. It returns ErrNoResult when every provider
// found nothing, and the joined provider errors otherwise. The joined error
// matches ErrUnavailable when any provider failed that way.
func (c Chain) Geocode(ctx context.Context, query string) (Result, error) {
	if _, err := checkQuery(query); err != nil {
		return Result{}, err
	}
	var errs []error
	for _, g := range c {
		res, err := g.Geocode(ctx, query)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if !errors.Is(err, ErrNoResult) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return Result{}, ErrNoResult
	}
	return Result{}, errors.Join(errs...)
}
