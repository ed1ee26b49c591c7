package geocode

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	locationIQBase = "https://us1.locationiq.com/v1/search"
	nominatimBase  = "https://nominatim.openstreetmap.org/search"
)

// LocationIQ is the keyed provider.
type LocationIQ struct {
	client
	apiKey string
}

// NewLocationIQ creates a LocationIQ client.
func NewLocationIQ(apiKey string, opts ...Option) *LocationIQ {
	return &LocationIQ{client: newClient("locationiq", locationIQBase, opts), apiKey: apiKey}
}

// Geocode implements Geocoder.
func (l *LocationIQ) Geocode(ctx context.Context, query string) (Result, error) {
	q, err := checkQuery(query)
	if err != nil {
		return Result{}, err
	}
	params := url.Values{}
	params.Set("key", l.apiKey)
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	return l.search(ctx, l.baseURL+"?"+params.Encode())
}

// Nominatim is the keyless OpenStreetMap provider. Requests are throttled
// to one per second across all callers sharing the client.
type Nominatim struct {
	client
	limiter *rate.Limiter
}

// NewNominatim creates a Nominatim client.
func NewNominatim(opts ...Option) *Nominatim {
	return &Nominatim{
		client:  newClient("nominatim", nominatimBase, opts),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Geocode implements Geocoder. It blocks until the rate limiter admits the
// request or ctx is done.
func (n *Nominatim) Geocode(ctx context.Context, query string) (Result, error) {
	q, err := checkQuery(query)
	if err != nil {
		return Result{}, err
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", q)
	params.Set("limit", "1")
	params.Set("addressdetails", "1")
	return n.search(ctx, n.baseURL+"?"+params.Encode())
}
