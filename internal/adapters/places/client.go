// internal/adapters/places/client.go
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"elitestay/internal/adapters/observability"
	"elitestay/internal/domain"
	"elitestay/internal/shared"
)

const maxAttempts = 4

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("places API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

type prediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

type autocompleteResponse struct {
	Predictions  []prediction `json:"predictions"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

// Autocomplete returns predictions for a partial input. ZERO_RESULTS is an empty slice.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	q := url.Values{}
	q.Set("input", input)
	q.Set("types", "geocode")
	var out autocompleteResponse
	if err := c.get(ctx, "autocomplete", "/place/autocomplete/json", q, &out); err != nil {
		return nil, err
	}
	if err := statusErr(out.Status, out.ErrorMessage); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []domain.PlaceSuggestion{}, nil
		}
		return nil, err
	}

	res := make([]domain.PlaceSuggestion, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		if strings.TrimSpace(p.Description) == "" {
			continue
		}
		res = append(res, domain.PlaceSuggestion{PlaceID: p.PlaceID, FullText: p.Description})
	}
	return res, nil
}

type detailsResponse struct {
	Result *struct {
		Name     string `json:"name"`
		Geometry *struct {
			Location *struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// PlaceDetails fetches name and lat/lng for a place id. A place the provider
// does not know is reported as ErrNotFound.
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (domain.Place, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "name,geometry")
	var out detailsResponse
	if err := c.get(ctx, "details", "/place/details/json", q, &out); err != nil {
		return domain.Place{}, err
	}
	if err := statusErr(out.Status, out.ErrorMessage); err != nil {
		return domain.Place{}, err
	}
	if out.Result == nil {
		return domain.Place{}, ErrNotFound
	}

	p := domain.Place{ID: placeID, Name: out.Result.Name}
	if g := out.Result.Geometry; g != nil && g.Location != nil {
		p.LatLng = &domain.Coordinates{Latitude: g.Location.Lat, Longitude: g.Location.Lng}
		p.Coordinates = domain.FormatLatLng(p.LatLng)
	}
	return p, nil
}

// ---- Internals ----

var (
	ErrNotFound = fmt.Errorf("places: %w", domain.ErrNotFound)
	ErrDenied   = errors.New("places: request denied")
	ErrQuota    = errors.New("places: over query limit")
)

// statusErr maps the provider's body-level status to an error.
func statusErr(status, msg string) error {
	switch status {
	case "", "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND", "INVALID_REQUEST":
		return ErrNotFound
	case "REQUEST_DENIED":
		return fmt.Errorf("%w: %s", ErrDenied, msg)
	case "OVER_QUERY_LIMIT":
		return ErrQuota
	default:
		return fmt.Errorf("places: status %s: %s", status, msg)
	}
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	q.Set("key", c.key)
	u := c.base + path + "?" + q.Encode()

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "elitestay/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("places", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
			if i < maxAttempts-1 && shared.SleepCtx(ctx, shared.Backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("places", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrDenied

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = shared.Backoff(i)
			}
			lastErr = fmt.Errorf("%w: places %d", domain.ErrRemoteUnavailable, resp.StatusCode)
			if i < maxAttempts-1 && shared.SleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
