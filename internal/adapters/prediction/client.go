// Package prediction talks to the occupancy prediction model. Results
// are cached per flight for a short TTL so batch ingestion does not
// hammer the model endpoint.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/example/tarmac/internal/core/alloc"
	"github.com/example/tarmac/internal/ports/secondary"
)

// Options configure the HTTP prediction client.
type Options struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	CacheTTL   time.Duration
}

type cacheEntry struct {
	prediction secondary.Prediction
	expires    time.Time
}

// Client is the HTTP implementation of secondary.PredictionClient.
type Client struct {
	opts   Options
	http   *http.Client
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

var _ secondary.PredictionClient = (*Client)(nil)

func NewClient(opts Options, logger *zap.Logger) *Client {
	return &Client{
		opts:   opts,
		http:   &http.Client{Timeout: opts.Timeout},
		logger: logger,
		cache:  make(map[string]cacheEntry),
	}
}

type predictRequest struct {
	FlightID     string `json:"flight_id"`
	Callsign     string `json:"callsign"`
	AircraftSize string `json:"aircraft_size"`
	Direction    string `json:"direction"`
}

type predictResponse struct {
	DurationMinutes int     `json:"duration_minutes"`
	Confidence      float64 `json:"confidence"`
}

// PredictOccupancy returns the predicted occupancy for the flight,
// retrying transient failures with exponential backoff.
func (c *Client) PredictOccupancy(ctx context.Context, flight alloc.FlightRef) (*secondary.Prediction, error) {
	if cached, ok := c.lookup(flight.ID); ok {
		return &cached, nil
	}

	body, err := json.Marshal(predictRequest{
		FlightID:     flight.ID,
		Callsign:     flight.Callsign,
		AircraftSize: string(flight.Size),
		Direction:    string(flight.Direction),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	op := func() (secondary.Prediction, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
		if err != nil {
			return secondary.Prediction{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return secondary.Prediction{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return secondary.Prediction{}, fmt.Errorf("prediction service returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return secondary.Prediction{}, backoff.Permanent(fmt.Errorf("prediction service returned %d", resp.StatusCode))
		}

		var decoded predictResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return secondary.Prediction{}, backoff.Permanent(fmt.Errorf("failed to decode prediction: %w", err))
		}
		return secondary.Prediction{
			DurationMinutes: decoded.DurationMinutes,
			Confidence:      decoded.Confidence,
		}, nil
	}

	p, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.opts.MaxRetries)))
	if err != nil {
		return nil, fmt.Errorf("prediction failed for flight %s: %w", flight.ID, err)
	}

	c.store(flight.ID, p)
	return &p, nil
}

func (c *Client) lookup(flightID string) (secondary.Prediction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[flightID]
	if !ok || time.Now().After(entry.expires) {
		delete(c.cache, flightID)
		return secondary.Prediction{}, false
	}
	return entry.prediction, true
}

func (c *Client) store(flightID string, p secondary.Prediction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[flightID] = cacheEntry{prediction: p, expires: time.Now().Add(c.opts.CacheTTL)}
}
