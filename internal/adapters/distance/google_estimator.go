package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"fleet-breakeven-service/internal/domain"
	"fleet-breakeven-service/internal/ports"

	"go.uber.org/zap"
)

// Default cap on external matrix calls per process, guarding API spend.
const DefaultDailyRequestLimit = 3000

// GoogleEstimator implements RouteEstimator using the Google Distance
// Matrix API.
//
// It coordinates:
//   - Postcode district normalization
//   - A daily request budget so a runaway manifest cannot burn API credit
//   - External API calls with retry/backoff
//
// The pessimistic traffic model is deliberate: van costs must never be
// underestimated when comparing against recorded courier charges.
//
// The estimator is safe for concurrent use.
type GoogleEstimator struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	depot        string // depot postcode, the origin of every estimate
	trafficModel string
	log          *zap.SugaredLogger

	mu           sync.Mutex
	requestsUsed int
	requestLimit int
}

func NewGoogleEstimator(apiKey, depotPostcode string, log *zap.SugaredLogger) (*GoogleEstimator, error) {
	if apiKey == "" {
		return nil, errors.New("google estimator: api key is empty")
	}

	depot := domain.NormalizePostcode(depotPostcode)
	if depot == "" {
		return nil, errors.New("google estimator: depot postcode is empty")
	}

	return &GoogleEstimator{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://maps.googleapis.com",
		depot:        depot,
		trafficModel: "pessimistic",
		log:          log,
		requestLimit: DefaultDailyRequestLimit,
	}, nil
}

// SetRequestLimit overrides the daily request budget (0 disables calls).
func (g *GoogleEstimator) SetRequestLimit(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requestLimit = n
}

// SetBaseURL points the estimator at a different endpoint (tests).
func (g *GoogleEstimator) SetBaseURL(u string) { g.baseURL = u }

func (g *GoogleEstimator) consumeBudget() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.requestsUsed >= g.requestLimit {
		return fmt.Errorf(
			"google estimator: daily request budget of %d spent: %w",
			g.requestLimit, ports.ErrLookupUnavailable,
		)
	}
	g.requestsUsed++
	return nil
}

type matrixValue struct {
	Value int `json:"value"`
}

type matrixElement struct {
	Status            string       `json:"status"`
	Distance          matrixValue  `json:"distance"`
	Duration          matrixValue  `json:"duration"`
	DurationInTraffic *matrixValue `json:"duration_in_traffic"`
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

// Estimate returns the depot -> district driving distance and time.
// Transient API failures are retried; a final failure or an exhausted
// budget wraps ErrLookupUnavailable so callers can flag the district and
// carry on.
func (g *GoogleEstimator) Estimate(ctx context.Context, district string) (domain.RouteEstimate, error) {
	dest := domain.NormalizePostcode(district)
	if dest == "" {
		return domain.RouteEstimate{}, errors.New("google estimator: district must be non-empty")
	}

	if err := g.consumeBudget(); err != nil {
		return domain.RouteEstimate{}, err
	}

	endpoint := g.baseURL + "/maps/api/distancematrix/json"

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		q := url.Values{}
		q.Set("origins", g.depot)
		q.Set("destinations", dest+", UK")
		q.Set("mode", "driving")
		// departure_time is required for duration_in_traffic.
		q.Set("departure_time", strconv.FormatInt(time.Now().Unix(), 10))
		q.Set("traffic_model", g.trafficModel)
		q.Set("key", g.apiKey)
		req.URL.RawQuery = q.Encode()

		return req, nil
	})
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf(
			"google estimator: matrix request for %q: %w: %w",
			dest, err, ports.ErrLookupUnavailable,
		)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("google estimator: decode matrix response: %w", err)
	}

	if mr.Status != "OK" {
		return domain.RouteEstimate{}, fmt.Errorf(
			"google estimator: matrix status %q for %q: %w",
			mr.Status, dest, ports.ErrLookupUnavailable,
		)
	}

	if len(mr.Rows) != 1 || len(mr.Rows[0].Elements) != 1 {
		return domain.RouteEstimate{}, fmt.Errorf(
			"google estimator: expected 1x1 matrix for %q, got %d rows", dest, len(mr.Rows),
		)
	}

	el := mr.Rows[0].Elements[0]
	if el.Status != "OK" {
		return domain.RouteEstimate{}, fmt.Errorf(
			"google estimator: no route for %q (element status %q): %w",
			dest, el.Status, ports.ErrLookupUnavailable,
		)
	}

	seconds := el.Duration.Value
	if el.DurationInTraffic != nil {
		seconds = el.DurationInTraffic.Value
	}

	return domain.RouteEstimate{
		DistanceKm:      float64(el.Distance.Value) / 1000.0,
		DurationMinutes: float64(seconds) / 60.0,
	}, nil
}
