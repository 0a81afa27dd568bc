package codguard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/telemetry"
)

var (
	// ErrCustomerNotFound indicates CodGuard has no history for the customer.
	ErrCustomerNotFound = fmt.Errorf("customer %w", domainErrors.ErrNotFound)
	// ErrMalformedResponse indicates a success status with an unusable body.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoOrders is returned when an import is requested with nothing to send.
	ErrNoOrders = errors.New("no orders to sync")
)

// StatusError represents an unexpected HTTP status from CodGuard.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("codguard returned status %d: %s", e.Code, e.Body)
}

// Client exposes CodGuard API operations.
type Client interface {
	FetchRating(ctx context.Context, shopID, email, publicKey string) (float64, error)
	SendFeedback(ctx context.Context, publicKey string, feedback model.Feedback) error
	ImportOrders(ctx context.Context, keys model.APIKeys, orders []model.OrderRecord) (*model.ImportResult, error)
}

// Timeouts bound each CodGuard call.
type Timeouts struct {
	Rating   time.Duration
	Feedback time.Duration
	Import   time.Duration
}

// HTTPClient implements Client via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeouts   Timeouts
	limiter    *rate.Limiter
	tracer     trace.Tracer
	logger     *slog.Logger
}

type ratingResponse struct {
	Rating *float64 `json:"rating"`
}

type importRequest struct {
	Orders []model.OrderRecord `json:"orders"`
}

// NewHTTPClient creates CodGuard client. A nil limiter disables rate limiting.
func NewHTTPClient(baseURL string, timeouts Timeouts, limiter *rate.Limiter, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse codguard url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("codguard url must be absolute")
	}
	if timeouts.Rating <= 0 {
		timeouts.Rating = 10 * time.Second
	}
	if timeouts.Feedback <= 0 {
		timeouts.Feedback = 5 * time.Second
	}
	if timeouts.Import <= 0 {
		timeouts.Import = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    parsed,
		httpClient: &http.Client{},
		timeouts:   timeouts,
		limiter:    limiter,
		tracer:     otel.Tracer(telemetry.TracerName),
		logger:     logger,
	}, nil
}

// FetchRating queries customer rating in range 0..1.
func (c *HTTPClient) FetchRating(ctx context.Context, shopID, email, publicKey string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Rating)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "codguard.FetchRating", trace.WithAttributes(attribute.String("codguard.shop_id", shopID)))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			recordError(span, err)
			return 0, fmt.Errorf("rating rate limit: %w", err)
		}
	}

	endpoint := c.endpoint("api", "customer-rating", shopID, email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", publicKey)

	c.logger.Info("calling codguard rating api", slog.String("url", endpoint))
	c.logger.Debug("rating request key", slog.String("key_prefix", keyPrefix(publicKey)), slog.Int("key_length", len(publicKey)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Info("codguard rating response", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))

	switch resp.StatusCode {
	case http.StatusOK:
		var data ratingResponse
		if err := json.Unmarshal(body, &data); err != nil {
			recordError(span, err)
			return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if data.Rating == nil {
			recordError(span, ErrMalformedResponse)
			return 0, fmt.Errorf("%w: rating missing", ErrMalformedResponse)
		}
		return *data.Rating, nil
	case http.StatusNotFound:
		return 0, ErrCustomerNotFound
	default:
		err := StatusError{Code: resp.StatusCode, Body: string(body)}
		c.logger.Error("codguard rating api error", slog.Int("status", resp.StatusCode), slog.String("error", err.Error()))
		recordError(span, err)
		return 0, err
	}
}

// SendFeedback reports gate action for a rated customer.
func (c *HTTPClient) SendFeedback(ctx context.Context, publicKey string, feedback model.Feedback) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Feedback)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "codguard.SendFeedback", trace.WithAttributes(attribute.String("codguard.action", string(feedback.Action))))
	defer span.End()

	payload, err := json.Marshal(feedback)
	if err != nil {
		recordError(span, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("api", "feedback"), bytes.NewReader(payload))
	if err != nil {
		recordError(span, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", publicKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordError(span, err)
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		err := StatusError{Code: resp.StatusCode, Body: string(body)}
		recordError(span, err)
		return err
	}
	c.logger.Debug("feedback sent", slog.String("body", string(body)))
	return nil
}

// ImportOrders posts a batch of order records.
func (c *HTTPClient) ImportOrders(ctx context.Context, keys model.APIKeys, orders []model.OrderRecord) (*model.ImportResult, error) {
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Import)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "codguard.ImportOrders", trace.WithAttributes(attribute.Int("codguard.orders", len(orders))))
	defer span.End()

	payload, err := json.Marshal(importRequest{Orders: orders})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("api", "orders", "import"), bytes.NewReader(payload))
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-PUBLIC-KEY", keys.Public)
	req.Header.Set("X-API-PRIVATE-KEY", keys.Private)

	c.logger.Debug("sending orders to codguard", slog.Int("count", len(orders)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Debug("codguard import response", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := StatusError{Code: resp.StatusCode, Body: string(body)}
		c.logger.Error("codguard import api error", slog.Int("status", resp.StatusCode), slog.String("error", err.Error()))
		recordError(span, err)
		return nil, err
	}
	if !json.Valid(body) {
		recordError(span, ErrMalformedResponse)
		return nil, fmt.Errorf("%w: invalid json from import", ErrMalformedResponse)
	}

	return &model.ImportResult{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *HTTPClient) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func keyPrefix(key string) string {
	if len(key) > 10 {
		return key[:10]
	}
	return key
}
