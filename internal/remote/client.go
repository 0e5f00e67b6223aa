package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"geo2max-server/internal/domain"

	"golang.org/x/time/rate"
)

// Source abstracts the paginated remote activity API. Pages are
// 1-indexed and ordered newest-first by start date; the sync engine
// relies on that ordering to stop early.
type Source interface {
	ListActivities(ctx context.Context, credential string, page, perPage int) ([]domain.Activity, error)
	FetchLatLngStream(ctx context.Context, credential string, activityID int64) (domain.LatLngStream, error)
}

// maxResponseSize bounds how much of a remote response is read, so a
// misbehaving remote cannot force unbounded allocation.
const maxResponseSize = 16 << 20

type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Source over the remote REST API. The limiter is
// applied before every request because the remote enforces per-caller
// rate limits.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, burst int) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (c *Client) ListActivities(ctx context.Context, credential string, page, perPage int) ([]domain.Activity, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	body, err := c.get(ctx, credential, fmt.Sprintf("%s/athlete/activities?%s", c.baseURL, query.Encode()), 0)
	if err != nil {
		return nil, err
	}

	var activities []domain.Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, &UnavailableError{Message: fmt.Sprintf("malformed activity page: %v", err)}
	}

	return activities, nil
}

func (c *Client) FetchLatLngStream(ctx context.Context, credential string, activityID int64) (domain.LatLngStream, error) {
	reqURL := fmt.Sprintf("%s/activities/%d/streams?keys=latlng&key_by_type=true", c.baseURL, activityID)

	body, err := c.get(ctx, credential, reqURL, activityID)
	if err != nil {
		return nil, err
	}

	var payload struct {
		LatLng struct {
			Data domain.LatLngStream `json:"data"`
		} `json:"latlng"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UnavailableError{Message: fmt.Sprintf("malformed stream response: %v", err)}
	}

	return payload.LatLng.Data, nil
}

func (c *Client) get(ctx context.Context, credential, reqURL string, activityID int64) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UnavailableError{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build remote request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &UnavailableError{Message: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Message: remoteMessage(body)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{ActivityID: activityID}
	default:
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Message: remoteMessage(body)}
	}
}

// remoteMessage extracts the remote's own error message when the body is
// the usual {"message": "..."} shape, falling back to the raw body.
func remoteMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
