package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var _ interfaces.NotificationStore = (*APIStore)(nil)

const recentAlertsQuery = `query recentAlerts($input: AlertsInput) {
  alerts(input: $input) {
    alerts {
      alertId
      createdAt
      metadata
      source {
        bot { id }
        block { chainId number }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type alertsResponse struct {
	Data struct {
		Alerts struct {
			Alerts []apiAlert `json:"alerts"`
		} `json:"alerts"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type apiAlert struct {
	AlertID   string                     `json:"alertId"`
	CreatedAt string                     `json:"createdAt"`
	Metadata  map[string]json.RawMessage `json:"metadata"`
	Source    struct {
		Bot struct {
			ID string `json:"id"`
		} `json:"bot"`
		Block struct {
			ChainID uint64 `json:"chainId"`
			Number  uint64 `json:"number"`
		} `json:"block"`
	} `json:"source"`
}

// APIStore reads published alerts from a GraphQL alerts API.
type APIStore struct {
	Endpoint    string
	RateLimiter *rate.Limiter
	MaxRetries  int
	RetryDelay  time.Duration
	Limit       int
	Logger      *zerolog.Logger
	HTTPClient  *http.Client
}

func NewAPIStore(endpoint, apiKey string, limit, maxRetries int, retryDelay, httpTimeout time.Duration, logger *zerolog.Logger) *APIStore {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &APIStore{
		Endpoint:    endpoint,
		RateLimiter: rate.NewLimiter(rate.Limit(2), 1),
		MaxRetries:  maxRetries,
		RetryDelay:  retryDelay,
		Limit:       limit,
		Logger:      logger,
		HTTPClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &bearerTransport{
				base:   http.DefaultTransport,
				apiKey: apiKey,
			},
		},
	}
}

type bearerTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	return t.base.RoundTrip(req)
}

// QueryRecent returns alerts as ordered by the API, newest first.
func (s *APIStore) QueryRecent(ctx context.Context, botID, alertID string, originChainID uint64) ([]models.CrossChainNotification, error) {
	payload, err := json.Marshal(graphQLRequest{
		Query: recentAlertsQuery,
		Variables: map[string]interface{}{
			"input": map[string]interface{}{
				"bots":    []string{botID},
				"alertId": alertID,
				"chainId": originChainID,
				"first":   s.Limit,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	s.Logger.Debug().
		Str("endpoint", s.Endpoint).
		Str("botId", botID).
		Str("alertId", alertID).
		Msg("Querying recent alerts")

	if err := s.RateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	var response alertsResponse
	err = s.retry(ctx, func() error {
		response = alertsResponse{}
		return s.post(ctx, payload, &response)
	})
	if err != nil {
		s.Logger.Error().Err(err).Str("alertId", alertID).Msg("Alerts query failed")
		return nil, &models.QueryError{BotID: botID, AlertID: alertID, ChainID: originChainID, Err: err}
	}

	notifications := make([]models.CrossChainNotification, 0, len(response.Data.Alerts.Alerts))
	for _, a := range response.Data.Alerts.Alerts {
		n, err := a.toNotification()
		if err != nil {
			return nil, &models.QueryError{BotID: botID, AlertID: alertID, ChainID: originChainID, Err: err}
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *APIStore) post(ctx context.Context, payload []byte, out *alertsResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql error: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func (s *APIStore) retry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < s.MaxRetries; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == s.MaxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.RetryDelay):
		}
	}
	return err
}

func (a apiAlert) toNotification() (models.CrossChainNotification, error) {
	metadata := make(map[string]string, len(a.Metadata))
	for k, raw := range a.Metadata {
		v, err := metadataValue(raw)
		if err != nil {
			return models.CrossChainNotification{}, fmt.Errorf("metadata %s: %w", k, err)
		}
		metadata[k] = v
	}

	n := models.CrossChainNotification{
		AlertID:       a.AlertID,
		BotID:         a.Source.Bot.ID,
		ChainIDOrigin: a.Source.Block.ChainID,
		BlockNumber:   a.Source.Block.Number,
		Metadata:      metadata,
	}
	if a.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, a.CreatedAt)
		if err != nil {
			return models.CrossChainNotification{}, fmt.Errorf("createdAt: %w", err)
		}
		n.CreatedAt = createdAt
	}
	return n, nil
}

// metadataValue accepts both string and bare numeric JSON values.
func metadataValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return "", fmt.Errorf("unsupported value %s", string(raw))
	}
	if strings.ContainsAny(num.String(), ".eE-") {
		return "", fmt.Errorf("non-integer value %s", num.String())
	}
	return num.String(), nil
}
