package rpc

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/metrics"
	"dai-bridge-monitor/internal/models"

	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	_ interfaces.Ledger          = (*Client)(nil)
	_ interfaces.BlockHeadReader = (*Client)(nil)
)

// Client is the remote ledger client: an ethclient with rate limiting,
// retries and structured logging.
type Client struct {
	Endpoint    string
	ApiKey      string
	RateLimiter *rate.Limiter
	MaxRetries  int
	RetryDelay  time.Duration
	HTTPTimeout time.Duration
	Logger      *zerolog.Logger
	HTTPClient  *http.Client

	rpc     *gethrpc.Client
	eth     *ethclient.Client
	metrics *metrics.Metrics // nil if metrics disabled
}

// Option configures the Client.
type Option func(*Client)

// WithMetrics enables metrics collection for the client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient dials endpoint and returns a ledger client.
func NewClient(endpoint, apiKey string, rateLimit float64, maxRetries int, retryDelay, httpTimeout time.Duration, logger *zerolog.Logger, opts ...Option) (*Client, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	c := &Client{
		Endpoint:    endpoint,
		ApiKey:      apiKey,
		RateLimiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		MaxRetries:  maxRetries,
		RetryDelay:  retryDelay,
		HTTPTimeout: httpTimeout,
		Logger:      logger,
		HTTPClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &CustomTransport{
				Base:   http.DefaultTransport,
				ApiKey: apiKey,
			},
		},
	}

	rpcClient, err := gethrpc.DialHTTPWithClient(endpoint, c.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC client: %w", err)
	}
	c.rpc = rpcClient
	c.eth = ethclient.NewClient(rpcClient)

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CustomTransport adds API key authentication to HTTP requests
type CustomTransport struct {
	Base   http.RoundTripper
	ApiKey string
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	if t.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.ApiKey)
	}
	return t.Base.RoundTrip(req)
}

// ChainID resolves the network's chain id.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id *big.Int
	err := c.call(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		id, err = c.eth.ChainID(ctx)
		return err
	})
	if err != nil {
		return 0, &models.RemoteReadError{Op: "eth_chainId", Err: err}
	}
	if !id.IsUint64() {
		return 0, &models.RemoteReadError{Op: "eth_chainId", Err: fmt.Errorf("chain id %s out of range", id)}
	}
	return id.Uint64(), nil
}

// BlockNumber returns the current chain head.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var head uint64
	err := c.call(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var err error
		head, err = c.eth.BlockNumber(ctx)
		return err
	})
	if err != nil {
		return 0, &models.RemoteReadError{Op: "eth_blockNumber", Err: err}
	}
	return head, nil
}

// call performs one RPC round trip with rate limiting, retries and metrics.
func (c *Client) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	c.Logger.Debug().
		Str("endpoint", c.Endpoint).
		Str("method", method).
		Msg("Making RPC call")

	if err := c.RateLimiter.Wait(ctx); err != nil {
		c.Logger.Error().Err(err).Msg("Rate limit error")
		return fmt.Errorf("rate limit error: %w", err)
	}

	start := time.Now()
	err := c.retry(ctx, func() error {
		return fn(ctx)
	})
	if c.metrics != nil {
		c.metrics.RecordRPCCall(method, err, time.Since(start).Seconds())
	}

	if err != nil {
		c.Logger.Error().
			Err(err).
			Str("method", method).
			Msg("RPC call failed")
		return err
	}
	return nil
}

// retry executes a function with retry logic
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < c.MaxRetries; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == c.MaxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
	return err
}

// Close closes the RPC client and idle HTTP connections
func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}
