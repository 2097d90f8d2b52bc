package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"dai-bridge-monitor/internal/interfaces"

	"github.com/rs/zerolog"
)

type BlockchainStatus struct {
	Name          string    `json:"name"`
	ChainID       uint64    `json:"chain_id"`
	Mode          string    `json:"mode"`
	LastBlock     uint64    `json:"last_block"`
	LastEvaluated uint64    `json:"last_evaluated_block"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Registry tracks readiness and per-network status for the probes.
type Registry struct {
	ready    int32
	mu       sync.RWMutex
	statuses map[string]*BlockchainStatus
	logger   *zerolog.Logger
}

func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		statuses: make(map[string]*BlockchainStatus),
		logger:   logger,
	}
}

func (r *Registry) SetReady(ready bool) {
	if ready {
		atomic.StoreInt32(&r.ready, 1)
	} else {
		atomic.StoreInt32(&r.ready, 0)
	}
}

func (r *Registry) LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (r *Registry) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.statuses) == 0 || atomic.LoadInt32(&r.ready) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Not Ready"))

		return
	}

	response := make(map[string]interface{})
	response["status"] = "Ready"
	response["blockchains"] = r.statuses

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// RegisterMonitor polls the monitor's chain head every interval until ctx is done.
func (r *Registry) RegisterMonitor(ctx context.Context, monitor interfaces.BlockchainMonitor, interval time.Duration) {
	r.poll(ctx, monitor)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.poll(ctx, monitor)
			}
		}
	}()
}

func (r *Registry) poll(ctx context.Context, monitor interfaces.BlockchainMonitor) {
	blockhead, err := monitor.GetBlockHead(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("chain", monitor.GetChainName().String()).
			Msg("Error getting latest block")
		return
	}
	r.UpdateStatus(BlockchainStatus{
		Name:          monitor.GetChainName().String(),
		ChainID:       monitor.GetChainID(),
		Mode:          monitor.GetMode(),
		LastBlock:     blockhead,
		LastEvaluated: monitor.LastEvaluatedBlock(),
	})
}

func (r *Registry) UpdateStatus(status BlockchainStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now().UTC()
	}
	r.statuses[status.Name] = &status
}
