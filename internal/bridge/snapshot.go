package bridge

import (
	"sync"

	"dai-bridge-monitor/internal/models"

	"github.com/holiman/uint256"
)

// SnapshotStore holds the last escrow balances seen on layer 1. The three
// fields are only ever replaced together.
type SnapshotStore struct {
	mu   sync.Mutex
	snap models.Snapshot
}

// NewSnapshotStore returns a store initialised to (0, 0, 0).
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snap: models.Snapshot{
			Arbitrum: new(uint256.Int),
			Optimism: new(uint256.Int),
		},
	}
}

// Load returns a copy of the current snapshot.
func (s *SnapshotStore) Load() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.Snapshot{
		BlockNumber: s.snap.BlockNumber,
		Arbitrum:    new(uint256.Int).Set(s.snap.Arbitrum),
		Optimism:    new(uint256.Int).Set(s.snap.Optimism),
	}
}

// ReplaceIfChanged compares both balances to the stored ones by exact
// equality. If either differs, the whole snapshot is replaced and true is
// returned.
func (s *SnapshotStore) ReplaceIfChanged(block uint64, arbitrum, optimism *uint256.Int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Arbitrum.Eq(arbitrum) && s.snap.Optimism.Eq(optimism) {
		return false
	}

	s.snap = models.Snapshot{
		BlockNumber: block,
		Arbitrum:    new(uint256.Int).Set(arbitrum),
		Optimism:    new(uint256.Int).Set(optimism),
	}
	return true
}
