package bridge

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var _ interfaces.Ledger = (*fakeLedger)(nil)

var (
	daiL1          = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	escrowArbitrum = common.HexToAddress("0xA10c7CE4b876998858b1a9E12b10092229539400")
	escrowOptimism = common.HexToAddress("0x467194771dAe2967Aef3ECbEDD3Bf9a310C76C65")
	daiL2          = common.HexToAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1")

	testEscrows = Escrows{Token: daiL1, Arbitrum: escrowArbitrum, Optimism: escrowOptimism}
	testBotID   = "0x1234"

	errNode = errors.New("node unavailable")
)

type balanceKey struct {
	holder common.Address
	block  uint64
}

// fakeLedger serves balances and supplies from maps.
type fakeLedger struct {
	mu          sync.Mutex
	chainID     uint64
	chainIDErr  error
	chainCalls  int
	balances    map[balanceKey]*uint256.Int
	balanceErr  map[common.Address]error
	supplies    map[uint64]*uint256.Int
	supplyErr   error
	supplyCalls int
}

func newFakeLedger(chainID uint64) *fakeLedger {
	return &fakeLedger{
		chainID:    chainID,
		balances:   map[balanceKey]*uint256.Int{},
		balanceErr: map[common.Address]error{},
		supplies:   map[uint64]*uint256.Int{},
	}
}

func (f *fakeLedger) setBalances(block, arbitrum, optimism uint64) {
	f.setBalancesDec(block, strconv.FormatUint(arbitrum, 10), strconv.FormatUint(optimism, 10))
}

// setBalancesDec takes decimal strings so balances can exceed 64 bits.
func (f *fakeLedger) setBalancesDec(block uint64, arbitrum, optimism string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[balanceKey{escrowArbitrum, block}] = uint256.MustFromDecimal(arbitrum)
	f.balances[balanceKey{escrowOptimism, block}] = uint256.MustFromDecimal(optimism)
}

func (f *fakeLedger) setSupply(block, supply uint64) {
	f.setSupplyDec(block, strconv.FormatUint(supply, 10))
}

func (f *fakeLedger) setSupplyDec(block uint64, supply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supplies[block] = uint256.MustFromDecimal(supply)
}

func (f *fakeLedger) ChainID(_ context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chainCalls++
	return f.chainID, f.chainIDErr
}

func (f *fakeLedger) BalanceOf(_ context.Context, token, holder common.Address, block uint64) (*uint256.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.balanceErr[holder]; err != nil {
		return nil, &models.RemoteReadError{Op: "balanceOf", Contract: token, Account: &holder, Block: block, Err: err}
	}
	v, ok := f.balances[balanceKey{holder, block}]
	if !ok {
		return nil, &models.RemoteReadError{Op: "balanceOf", Contract: token, Account: &holder, Block: block, Err: errors.New("missing block")}
	}
	return new(uint256.Int).Set(v), nil
}

func (f *fakeLedger) TotalSupply(_ context.Context, token common.Address, block uint64) (*uint256.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.supplyCalls++
	if f.supplyErr != nil {
		return nil, &models.RemoteReadError{Op: "totalSupply", Contract: token, Block: block, Err: f.supplyErr}
	}
	v, ok := f.supplies[block]
	if !ok {
		return nil, &models.RemoteReadError{Op: "totalSupply", Contract: token, Block: block, Err: errors.New("missing block")}
	}
	return new(uint256.Int).Set(v), nil
}

// fakeStore returns canned notifications and records the query it received.
type fakeStore struct {
	notifications []models.CrossChainNotification
	err           error
	calls         int
	lastBotID     string
	lastAlertID   string
	lastChainID   uint64
	panics        bool
}

func (s *fakeStore) QueryRecent(_ context.Context, botID, alertID string, originChainID uint64) ([]models.CrossChainNotification, error) {
	s.calls++
	if s.panics {
		panic("malformed response")
	}
	s.lastBotID, s.lastAlertID, s.lastChainID = botID, alertID, originChainID
	return s.notifications, s.err
}

// l1Notification is what a layer 2 instance reads back after the mainnet
// instance published a balance change with these metadata values.
func l1Notification(arbitrum, optimism string) models.CrossChainNotification {
	alert := models.Alert{
		Finding: models.Finding{
			AlertID: models.AlertIDBalanceChangeL1,
			Metadata: map[string]string{
				models.MetadataEscrowArbitrum: arbitrum,
				models.MetadataEscrowOptimism: optimism,
			},
		},
		BotID:   testBotID,
		ChainID: models.EthereumChainID,
	}
	return alert.Notification()
}
