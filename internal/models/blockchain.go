package models

type BlockchainName string

const (
	Ethereum BlockchainName = "Ethereum"
	Arbitrum BlockchainName = "Arbitrum"
	Optimism BlockchainName = "Optimism"
)

const (
	EthereumChainID uint64 = 1
	OptimismChainID uint64 = 10
	ArbitrumChainID uint64 = 42161
)

func (b BlockchainName) String() string {
	return string(b)
}

// Network identifies the chain a monitor instance is attached to.
type Network struct {
	Name    BlockchainName
	ChainID uint64
}

// IsLayer1 reports whether the network is Ethereum mainnet.
func (n Network) IsLayer1() bool {
	return n.ChainID == EthereumChainID
}

// NetworkForChainID maps a chain id to its network. Any chain id other than
// mainnet and Arbitrum is treated as Optimism.
func NetworkForChainID(chainID uint64) Network {
	switch chainID {
	case EthereumChainID:
		return Network{Name: Ethereum, ChainID: chainID}
	case ArbitrumChainID:
		return Network{Name: Arbitrum, ChainID: chainID}
	default:
		return Network{Name: Optimism, ChainID: chainID}
	}
}
