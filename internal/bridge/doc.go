// Package bridge holds the DAI bridge invariant decision engine.
//
// A Dispatcher is bound to one network for its lifetime. On Ethereum mainnet it
// runs a Tracker, which watches the Arbitrum and Optimism escrow balances and
// publishes a balance-change-layer1 finding whenever either moves. On a layer 2
// network it runs a Checker, which reads the latest such finding back through a
// notification store and raises supply-imbalance-layer2 when the local DAI
// supply exceeds the escrowed collateral.
//
// The Checker compares against the first notification the store returns. It
// does not re-sort by block number or timestamp; stores must return records
// most recent first.
package bridge
