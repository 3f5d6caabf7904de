// utils/chain.go - Blockchain anchoring placeholder
//
// Projects and milestones are anchored to deterministic ledger addresses
// derived from their public blockchain id. Transaction submission happens
// wallet-side in the admin frontend; this layer only derives the expected
// account addresses and stores the signatures the client reports back.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// DeriveProjectAccount returns the deterministic account address for a
// project's on-chain record, seeded by its public blockchain id
// (e.g. "KEMENKES-2025-001").
func DeriveProjectAccount(blockchainID string) string {
	sum := sha256.Sum256([]byte("project:" + blockchainID))
	return hex.EncodeToString(sum[:])
}

// DeriveMilestoneAccount returns the account address for one milestone.
// The on-chain record keys milestones by a single byte, so the index must
// fit 0-255.
func DeriveMilestoneAccount(blockchainID string, index int) (string, error) {
	if index < 0 || index > 255 {
		return "", fmt.Errorf("milestone index must be between 0 and 255")
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("milestone:%s:%d", blockchainID, index)))
	return hex.EncodeToString(sum[:]), nil
}

// ExplorerURL builds a block-explorer link for an address or transaction.
// kind is "address" or "tx".
func ExplorerURL(ref, kind string) string {
	network := os.Getenv("CHAIN_NETWORK")
	if network == "" {
		network = "devnet"
	}
	suffix := ""
	if network != "mainnet-beta" {
		suffix = "?cluster=" + network
	}
	return fmt.Sprintf("https://explorer.solana.com/%s/%s%s", kind, ref, suffix)
}
