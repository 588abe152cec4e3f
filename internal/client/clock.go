package client

import "context"

// Clock reports the current ledger height and its timestamp in seconds.
type Clock interface {
	CurrentHeight(ctx context.Context) (uint32, error)

	// CurrentLedger returns the height and timestamp of the same ledger.
	CurrentLedger(ctx context.Context) (uint32, uint64, error)
}
