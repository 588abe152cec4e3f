package eth

import (
	"context"
	"fmt"
	"math"
)

// HeaderClock reads the ledger height and timestamp from the latest block
// header.
type HeaderClock struct {
	client HeaderReader
}

func NewHeaderClock(client HeaderReader) *HeaderClock {
	return &HeaderClock{client: client}
}

func (c *HeaderClock) CurrentHeight(ctx context.Context) (uint32, error) {
	height, _, err := c.CurrentLedger(ctx)
	return height, err
}

func (c *HeaderClock) CurrentLedger(ctx context.Context) (uint32, uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, 0, err
	}

	if !header.Number.IsUint64() || header.Number.Uint64() > math.MaxUint32 {
		return 0, 0, fmt.Errorf("block height %s overflows uint32", header.Number)
	}

	return uint32(header.Number.Uint64()), header.Time, nil
}
