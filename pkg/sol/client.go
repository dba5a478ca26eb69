package sol

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"
)

// Client is a rate-limited Solana JSON-RPC client; it opens no WebSocket
// connection.
//
// Its read-side calls (account fetches, program scans, the clock sysvar)
// serve the snapshot loader. It also wraps blockhash, simulate and send
// calls, which nothing in this module calls; transaction assembly,
// signing, and relay/bundle submission are an external collaborator's job.
type Client struct {
	rpcClient   *rpc.Client
	rateLimiter *RateLimiter
}

// NewClient creates a new Solana client with custom rate limiting
func NewClient(ctx context.Context, endpoint string, reqLimitPerSecond int) (*Client, error) {
	return &Client{
		rpcClient:   rpc.New(endpoint),
		rateLimiter: NewRateLimiter(reqLimitPerSecond),
	}, nil
}
