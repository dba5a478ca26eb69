package sol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	jitorpc "github.com/jito-labs/jito-go-rpc"
)

// JitoClient wraps jito-go-rpc for the one piece of Jito's surface that
// falls inside this engine's scope: picking which tip account a bundle's
// tip transfer should pay. Bundle assembly, signing, and submission are
// the relay-submitting executor's job, not this engine's.
type JitoClient struct {
	tipAccount solana.PublicKey
}

// Jito endpoint refer to: https://docs.jito.wtf/lowlatencytxnsend/
func NewJitoClient(endpoint string) (*JitoClient, error) {
	rpcClient := jitorpc.NewJitoJsonRpcClient(endpoint, "")
	tipAccount, err := rpcClient.GetRandomTipAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to get random tip account: %w", err)
	}
	pk, err := solana.PublicKeyFromBase58(tipAccount.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tip account: %w", err)
	}
	return &JitoClient{tipAccount: pk}, nil
}

// TipAccount returns the tip destination this bundle round should pay.
func (c *JitoClient) TipAccount() solana.PublicKey { return c.tipAccount }
