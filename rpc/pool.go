package rpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/Jds-23/curly-octo-memory/types"
)

// Pool holds one initialized ExecutionClient per configured chain.
type Pool struct {
	mu      sync.RWMutex
	clients map[string]*ExecutionClient
}

// NewPool creates clients for all configured chains. Clients are dialed
// lazily on first use.
func NewPool(chains []types.ChainConfig) *Pool {
	pool := &Pool{
		clients: map[string]*ExecutionClient{},
	}
	for _, chain := range chains {
		endpoint := chain.Endpoints[0]
		pool.clients[chain.ChainId] = NewExecutionClient(chain.Name, chain.ChainId, endpoint.Url, endpoint.Headers)
	}

	return pool
}

// GetClient returns the initialized client for a chain id.
func (pool *Pool) GetClient(ctx context.Context, chainId string) (*ExecutionClient, error) {
	pool.mu.RLock()
	client := pool.clients[chainId]
	pool.mu.RUnlock()

	if client == nil {
		return nil, fmt.Errorf("no rpc client configured for chain %v", chainId)
	}

	err := client.Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing rpc client for chain %v: %w", chainId, err)
	}

	return client, nil
}

// VerifyChainIds compares each client's reported chain id against its
// configuration and logs mismatches. Unreachable endpoints are logged and
// skipped, the pool stays usable for the other chains.
func (pool *Pool) VerifyChainIds(ctx context.Context) {
	pool.mu.RLock()
	defer pool.mu.RUnlock()

	for chainId, client := range pool.clients {
		err := client.Initialize(ctx)
		if err != nil {
			logger.WithError(err).Warnf("could not initialize rpc client for chain %v", chainId)
			continue
		}

		reported, err := client.GetChainId(ctx)
		if err != nil {
			logger.WithError(err).Warnf("could not fetch chain id from %v", client.GetName())
			continue
		}
		if reported.String() != chainId {
			logger.Warnf("chain id mismatch for %v: configured %v, node reports %v", client.GetName(), chainId, reported.String())
		}
	}
}
