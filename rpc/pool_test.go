package rpc

import (
	"context"
	"sync"
	"testing"

	"github.com/Jds-23/curly-octo-memory/types"
)

func testPool() *Pool {
	return NewPool([]types.ChainConfig{
		{
			Name:    "testnet",
			ChainId: "1",
			Endpoints: []types.EndpointConfig{
				{Url: "http://127.0.0.1:18545"},
			},
		},
	})
}

func TestGetClientUnknownChain(t *testing.T) {
	pool := testPool()

	_, err := pool.GetClient(context.Background(), "999")
	if err == nil {
		t.Fatalf("expected error for unconfigured chain")
	}
}

func TestGetClientConcurrentInit(t *testing.T) {
	pool := testPool()
	ctx := context.Background()

	// http transports are dialed lazily, so concurrent GetClient calls for a
	// chain that has not been initialized yet must all succeed and return the
	// same client instance.
	clients := make([]*ExecutionClient, 4)
	errs := make([]error, 4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			clients[idx], errs[idx] = pool.GetClient(ctx, "1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		if errs[i] != nil {
			t.Fatalf("GetClient %v returned error: %v", i, errs[i])
		}
		if clients[i] == nil {
			t.Fatalf("GetClient %v returned nil client", i)
		}
		if clients[i] != clients[0] {
			t.Errorf("GetClient %v returned a different client instance", i)
		}
	}

	if clients[0].GetEthClient() == nil {
		t.Errorf("client not initialized after GetClient")
	}
}
