package tokens

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Jds-23/curly-octo-memory/types"
)

const historyOwner = "0xOwner"

func TestHistoryRecordQuery(t *testing.T) {
	history := NewHistory(NewMemoryStore())

	history.RecordQuery(historyOwner, "usdc")
	history.RecordQuery(historyOwner, "weth")
	history.RecordQuery(historyOwner, "USDC")

	queries := history.RecentQueries(historyOwner)
	expected := []string{"USDC", "weth"}
	if !reflect.DeepEqual(queries, expected) {
		t.Errorf("expected %v, got %v", expected, queries)
	}
}

func TestHistoryQueryBound(t *testing.T) {
	history := NewHistory(NewMemoryStore())

	for i := 0; i < maxRecentQueries+10; i++ {
		history.RecordQuery(historyOwner, fmt.Sprintf("query-%d", i))
	}

	queries := history.RecentQueries(historyOwner)
	if len(queries) != maxRecentQueries {
		t.Fatalf("expected %v queries, got %v", maxRecentQueries, len(queries))
	}
	if queries[0] != fmt.Sprintf("query-%d", maxRecentQueries+9) {
		t.Errorf("expected most recent query first, got %v", queries[0])
	}
}

func TestHistoryBlankQueryIgnored(t *testing.T) {
	history := NewHistory(NewMemoryStore())

	history.RecordQuery(historyOwner, "   ")
	if queries := history.RecentQueries(historyOwner); len(queries) != 0 {
		t.Errorf("expected blank query to be ignored, got %v", queries)
	}
}

func TestHistoryRecordSelection(t *testing.T) {
	history := NewHistory(NewMemoryStore())

	usdc := &types.Token{ChainId: "1", Address: "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", Symbol: "USDC"}
	weth := &types.Token{ChainId: "1", Address: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Symbol: "WETH"}

	history.RecordSelection(historyOwner, usdc)
	history.RecordSelection(historyOwner, weth)
	history.RecordSelection(historyOwner, usdc)

	selections := history.RecentSelections(historyOwner)
	if len(selections) != 2 {
		t.Fatalf("expected 2 selections, got %v", len(selections))
	}
	if selections[0].Symbol != "USDC" {
		t.Errorf("expected re-selected token first, got %v", selections[0].Symbol)
	}
	if selections[0].Address != "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Errorf("expected lowercased address, got %v", selections[0].Address)
	}
}

func TestHistoryOwnersIsolated(t *testing.T) {
	history := NewHistory(NewMemoryStore())

	history.RecordQuery("0xAlice", "usdc")
	history.RecordQuery("0xBob", "weth")

	if queries := history.RecentQueries("0xAlice"); !reflect.DeepEqual(queries, []string{"usdc"}) {
		t.Errorf("unexpected history for first owner: %v", queries)
	}
	if queries := history.RecentQueries("0xBob"); !reflect.DeepEqual(queries, []string{"weth"}) {
		t.Errorf("unexpected history for second owner: %v", queries)
	}
}

func TestHistoryClear(t *testing.T) {
	history := NewHistory(NewMemoryStore())

	history.RecordQuery(historyOwner, "usdc")
	history.RecordSelection(historyOwner, &types.Token{ChainId: "1", Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Symbol: "USDC"})
	history.Clear(historyOwner)

	if queries := history.RecentQueries(historyOwner); len(queries) != 0 {
		t.Errorf("expected cleared queries, got %v", queries)
	}
	if selections := history.RecentSelections(historyOwner); len(selections) != 0 {
		t.Errorf("expected cleared selections, got %v", selections)
	}
}

type failingStore struct{}

func (failingStore) Get(key string, returnValue interface{}) error { return fmt.Errorf("unavailable") }
func (failingStore) Set(key string, value interface{}) error       { return fmt.Errorf("unavailable") }
func (failingStore) Delete(key string) error                       { return fmt.Errorf("unavailable") }

func TestHistoryDegradesOnStoreFailure(t *testing.T) {
	history := NewHistory(failingStore{})

	// writes and reads against a broken store must not panic or error out
	history.RecordQuery(historyOwner, "usdc")
	history.RecordSelection(historyOwner, &types.Token{ChainId: "1", Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Symbol: "USDC"})
	history.Clear(historyOwner)

	if queries := history.RecentQueries(historyOwner); len(queries) != 0 {
		t.Errorf("expected empty history from broken store, got %v", queries)
	}
}
