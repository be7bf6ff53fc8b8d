package tokens

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/Jds-23/curly-octo-memory/types"
)

const (
	maxRecentQueries    = 20
	maxRecentSelections = 10

	historyQueriesKey    = "token_search:queries"
	historySelectionsKey = "token_search:selections"
)

// KeyValueStore is the injected persistence abstraction for search history.
// Implementations may be backed by the service database or main memory;
// callers treat all failures as non-fatal.
type KeyValueStore interface {
	Get(key string, returnValue interface{}) error
	Set(key string, value interface{}) error
	Delete(key string) error
}

// MemoryStore is a KeyValueStore backed by a map, for tests and cache-only
// deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: map[string][]byte{},
	}
}

func (s *MemoryStore) Get(key string, returnValue interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.values[key]
	if !exists {
		return ErrNotFound
	}

	return json.Unmarshal(data, returnValue)
}

func (s *MemoryStore) Set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data

	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)

	return nil
}

// ErrNotFound is returned by KeyValueStore implementations for missing keys.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

// SelectedToken is one persisted recently-selected token entry.
type SelectedToken struct {
	ChainId string `json:"chainId"`
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// History maintains bounded most-recently-used query and token-selection
// lists per owner. All storage failures are swallowed, the feature degrades
// to "no history" when the store is unavailable.
type History struct {
	store KeyValueStore
}

func NewHistory(store KeyValueStore) *History {
	return &History{
		store: store,
	}
}

// RecordQuery moves the query to the front of the owner's recent-query list,
// truncating the list to its bound.
func (h *History) RecordQuery(owner, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	queries := h.RecentQueries(owner)
	queries = moveToFront(queries, query, func(a, b string) bool {
		return strings.EqualFold(a, b)
	})
	if len(queries) > maxRecentQueries {
		queries = queries[:maxRecentQueries]
	}

	_ = h.store.Set(ownerKey(historyQueriesKey, owner), queries)
}

// RecentQueries returns the owner's recent queries, most recent first.
func (h *History) RecentQueries(owner string) []string {
	queries := []string{}
	err := h.store.Get(ownerKey(historyQueriesKey, owner), &queries)
	if err != nil {
		return []string{}
	}

	return queries
}

// RecordSelection moves the token to the front of the owner's
// recently-selected list, truncating the list to its bound.
func (h *History) RecordSelection(owner string, token *types.Token) {
	if token == nil || token.Address == "" {
		return
	}

	entry := SelectedToken{
		ChainId: token.ChainId,
		Address: strings.ToLower(token.Address),
		Symbol:  token.Symbol,
	}

	selections := h.RecentSelections(owner)
	selections = moveToFront(selections, entry, func(a, b SelectedToken) bool {
		return a.ChainId == b.ChainId && a.Address == b.Address
	})
	if len(selections) > maxRecentSelections {
		selections = selections[:maxRecentSelections]
	}

	_ = h.store.Set(ownerKey(historySelectionsKey, owner), selections)
}

// RecentSelections returns the owner's recently selected tokens, most recent
// first.
func (h *History) RecentSelections(owner string) []SelectedToken {
	selections := []SelectedToken{}
	err := h.store.Get(ownerKey(historySelectionsKey, owner), &selections)
	if err != nil {
		return []SelectedToken{}
	}

	return selections
}

// Clear drops the owner's history.
func (h *History) Clear(owner string) {
	_ = h.store.Delete(ownerKey(historyQueriesKey, owner))
	_ = h.store.Delete(ownerKey(historySelectionsKey, owner))
}

func ownerKey(prefix, owner string) string {
	return prefix + ":" + strings.ToLower(owner)
}

func moveToFront[T any](list []T, entry T, equal func(a, b T) bool) []T {
	result := make([]T, 0, len(list)+1)
	result = append(result, entry)
	for _, existing := range list {
		if equal(existing, entry) {
			continue
		}
		result = append(result, existing)
	}

	return result
}
