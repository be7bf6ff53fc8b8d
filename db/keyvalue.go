package db

import (
	"github.com/jmoiron/sqlx"
)

// KeyValueStore adapts the service_state table to the tokens.KeyValueStore
// interface, so the search history can be persisted in the service database.
type KeyValueStore struct{}

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{}
}

func (s *KeyValueStore) Get(key string, returnValue interface{}) error {
	_, err := GetServiceState(key, returnValue)
	return err
}

func (s *KeyValueStore) Set(key string, value interface{}) error {
	return RunDBTransaction(func(tx *sqlx.Tx) error {
		return SetServiceState(key, value, tx)
	})
}

func (s *KeyValueStore) Delete(key string) error {
	return RunDBTransaction(func(tx *sqlx.Tx) error {
		return DeleteServiceState(key, tx)
	})
}
