package db

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/Jds-23/curly-octo-memory/dbtypes"
)

func GetServiceState(key string, returnValue interface{}) (interface{}, error) {
	entry := dbtypes.ServiceState{}
	err := ReaderDb.Get(&entry, `SELECT key, value FROM service_state WHERE key = $1`, key)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal([]byte(entry.Value), returnValue)
	if err != nil {
		return nil, err
	}
	return returnValue, nil
}

func SetServiceState(key string, value interface{}, tx *sqlx.Tx) error {
	valueMarshal, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = tx.Exec(EngineQuery(map[dbtypes.DBEngineType]string{
		dbtypes.DBEnginePgsql: `
			INSERT INTO service_state (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET
				value = excluded.value`,
		dbtypes.DBEngineSqlite: `
			INSERT OR REPLACE INTO service_state (key, value)
			VALUES ($1, $2)`,
	}), key, valueMarshal)
	if err != nil {
		return err
	}
	return nil
}

func DeleteServiceState(key string, tx *sqlx.Tx) error {
	_, err := tx.Exec(`DELETE FROM service_state WHERE key = $1`, key)
	return err
}
