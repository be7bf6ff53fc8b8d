package dbtypes

type DBEngineType int

const (
	DBEngineAny    DBEngineType = 0
	DBEnginePgsql  DBEngineType = 1
	DBEngineSqlite DBEngineType = 2
)

// ServiceState is a generic json encoded key/value row.
type ServiceState struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}
