package backend

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MockDriver answers queries in order from Results; once exhausted it
// returns Fallback.
type MockDriver struct {
	Queries  []string
	Params   []map[string]interface{}
	Results  []neo4j.EagerResult
	Errs     []error
	Fallback neo4j.EagerResult
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	i := len(m.Queries)
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if i < len(m.Errs) && m.Errs[i] != nil {
		return neo4j.EagerResult{}, m.Errs[i]
	}
	if i < len(m.Results) {
		return m.Results[i], nil
	}
	return m.Fallback, nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func record(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}
