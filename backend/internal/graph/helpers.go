package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getNodeFromRecord(record *neo4j.Record, key string) (*Node, bool) {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil, false
	}
	if gn, ok := val.(neo4j.Node); ok {
		return nodeFromGraph(gn), true
	}
	return nil, false
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getBoolFromRecord(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

func toTime(val interface{}) time.Time {
	switch t := val.(type) {
	case time.Time:
		return t
	case neo4j.LocalDateTime:
		return time.Time(t)
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
