package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DefinesTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"profiles", "leads", "match_results", "lead_scores"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" ", "schema should define %s", table)
	}
}

func TestSchema_IsIdempotent(t *testing.T) {
	for _, stmt := range strings.Split(Schema(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		assert.True(t,
			strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS") || strings.HasPrefix(stmt, "CREATE INDEX IF NOT EXISTS"),
			"statement should be safe to re-run: %s", stmt)
	}
}
