package baas

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildSelect(t *testing.T) {
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sql, args := buildSelect("applications",
		Where(Eq("candidate_id", "c-1"), In("job_id", "j-1", "j-2"), Gte("created_at", since)).
			OrderBy("created_at", true).WithLimit(10))

	assert.Equal(t,
		`SELECT * FROM "applications" WHERE "candidate_id" = $1 AND "job_id" IN ($2, $3) AND "created_at" >= $4 ORDER BY "created_at" DESC LIMIT 10`,
		sql)
	assert.Equal(t, []any{"c-1", "j-1", "j-2", since}, args)

	sql, args = buildSelect("jobs", Where(In("id"), Eq("agency_id", nil)))
	assert.Equal(t, `SELECT * FROM "jobs" WHERE FALSE AND "agency_id" IS NULL`, sql)
	assert.Empty(t, args)
}

func TestBuildInsert(t *testing.T) {
	rows := []Row{
		{"id": "a-1", "name": "Acme"},
		{"id": "a-2", "slug": "beta"},
	}

	sql, args := buildInsert("agencies", rows, "id")
	assert.Equal(t,
		`INSERT INTO "agencies" ("id", "name", "slug") VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name", "slug" = EXCLUDED."slug"`,
		sql)
	assert.Equal(t, []any{"a-1", "Acme", nil, "a-2", nil, "beta"}, args)

	sql, _ = buildInsert("agencies", []Row{{"id": "a-1"}}, "id")
	assert.Equal(t, `INSERT INTO "agencies" ("id") VALUES ($1) ON CONFLICT ("id") DO NOTHING`, sql)
}

func TestEncodeArg(t *testing.T) {
	now := time.Now()
	id := uuid.New()

	assert.Equal(t, `{"xp":1}`, encodeArg(map[string]any{"xp": 1}))
	assert.Equal(t, `["a","b"]`, encodeArg([]any{"a", "b"}))
	assert.Equal(t, `{"a":1}`, encodeArg(json.RawMessage(`{"a":1}`)))
	assert.Equal(t, now, encodeArg(now))
	assert.Equal(t, id.String(), encodeArg(id))
	assert.Equal(t, 42.5, encodeArg(42.5))
	assert.Nil(t, encodeArg(nil))
}

func TestNormalizeRow(t *testing.T) {
	id := uuid.New()
	row := normalizeRow(map[string]any{"id": [16]byte(id), "name": "x"})
	assert.Equal(t, id.String(), row["id"])
	assert.Equal(t, "x", row["name"])
}
