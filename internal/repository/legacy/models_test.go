package legacy

import (
	"testing"

	"go-recruitment-datalayer/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tabler interface {
	TableName() string
}

func TestModelsMatchRegistry(t *testing.T) {
	for _, family := range schema.Families() {
		model := ModelFor(family)
		require.NotNil(t, model, family)

		tm, ok := model.(tabler)
		require.True(t, ok, family)
		assert.Equal(t, schema.MustLookup(family).LegacyTable, tm.TableName(), family)
	}
	assert.Len(t, Models(), len(schema.Families()))
}
