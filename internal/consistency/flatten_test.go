package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	got := flatten(map[string]any{
		"id": "p-1",
		"gamification": map[string]any{
			"xp":     float64(40),
			"badges": []any{"first-apply"},
		},
		"extra": map[string]any{},
	})
	assert.Equal(t, map[string]any{
		"id":                  "p-1",
		"gamification.xp":     float64(40),
		"gamification.badges": []any{"first-apply"},
		"extra":               map[string]any{},
	}, got)
}

func TestExcluded(t *testing.T) {
	skip := []string{"updated_at", "gamification.badges"}
	assert.True(t, excluded("updated_at", skip))
	assert.True(t, excluded("gamification.badges", skip))
	assert.True(t, excluded("gamification.badges.0", skip))
	assert.False(t, excluded("gamification.xp", skip))
	assert.False(t, excluded("updated_at_local", skip))
}
