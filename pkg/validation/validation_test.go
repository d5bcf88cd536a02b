package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string    `json:"name" validate:"required,valid_name"`
	Phone    string    `json:"phone" validate:"valid_phone"`
	Slug     string    `json:"slug" validate:"valid_slug"`
	Bio      string    `json:"bio" validate:"no_emoji"`
	Birthday time.Time `json:"birthday" validate:"not_future"`
}

func TestValidators(t *testing.T) {
	v := New()

	t.Run("valid sample", func(t *testing.T) {
		err := v.Struct(sample{Name: "Ana O'Neil", Phone: "+628123456789", Slug: "ana-oneil", Bio: "Backend engineer"})
		assert.NoError(t, err)
	})

	t.Run("messages use json names", func(t *testing.T) {
		err := v.Struct(sample{
			Name:     "",
			Phone:    "12",
			Slug:     "Not A Slug",
			Bio:      "hello 🚀",
			Birthday: time.Now().Add(48 * time.Hour),
		})
		require.Error(t, err)

		msgs := FormatValidationErrors(err)
		assert.Contains(t, msgs, "name: is required")
		assert.Contains(t, msgs, "phone: invalid phone number (7-15 digits, optional +)")
		assert.Contains(t, msgs, "slug: must be lower-case words joined by hyphens")
		assert.Contains(t, msgs, "bio: must not contain emoji or special symbols")
		assert.Contains(t, msgs, "birthday: must not be in the future")
	})

	t.Run("non validation error passes through", func(t *testing.T) {
		assert.Equal(t, []string{"boom"}, FormatValidationErrors(errors.New("boom")))
	})
}
