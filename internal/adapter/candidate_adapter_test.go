package adapter_test

import (
	"context"
	"testing"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/legacy"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateAdapter(t *testing.T) {
	ctx := context.Background()

	for _, e := range backends(t) {
		t.Run(e.name, func(t *testing.T) {
			set := e.set

			t.Run("create and read back", func(t *testing.T) {
				c := &domain.Candidate{ID: "cand-1", Email: "  Ana@Example.com ", FirstName: strPtr("Ana"), LastName: strPtr("Putri")}
				require.NoError(t, set.Candidates.Create(ctx, c))

				got, err := set.Candidates.GetByID(ctx, "cand-1")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "ana@example.com", got.Email)
				assert.Equal(t, "Ana Putri", got.FullName)
				assert.True(t, got.IsActive)
				assert.True(t, got.CreatedAt.Equal(c.CreatedAt))

				byEmail, err := set.Candidates.GetByEmail(ctx, "ANA@example.com")
				require.NoError(t, err)
				require.NotNil(t, byEmail)
				assert.Equal(t, "cand-1", byEmail.ID)
			})

			t.Run("absent is nil without error", func(t *testing.T) {
				got, err := set.Candidates.GetByID(ctx, "missing")
				assert.NoError(t, err)
				assert.Nil(t, got)
			})

			t.Run("duplicate id conflicts", func(t *testing.T) {
				err := set.Candidates.Create(ctx, &domain.Candidate{ID: "cand-1", Email: "other@example.com"})
				assert.ErrorIs(t, err, apperror.ErrConflict)
			})

			t.Run("invalid email is rejected before any write", func(t *testing.T) {
				err := set.Candidates.Create(ctx, &domain.Candidate{ID: "cand-bad", Email: "not-an-email"})
				assert.ErrorIs(t, err, apperror.ErrValidation)
			})

			t.Run("update keeps email and recomputes full name", func(t *testing.T) {
				c := &domain.Candidate{ID: "cand-1", FirstName: strPtr("Ana"), LastName: strPtr("Wijaya"), IsActive: true}
				require.NoError(t, set.Candidates.Update(ctx, "cand-1", c))

				got, err := set.Candidates.GetByID(ctx, "cand-1")
				require.NoError(t, err)
				assert.Equal(t, "Ana Wijaya", got.FullName)
				assert.Equal(t, "ana@example.com", got.Email)

				err = set.Candidates.Update(ctx, "cand-1", &domain.Candidate{ID: "cand-1", Email: "new@example.com"})
				assert.ErrorIs(t, err, apperror.ErrValidation)
			})

			t.Run("update of someone else is an ownership violation", func(t *testing.T) {
				err := set.Candidates.Update(ctx, "intruder", &domain.Candidate{ID: "cand-1"})
				assert.ErrorIs(t, err, apperror.ErrOwnershipViolation)
			})

			t.Run("ensure candidate is idempotent", func(t *testing.T) {
				first, err := set.Candidates.EnsureCandidate(ctx, "cand-2", "budi@example.com")
				require.NoError(t, err)
				second, err := set.Candidates.EnsureCandidate(ctx, "cand-2", "budi@example.com")
				require.NoError(t, err)
				assert.Equal(t, first.ID, second.ID)
				assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
			})

			t.Run("usernames are unique", func(t *testing.T) {
				require.NoError(t, set.Candidates.AssignUsername(ctx, "cand-1", "cand-1", "Ana-Putri"))
				got, err := set.Candidates.GetByUsername(ctx, "ana-putri")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "cand-1", got.ID)

				err = set.Candidates.AssignUsername(ctx, "cand-2", "cand-2", "ana-putri")
				assert.ErrorIs(t, err, apperror.ErrConflict)
			})

			t.Run("update applies the username rules", func(t *testing.T) {
				update := func(acting, username string) error {
					return set.Candidates.Update(ctx, acting, &domain.Candidate{ID: acting, IsActive: true, Username: strPtr(username)})
				}

				assert.ErrorIs(t, update("cand-2", "ANA-PUTRI"), apperror.ErrConflict)
				assert.ErrorIs(t, update("cand-2", "no spaces allowed"), apperror.ErrValidation)
				assert.ErrorIs(t, update("cand-2", "ab"), apperror.ErrValidation)

				got, err := set.Candidates.GetByID(ctx, "cand-2")
				require.NoError(t, err)
				assert.Nil(t, got.Username)

				require.NoError(t, update("cand-2", " Budi-S "))
				got, err = set.Candidates.GetByID(ctx, "cand-2")
				require.NoError(t, err)
				require.NotNil(t, got.Username)
				assert.Equal(t, "budi-s", *got.Username)

				require.NoError(t, update("cand-1", "ana-putri"), "keeping one's own username is allowed")
			})

			t.Run("soft delete deactivates", func(t *testing.T) {
				require.NoError(t, set.Candidates.SoftDelete(ctx, "cand-2", "cand-2"))
				got, err := set.Candidates.GetByID(ctx, "cand-2")
				require.NoError(t, err)
				assert.False(t, got.IsActive)

				err = set.Candidates.SoftDelete(ctx, "ghost", "ghost")
				assert.ErrorIs(t, err, apperror.ErrNotFound)
			})
		})
	}
}

func TestCandidateAdapter_Routing(t *testing.T) {
	ctx := context.Background()
	envs := backends(t)

	legacyEnv, newEnv := envs[0], envs[1]
	seedCandidate(t, legacyEnv.set, "cand-legacy")
	seedCandidate(t, newEnv.set, "cand-new")

	var legacyCount int64
	require.NoError(t, legacyEnv.legacy.Model(&legacy.User{}).Count(&legacyCount).Error)
	assert.EqualValues(t, 1, legacyCount)
	assert.Empty(t, legacyEnv.next.Rows("candidates"))

	var newCount int64
	require.NoError(t, newEnv.legacy.Model(&legacy.User{}).Count(&newCount).Error)
	assert.Zero(t, newCount)
	rows := newEnv.next.Rows("candidates")
	require.Len(t, rows, 1)
	assert.Equal(t, "cand-new", rows[0]["id"])
	assert.NotContains(t, rows[0], "full_name", "derived fields are not stored")

	got, err := newEnv.set.Candidates.GetByID(ctx, "cand-new")
	require.NoError(t, err)
	assert.Equal(t, "Ana Putri", got.FullName)
}

func TestCandidateAdapter_LegacyRowMissingRequiredField(t *testing.T) {
	ctx := context.Background()
	e := backends(t)[0]

	require.NoError(t, e.legacy.Exec(
		`INSERT INTO users (id, email, "isActive", "createdAt", "updatedAt") VALUES (?, ?, ?, ?, ?)`,
		"cand-old", "", true, "2020-01-01 00:00:00", "2020-01-01 00:00:00").Error)

	got, err := e.set.Candidates.GetByID(ctx, "cand-old")
	assert.Nil(t, got)
	require.ErrorIs(t, err, apperror.ErrShape)

	var shape *apperror.ShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, "cand-old", shape.ID)
	assert.Equal(t, "email", shape.Field)
}
