package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-petcare-auth"
)

func setupSchedulingService(t *testing.T) (*auth.SchedulingService, auth.UserDTO) {
	t.Helper()
	repos := setupRepos(t)
	users := auth.NewUserService(repos, testHasher()).WithLogger(auth.NoopLogger{})
	owner := mustCreateUser(t, users, "vet", "vet@example.com", "ID-VET")

	schedulings := auth.NewSchedulingService(repos).WithLogger(auth.NoopLogger{})
	return schedulings, owner
}

func newSchedulingDTO(userID uuid.UUID) auth.SchedulingDTO {
	return auth.SchedulingDTO{
		UserID:      userID,
		Title:       "Vaccination",
		Description: "Annual rabies shot",
		Month:       4,
		Day:         12,
		Year:        2024,
		Type:        auth.SchedulingSuccess,
	}
}

func TestSchedulingServiceLifecycle(t *testing.T) {
	schedulings, owner := setupSchedulingService(t)
	ctx := context.Background()

	created, err := schedulings.Create(ctx, newSchedulingDTO(owner.ID))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, owner.ID, created.UserID)
	assert.Equal(t, "scheduling", schedulings.Resource())

	dto := created
	dto.Title = "Check up"
	dto.Type = auth.SchedulingWarning

	updated, err := schedulings.Update(ctx, created.ID, dto)
	require.NoError(t, err)
	assert.Equal(t, "Check up", updated.Title)
	assert.Equal(t, auth.SchedulingWarning, updated.Type)

	page, err := schedulings.FindAll(ctx, auth.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	require.NoError(t, schedulings.DeleteByID(ctx, created.ID))

	_, err = schedulings.FindByID(ctx, created.ID)
	assert.True(t, auth.IsNotFound(err))

	_, err = schedulings.Update(ctx, created.ID, dto)
	assert.True(t, auth.IsNotFound(err))
}

func TestSchedulingServiceValidation(t *testing.T) {
	schedulings, owner := setupSchedulingService(t)
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		_, err := schedulings.Create(ctx, newSchedulingDTO(uuid.New()))
		require.Error(t, err)
		assert.True(t, auth.IsBadRequest(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		dto := newSchedulingDTO(owner.ID)
		dto.Type = auth.SchedulingType("INFO")
		_, err := schedulings.Create(ctx, dto)
		require.Error(t, err)
		assert.True(t, auth.IsBadRequest(err))
	})

	page, err := schedulings.FindAll(ctx, auth.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
