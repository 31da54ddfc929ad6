package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-petcare-auth"
)

func storedUser(login string) *auth.User {
	return &auth.User{
		Person: auth.Person{
			ID:         uuid.New(),
			Name:       "Stored " + login,
			Identifier: "ID-" + login,
		},
		Login:        login,
		Email:        login + "@example.com",
		PasswordHash: "hash",
		Role:         auth.RoleUser,
	}
}

func setupUserStore(t *testing.T) (*auth.Store[*auth.User], auth.RepositoryManager, *fakeClock) {
	t.Helper()
	repos := setupRepos(t)
	clock := newFakeClock()
	store := auth.NewStore(repos.DB(), "user", func() *auth.User { return &auth.User{} }).
		WithClock(clock.Now)
	return store, repos, clock
}

func TestStoreCreateAssignsIdentity(t *testing.T) {
	store, repos, clock := setupUserStore(t)
	ctx := context.Background()

	user := storedUser("alice")
	user.Active = false

	created, err := store.CreateTx(ctx, repos.DB(), user)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive())
	assert.True(t, clock.Now().Equal(created.CreatedAt))
	assert.Nil(t, created.UpdatedAt)

	found, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Login)
	assert.Equal(t, user.Person.ID, found.Person.ID)
	assert.Equal(t, "user", store.Resource())
}

func TestStoreSoftDeleteHidesRow(t *testing.T) {
	store, repos, _ := setupUserStore(t)
	ctx := context.Background()

	created, err := store.CreateTx(ctx, repos.DB(), storedUser("bob"))
	require.NoError(t, err)

	require.NoError(t, store.SoftDeleteTx(ctx, repos.DB(), created))
	assert.False(t, created.IsActive())

	_, err = store.GetByID(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, auth.IsNotFound(err))

	_, err = store.FindOneByTx(ctx, repos.DB(), "login", "bob")
	assert.True(t, auth.IsNotFound(err))

	exists, err := store.ExistsByTx(ctx, repos.DB(), "login", "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	records, total, err := store.List(ctx, auth.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, total)

	var active bool
	err = repos.DB().NewSelect().
		Table("users").
		Column("active").
		Where("id = ?", created.ID).
		Scan(ctx, &active)
	require.NoError(t, err, "soft deleted rows stay in storage")
	assert.False(t, active)
}

func TestStoreUpdateKeepsLifecycleColumns(t *testing.T) {
	store, repos, clock := setupUserStore(t)
	ctx := context.Background()

	created, err := store.CreateTx(ctx, repos.DB(), storedUser("carol"))
	require.NoError(t, err)
	createdAt := created.CreatedAt

	clock.Advance(time.Hour)

	candidate := storedUser("carol2")
	candidate.ID = created.ID
	candidate.Active = false
	candidate.CreatedAt = time.Time{}

	updated, err := store.UpdateTx(ctx, repos.DB(), candidate)
	require.NoError(t, err)
	assert.Equal(t, "carol2", updated.Login)
	assert.True(t, updated.IsActive())
	assert.True(t, createdAt.Equal(updated.CreatedAt))
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, clock.Now().Equal(*updated.UpdatedAt))
}

func TestStoreUpdateInactiveRowIsNotFound(t *testing.T) {
	store, repos, _ := setupUserStore(t)
	ctx := context.Background()

	created, err := store.CreateTx(ctx, repos.DB(), storedUser("dave"))
	require.NoError(t, err)
	require.NoError(t, store.SoftDeleteTx(ctx, repos.DB(), created))

	candidate := storedUser("dave")
	candidate.ID = created.ID

	_, err = store.UpdateTx(ctx, repos.DB(), candidate)
	require.Error(t, err)
	assert.True(t, auth.IsNotFound(err))

	missing := storedUser("erin")
	missing.ID = uuid.New()
	_, err = store.UpdateTx(ctx, repos.DB(), missing)
	assert.True(t, auth.IsNotFound(err))
}

func TestStoreListPaginates(t *testing.T) {
	store, repos, clock := setupUserStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.CreateTx(ctx, repos.DB(), storedUser(fmt.Sprintf("user%d", i)))
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	first, total, err := store.List(ctx, auth.PageRequest{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, first, 2)
	assert.Equal(t, "user0", first[0].Login)
	assert.Equal(t, "user1", first[1].Login)

	last, total, err := store.List(ctx, auth.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, last, 1)
	assert.Equal(t, "user4", last[0].Login)
}

func TestActiveUniqueIndexAllowsReuseAfterSoftDelete(t *testing.T) {
	store, repos, _ := setupUserStore(t)
	ctx := context.Background()

	created, err := store.CreateTx(ctx, repos.DB(), storedUser("frank"))
	require.NoError(t, err)

	_, err = store.CreateTx(ctx, repos.DB(), storedUser("frank"))
	require.Error(t, err, "two active rows cannot share a login")

	require.NoError(t, store.SoftDeleteTx(ctx, repos.DB(), created))

	again, err := store.CreateTx(ctx, repos.DB(), storedUser("frank"))
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, again.ID)
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, auth.CreateSchema(context.Background(), db))
}

func TestUniqueIndexFailureIsUniquenessViolation(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	users := repos.Users()

	_, err := users.CreateTx(ctx, repos.DB(), storedUser("grace"))
	require.NoError(t, err)

	uniqueField := func(t *testing.T, err error) string {
		t.Helper()
		require.Error(t, err)
		assert.True(t, auth.IsUniquenessViolation(err), "got %v", err)
		var gerr *goerrors.Error
		require.True(t, goerrors.As(err, &gerr))
		assert.Equal(t, goerrors.CodeBadRequest, gerr.Code)
		return fmt.Sprint(gerr.Metadata["field"])
	}

	t.Run("create with taken login", func(t *testing.T) {
		dup := storedUser("grace")
		dup.Email = "other@example.com"
		dup.Person.Identifier = "ID-other"
		_, err := users.CreateTx(ctx, repos.DB(), dup)
		assert.Equal(t, "login", uniqueField(t, err))
	})

	t.Run("update to taken email", func(t *testing.T) {
		hank, err := users.CreateTx(ctx, repos.DB(), storedUser("hank"))
		require.NoError(t, err)

		hank.Email = "grace@example.com"
		_, err = users.UpdateTx(ctx, repos.DB(), hank)
		assert.Equal(t, "email", uniqueField(t, err))

		stored, err := users.GetByID(ctx, hank.ID)
		require.NoError(t, err)
		assert.Equal(t, "hank@example.com", stored.Email)
	})
}
