package friend

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/test_utils"
	"github.com/socialcal/socialcal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, []int) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		require.NoError(t, pgContainer.Restore(ctx))
	})

	users := user.NewUserRepo(db)
	var ids []int
	for _, name := range []string{"alice", "bob", "carol"} {
		id, err := users.CreateUser(ctx, user.User{Uid: name + "-uid", Username: name, DisplayName: name + "!", Settings: user.Settings{Timezone: "UTC"}})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ctx, NewRepository(db), ids
}

func TestRepositoryImpl_AddFriendship(t *testing.T) {
	// given
	ctx, repo, users := setupTestRepository(t)

	// when
	require.NoError(t, repo.AddFriendship(ctx, users[0], users[2]))
	require.NoError(t, repo.AddFriendship(ctx, users[0], users[1]))
	err := repo.AddFriendship(ctx, users[0], users[1])

	// then
	assert.ErrorIs(t, err, ErrAlreadyFriends)
	friends, err := repo.GetFriends(ctx, users[0])
	require.NoError(t, err)
	assert.Equal(t, []Friend{
		{Id: users[1], Username: "bob", DisplayName: "bob!"},
		{Id: users[2], Username: "carol", DisplayName: "carol!"},
	}, friends)
}

func TestRepositoryImpl_FriendshipIsOneDirectional(t *testing.T) {
	// given
	ctx, repo, users := setupTestRepository(t)
	require.NoError(t, repo.AddFriendship(ctx, users[0], users[1]))

	// when
	friends, err := repo.GetFriends(ctx, users[1])

	// then
	require.NoError(t, err)
	assert.Empty(t, friends)
}
