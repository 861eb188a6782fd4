//go:build integration

package db_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"roomchat/internal/app/db"
	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "roomchat_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/roomchat_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newStore(t *testing.T) *db.Store {
	t.Helper()
	pool, err := db.NewPool(context.Background(), db.PoolConfig{DSN: dsn, ApplicationName: "roomchat_test"})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return db.NewStore(pool)
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u, err := s.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.DateCreated.IsZero())

	_, err = s.CreateUser(ctx, "alice", "other")
	assert.True(t, errs.HasCode(err, errs.ErrUserAlreadyExists))

	byName, err := s.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)
	assert.Equal(t, "hash", byName.PassHash)

	missing, err := s.GetUserByID(ctx, 1_000_000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := "Alice"
	updated, err := s.UpdateUser(ctx, u.ID, user.UpdateParams{FirstName: &first})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Alice", *updated.FirstName)
	assert.Equal(t, "alice", updated.Username)
}

func TestStore_ChatsAndMessages(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	owner, err := s.CreateUser(ctx, "owner", "hash")
	require.NoError(t, err)
	guest, err := s.CreateUser(ctx, "guest", "hash")
	require.NoError(t, err)

	c, err := s.CreateChat(ctx, "general", owner.ID)
	require.NoError(t, err)

	ok, err := s.IsMember(ctx, owner.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsMember(ctx, guest.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddUserToChat(ctx, c.ID, guest.ID))
	require.NoError(t, s.AddUserToChat(ctx, c.ID, guest.ID))
	assert.True(t, errs.HasCode(s.AddUserToChat(ctx, c.ID, 1_000_000), errs.ErrUserNotFound))

	members, err := s.ListChatUsers(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	chats, err := s.ListUserChats(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, c.ID, chats[0].ID)

	var ids []int64
	for i := range 5 {
		m, err := s.CreateMessage(ctx, c.ID, owner.ID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		assert.Equal(t, c.ID, m.RoomID)
		assert.False(t, m.SentAt.IsZero())
		ids = append(ids, m.ID)
	}

	forward, err := s.ListMessagesFrom(ctx, c.ID, ids[1], 2)
	require.NoError(t, err)
	require.Len(t, forward, 2)
	assert.Equal(t, ids[1], forward[0].ID)
	assert.Equal(t, ids[2], forward[1].ID)

	latest, err := s.ListLatestMessages(ctx, c.ID, 3)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, ids[4], latest[0].ID)
	assert.Equal(t, ids[2], latest[2].ID)

	none, err := s.GetChat(ctx, 1_000_000)
	require.NoError(t, err)
	assert.Nil(t, none)
}
